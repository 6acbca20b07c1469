package main

import "github.com/masmgr/gitarchive-go/cmd"

func main() {
	cmd.Run()
}
