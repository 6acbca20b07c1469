package cmd

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/masmgr/gitarchive-go/internal/builder"
)

// consoleReporter prints log entries in color and keeps a spinner showing
// the current progress. It is safe for use from the builder goroutine.
type consoleReporter struct {
	mu   sync.Mutex
	out  io.Writer
	spin *spinner.Spinner
}

// newConsoleReporter writes to out. The spinner is only shown when animate
// is set, i.e. when out is a terminal.
func newConsoleReporter(out io.Writer, animate bool) *consoleReporter {
	r := &consoleReporter{out: out}
	if animate {
		r.spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
		r.spin.Suffix = progressSuffix(0, "Starting")
		r.spin.Start()
	}
	return r
}

func progressSuffix(percent int, status string) string {
	return fmt.Sprintf(" [%3d%%] %s", percent, status)
}

func (r *consoleReporter) Progress(percent int, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.spin == nil {
		return
	}
	r.spin.Lock()
	r.spin.Suffix = progressSuffix(percent, status)
	r.spin.Unlock()
}

func (r *consoleReporter) Log(e builder.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.spin != nil {
		r.spin.Stop()
		defer r.spin.Start()
	}
	levelColor(e.Level).Fprintln(r.out, e.Message)
}

// Finish stops the spinner. Later events are printed without it.
func (r *consoleReporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.spin != nil {
		r.spin.Stop()
		r.spin = nil
	}
}

func levelColor(level builder.Level) *color.Color {
	switch level {
	case builder.LevelWarn:
		return color.New(color.FgYellow)
	case builder.LevelError:
		return color.New(color.FgRed)
	case builder.LevelCancel:
		return color.New(color.FgCyan)
	case builder.LevelSuccess:
		return color.New(color.FgGreen)
	default:
		return color.New(color.Reset)
	}
}
