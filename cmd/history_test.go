package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/masmgr/gitarchive-go/config"
	"github.com/masmgr/gitarchive-go/internal/builder"
	"github.com/masmgr/gitarchive-go/internal/git"
	"github.com/masmgr/gitarchive-go/internal/history"
)

func init() {
	color.NoColor = true
}

func writeTestConfig(t *testing.T, historyPath string) string {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.History.Path = historyPath
	path := filepath.Join(t.TempDir(), "config.json")
	if err := config.SaveConfig(cfg, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func seedHistory(t *testing.T, path string) *history.Store {
	t.Helper()
	store := history.Open(path, 10)
	spec := git.NewShaRange("1111111111", "2222222222")
	err := store.Append(history.Entry{
		Timestamp:     time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC),
		RepoPath:      "/repos/project",
		OutputPath:    "/out/release",
		Mode:          spec.Mode(),
		Parameters:    spec.Parameters(),
		ArchiveFormat: "tar.gz",
		ArchivedCount: 7,
	})
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"gitarchive"}, args...))
	return out.String() + errOut.String(), err
}

func TestHistoryCommands(t *testing.T) {
	historyPath := filepath.Join(t.TempDir(), "history.json")
	seedHistory(t, historyPath)
	cfgPath := writeTestConfig(t, historyPath)

	out, err := runApp(t, "--config", cfgPath, "history", "list")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	for _, s := range []string{"#", "SHA Range 1111111..2222222", "tar.gz", "7", "/out/release"} {
		if !strings.Contains(out, s) {
			t.Errorf("list output missing %q:\n%s", s, out)
		}
	}

	out, err = runApp(t, "--config", cfgPath, "history", "show", "1")
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	for _, s := range []string{"Repository:", "/repos/project", "start_sha", "1111111111", "end_sha"} {
		if !strings.Contains(out, s) {
			t.Errorf("show output missing %q:\n%s", s, out)
		}
	}

	if _, err := runApp(t, "--config", cfgPath, "history", "show", "2"); exitCode(err) != exitUsage {
		t.Errorf("show out of range: err = %v", err)
	}
	if _, err := runApp(t, "--config", cfgPath, "history", "show", "x"); exitCode(err) != exitUsage {
		t.Errorf("show bad index: err = %v", err)
	}

	out, err = runApp(t, "--config", cfgPath, "history", "clear")
	if err != nil {
		t.Fatalf("history clear: %v", err)
	}
	if !strings.Contains(out, "Removed 1 history entries.") {
		t.Errorf("clear output = %q", out)
	}
	if n := history.Open(historyPath, 10).Len(); n != 0 {
		t.Errorf("history still has %d entries", n)
	}

	out, err = runApp(t, "--config", cfgPath, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No recorded runs.") {
		t.Errorf("empty list output = %q", out)
	}
}

func TestApp_CommandNamesDoNotClash(t *testing.T) {
	// urfave/cli adds "help" with alias "h" to every command list.
	seen := map[string]string{"help": "help", "h": "help"}
	for _, c := range App().Commands {
		for _, name := range append([]string{c.Name}, c.Aliases...) {
			if owner, ok := seen[name]; ok {
				t.Errorf("%q is used by both %s and %s", name, owner, c.Name)
			}
			seen[name] = c.Name
		}
	}

	historyPath := filepath.Join(t.TempDir(), "history.json")
	seedHistory(t, historyPath)
	cfgPath := writeTestConfig(t, historyPath)
	out, err := runApp(t, "--config", cfgPath, "hist", "list")
	if err != nil {
		t.Fatalf("hist list: %v\n%s", err, out)
	}
	if !strings.Contains(out, "/out/release") {
		t.Errorf("hist list output = %q", out)
	}
}

func TestHistoryRerun_InvalidRepo(t *testing.T) {
	historyPath := filepath.Join(t.TempDir(), "history.json")
	store := history.Open(historyPath, 10)
	spec := git.NewSingleCommit("abc")
	if err := store.Append(history.Entry{
		RepoPath:   t.TempDir(),
		OutputPath: filepath.Join(t.TempDir(), "out"),
		Mode:       spec.Mode(),
		Parameters: spec.Parameters(),
	}); err != nil {
		t.Fatal(err)
	}
	cfgPath := writeTestConfig(t, historyPath)

	out, err := runApp(t, "--config", cfgPath, "history", "rerun", "1")
	if exitCode(err) != exitUsage {
		t.Fatalf("rerun err = %v, want usage exit", err)
	}
	if !strings.Contains(out, "Not a valid git repository") {
		t.Errorf("rerun output = %q", out)
	}
}

func TestArchive_UsageErrors(t *testing.T) {
	cfgPath := writeTestConfig(t, filepath.Join(t.TempDir(), "history.json"))

	tests := []struct {
		name string
		args []string
	}{
		{name: "No range", args: []string{"archive", "-o", "out"}},
		{name: "Two modes", args: []string{"archive", "-o", "out", "--commit", "abc", "--start-sha", "a", "--end-sha", "b"}},
		{name: "No output", args: []string{"archive", "--commit", "abc"}},
		{name: "Bad format", args: []string{"archive", "-o", "out", "--commit", "abc", "--format", "rar"}},
		{name: "Bad backend", args: []string{"archive", "-o", "out", "--commit", "abc", "--git-backend", "svn"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runApp(t, append([]string{"--config", cfgPath}, tt.args...)...)
			if exitCode(err) != exitUsage {
				t.Errorf("err = %v, want exit code %d", err, exitUsage)
			}
		})
	}
}

func TestConsoleReporter_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	rep := newConsoleReporter(&buf, false)
	rep.Progress(50, "Staging")
	rep.Log(builder.Entry{Level: builder.LevelWarn, Message: "Warning: Could not find 'x'"})
	rep.Log(builder.Entry{Level: builder.LevelSuccess, Message: "--- PROCESS COMPLETE ---"})
	rep.Finish()

	want := "Warning: Could not find 'x'\n--- PROCESS COMPLETE ---\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestMain(m *testing.M) {
	// Keep a developer's own .gitarchive.json out of the way.
	dir, err := os.MkdirTemp("", "gitarchive-cmd-test-")
	if err != nil {
		panic(err)
	}
	os.Setenv("HOME", dir)
	if err := os.Chdir(dir); err != nil {
		panic(err)
	}
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}
