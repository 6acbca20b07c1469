package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Archive.Format != "zip" {
		t.Errorf("Archive.Format = %q, expected %q", cfg.Archive.Format, "zip")
	}
	if cfg.Archive.DefaultBranch != "main" {
		t.Errorf("Archive.DefaultBranch = %q, expected %q", cfg.Archive.DefaultBranch, "main")
	}
	if cfg.Git.Backend != "git" {
		t.Errorf("Git.Backend = %q, expected %q", cfg.Git.Backend, "git")
	}
	if cfg.Git.Binary != "git" {
		t.Errorf("Git.Binary = %q, expected %q", cfg.Git.Binary, "git")
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, expected true")
	}
	if cfg.History.MaxEntries != 50 {
		t.Errorf("History.MaxEntries = %d, expected 50", cfg.History.MaxEntries)
	}
	if !strings.HasSuffix(filepath.ToSlash(cfg.History.Path), ".gitarchive/history.json") {
		t.Errorf("History.Path = %q", cfg.History.Path)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{name: "Unknown format", modify: func(c *Config) { c.Archive.Format = "rar" }},
		{name: "Empty branch", modify: func(c *Config) { c.Archive.DefaultBranch = "" }},
		{name: "Unknown backend", modify: func(c *Config) { c.Git.Backend = "libgit2" }},
		{name: "Bad include", modify: func(c *Config) { c.Filters.Include = []string{"[a-"} }},
		{name: "Bad exclude", modify: func(c *Config) { c.Filters.Exclude = []string{"{a,b"} }},
		{name: "Zero history cap", modify: func(c *Config) { c.History.MaxEntries = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadConfig_ExplicitPathMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	data := `{"archive": {"format": "tar.gz"}, "filters": {"exclude": ["**/*.log"]}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Archive.Format != "tar.gz" {
		t.Errorf("Archive.Format = %q", cfg.Archive.Format)
	}
	if cfg.Archive.DefaultBranch != "main" {
		t.Errorf("DefaultBranch = %q, expected default to survive", cfg.Archive.DefaultBranch)
	}
	if len(cfg.Filters.Exclude) != 1 || cfg.Filters.Exclude[0] != "**/*.log" {
		t.Errorf("Filters.Exclude = %v", cfg.Filters.Exclude)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(broken, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(broken); err == nil {
		t.Error("expected parse error")
	}

	invalid := filepath.Join(dir, "invalid.json")
	if err := os.WriteFile(invalid, []byte(`{"git": {"backend": "svn"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(invalid); err == nil {
		t.Error("expected validation error")
	}

	cfg, err := LoadConfig(filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if cfg.Archive.Format != "zip" {
		t.Errorf("Archive.Format = %q", cfg.Archive.Format)
	}
}

func TestLoadConfig_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(`{"git": {"backend": "go-git"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Git.Backend != "go-git" {
		t.Errorf("Git.Backend = %q, expected go-git from %s", cfg.Git.Backend, FileName)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := DefaultConfig()
	cfg.Archive.Format = "tar"
	cfg.History.Enabled = false

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Archive.Format != "tar" || loaded.History.Enabled {
		t.Errorf("loaded = %+v", loaded)
	}
}
