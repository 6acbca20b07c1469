package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/masmgr/gitarchive-go/internal/archive"
	"github.com/masmgr/gitarchive-go/internal/git"
	"github.com/masmgr/gitarchive-go/internal/history"
)

// FileName is the configuration file looked up in the working and home directories.
const FileName = ".gitarchive.json"

// Config is the root configuration structure.
type Config struct {
	Archive ArchiveConfig `json:"archive"`
	Git     GitConfig     `json:"git"`
	Filters FilterConfig  `json:"filters"`
	History HistoryConfig `json:"history"`
}

// ArchiveConfig holds output defaults.
type ArchiveConfig struct {
	Format        string `json:"format"`        // zip, tar or tar.gz
	DefaultBranch string `json:"defaultBranch"` // Branch for date range mode
}

// GitConfig selects how the repository is read.
type GitConfig struct {
	Backend string `json:"backend"` // "git" or "go-git"
	Binary  string `json:"binary"`
}

// FilterConfig holds file path filtering options.
type FilterConfig struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
}

// HistoryConfig controls the run history file.
type HistoryConfig struct {
	Enabled    bool   `json:"enabled"`
	Path       string `json:"path"`
	MaxEntries int    `json:"maxEntries"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Archive: ArchiveConfig{
			Format:        string(archive.FormatZip),
			DefaultBranch: "main",
		},
		Git: GitConfig{
			Backend: string(git.BackendCLI),
			Binary:  "git",
		},
		Filters: FilterConfig{
			Include: []string{},
			Exclude: []string{},
		},
		History: HistoryConfig{
			Enabled:    true,
			Path:       history.DefaultPath(),
			MaxEntries: history.DefaultMaxEntries,
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := archive.ParseFormat(c.Archive.Format); err != nil {
		return fmt.Errorf("archive.format: %w", err)
	}
	if c.Archive.DefaultBranch == "" {
		return fmt.Errorf("archive.defaultBranch must not be empty")
	}
	if _, err := git.ParseBackend(c.Git.Backend); err != nil {
		return fmt.Errorf("git.backend: %w", err)
	}
	for _, p := range append(append([]string{}, c.Filters.Include...), c.Filters.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("filters: invalid glob pattern %q", p)
		}
	}
	if c.History.MaxEntries < 1 {
		return fmt.Errorf("history.maxEntries must be at least 1, got %d", c.History.MaxEntries)
	}
	return nil
}

// LoadConfig loads configuration from a file, merging with defaults.
// With no explicit path it tries the working directory, then the home directory.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		candidates := []string{FileName}
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			candidates = append(candidates, filepath.Join(home, FileName))
		} else if envHome := os.Getenv("HOME"); envHome != "" {
			candidates = append(candidates, filepath.Join(envHome, FileName))
		}
		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to a file.
func SaveConfig(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
