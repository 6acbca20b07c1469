// Package history persists a capped, newest-first log of completed archive
// runs so they can be listed and re-run.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/masmgr/gitarchive-go/internal/git"
)

// DefaultMaxEntries caps the history when no limit is configured.
const DefaultMaxEntries = 50

// Status is the recorded outcome of a run.
type Status string

const StatusSuccess Status = "success"

// Entry is one recorded run. Entries are never modified once written.
type Entry struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	RepoPath      string            `json:"repo_path"`
	OutputPath    string            `json:"output_path"`
	Mode          git.Mode          `json:"mode"`
	Parameters    map[string]string `json:"parameters"`
	ArchiveFormat string            `json:"archive_format"`
	Status        Status            `json:"status"`
	ArchivedCount int               `json:"archived_count"`
}

// Spec rebuilds the range specification the entry was recorded with.
func (e Entry) Spec() (git.RangeSpec, error) {
	return git.SpecFromParameters(e.Mode, e.Parameters)
}

// Store is a JSON-file backed history. It is safe for concurrent use.
type Store struct {
	path       string
	maxEntries int

	mu      sync.Mutex
	entries []Entry
}

// DefaultPath returns ~/.gitarchive/history.json, or a path relative to the
// working directory when no home directory is known.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.Getenv("HOME")
	}
	if home == "" {
		return filepath.Join(".gitarchive", "history.json")
	}
	return filepath.Join(home, ".gitarchive", "history.json")
}

// Open loads the history at path. A missing or unreadable file yields an
// empty history rather than an error.
func Open(path string, maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	s := &Store{path: path, maxEntries: maxEntries}
	s.entries = load(path)
	if len(s.entries) > maxEntries {
		s.entries = s.entries[:maxEntries]
	}
	return s
}

func load(path string) []Entry {
	data, err := os.ReadFile(path)
	if err != nil {
		return []Entry{}
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return []Entry{}
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Append records e as the newest entry and trims the history to its cap.
// Missing ID, timestamp and status are filled in.
func (s *Store) Append(e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if e.Status == "" {
		e.Status = StatusSuccess
	}
	params := make(map[string]string, len(e.Parameters))
	for k, v := range e.Parameters {
		params[k] = v
	}
	e.Parameters = params

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0, len(s.entries)+1)
	entries = append(entries, e)
	entries = append(entries, s.entries...)
	if len(entries) > s.maxEntries {
		entries = entries[:s.maxEntries]
	}
	if err := s.save(entries); err != nil {
		return err
	}
	s.entries = entries
	return nil
}

// List returns all entries, newest first.
func (s *Store) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Get returns the entry at index, 0 being the newest.
func (s *Store) Get(index int) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.entries) {
		return Entry{}, false
	}
	return s.entries[index], true
}

// Clear removes every entry.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save([]Entry{}); err != nil {
		return err
	}
	s.entries = []Entry{}
	return nil
}

// save writes entries via a temp file and rename. Caller holds mu.
func (s *Store) save(entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".history-*.json")
	if err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}
