package git

import (
	"context"
	"fmt"
	"sync"
)

// MockBlobSource is a test double for BlobSource.
// Paths missing from Blobs yield ErrBlobNotFound.
type MockBlobSource struct {
	Blobs map[string][]byte
	// Errors overrides the result for specific paths.
	Errors map[string]error
	// OnFetch, if set, is called after every fetch with the running count.
	OnFetch func(path string, n int)

	mu      sync.Mutex
	fetched []string
}

// NewMockBlobSource creates a MockBlobSource serving the given contents.
func NewMockBlobSource(blobs map[string][]byte) *MockBlobSource {
	return &MockBlobSource{Blobs: blobs, Errors: map[string]error{}}
}

// Blob returns the predefined content for path, ignoring rev.
func (m *MockBlobSource) Blob(_ context.Context, rev, path string) ([]byte, error) {
	m.mu.Lock()
	m.fetched = append(m.fetched, path)
	n := len(m.fetched)
	m.mu.Unlock()

	if m.OnFetch != nil {
		defer m.OnFetch(path, n)
	}
	if err, ok := m.Errors[path]; ok {
		return nil, err
	}
	data, ok := m.Blobs[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s at %s", ErrBlobNotFound, path, ShortSHA(rev, 10))
	}
	return data, nil
}

// Fetched returns the paths requested so far, in order.
func (m *MockBlobSource) Fetched() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.fetched...)
}
