package git

import "context"

// RangeResolver resolves a range specification to a reference commit and
// touched path set.
type RangeResolver interface {
	Resolve(ctx context.Context, spec RangeSpec) (*Resolution, error)
}

// MetadataCollector lists the commits of a range with their changed files.
type MetadataCollector interface {
	Collect(ctx context.Context, spec RangeSpec) ([]CommitRecord, error)
}

// Compile-time interface conformance checks.
var (
	_ RangeResolver     = (*Resolver)(nil)
	_ MetadataCollector = (*Collector)(nil)
	_ BlobSource        = (*Runner)(nil)
	_ BlobSource        = (*GoGitBlobSource)(nil)
	_ BlobSource        = (*MockBlobSource)(nil)
)
