package domain

import (
	"context"
	"io"
	"net/http"
)

// FetchResponse is a streamed response from the remote asset host.
// Callers must close Body.
type FetchResponse struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// Fetcher retrieves asset bytes from a URL
type Fetcher interface {
	// Fetch issues a GET request. A non-nil error means no response was received.
	Fetch(ctx context.Context, url string) (*FetchResponse, error)
}

// Filesystem defines the disk primitives the asset manager relies on
type Filesystem interface {
	// MkdirAll creates a directory and its parents. An existing directory is not an error.
	MkdirAll(path string) error

	// Exists reports whether path exists
	Exists(path string) (bool, error)

	// WriteAtomic streams r into path so that readers never observe a partial file
	WriteAtomic(path string, r io.Reader) (int64, error)

	// RemoveAll removes path and any children. A missing path is not an error.
	RemoveAll(path string) error
}

// EventType identifies what happened to an asset
type EventType string

const (
	EventDownloaded  EventType = "DOWNLOADED"
	EventDeleted     EventType = "DELETED"
	EventUnpublished EventType = "UNPUBLISHED"
)

// AssetEvent describes a completed lifecycle operation
type AssetEvent struct {
	Type         EventType
	Asset        Asset
	Path         string // absolute path of the file or folder affected
	RelativePath string // Path relative to the storage base directory
	Bytes        int64  // bytes written; zero for removals and skipped downloads
}

// AssetObserver is notified after lifecycle operations succeed.
// Observer errors are logged and never fail the operation.
type AssetObserver interface {
	OnStored(ctx context.Context, event AssetEvent) error
	OnRemoved(ctx context.Context, event AssetEvent) error
}
