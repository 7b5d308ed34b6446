package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAsset is returned when an asset lacks fields an operation requires.
	ErrInvalidAsset = errors.New("invalid asset")

	// ErrInvalidPattern is returned when a path pattern cannot be compiled into a usable layout.
	ErrInvalidPattern = errors.New("invalid path pattern")

	// ErrUnsafeRemoval is returned when a removal would escape or wipe the storage root.
	ErrUnsafeRemoval = errors.New("unsafe removal path")
)

// MissingPlaceholderError means a pattern key had no value on the asset.
type MissingPlaceholderError struct {
	Key      string
	AssetUID string
}

func (e *MissingPlaceholderError) Error() string {
	return fmt.Sprintf("the key %q did not exist on asset %q", e.Key, e.AssetUID)
}

// InvalidSegmentError means a placeholder value cannot be used as a path component.
type InvalidSegmentError struct {
	Key      string
	Value    string
	AssetUID string
}

func (e *InvalidSegmentError) Error() string {
	return fmt.Sprintf("value %q for key %q on asset %q is not a valid path component", e.Value, e.Key, e.AssetUID)
}

// RemoteFetchError reports a non-200 response or a transport failure.
// StatusCode is zero for transport failures.
type RemoteFetchError struct {
	AssetUID   string
	URL        string
	StatusCode int
	Err        error
}

func (e *RemoteFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("asset %q download failed: %s responded with status %d", e.AssetUID, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("asset %q download failed: %v", e.AssetUID, e.Err)
}

func (e *RemoteFetchError) Unwrap() error {
	return e.Err
}

// FilesystemError wraps a failed directory, write or remove operation.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// IsClientError reports whether err was caused by the caller's input
// rather than by the network or the local disk.
func IsClientError(err error) bool {
	var missing *MissingPlaceholderError
	var invalid *InvalidSegmentError
	return errors.As(err, &missing) ||
		errors.As(err, &invalid) ||
		errors.Is(err, ErrInvalidAsset) ||
		errors.Is(err, ErrUnsafeRemoval)
}
