package blob

import "errors"

// ErrRead is returned when a blob's backing storage is missing or
// unreadable at read time. Use errors.Is to test for it.
var ErrRead = errors.New("blob: read failed")

// ReadError reports a failed read of a blob's backing storage.
// It is raised lazily, when a read is attempted, not at construction.
type ReadError struct {
	// Path identifies the backing storage (file path or object key).
	Path string

	// Err is the underlying error.
	Err error
}

func (e *ReadError) Error() string {
	return "blob: read " + e.Path + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ReadError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrRead.
func (e *ReadError) Is(target error) bool {
	return target == ErrRead
}
