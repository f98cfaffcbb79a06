// Package blob defines the file-like value returned by upload handlers.
//
// A Blob is a lazy, re-readable view over stored bytes. Reads never share
// state: every ReadAll, Open, or Text call opens the backing storage fresh,
// so a Blob holds no file descriptor between calls and can be read any
// number of times. Slicing produces a new Blob that narrows the readable
// byte range without copying data.
package blob

import "io"

// Blob is a named, typed, sized view over stored bytes.
//
// Implementations must be immutable: Slice returns a new value and never
// mutates the receiver or the underlying storage.
type Blob interface {
	// Name is the base name of the stored value (e.g. "upload_123.png").
	Name() string

	// Size is the number of readable bytes. For a sliced blob this is the
	// window length, not the size of the backing storage.
	Size() int64

	// ContentType is the MIME type associated with the blob.
	ContentType() string

	// Slice returns a view over bytes [start, end) of this blob.
	// A negative end means "through the end of the blob"; out-of-range
	// bounds are clamped. Slice(0, -1) is the identity view.
	Slice(start, end int64) Blob

	// SliceType is Slice with a content type override for the new view.
	SliceType(start, end int64, contentType string) Blob

	// ReadAll reads the full (windowed) contents into memory.
	ReadAll() ([]byte, error)

	// Open returns a fresh single-pass reader over the (windowed) contents.
	// The caller must close it.
	Open() (io.ReadCloser, error)

	// Text reads the full contents and decodes them as UTF-8 text.
	// The decode is best-effort; invalid bytes are preserved as-is.
	Text() (string, error)
}

// ClampWindow normalizes a requested [start, end) range against a blob of
// the given size. A negative end selects the end of the blob. Implementations
// backed by external storage can use it to share Slice semantics.
func ClampWindow(start, end, size int64) (int64, int64) {
	if start < 0 {
		start = 0
	}
	if start > size {
		start = size
	}
	if end < 0 || end > size {
		end = size
	}
	if end < start {
		end = start
	}
	return start, end
}
