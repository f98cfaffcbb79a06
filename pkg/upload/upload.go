package upload

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/partstream/partstream/pkg/blob"
)

// ErrTooLarge is returned when a part exceeds its size limit.
// Handlers return it wrapped in a *SizeError; test with errors.Is.
var ErrTooLarge = errors.New("upload: file too large")

// DefaultMaxFileSize is the per-part byte ceiling applied when a handler
// config leaves MaxFileSize unset.
const DefaultMaxFileSize int64 = 3_000_000

// Part is one named field of a multipart submission.
//
// Data is a single-pass stream: it can be consumed exactly once and is not
// restartable. Filename and ContentType are client-supplied and unvalidated.
type Part struct {
	// Name is the field identifier. It is not unique within a submission.
	Name string

	// Filename is the client-supplied file name. May be empty.
	Filename string

	// ContentType is the client-supplied MIME type.
	ContentType string

	// Data is the part's byte stream.
	Data io.Reader
}

// Info returns the part's metadata without the stream.
func (p Part) Info() PartInfo {
	return PartInfo{Name: p.Name, Filename: p.Filename, ContentType: p.ContentType}
}

// PartInfo is the metadata triple passed to filters and path resolvers.
type PartInfo struct {
	Name        string
	Filename    string
	ContentType string
}

// Handler processes one multipart part.
//
// A Handler returns the stored blob, or (nil, nil) to skip the part. A
// skipped part is absent from the processed result, which is not an error.
// Handlers consume part.Data at most once.
type Handler func(ctx context.Context, part Part) (blob.Blob, error)

// Filter decides whether a part should be accepted at all. Returning false
// skips the part before any storage access. The context allows filters
// that consult external systems.
type Filter func(ctx context.Context, info PartInfo) (bool, error)

// Compose returns a Handler that tries each handler in order and keeps the
// first stored result. Handlers that skip fall through to the next one;
// errors abort immediately.
//
// Because part.Data is single-pass, a composed handler must decline parts
// it does not want via its Filter (or path resolvers) without reading Data.
func Compose(handlers ...Handler) Handler {
	return func(ctx context.Context, part Part) (blob.Blob, error) {
		for _, h := range handlers {
			b, err := h(ctx, part)
			if err != nil {
				return nil, err
			}
			if b != nil {
				return b, nil
			}
		}
		return nil, nil
	}
}

// SizeError reports a part whose cumulative size exceeded the configured
// limit. It matches ErrTooLarge under errors.Is.
type SizeError struct {
	// Field is the name of the offending part.
	Field string

	// Limit is the configured byte ceiling.
	Limit int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("upload: field %q exceeded upload size of %d bytes", e.Field, e.Limit)
}

// Is reports whether target is ErrTooLarge.
func (e *SizeError) Is(target error) bool {
	return target == ErrTooLarge
}
