package upload

import (
	"bytes"
	"context"
	"io"

	"github.com/partstream/partstream/pkg/blob"
)

// MemoryConfig configures an in-memory Handler.
type MemoryConfig struct {
	// MaxFileSize is the cumulative byte ceiling per part.
	// Default: DefaultMaxFileSize.
	MaxFileSize int64

	// Filter, if set, decides whether a part is accepted.
	Filter Filter
}

// NewMemoryHandler returns a Handler that buffers each part in memory and
// returns a *blob.Memory over the bytes. The blob's name is the part's
// filename, falling back to the field name.
//
// Suitable for small parts only; the whole part is held in memory up to
// MaxFileSize.
func NewMemoryHandler(cfg MemoryConfig) Handler {
	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	return func(ctx context.Context, part Part) (blob.Blob, error) {
		if cfg.Filter != nil {
			ok, err := cfg.Filter(ctx, part.Info())
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, nil
			}
		}

		// Read one byte past the limit to detect overflow.
		var buf bytes.Buffer
		n, err := io.Copy(&buf, io.LimitReader(part.Data, maxSize+1))
		if err != nil {
			return nil, err
		}
		if n > maxSize {
			return nil, &SizeError{Field: part.Name, Limit: maxSize}
		}

		name := part.Filename
		if name == "" {
			name = part.Name
		}
		return blob.NewMemory(name, part.ContentType, buf.Bytes()), nil
	}
}
