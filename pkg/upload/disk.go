package upload

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/partstream/partstream/pkg/blob"
)

// DiskConfig configures a disk-backed Handler.
type DiskConfig struct {
	// Directory is the destination directory. It may be fixed or resolved
	// per part; an empty resolution skips the part.
	// Default: the system temp directory.
	Directory PathSpec

	// File is the destination path relative to Directory.
	// Default: "upload_<random>" with the original filename's extension.
	File PathSpec

	// Overwrite allows replacing an existing file at the resolved path.
	// When false (the default), a timestamp suffix is inserted before the
	// extension until the path is unique, so no existing file is clobbered.
	Overwrite bool

	// MaxFileSize is the cumulative byte ceiling per part.
	// Default: DefaultMaxFileSize.
	MaxFileSize int64

	// Filter, if set, decides whether a part is accepted. Rejected parts
	// are skipped before any filesystem access.
	Filter Filter

	// KeepPartial leaves the partially written file on disk when the copy
	// fails for a reason other than the size limit (reader error, context
	// cancellation). Size-limit partials are always deleted.
	KeepPartial bool
}

// NewDiskHandler returns a Handler that streams each part to a file and
// returns a *blob.DiskFile over the result.
//
// The destination is resolved per part from cfg.Directory and cfg.File,
// the parent directory chain is created if absent, and the part's stream
// is copied under cfg.MaxFileSize. Oversized parts fail with a *SizeError
// and leave no file behind.
func NewDiskHandler(cfg DiskConfig) Handler {
	dir := cfg.Directory
	if dir.isZero() {
		dir = ResolveWith(func(context.Context, PartInfo) (string, error) {
			return os.TempDir(), nil
		})
	}

	file := cfg.File
	if file.isZero() {
		file = ResolveWith(randomFileName)
	}

	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	return func(ctx context.Context, part Part) (blob.Blob, error) {
		info := part.Info()

		if cfg.Filter != nil {
			ok, err := cfg.Filter(ctx, info)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, nil
			}
		}

		dirPath, err := dir.resolve(ctx, info)
		if err != nil {
			return nil, err
		}
		if dirPath == "" {
			return nil, nil
		}
		dirPath, err = filepath.Abs(dirPath)
		if err != nil {
			return nil, err
		}

		relPath, err := file.resolve(ctx, info)
		if err != nil {
			return nil, err
		}
		if relPath == "" {
			return nil, nil
		}

		dest := filepath.Join(dirPath, relPath)
		if !cfg.Overwrite {
			dest = deconflict(dest)
		}

		// Directory creation failures are not surfaced here; if the
		// directory is truly absent the create below reports it.
		_ = os.MkdirAll(filepath.Dir(dest), 0755)

		written, err := copyBounded(ctx, dest, part, maxSize, cfg.KeepPartial)
		if err != nil {
			return nil, err
		}

		return blob.NewDiskFile(dest, written, part.ContentType), nil
	}
}

// copyBounded streams part.Data to dest, failing with a *SizeError once the
// cumulative total exceeds limit. The chunk that crosses the threshold is
// never written. The destination handle is closed exactly once on every
// exit path, and failed copies remove the partial file (always for the
// size-limit path, best-effort; otherwise unless keepPartial is set).
func copyBounded(ctx context.Context, dest string, part Part, limit int64, keepPartial bool) (written int64, err error) {
	f, err := os.Create(dest)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err == nil {
			return
		}
		if errors.Is(err, ErrTooLarge) || !keepPartial {
			os.Remove(dest)
		}
	}()

	buf := make([]byte, 32*1024)
	for {
		if cerr := ctx.Err(); cerr != nil {
			return 0, cerr
		}

		n, rerr := part.Data.Read(buf)
		if n > 0 {
			if written+int64(n) > limit {
				return 0, &SizeError{Field: part.Name, Limit: limit}
			}
			if _, werr := f.Write(buf[:n]); werr != nil {
				return 0, werr
			}
			written += int64(n)
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return 0, rerr
		}
	}
}
