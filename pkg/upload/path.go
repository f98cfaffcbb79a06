package upload

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PathResolver computes a path from a part's metadata. Returning an empty
// path skips the part.
type PathResolver func(ctx context.Context, info PartInfo) (string, error)

// PathSpec is either a fixed path or a resolver that computes one per part.
// The zero value is unset, which lets handler defaults apply.
type PathSpec struct {
	path string
	fn   PathResolver
}

// Fixed returns a PathSpec that always yields the given path.
func Fixed(path string) PathSpec {
	return PathSpec{path: path}
}

// ResolveWith returns a PathSpec that computes the path per part.
func ResolveWith(fn PathResolver) PathSpec {
	return PathSpec{fn: fn}
}

func (s PathSpec) isZero() bool {
	return s.path == "" && s.fn == nil
}

// resolve yields the path for a part. An empty result means skip.
func (s PathSpec) resolve(ctx context.Context, info PartInfo) (string, error) {
	if s.fn != nil {
		return s.fn(ctx, info)
	}
	return s.path, nil
}

// randomFileName synthesizes a destination name when no File spec is
// configured. The random value has no uniqueness guarantee; collisions are
// handled by conflict avoidance on the full path.
func randomFileName(_ context.Context, info PartInfo) (string, error) {
	return fmt.Sprintf("upload_%d%s", rand.Uint32(), filepath.Ext(info.Filename)), nil
}

// deconflict probes the filesystem for path and, while it exists, derives a
// new candidate by inserting a nanosecond timestamp before the extension.
// The probe and the later create are not atomic: two concurrent uploads can
// resolve the same candidate and race, last writer winning. Callers that
// need stronger guarantees should supply distinguishing path resolvers.
func deconflict(path string) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)

	candidate := path
	for {
		// Any stat failure counts as free: retrying would yield the same
		// error forever (ENOTDIR, EACCES), and the create reports the
		// real problem.
		if _, err := os.Stat(candidate); err != nil {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d%s", stem, time.Now().UnixNano(), ext)
	}
}
