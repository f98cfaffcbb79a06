package upload

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/partstream/partstream/pkg/blob"
)

// maxValueBytes caps a single non-file form value during parsing.
const maxValueBytes = 1 << 20

// FormData holds the processed parts of a multipart submission: plain
// values and stored files, in arrival order per field. Skipped parts are
// simply absent.
type FormData struct {
	values map[string][]string
	files  map[string][]blob.Blob
	order  []FileField
}

// FileField pairs a stored file with the field it arrived under.
type FileField struct {
	Field string
	File  blob.Blob
}

// Value returns the first plain value for the field, or "".
func (fd *FormData) Value(name string) string {
	if vs := fd.values[name]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Values returns all plain values for the field.
func (fd *FormData) Values(name string) []string {
	return fd.values[name]
}

// File returns the first stored file for the field, or nil if the field
// was absent or skipped.
func (fd *FormData) File(name string) blob.Blob {
	if fs := fd.files[name]; len(fs) > 0 {
		return fs[0]
	}
	return nil
}

// Files returns all stored files for the field.
func (fd *FormData) Files(name string) []blob.Blob {
	return fd.files[name]
}

// FileFields returns every stored file in arrival order.
func (fd *FormData) FileFields() []FileField {
	return fd.order
}

// ParseMultipartForm walks the request's multipart body part by part,
// without buffering it. Parts carrying a filename are passed to the
// Handler; parts without one are collected as plain string values.
//
// The Handler is invoked once per file part, sequentially, in body order.
// A handler error aborts the parse; parts already stored are not cleaned
// up (their lifetime belongs to the caller).
func ParseMultipartForm(ctx context.Context, r *http.Request, h Handler) (*FormData, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}

	fd := &FormData{
		values: make(map[string][]string),
		files:  make(map[string][]blob.Blob),
	}

	for {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}

		p, err := mr.NextPart()
		if err == io.EOF {
			return fd, nil
		}
		if err != nil {
			return nil, err
		}

		name := p.FormName()
		if name == "" {
			p.Close()
			continue
		}

		if p.FileName() == "" {
			data, err := io.ReadAll(io.LimitReader(p, maxValueBytes+1))
			p.Close()
			if err != nil {
				return nil, err
			}
			if len(data) > maxValueBytes {
				return nil, fmt.Errorf("upload: form value %q too large", name)
			}
			fd.values[name] = append(fd.values[name], string(data))
			continue
		}

		b, err := h(ctx, Part{
			Name:        name,
			Filename:    p.FileName(),
			ContentType: p.Header.Get("Content-Type"),
			Data:        p,
		})
		p.Close()
		if err != nil {
			return nil, err
		}
		if b != nil {
			fd.files[name] = append(fd.files[name], b)
			fd.order = append(fd.order, FileField{Field: name, File: b})
		}
	}
}
