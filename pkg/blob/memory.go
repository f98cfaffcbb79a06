package blob

import (
	"bytes"
	"io"
)

// Memory is a Blob held entirely in memory.
type Memory struct {
	name        string
	contentType string
	data        []byte
}

// NewMemory returns a Blob over the given bytes. The slice is retained,
// not copied; callers must not mutate it afterwards.
func NewMemory(name, contentType string, data []byte) *Memory {
	return &Memory{name: name, contentType: contentType, data: data}
}

// Name returns the name given at construction.
func (m *Memory) Name() string { return m.name }

// Size returns the number of bytes held.
func (m *Memory) Size() int64 { return int64(len(m.data)) }

// ContentType returns the MIME type recorded for the blob.
func (m *Memory) ContentType() string { return m.contentType }

// Slice returns a view over bytes [start, end). The underlying array is
// shared, not copied.
func (m *Memory) Slice(start, end int64) Blob {
	return m.SliceType(start, end, m.contentType)
}

// SliceType is Slice with a content type override.
func (m *Memory) SliceType(start, end int64, contentType string) Blob {
	start, end = ClampWindow(start, end, int64(len(m.data)))
	return &Memory{name: m.name, contentType: contentType, data: m.data[start:end]}
}

// Open returns a reader over the held bytes.
func (m *Memory) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.data)), nil
}

// ReadAll returns a copy of the held bytes.
func (m *Memory) ReadAll() ([]byte, error) {
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out, nil
}

// Text returns the held bytes as a string.
func (m *Memory) Text() (string, error) {
	return string(m.data), nil
}
