package blob

import (
	"io"
	"os"
	"path/filepath"
)

// DiskFile is a Blob backed by a file on the local filesystem.
//
// A DiskFile is an immutable value: it records a path, a byte window, and a
// content type, and opens the file fresh on every read. The backing file must
// exist and contain at least offset+size bytes for reads to succeed; the
// DiskFile itself never creates, modifies, or deletes it.
type DiskFile struct {
	path        string
	name        string
	contentType string

	// offset and size delimit the readable window within the backing file.
	// For an unsliced file offset is 0 and size is the full file length.
	offset int64
	size   int64
}

// NewDiskFile returns a Blob over the file at path, which is expected to
// contain exactly size bytes. The blob's name is the base name of path.
func NewDiskFile(path string, size int64, contentType string) *DiskFile {
	return &DiskFile{
		path:        path,
		name:        filepath.Base(path),
		contentType: contentType,
		size:        size,
	}
}

// Name returns the base name of the backing file.
func (f *DiskFile) Name() string { return f.name }

// Size returns the window length in bytes.
func (f *DiskFile) Size() int64 { return f.size }

// ContentType returns the MIME type recorded for the file.
func (f *DiskFile) ContentType() string { return f.contentType }

// Path returns the location of the backing file on disk.
func (f *DiskFile) Path() string { return f.path }

// Slice returns a view over bytes [start, end) of this file's window.
// No data is read or copied; the new value shares the backing path.
func (f *DiskFile) Slice(start, end int64) Blob {
	return f.SliceType(start, end, f.contentType)
}

// SliceType is Slice with a content type override.
func (f *DiskFile) SliceType(start, end int64, contentType string) Blob {
	start, end = ClampWindow(start, end, f.size)
	return &DiskFile{
		path:        f.path,
		name:        f.name,
		contentType: contentType,
		offset:      f.offset + start,
		size:        end - start,
	}
}

// Open opens the backing file and returns a reader restricted to the
// window. Each call opens an independent descriptor; the caller owns it.
func (f *DiskFile) Open() (io.ReadCloser, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, &ReadError{Path: f.path, Err: err}
	}
	return &sectionReadCloser{
		SectionReader: io.NewSectionReader(file, f.offset, f.size),
		file:          file,
	}, nil
}

// ReadAll reads the windowed contents into memory via a fresh descriptor.
func (f *DiskFile) ReadAll() ([]byte, error) {
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ReadError{Path: f.path, Err: err}
	}
	return data, nil
}

// Text reads the windowed contents and returns them as a string.
func (f *DiskFile) Text() (string, error) {
	data, err := f.ReadAll()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// sectionReadCloser couples a SectionReader window with the descriptor it
// reads from, so closing the reader releases the file.
type sectionReadCloser struct {
	*io.SectionReader
	file *os.File
}

func (r *sectionReadCloser) Close() error {
	return r.file.Close()
}
