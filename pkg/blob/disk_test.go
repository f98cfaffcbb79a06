package blob_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/partstream/partstream/pkg/blob"
)

func writeTestFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDiskFile_ReadAllRoundTrip(t *testing.T) {
	content := []byte("the quick brown fox")
	path := writeTestFile(t, "data.txt", content)

	f := blob.NewDiskFile(path, int64(len(content)), "text/plain")

	if f.Name() != "data.txt" {
		t.Errorf("Name() = %q, want %q", f.Name(), "data.txt")
	}
	if f.Size() != int64(len(content)) {
		t.Errorf("Size() = %d, want %d", f.Size(), len(content))
	}
	if f.ContentType() != "text/plain" {
		t.Errorf("ContentType() = %q, want %q", f.ContentType(), "text/plain")
	}

	data, err := f.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Fatalf("ReadAll = %q, want %q", data, content)
	}

	// Reads must be repeatable: no cursor survives across calls.
	again, err := f.ReadAll()
	if err != nil {
		t.Fatalf("second ReadAll: %v", err)
	}
	if !bytes.Equal(again, content) {
		t.Fatalf("second ReadAll = %q, want %q", again, content)
	}
}

func TestDiskFile_SliceWindows(t *testing.T) {
	content := []byte("0123456789")
	path := writeTestFile(t, "digits.bin", content)
	f := blob.NewDiskFile(path, 10, "application/octet-stream")

	tests := []struct {
		name       string
		start, end int64
		want       string
	}{
		{"middle", 2, 5, "234"},
		{"full", 0, 10, "0123456789"},
		{"negative end means full", 0, -1, "0123456789"},
		{"empty", 4, 4, ""},
		{"end clamped", 8, 100, "89"},
		{"start past end clamped", 7, 3, ""},
		{"negative start clamped", -5, 3, "012"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := f.Slice(tt.start, tt.end)
			data, err := s.ReadAll()
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if string(data) != tt.want {
				t.Fatalf("ReadAll = %q, want %q", data, tt.want)
			}
			if s.Size() != int64(len(tt.want)) {
				t.Fatalf("Size() = %d, want %d", s.Size(), len(tt.want))
			}
		})
	}
}

func TestDiskFile_SliceOfSlice(t *testing.T) {
	content := []byte("abcdefghij")
	path := writeTestFile(t, "nested.bin", content)
	f := blob.NewDiskFile(path, 10, "application/octet-stream")

	// [2,8) = "cdefgh", then [1,4) of that = "def".
	inner := f.Slice(2, 8).Slice(1, 4)
	data, err := inner.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "def" {
		t.Fatalf("ReadAll = %q, want %q", data, "def")
	}
}

func TestDiskFile_SliceDoesNotTouchOriginal(t *testing.T) {
	content := []byte("hello world")
	path := writeTestFile(t, "orig.txt", content)
	f := blob.NewDiskFile(path, int64(len(content)), "text/plain")

	_ = f.Slice(0, 5)
	_ = f.SliceType(6, 11, "text/csv")

	if f.Size() != int64(len(content)) {
		t.Fatalf("original Size() changed to %d", f.Size())
	}
	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(onDisk, content) {
		t.Fatal("backing file was modified by slicing")
	}
}

func TestDiskFile_SliceTypeOverridesContentType(t *testing.T) {
	path := writeTestFile(t, "x.bin", []byte("xxxx"))
	f := blob.NewDiskFile(path, 4, "application/octet-stream")

	s := f.SliceType(0, 2, "text/plain")
	if s.ContentType() != "text/plain" {
		t.Fatalf("ContentType() = %q, want %q", s.ContentType(), "text/plain")
	}
	if f.ContentType() != "application/octet-stream" {
		t.Fatalf("original ContentType() = %q, want unchanged", f.ContentType())
	}
}

func TestDiskFile_OpenIndependentReaders(t *testing.T) {
	content := []byte("independent readers")
	path := writeTestFile(t, "r.txt", content)
	f := blob.NewDiskFile(path, int64(len(content)), "text/plain")

	r1, err := f.Open()
	if err != nil {
		t.Fatalf("Open r1: %v", err)
	}
	defer r1.Close()
	r2, err := f.Open()
	if err != nil {
		t.Fatalf("Open r2: %v", err)
	}
	defer r2.Close()

	// Consume r1 fully; r2 must still read from the start.
	if _, err := io.ReadAll(r1); err != nil {
		t.Fatalf("ReadAll r1: %v", err)
	}
	data, err := io.ReadAll(r2)
	if err != nil {
		t.Fatalf("ReadAll r2: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Fatalf("r2 data = %q, want %q", data, content)
	}
}

func TestDiskFile_MissingBackingFileFailsLazily(t *testing.T) {
	// Construction must not touch the filesystem.
	f := blob.NewDiskFile(filepath.Join(t.TempDir(), "gone.bin"), 8, "application/octet-stream")

	_, err := f.ReadAll()
	if err == nil {
		t.Fatal("expected ReadAll to fail for missing file")
	}
	if !errors.Is(err, blob.ErrRead) {
		t.Fatalf("err = %v, want ErrRead", err)
	}
	var readErr *blob.ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("err = %T, want *blob.ReadError", err)
	}
	if !os.IsNotExist(readErr.Err) {
		t.Fatalf("underlying err = %v, want not-exist", readErr.Err)
	}

	if _, err := f.Open(); !errors.Is(err, blob.ErrRead) {
		t.Fatalf("Open err = %v, want ErrRead", err)
	}
	if _, err := f.Text(); !errors.Is(err, blob.ErrRead) {
		t.Fatalf("Text err = %v, want ErrRead", err)
	}
}

func TestDiskFile_TextOnBinaryPayload(t *testing.T) {
	content := []byte{0x89, 'P', 'N', 'G', 0x00, 0xFF}
	path := writeTestFile(t, "bin.png", content)
	f := blob.NewDiskFile(path, int64(len(content)), "image/png")

	text, err := f.Text()
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != string(content) {
		t.Fatalf("Text = %q, want raw bytes preserved", text)
	}
}
