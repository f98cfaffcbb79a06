package blob_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/partstream/partstream/pkg/blob"
)

func TestMemory_Accessors(t *testing.T) {
	m := blob.NewMemory("note.txt", "text/plain", []byte("hello"))

	if m.Name() != "note.txt" {
		t.Errorf("Name() = %q, want %q", m.Name(), "note.txt")
	}
	if m.Size() != 5 {
		t.Errorf("Size() = %d, want 5", m.Size())
	}
	if m.ContentType() != "text/plain" {
		t.Errorf("ContentType() = %q, want %q", m.ContentType(), "text/plain")
	}

	text, err := m.Text()
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "hello" {
		t.Fatalf("Text = %q, want %q", text, "hello")
	}
}

func TestMemory_ReadAllReturnsCopy(t *testing.T) {
	m := blob.NewMemory("x", "application/octet-stream", []byte("abc"))

	data, err := m.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	data[0] = 'Z'

	again, err := m.ReadAll()
	if err != nil {
		t.Fatalf("second ReadAll: %v", err)
	}
	if string(again) != "abc" {
		t.Fatalf("blob mutated through ReadAll result: %q", again)
	}
}

func TestMemory_SliceAndOpen(t *testing.T) {
	m := blob.NewMemory("digits", "text/plain", []byte("0123456789"))

	s := m.Slice(3, 7)
	if s.Size() != 4 {
		t.Fatalf("Size() = %d, want 4", s.Size())
	}

	r, err := s.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(data, []byte("3456")) {
		t.Fatalf("data = %q, want %q", data, "3456")
	}

	full, err := m.Slice(0, -1).ReadAll()
	if err != nil {
		t.Fatalf("full slice ReadAll: %v", err)
	}
	if string(full) != "0123456789" {
		t.Fatalf("full slice = %q", full)
	}
}
