package upload

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestPathSpec_FixedAndResolver(t *testing.T) {
	info := PartInfo{Name: "f", Filename: "a.txt", ContentType: "text/plain"}

	fixed := Fixed("/srv/uploads")
	got, err := fixed.resolve(context.Background(), info)
	if err != nil || got != "/srv/uploads" {
		t.Fatalf("resolve = (%q, %v)", got, err)
	}

	dynamic := ResolveWith(func(_ context.Context, info PartInfo) (string, error) {
		return "by-type/" + info.ContentType, nil
	})
	got, err = dynamic.resolve(context.Background(), info)
	if err != nil || got != "by-type/text/plain" {
		t.Fatalf("resolve = (%q, %v)", got, err)
	}

	var zero PathSpec
	if !zero.isZero() {
		t.Fatal("zero PathSpec should report isZero")
	}
	if fixed.isZero() || dynamic.isZero() {
		t.Fatal("configured PathSpec should not report isZero")
	}
}

func TestRandomFileName_KeepsExtension(t *testing.T) {
	name, err := randomFileName(context.Background(), PartInfo{Filename: "photo.jpeg"})
	if err != nil {
		t.Fatalf("randomFileName: %v", err)
	}
	if !regexp.MustCompile(`^upload_\d+\.jpeg$`).MatchString(name) {
		t.Fatalf("name = %q", name)
	}

	bare, err := randomFileName(context.Background(), PartInfo{Filename: "noext"})
	if err != nil {
		t.Fatalf("randomFileName: %v", err)
	}
	if strings.Contains(bare, ".") {
		t.Fatalf("name = %q, want no extension", bare)
	}
}

func TestDeconflict(t *testing.T) {
	dir := t.TempDir()
	candidate := filepath.Join(dir, "pic.png")

	// No conflict: candidate is returned untouched.
	if got := deconflict(candidate); got != candidate {
		t.Fatalf("deconflict = %q, want %q", got, candidate)
	}

	if err := os.WriteFile(candidate, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got := deconflict(candidate)
	if got == candidate {
		t.Fatal("deconflict returned an existing path")
	}
	if filepath.Ext(got) != ".png" {
		t.Fatalf("deconflict = %q, extension not preserved", got)
	}
	if !strings.HasPrefix(filepath.Base(got), "pic-") {
		t.Fatalf("deconflict = %q, want timestamp inserted before extension", got)
	}
	if _, err := os.Stat(got); !os.IsNotExist(err) {
		t.Fatalf("deconflict result should not exist; stat err=%v", err)
	}
}

func TestDeconflict_ReturnsOnUnstatablePath(t *testing.T) {
	dir := t.TempDir()

	// A regular file where a directory is expected makes every stat of a
	// candidate underneath it fail with ENOTDIR, never ENOENT.
	blocker := filepath.Join(dir, "notadir")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	candidate := filepath.Join(blocker, "pic.png")
	done := make(chan string, 1)
	go func() { done <- deconflict(candidate) }()

	select {
	case got := <-done:
		if got != candidate {
			t.Fatalf("deconflict = %q, want %q", got, candidate)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("deconflict did not return for an unstatable path")
	}
}
