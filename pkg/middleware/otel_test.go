package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/partstream/partstream/pkg/blob"
	"github.com/partstream/partstream/pkg/upload"
)

// Without a configured tracer provider the global tracer is a no-op, so
// these tests pin down pass-through behavior: results, errors, and filter
// decisions must be unaffected by tracing.

func TestOpenTelemetry_PassesResultThrough(t *testing.T) {
	stored := blob.NewMemory("a.txt", "text/plain", []byte("x"))
	h := OpenTelemetry()(func(ctx context.Context, part upload.Part) (blob.Blob, error) {
		if ctx == nil {
			t.Fatal("handler received nil context")
		}
		return stored, nil
	})

	b, err := h(context.Background(), upload.Part{Name: "doc"})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if b != blob.Blob(stored) {
		t.Fatal("blob not passed through")
	}
}

func TestOpenTelemetry_PassesErrorThrough(t *testing.T) {
	wantErr := errors.New("boom")
	h := OpenTelemetry()(func(context.Context, upload.Part) (blob.Blob, error) {
		return nil, wantErr
	})

	_, err := h(context.Background(), upload.Part{Name: "doc"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestOpenTelemetry_FilterSkipsTracing(t *testing.T) {
	var called bool
	h := OpenTelemetry(
		WithTraceFilter(func(info upload.PartInfo) bool {
			called = true
			return info.Name == "traced"
		}),
	)(func(context.Context, upload.Part) (blob.Blob, error) {
		return nil, nil
	})

	if _, err := h(context.Background(), upload.Part{Name: "untraced"}); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !called {
		t.Fatal("filter was not consulted")
	}
}
