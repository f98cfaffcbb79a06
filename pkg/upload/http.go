package upload

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/partstream/partstream/pkg/blob"
)

// HTTPOption configures HTTPHandler.
type HTTPOption func(*httpConfig)

type httpConfig struct {
	maxRequestSize int64
	logger         *slog.Logger
	field          string
}

// WithMaxRequestSize caps the whole request body, multipart overhead
// included. Default: 32MB.
func WithMaxRequestSize(n int64) HTTPOption {
	return func(c *httpConfig) {
		c.maxRequestSize = n
	}
}

// WithLogger sets the logger for upload failures. Default: slog.Default().
func WithLogger(l *slog.Logger) HTTPOption {
	return func(c *httpConfig) {
		c.logger = l
	}
}

// WithField restricts the endpoint to a single field name; parts under any
// other name are skipped.
func WithField(name string) HTTPOption {
	return func(c *httpConfig) {
		c.field = name
	}
}

// uploadedFile is the JSON shape for one stored file.
type uploadedFile struct {
	Field string `json:"field"`
	Name  string `json:"name"`
	Size  int64  `json:"size"`
	Type  string `json:"type"`
}

// HTTPHandler returns an http.Handler for multipart uploads.
// Mount it on your router:
//
//	r.Post("/upload", upload.HTTPHandler(handler))
//
// The endpoint accepts POST only, streams each file part through the
// Handler, and responds with JSON describing the stored files:
//
//	{"files": [{"field": "avatar", "name": "upload_123.png", "size": 12, "type": "image/png"}]}
//
// Size-limit violations (the request cap or the handler's own limit) map
// to 413; malformed multipart bodies map to 400.
func HTTPHandler(h Handler, opts ...HTTPOption) http.Handler {
	cfg := httpConfig{
		maxRequestSize: 32 << 20,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	handler := h
	if cfg.field != "" {
		field := cfg.field
		handler = func(ctx context.Context, part Part) (blob.Blob, error) {
			if part.Name != field {
				return nil, nil
			}
			return h(ctx, part)
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		// Cap the body before any parsing happens.
		r.Body = http.MaxBytesReader(w, r.Body, cfg.maxRequestSize)

		fd, err := ParseMultipartForm(r.Context(), r, handler)
		if err != nil {
			writeUploadError(w, r, err, cfg.logger)
			return
		}

		files := []uploadedFile{}
		for _, ff := range fd.FileFields() {
			files = append(files, uploadedFile{
				Field: ff.Field,
				Name:  ff.File.Name(),
				Size:  ff.File.Size(),
				Type:  ff.File.ContentType(),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"files": files})
	})
}

func writeUploadError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	// The MaxBytesReader error can reach us as a typed error or, through
	// the multipart reader, as its bare message.
	var maxErr *http.MaxBytesError
	tooLarge := errors.Is(err, ErrTooLarge) ||
		errors.As(err, &maxErr) ||
		strings.Contains(err.Error(), "request body too large")

	switch {
	case tooLarge:
		http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
	case errors.Is(err, http.ErrNotMultipart):
		http.Error(w, "Expected multipart form", http.StatusBadRequest)
	default:
		logger.Error("upload failed",
			"path", r.URL.Path,
			"error", err,
		)
		http.Error(w, "Upload failed", http.StatusInternalServerError)
	}
}
