package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/partstream/partstream/pkg/blob"
	"github.com/partstream/partstream/pkg/upload"
)

// Default tracer name for upload spans.
const defaultTracerName = "partstream"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "partstream").
	TracerName string

	// IncludeFilename includes the client-supplied filename in spans.
	// Filenames can carry user data - disabled by default.
	IncludeFilename bool

	// Filter determines which parts to trace. Return true to trace the
	// part, false to skip. If nil, all parts are traced.
	Filter func(info upload.PartInfo) bool

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithIncludeFilename enables including the filename in spans.
func WithIncludeFilename(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeFilename = include
	}
}

// WithTraceFilter sets a filter function for parts.
func WithTraceFilter(filter func(info upload.PartInfo) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// defaultOTelConfig returns the default OpenTelemetry configuration.
func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// OpenTelemetry creates middleware that traces each handled part.
//
// The middleware creates a span per part named "upload <field>", records
// the field, content type, and outcome (stored/skipped plus byte count),
// and sets error status on failures.
//
// The tracer uses the global OpenTelemetry tracer provider; configure it
// in your main() before serving:
//
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) Middleware {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	config.tracer = otel.Tracer(config.TracerName)

	return func(next upload.Handler) upload.Handler {
		return func(ctx context.Context, part upload.Part) (blob.Blob, error) {
			if config.Filter != nil && !config.Filter(part.Info()) {
				return next(ctx, part)
			}

			attrs := []attribute.KeyValue{
				attribute.String("upload.field", part.Name),
				attribute.String("upload.content_type", part.ContentType),
			}
			if config.IncludeFilename {
				attrs = append(attrs, attribute.String("upload.filename", part.Filename))
			}

			spanCtx, span := config.tracer.Start(
				ctx,
				"upload "+part.Name,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			b, err := next(spanCtx, part)

			switch {
			case err != nil:
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			case b == nil:
				span.SetAttributes(attribute.Bool("upload.skipped", true))
				span.SetStatus(codes.Ok, "")
			default:
				span.SetAttributes(
					attribute.Int64("upload.bytes", b.Size()),
					attribute.String("upload.stored_name", b.Name()),
				)
				span.SetStatus(codes.Ok, "")
			}

			return b, err
		}
	}
}
