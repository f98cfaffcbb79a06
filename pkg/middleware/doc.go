// Package middleware provides instrumentation decorators for upload
// handlers.
//
// A Middleware wraps an upload.Handler and returns a new one, so
// instrumentation composes with handler composition:
//
//	handler := middleware.Prometheus()(
//	    middleware.OpenTelemetry()(
//	        upload.NewDiskHandler(cfg),
//	    ),
//	)
package middleware
