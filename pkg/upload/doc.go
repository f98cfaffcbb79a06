// Package upload handles streamed multipart upload fields.
//
// A multipart submission arrives as a sequence of named parts, each carrying
// a filename, a content type, and a single-pass byte stream. The server
// should never buffer a whole upload in memory or trust a declared size:
// parts are consumed chunk by chunk against a byte ceiling, and oversized
// uploads are aborted mid-stream with the partial output removed.
//
// # Handlers
//
// A Handler decides what to do with one part. It returns a blob.Blob for
// stored parts, (nil, nil) to skip the part, or an error. The package ships
// three implementations:
//
//   - NewDiskHandler streams the part to a file, with conflict-safe naming.
//   - NewMemoryHandler buffers the part in memory.
//   - NewS3Handler streams the part to an S3 bucket.
//
// Handlers compose: Compose tries each handler in order and keeps the first
// stored result, so an application can send avatars to S3 and everything
// else to disk.
//
// # Parsing requests
//
// ParseMultipartForm walks an incoming request's multipart body without
// buffering it, routing file parts through a Handler and collecting value
// parts into a FormData. HTTPHandler wraps that into a mountable endpoint:
//
//	r.Post("/upload", upload.HTTPHandler(handler))
//
// # Size limits
//
// Every handler enforces a cumulative byte ceiling. When a part crosses it,
// the handler fails with a *SizeError naming the field and the limit, and
// any partially written output is deleted best-effort. Test for the
// condition with errors.Is(err, upload.ErrTooLarge).
package upload
