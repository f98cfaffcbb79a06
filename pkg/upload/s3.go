package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/partstream/partstream/pkg/blob"
)

// S3Config configures an S3-backed Handler.
type S3Config struct {
	// Bucket is the destination bucket. Required.
	Bucket string

	// Prefix is prepended to generated object keys (e.g. "uploads/").
	Prefix string

	// Key resolves the object key (without Prefix) per part.
	// Default: "upload_<random>" with the original filename's extension.
	Key PathSpec

	// MaxFileSize is the cumulative byte ceiling per part.
	// Default: DefaultMaxFileSize.
	MaxFileSize int64

	// Filter, if set, decides whether a part is accepted. Rejected parts
	// are skipped before any S3 access.
	Filter Filter
}

// NewS3Handler returns a Handler that stores each part as an S3 object and
// returns an *S3Object over the result.
//
// The part is buffered in memory under MaxFileSize before the PutObject
// call, since S3 requires a known content length.
func NewS3Handler(client *s3.Client, cfg S3Config) Handler {
	key := cfg.Key
	if key.isZero() {
		key = ResolveWith(randomFileName)
	}

	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	return func(ctx context.Context, part Part) (blob.Blob, error) {
		info := part.Info()

		if cfg.Filter != nil {
			ok, err := cfg.Filter(ctx, info)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, nil
			}
		}

		objKey, err := key.resolve(ctx, info)
		if err != nil {
			return nil, err
		}
		if objKey == "" {
			return nil, nil
		}
		objKey = cfg.Prefix + objKey

		var buf bytes.Buffer
		n, err := io.Copy(&buf, io.LimitReader(part.Data, maxSize+1))
		if err != nil {
			return nil, err
		}
		if n > maxSize {
			return nil, &SizeError{Field: part.Name, Limit: maxSize}
		}

		_, err = client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(cfg.Bucket),
			Key:         aws.String(objKey),
			Body:        bytes.NewReader(buf.Bytes()),
			ContentType: aws.String(part.ContentType),
			Metadata: map[string]string{
				"original-filename": part.Filename,
				"upload-time":       time.Now().UTC().Format(time.RFC3339),
			},
		})
		if err != nil {
			return nil, fmt.Errorf("upload: s3 put failed: %w", err)
		}

		return &S3Object{
			client:      client,
			bucket:      cfg.Bucket,
			key:         objKey,
			name:        path.Base(objKey),
			contentType: part.ContentType,
			size:        n,
		}, nil
	}
}

// S3Object is a Blob backed by an object in S3. Reads issue fresh ranged
// GetObject calls, so the value holds no connection between calls. Read
// requests use the background context; the object's lifetime on S3 is the
// caller's responsibility.
type S3Object struct {
	client      *s3.Client
	bucket      string
	key         string
	name        string
	contentType string

	// offset and size delimit the readable window within the object.
	offset int64
	size   int64
}

// Name returns the base name of the object key.
func (o *S3Object) Name() string { return o.name }

// Size returns the window length in bytes.
func (o *S3Object) Size() int64 { return o.size }

// ContentType returns the MIME type recorded for the object.
func (o *S3Object) ContentType() string { return o.contentType }

// Bucket returns the object's bucket.
func (o *S3Object) Bucket() string { return o.bucket }

// Key returns the object's key.
func (o *S3Object) Key() string { return o.key }

// Slice returns a view over bytes [start, end) of this object's window.
// No request is made; the new value shares the same bucket and key.
func (o *S3Object) Slice(start, end int64) blob.Blob {
	return o.SliceType(start, end, o.contentType)
}

// SliceType is Slice with a content type override.
func (o *S3Object) SliceType(start, end int64, contentType string) blob.Blob {
	start, end = blob.ClampWindow(start, end, o.size)
	return &S3Object{
		client:      o.client,
		bucket:      o.bucket,
		key:         o.key,
		name:        o.name,
		contentType: contentType,
		offset:      o.offset + start,
		size:        end - start,
	}
}

// Open fetches the windowed byte range and returns the response body.
func (o *S3Object) Open() (io.ReadCloser, error) {
	if o.size == 0 {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}

	out, err := o.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", o.offset, o.offset+o.size-1)),
	})
	if err != nil {
		return nil, &blob.ReadError{Path: o.bucket + "/" + o.key, Err: err}
	}
	return out.Body, nil
}

// ReadAll fetches the windowed contents into memory.
func (o *S3Object) ReadAll() ([]byte, error) {
	r, err := o.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &blob.ReadError{Path: o.bucket + "/" + o.key, Err: err}
	}
	return data, nil
}

// Text fetches the windowed contents and returns them as a string.
func (o *S3Object) Text() (string, error) {
	data, err := o.ReadAll()
	if err != nil {
		return "", err
	}
	return string(data), nil
}
