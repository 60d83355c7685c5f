package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the part of *s3.Client used by S3Sink.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads pages to an S3 bucket.
//
// Example usage:
//
//	cfg, _ := awsconfig.LoadDefaultConfig(ctx)
//	sink := export.NewS3Sink(s3.NewFromConfig(cfg), "my-site", "pages/")
type S3Sink struct {
	client       PutObjectAPI
	bucket       string
	prefix       string
	cacheControl string
}

// NewS3Sink creates a sink that writes objects to bucket with keys
// prefix + path.
func NewS3Sink(client PutObjectAPI, bucket, prefix string) *S3Sink {
	return &S3Sink{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// WithCacheControl sets the Cache-Control header stored on each object.
func (s *S3Sink) WithCacheControl(v string) *S3Sink {
	s.cacheControl = v
	return s
}

// Put uploads r as the object prefix + p.
func (s *S3Sink) Put(ctx context.Context, p, contentType string, r io.Reader) error {
	clean, err := CleanPath(p)
	if err != nil {
		return err
	}

	// PutObject needs a seekable body to compute the payload checksum.
	body, err := readAll(r)
	if err != nil {
		return err
	}

	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.prefix + clean),
		Body:        body,
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"generator":   "tessera",
			"export-time": time.Now().UTC().Format(time.RFC3339),
		},
	}
	if s.cacheControl != "" {
		in.CacheControl = aws.String(s.cacheControl)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("s3 put %s: %w", clean, err)
	}
	return nil
}
