package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store puts objects into a bucket that is readable through publicBaseURL.
type S3Store struct {
	client        s3API
	bucket        string
	publicBaseURL string
}

// NewS3Store returns a store for bucket. When publicBaseURL is empty the
// virtual-hosted bucket URL is used.
func NewS3Store(client s3API, bucket, publicBaseURL string) *S3Store {
	base := strings.TrimRight(publicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}
	return &S3Store{
		client:        client,
		bucket:        bucket,
		publicBaseURL: base,
	}
}

func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return s.PublicURL(key), nil
}

// PublicURL returns the URL an object stored under key is served from.
func (s *S3Store) PublicURL(key string) string {
	return objectURL(s.publicBaseURL, key)
}
