package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const pngContentType = "image/png"

// S3ClientInterface defines the interface for S3 operations.
type S3ClientInterface interface {
	PutObject(ctx context.Context, key string, data []byte) error
}

// S3Adapter adapts the AWS S3 client to S3ClientInterface.
type S3Adapter struct {
	client *s3.Client
	bucket string
}

// NewS3Adapter loads the default AWS configuration for region and returns an
// adapter writing to bucket.
func NewS3Adapter(ctx context.Context, region, bucket string) (*S3Adapter, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &S3Adapter{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

// PutObject uploads data as a PNG object.
func (a *S3Adapter) PutObject(ctx context.Context, key string, data []byte) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(pngContentType),
	})
	return err
}

// S3Sink uploads images to an S3 bucket.
type S3Sink struct {
	client  S3ClientInterface
	bucket  string
	baseURL string
}

// NewS3Sink creates a new S3Sink. baseURL is the public prefix of the bucket,
// typically a CloudFront domain; when empty, Put returns s3:// URLs.
func NewS3Sink(client S3ClientInterface, bucket, baseURL string) *S3Sink {
	return &S3Sink{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}
}

// Put uploads data and returns its URL.
func (s *S3Sink) Put(ctx context.Context, key string, data []byte) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	if err := s.client.PutObject(ctx, key, data); err != nil {
		return "", fmt.Errorf("failed to upload captcha image: %w", err)
	}

	if s.baseURL == "" {
		return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
	}
	return joinURL(s.baseURL, key), nil
}

// Name returns "s3".
func (s *S3Sink) Name() string {
	return "s3"
}
