package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// OSSBucket is the subset of *oss.Bucket used by OSSSink.
type OSSBucket interface {
	PutObject(objectKey string, reader io.Reader, options ...oss.Option) error
}

// OSSSink uploads images to an Aliyun OSS bucket.
type OSSSink struct {
	bucket OSSBucket
	domain string
}

// NewOSSSink connects to endpoint (e.g. oss-cn-hangzhou.aliyuncs.com) and
// opens bucketName. domain is an optional custom or CDN domain.
func NewOSSSink(endpoint, accessKeyID, accessKeySecret, bucketName, domain string) (*OSSSink, error) {
	client, err := oss.New(endpoint, accessKeyID, accessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket %s: %w", bucketName, err)
	}

	if domain == "" {
		domain = fmt.Sprintf("https://%s.%s", bucketName, endpoint)
	}
	return NewOSSSinkWithBucket(bucket, domain), nil
}

// NewOSSSinkWithBucket creates an OSSSink on an already opened bucket.
func NewOSSSinkWithBucket(bucket OSSBucket, domain string) *OSSSink {
	if domain != "" && !strings.HasPrefix(domain, "http") {
		domain = "https://" + domain
	}
	return &OSSSink{
		bucket: bucket,
		domain: domain,
	}
}

// Put uploads data and returns its public URL.
func (s *OSSSink) Put(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// OSS keys must not start with a slash.
	objectKey := strings.TrimPrefix(key, "/")
	if objectKey == "" {
		return "", ErrEmptyKey
	}

	if err := s.bucket.PutObject(objectKey, bytes.NewReader(data), oss.ContentType(pngContentType)); err != nil {
		return "", fmt.Errorf("failed to upload to OSS: %w", err)
	}

	return joinURL(s.domain, objectKey), nil
}

// Name returns "oss".
func (s *OSSSink) Name() string {
	return "oss"
}
