package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalSink writes images below a directory on the local filesystem.
type LocalSink struct {
	dir     string
	baseURL string
}

// NewLocalSink creates dir if needed. When baseURL is empty, Put returns file paths.
func NewLocalSink(dir, baseURL string) (*LocalSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &LocalSink{
		dir:     dir,
		baseURL: baseURL,
	}, nil
}

// Put writes data to dir/key.
func (s *LocalSink) Put(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if key == "" {
		return "", ErrEmptyKey
	}

	rel := filepath.FromSlash(key)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("object key escapes output directory: %s", key)
	}

	fullPath := filepath.Join(s.dir, rel)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write captcha image: %w", err)
	}

	if s.baseURL == "" {
		return fullPath, nil
	}
	return joinURL(s.baseURL, key), nil
}

// Name returns "local".
func (s *LocalSink) Name() string {
	return "local"
}
