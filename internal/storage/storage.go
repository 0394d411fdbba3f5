// Package storage provides destinations for generated captcha images.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrEmptyKey is returned when an object key is empty.
var ErrEmptyKey = errors.New("object key is empty")

// Sink stores encoded captcha images.
type Sink interface {
	// Put stores data under key and returns the URL it can be fetched from.
	Put(ctx context.Context, key string, data []byte) (string, error)
	// Name identifies the sink in logs.
	Name() string
}

// ObjectKey returns a unique key of the form "<prefix>/<uuid>.png".
func ObjectKey(prefix string) string {
	filename := uuid.New().String() + ".png"
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return filename
	}
	return path.Join(prefix, filename)
}

func joinURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(key, "/")
}
