// Package testutil provides common test utilities, mocks, and helpers for testing.
package testutil

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

// MockS3Client is a mock implementation of S3 client for testing.
type MockS3Client struct {
	mu           sync.Mutex
	UploadedData map[string][]byte
	PutErr       error
}

// NewMockS3Client creates a new MockS3Client.
func NewMockS3Client() *MockS3Client {
	return &MockS3Client{
		UploadedData: make(map[string][]byte),
	}
}

// PutObject mocks S3 PutObject.
func (m *MockS3Client) PutObject(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PutErr != nil {
		return m.PutErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.UploadedData[key] = data
	return nil
}

// Keys returns the uploaded object keys.
func (m *MockS3Client) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.UploadedData))
	for key := range m.UploadedData {
		keys = append(keys, key)
	}
	return keys
}

// MockOSSBucket is a mock implementation of an OSS bucket for testing.
type MockOSSBucket struct {
	mu           sync.Mutex
	UploadedData map[string][]byte
	PutErr       error
}

// NewMockOSSBucket creates a new MockOSSBucket.
func NewMockOSSBucket() *MockOSSBucket {
	return &MockOSSBucket{
		UploadedData: make(map[string][]byte),
	}
}

// PutObject mocks OSS Bucket.PutObject.
func (m *MockOSSBucket) PutObject(objectKey string, reader io.Reader, options ...oss.Option) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PutErr != nil {
		return m.PutErr
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.UploadedData[objectKey] = data
	return nil
}

// CreateTestPNG creates a test PNG image with specified dimensions.
func CreateTestPNG(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// Fill with a simple pattern
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x % 256),
				G: uint8(y % 256),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// DecodePNG decodes PNG bytes and fails the test on error.
func DecodePNG(t testing.TB, data []byte) image.Image {
	t.Helper()

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

// RGBAAt returns the pixel at (x, y) as non-premultiplied 8-bit RGBA.
func RGBAAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

// WriteTestFont writes a valid TrueType font to dir/name and returns its path.
func WriteTestFont(t testing.TB, dir, name string) string {
	t.Helper()
	return WriteFile(t, dir, name, goregular.TTF)
}

// WriteFile writes data to dir/name and returns its path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}
