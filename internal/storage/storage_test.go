package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyiku/textcaptcha/internal/testutil"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name       string
		prefix     string
		wantPrefix string
	}{
		{name: "正常系: プレフィックスあり", prefix: "captcha", wantPrefix: "captcha/"},
		{name: "正常系: 前後のスラッシュを除去", prefix: "/captcha/train/", wantPrefix: "captcha/train/"},
		{name: "正常系: プレフィックスなし", prefix: "", wantPrefix: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := ObjectKey(tt.prefix)

			require.True(t, strings.HasPrefix(key, tt.wantPrefix), key)
			require.True(t, strings.HasSuffix(key, ".png"), key)

			id := strings.TrimSuffix(strings.TrimPrefix(key, tt.wantPrefix), ".png")
			_, err := uuid.Parse(id)
			assert.NoError(t, err)
		})
	}

	assert.NotEqual(t, ObjectKey("captcha"), ObjectKey("captcha"))
}

func TestLocalSink_Put(t *testing.T) {
	data := testutil.CreateTestPNG(4, 4)

	tests := []struct {
		name    string
		baseURL string
		key     string
		wantURL func(dir string) string
		wantErr bool
	}{
		{
			name:    "正常系: URLなしはファイルパス",
			key:     "captcha/a.png",
			wantURL: func(dir string) string { return filepath.Join(dir, "captcha", "a.png") },
		},
		{
			name:    "正常系: URLあり",
			baseURL: "https://cdn.example.com/",
			key:     "captcha/b.png",
			wantURL: func(string) string { return "https://cdn.example.com/captcha/b.png" },
		},
		{name: "異常系: 空のキー", key: "", wantErr: true},
		{name: "異常系: ディレクトリ外", key: "../escape.png", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "out")
			sink, err := NewLocalSink(dir, tt.baseURL)
			require.NoError(t, err)
			assert.Equal(t, "local", sink.Name())

			url, err := sink.Put(context.Background(), tt.key, data)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantURL(dir), url)

			written, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(tt.key)))
			require.NoError(t, err)
			assert.Equal(t, data, written)
		})
	}
}

func TestLocalSink_CanceledContext(t *testing.T) {
	sink, err := NewLocalSink(t.TempDir(), "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = sink.Put(ctx, "a.png", []byte{1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestS3Sink_Put(t *testing.T) {
	uploadErr := errors.New("access denied")

	tests := []struct {
		name      string
		baseURL   string
		key       string
		setupMock func(*testutil.MockS3Client)
		wantURL   string
		wantErr   bool
	}{
		{
			name:      "正常系: CloudFront URL",
			baseURL:   "https://test.cloudfront.net",
			key:       "captcha/x.png",
			setupMock: func(m *testutil.MockS3Client) {},
			wantURL:   "https://test.cloudfront.net/captcha/x.png",
		},
		{
			name:      "正常系: URLなしは s3 スキーム",
			key:       "captcha/y.png",
			setupMock: func(m *testutil.MockS3Client) {},
			wantURL:   "s3://test-bucket/captcha/y.png",
		},
		{
			name:      "異常系: アップロード失敗",
			key:       "captcha/z.png",
			setupMock: func(m *testutil.MockS3Client) { m.PutErr = uploadErr },
			wantErr:   true,
		},
		{
			name:      "異常系: 空のキー",
			key:       "",
			setupMock: func(m *testutil.MockS3Client) {},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockS3 := testutil.NewMockS3Client()
			tt.setupMock(mockS3)

			sink := NewS3Sink(mockS3, "test-bucket", tt.baseURL)
			assert.Equal(t, "s3", sink.Name())

			data := testutil.CreateTestPNG(2, 2)
			url, err := sink.Put(context.Background(), tt.key, data)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, mockS3.Keys())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, url)
			assert.Equal(t, data, mockS3.UploadedData[tt.key])
		})
	}
}

func TestS3Sink_UploadErrorIsWrapped(t *testing.T) {
	uploadErr := errors.New("access denied")
	mockS3 := testutil.NewMockS3Client()
	mockS3.PutErr = uploadErr

	_, err := NewS3Sink(mockS3, "b", "").Put(context.Background(), "k.png", nil)

	assert.ErrorIs(t, err, uploadErr)
}

func TestOSSSink_Put(t *testing.T) {
	tests := []struct {
		name      string
		domain    string
		key       string
		setupMock func(*testutil.MockOSSBucket)
		wantKey   string
		wantURL   string
		wantErr   bool
	}{
		{
			name:      "正常系: スキームを補完",
			domain:    "cdn.example.com",
			key:       "captcha/a.png",
			setupMock: func(m *testutil.MockOSSBucket) {},
			wantKey:   "captcha/a.png",
			wantURL:   "https://cdn.example.com/captcha/a.png",
		},
		{
			name:      "正常系: 先頭のスラッシュを除去",
			domain:    "https://bucket.oss-cn-hangzhou.aliyuncs.com",
			key:       "/captcha/b.png",
			setupMock: func(m *testutil.MockOSSBucket) {},
			wantKey:   "captcha/b.png",
			wantURL:   "https://bucket.oss-cn-hangzhou.aliyuncs.com/captcha/b.png",
		},
		{
			name:      "異常系: アップロード失敗",
			domain:    "cdn.example.com",
			key:       "captcha/c.png",
			setupMock: func(m *testutil.MockOSSBucket) { m.PutErr = errors.New("forbidden") },
			wantErr:   true,
		},
		{
			name:      "異常系: 空のキー",
			key:       "/",
			setupMock: func(m *testutil.MockOSSBucket) {},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket := testutil.NewMockOSSBucket()
			tt.setupMock(bucket)

			sink := NewOSSSinkWithBucket(bucket, tt.domain)
			assert.Equal(t, "oss", sink.Name())

			data := testutil.CreateTestPNG(3, 3)
			url, err := sink.Put(context.Background(), tt.key, data)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, url)
			assert.Equal(t, data, bucket.UploadedData[tt.wantKey])
		})
	}
}

func TestOSSSink_CanceledContext(t *testing.T) {
	bucket := testutil.NewMockOSSBucket()
	sink := NewOSSSinkWithBucket(bucket, "cdn.example.com")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sink.Put(ctx, "a.png", []byte{1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, bucket.UploadedData)
}

func TestSinks_ImplementSink(t *testing.T) {
	var _ Sink = (*LocalSink)(nil)
	var _ Sink = (*S3Sink)(nil)
	var _ Sink = (*OSSSink)(nil)
	var _ S3ClientInterface = (*S3Adapter)(nil)
	var _ S3ClientInterface = (*testutil.MockS3Client)(nil)
	var _ OSSBucket = (*testutil.MockOSSBucket)(nil)
}
