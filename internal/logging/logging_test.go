package logging

import (
	"os"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "正常系: console", cfg: Config{Level: "info", Format: "console"}},
		{name: "正常系: json", cfg: Config{Level: "debug", Format: "json", Stderr: true}},
		{name: "正常系: 大文字のレベル", cfg: Config{Level: "WARN", Format: "json"}},
		{name: "異常系: 不正なレベル", cfg: Config{Level: "verbose", Format: "json"}, wantErr: true},
		{name: "異常系: 不正なフォーマット", cfg: Config{Level: "info", Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, logger)
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captcha.log")

	logger, err := New(Config{
		Level:   "info",
		Format:  "json",
		File:    path,
		MaxSize: 1,
	})
	require.NoError(t, err)

	logger.Debug("filtered out")
	logger.Info("batch finished")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, jsoniter.Unmarshal(data, &entry))
	assert.Equal(t, "batch finished", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "time")
	assert.NotContains(t, string(data), "filtered out")
}

func TestNew_NoOutputs(t *testing.T) {
	logger, err := New(Config{Level: "info", Format: "json"})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		logger.Info("dropped")
	})
}
