package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyiku/textcaptcha/internal/batch"
	"github.com/kyiku/textcaptcha/internal/testutil"
)

func TestRun_DataURI(t *testing.T) {
	var stdout bytes.Buffer
	err := run(context.Background(), []string{"--data-uri", "--code", "AbC", "--log-level", "error"}, &stdout)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "abc", lines[0])

	require.True(t, strings.HasPrefix(lines[1], "data:image/png;base64,"))
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(lines[1], "data:image/png;base64,"))
	require.NoError(t, err)
	img := testutil.DecodePNG(t, data)
	assert.Equal(t, 150, img.Bounds().Dx())
}

func TestRun_StoreCode(t *testing.T) {
	dir := t.TempDir()

	var stdout bytes.Buffer
	err := run(context.Background(), []string{"--code", "XY", "--out", dir, "--width", "80", "--log-level", "error"}, &stdout)
	require.NoError(t, err)

	fields := strings.Split(strings.TrimSpace(stdout.String()), "\t")
	require.Len(t, fields, 2)
	assert.Equal(t, "xy", fields[0])
	assert.True(t, strings.HasPrefix(fields[1], dir))

	data, err := os.ReadFile(fields[1])
	require.NoError(t, err)
	assert.Equal(t, 80, testutil.DecodePNG(t, data).Bounds().Dx())
}

func TestRun_Batch(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "manifest.jsonl")

	var stdout bytes.Buffer
	err := run(context.Background(), []string{
		"--count", "3",
		"--workers", "2",
		"--seed", "5",
		"--out", dir,
		"--prefix", "train",
		"--manifest", manifestPath,
		"--log-level", "error",
	}, &stdout)
	require.NoError(t, err)

	data, err := os.ReadFile(manifestPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		var item batch.Item
		require.NoError(t, jsoniter.Unmarshal([]byte(line), &item))
		assert.True(t, strings.HasPrefix(item.Key, "train/"))
		assert.FileExists(t, item.URL)
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "異常系: 不明なシンク", args: []string{"--sink", "ftp"}},
		{name: "異常系: s3 バケットなし", args: []string{"--sink", "s3"}},
		{name: "異常系: 不明なフラグ", args: []string{"--nope"}},
		{name: "異常系: 存在しないフォント", args: []string{"--data-uri", "--font", "/nonexistent.ttf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer
			err := run(context.Background(), append(tt.args, "--log-level", "error"), &stdout)
			assert.Error(t, err)
		})
	}
}

func TestRun_Help(t *testing.T) {
	err := run(context.Background(), []string{"--help"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, pflag.ErrHelp)
}
