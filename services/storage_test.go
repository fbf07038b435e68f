package services

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"tim_report_app_go/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	dir := t.TempDir()
	storage := NewLocalStorage(dir)
	ctx := context.Background()
	assert.Equal(t, "local", storage.Name())

	content := []byte("%PDF-1.4")
	result, err := storage.UploadReader(ctx, bytes.NewReader(content), "reports/2024-03/x_report.pdf", "application/pdf", int64(len(content)))
	require.NoError(t, err)
	assert.Equal(t, "x_report.pdf", result.FileName)
	assert.Equal(t, int64(len(content)), result.FileSize)

	_, err = os.Stat(filepath.Join(dir, "reports", "2024-03", "x_report.pdf"))
	require.NoError(t, err)

	reader, contentType, err := storage.Get(ctx, "reports/2024-03/x_report.pdf")
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	reader.Close()
	require.NoError(t, err)
	assert.Equal(t, content, data)
	assert.Equal(t, "application/pdf", contentType)

	url, err := storage.GetSignedURL(ctx, "reports/2024-03/x_report.pdf", time.Minute)
	require.NoError(t, err)
	assert.Empty(t, url)

	require.NoError(t, storage.Delete(ctx, "reports/2024-03/x_report.pdf"))
	require.NoError(t, storage.Delete(ctx, "reports/2024-03/x_report.pdf"), "deleting twice is fine")

	_, _, err = storage.Get(ctx, "reports/2024-03/x_report.pdf")
	assert.Error(t, err)
}

func TestLocalStorageContentTypes(t *testing.T) {
	dir := t.TempDir()
	storage := NewLocalStorage(dir)
	ctx := context.Background()

	for name, want := range map[string]string{
		"a.json": "application/json",
		"a.xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"a.bin":  "application/octet-stream",
	} {
		_, err := storage.UploadReader(ctx, strings.NewReader("x"), name, "", 1)
		require.NoError(t, err)
		reader, contentType, err := storage.Get(ctx, name)
		require.NoError(t, err)
		reader.Close()
		assert.Equal(t, want, contentType, name)
	}
}

func TestGenerateReportKey(t *testing.T) {
	key := GenerateReportKey("../../intervention-2024-03-14.pdf")
	pattern := regexp.MustCompile(`^reports/\d{4}-\d{2}/[0-9a-f-]{36}_intervention-2024-03-14\.pdf$`)
	assert.Regexp(t, pattern, key)
	assert.NotEqual(t, key, GenerateReportKey("../../intervention-2024-03-14.pdf"))
}

func TestNewStorageFallsBackToLocal(t *testing.T) {
	cfg := &config.Config{UploadDir: t.TempDir()}
	storage := NewStorage(cfg)
	assert.Equal(t, "local", storage.Name())
}
