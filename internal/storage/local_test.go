package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cdp/scansvc/pkg/logger"
)

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(LocalOptions{
		Dir:     dir,
		BaseURL: "http://localhost:8080/uploads/",
	}, logger.NopLogger{})
	require.NoError(t, err)

	url, err := store.Store(context.Background(), []byte("image-bytes"), "leaf scan.jpg")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/"))
	// 空格替换为下划线，文件名带 UUID 前缀
	assert.True(t, strings.HasSuffix(url, "_leaf_scan.jpg"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), data)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "leaf.jpg", sanitize("../../etc/leaf.jpg"))
	assert.Equal(t, "upload.jpg", sanitize(""))
	assert.Equal(t, "a_b.jpg", sanitize("a b.jpg"))
}
