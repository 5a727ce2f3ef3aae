package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"cdp/scansvc/pkg/errorutil"
	"cdp/scansvc/pkg/logger"
)

// LocalOptions 本地目录存储配置
type LocalOptions struct {
	Dir     string // 存储目录
	BaseURL string // 访问前缀，形如 http://localhost:8080/uploads
}

// LocalStore 本地目录存储实现（开发环境用）
// 文件名带 UUID 前缀防冲突。
type LocalStore struct {
	opts LocalOptions
	log  logger.Logger
}

// NewLocalStore 创建本地目录存储
func NewLocalStore(opts LocalOptions, log logger.Logger) (*LocalStore, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("local store dir is required")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store dir: %w", err)
	}

	return &LocalStore{opts: opts, log: log}, nil
}

// Store 保存图片到本地目录
func (s *LocalStore) Store(ctx context.Context, image []byte, filename string) (string, error) {
	name := fmt.Sprintf("%s_%s", uuid.New().String(), sanitize(filename))
	path := filepath.Join(s.opts.Dir, name)

	if err := os.WriteFile(path, image, 0o644); err != nil {
		return "", errorutil.StorageFailure("failed to write image file", err.Error())
	}

	return fmt.Sprintf("%s/%s", strings.TrimRight(s.opts.BaseURL, "/"), name), nil
}

// sanitize 只保留文件名本体并去掉路径分隔符
func sanitize(filename string) string {
	name := filepath.Base(filename)
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "upload.jpg"
	}
	return name
}
