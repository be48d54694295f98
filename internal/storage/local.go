package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local 本地磁盘存储
type Local struct {
	dir       string
	publicURL string
}

// NewLocal 创建本地存储
func NewLocal(dir, publicURL string) *Local {
	if strings.TrimSpace(dir) == "" {
		dir = "./uploads"
	}
	if strings.TrimSpace(publicURL) == "" {
		publicURL = "/uploads"
	}
	return &Local{dir: dir, publicURL: publicURL}
}

// Dir 本地根目录（供静态文件路由使用）
func (l *Local) Dir() string {
	return l.dir
}

func (l *Local) resolve(key string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(key))
	if clean == string(filepath.Separator) {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return filepath.Join(l.dir, clean), nil
}

// Put 写入文件
func (l *Local) Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target, err := l.resolve(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return nil, fmt.Errorf("create storage dir failed: %w", err)
	}
	dst, err := os.Create(target)
	if err != nil {
		return nil, fmt.Errorf("create storage file failed: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, body)
	if err != nil {
		_ = os.Remove(target)
		return nil, fmt.Errorf("write storage file failed: %w", err)
	}
	return &Object{
		Key:         key,
		URL:         l.PublicURL(key),
		ContentType: contentType,
		Size:        written,
	}, nil
}

// Delete 删除文件，不存在时忽略
func (l *Local) Delete(ctx context.Context, key string) error {
	target, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// PublicURL 对外访问地址
func (l *Local) PublicURL(key string) string {
	return joinURL(l.publicURL, key)
}
