package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/config"

	"github.com/google/uuid"
)

// 存储驱动
const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// Object 已存储对象信息
type Object struct {
	Key         string
	URL         string
	ContentType string
	Size        int64
}

// Provider 照片存储抽象
type Provider interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*Object, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// New 根据配置创建存储实现
func New(ctx context.Context, cfg config.StorageConfig) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverLocal:
		return NewLocal(cfg.Local.Dir, cfg.Local.PublicURL), nil
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

// BuildKey 生成对象键：scene/YYYY/MM/uuid.ext
func BuildKey(scene, ext string, now time.Time) string {
	scene = strings.Trim(strings.ToLower(strings.TrimSpace(scene)), "/")
	if scene == "" {
		scene = "common"
	}
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return path.Join(scene, now.Format("2006"), now.Format("01"), uuid.NewString()+ext)
}

func joinURL(base, key string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	key = strings.TrimLeft(key, "/")
	if base == "" {
		return "/" + key
	}
	return base + "/" + key
}
