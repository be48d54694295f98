package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/config"
)

const defaultHTTPTimeout = 2 * time.Minute

// HTTPService API 服务
type HTTPService struct {
	server *http.Server
}

func secondsOr(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// NewHTTPService 按服务配置创建 HTTP 服务
func NewHTTPService(addr string, handler http.Handler, cfg config.ServerConfig) *HTTPService {
	read := secondsOr(cfg.ReadTimeoutSeconds, defaultHTTPTimeout)
	write := secondsOr(cfg.WriteTimeoutSeconds, defaultHTTPTimeout)
	return &HTTPService{server: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       read,
		WriteTimeout:      write,
		IdleTimeout:       read,
	}}
}

// Name 服务名称
func (s *HTTPService) Name() string { return "http" }

// Start 阻塞监听，正常关闭时返回 nil
func (s *HTTPService) Start(_ context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("http server not initialized")
	}
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop 优雅关闭，等待进行中的请求（含照片上传）结束
func (s *HTTPService) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
