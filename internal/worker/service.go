package worker

import (
	"context"
	"errors"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/config"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/logger"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/queue"

	"github.com/hibiken/asynq"
)

// 当月快照的后台预热间隔
const metricsWarmupInterval = 5 * time.Minute

// Service 指标刷新 worker：消费 metrics:refresh 任务并定时预热当月快照
type Service struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
	interval time.Duration
	now      func() time.Time
	loc      *time.Location
}

// NewService 创建 worker 服务；队列未启用时返回错误
func NewService(cfg *config.QueueConfig, consumer *Consumer, loc *time.Location) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	if loc == nil {
		loc = time.UTC
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		server:   asynq.NewServer(opt, serverCfg),
		mux:      mux,
		consumer: consumer,
		interval: metricsWarmupInterval,
		now:      time.Now,
		loc:      loc,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string { return "worker" }

// Start 启动消费者（信号由 Runner 统一处理），阻塞到 ctx 结束
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	logger.Infow("worker_started", "warmup_interval", s.interval.String())
	if s.consumer.metrics == nil {
		<-ctx.Done()
		return nil
	}

	s.warmupOnce(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.warmupOnce(ctx)
		}
	}
}

// Stop 等待进行中的任务结束后关闭
func (s *Service) Stop(_ context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.server.Shutdown()
	return nil
}

// warmupOnce 预热当月快照，看板首次打开时无需同步计算
func (s *Service) warmupOnce(ctx context.Context) {
	local := s.now().In(s.loc)
	year, month := local.Year(), int(local.Month())
	if _, err := s.consumer.metrics.Refresh(ctx, year, month); err != nil {
		logger.Warnw("worker_metrics_warmup_failed", "year", year, "month", month, "error", err)
	}
}
