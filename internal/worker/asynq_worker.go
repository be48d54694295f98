package worker

import (
	"context"
	"errors"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/logger"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/provider"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/queue"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/service"

	"github.com/hibiken/asynq"
)

// MetricsRefresher 重新计算并写入指标快照
type MetricsRefresher interface {
	Refresh(ctx context.Context, year, month int) (*service.MetricsSnapshot, error)
}

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
	metrics MetricsRefresher
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	consumer := &Consumer{Container: c}
	if c != nil && c.MetricsService != nil {
		consumer.metrics = c.MetricsService
	}
	return consumer
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskMetricsRefresh, c.handleMetricsRefresh)
}

func (c *Consumer) handleMetricsRefresh(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_metrics_refresh_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseMetricsRefreshPayload(task)
	if err != nil {
		logger.Warnw("worker_metrics_refresh_unmarshal_failed", "error", err)
		return err
	}
	if !payload.Valid() {
		logger.Debugw("worker_metrics_refresh_skip_invalid_payload", "year", payload.Year, "month", payload.Month)
		return nil
	}
	if c.metrics == nil {
		logger.Warnw("worker_metrics_refresh_skip_service_nil", "year", payload.Year, "month", payload.Month)
		return nil
	}
	if _, err := c.metrics.Refresh(ctx, payload.Year, payload.Month); err != nil {
		if errors.Is(err, service.ErrMetricsPeriodInvalid) {
			logger.Debugw("worker_metrics_refresh_skip_invalid_period", "year", payload.Year, "month", payload.Month)
			return nil
		}
		logger.Warnw("worker_metrics_refresh_failed", "year", payload.Year, "month", payload.Month, "error", err)
		return err
	}
	logger.Debugw("worker_metrics_refreshed", "year", payload.Year, "month", payload.Month)
	return nil
}
