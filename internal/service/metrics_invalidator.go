package service

import (
	"context"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/cache"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/logger"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/queue"
)

// MetricsInvalidator 生命周期变更后通知指标快照失效
type MetricsInvalidator interface {
	InvalidateMetrics(ctx context.Context, at time.Time)
}

// CacheMetricsInvalidator 删除当期快照，并在队列可用时推送预热任务
type CacheMetricsInvalidator struct {
	queue *queue.Client
	loc   *time.Location
}

// NewMetricsInvalidator 创建指标失效器
func NewMetricsInvalidator(queueClient *queue.Client, loc *time.Location) *CacheMetricsInvalidator {
	return &CacheMetricsInvalidator{queue: queueClient, loc: defaultLocation(loc)}
}

// InvalidateMetrics 使 at 所在统计周期的快照失效
func (i *CacheMetricsInvalidator) InvalidateMetrics(ctx context.Context, at time.Time) {
	if i == nil {
		return
	}
	local := at.In(i.loc)
	year, month := local.Year(), int(local.Month())
	if err := cache.Del(ctx, cache.MetricsSnapshotKey(year, month)); err != nil {
		logger.Ctx(ctx).Warnw("metrics_cache_invalidate_failed", "year", year, "month", month, "error", err)
	}
	if i.queue == nil || !i.queue.Enabled() {
		return
	}
	if err := i.queue.EnqueueMetricsRefresh(queue.MetricsRefreshPayload{Year: year, Month: month}); err != nil {
		logger.Ctx(ctx).Warnw("metrics_refresh_enqueue_failed", "year", year, "month", month, "error", err)
	}
}
