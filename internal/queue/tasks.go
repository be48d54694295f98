package queue

import (
	"encoding/json"
	"fmt"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskMetricsRefresh 指标快照刷新任务
	TaskMetricsRefresh = constants.TaskMetricsRefresh
)

// MetricsRefreshPayload 指标刷新任务载荷（统计周期）
type MetricsRefreshPayload struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Valid 校验周期
func (p MetricsRefreshPayload) Valid() bool {
	return p.Month >= 1 && p.Month <= 12 && p.Year >= 2000 && p.Year <= 2100
}

// TaskID 同一周期的刷新任务去重标识
func (p MetricsRefreshPayload) TaskID() string {
	return fmt.Sprintf("%s:%04d-%02d", TaskMetricsRefresh, p.Year, p.Month)
}

// NewMetricsRefreshTask 创建指标刷新任务
func NewMetricsRefreshTask(payload MetricsRefreshPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMetricsRefresh, body), nil
}

// ParseMetricsRefreshPayload 解析指标刷新任务载荷
func ParseMetricsRefreshPayload(task *asynq.Task) (MetricsRefreshPayload, error) {
	var payload MetricsRefreshPayload
	if task == nil {
		return payload, fmt.Errorf("task is nil")
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	return payload, nil
}
