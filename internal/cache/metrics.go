package cache

import "fmt"

// MetricsSnapshotKey 指标快照缓存键（按统计周期区分）
func MetricsSnapshotKey(year, month int) string {
	return fmt.Sprintf("metrics:snapshot:%04d-%02d", year, month)
}
