package queue

import (
	"testing"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/config"
)

func TestMetricsRefreshTaskRoundTrip(t *testing.T) {
	task, err := NewMetricsRefreshTask(MetricsRefreshPayload{Year: 2024, Month: 6})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != TaskMetricsRefresh {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	payload, err := ParseMetricsRefreshPayload(task)
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if !payload.Valid() || payload.TaskID() != "metrics:refresh:2024-06" {
		t.Fatalf("unexpected payload: %+v id=%s", payload, payload.TaskID())
	}
	if (MetricsRefreshPayload{Year: 2024, Month: 13}).Valid() {
		t.Fatalf("month 13 should be invalid")
	}
}

func TestDisabledClientSkipsEnqueue(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueueMetricsRefresh(MetricsRefreshPayload{Year: 2024, Month: 1}); err != nil {
		t.Fatalf("disabled enqueue should be a no-op: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: " redis ", Port: 6380, DB: 2})
	if opt.Addr != "redis:6380" || opt.DB != 2 {
		t.Fatalf("unexpected redis opt: %+v", opt)
	}
	if cfg.Concurrency != 10 || cfg.Queues[DefaultQueue] != 1 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}
