package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/config"
)

type fakeService struct {
	name    string
	startFn func(ctx context.Context) error
	mu      *sync.Mutex
	stopped *[]string
}

func (f fakeService) Name() string { return f.name }

func (f fakeService) Start(ctx context.Context) error { return f.startFn(ctx) }

func (f fakeService) Stop(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	*f.stopped = append(*f.stopped, f.name)
	return nil
}

func blockUntilDone(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func TestRunnerStopsAllInReverseOrderOnFailure(t *testing.T) {
	var mu sync.Mutex
	stopped := []string{}
	boom := errors.New("listen failed")
	runner := NewRunner(
		fakeService{name: "http", startFn: func(context.Context) error { return boom }, mu: &mu, stopped: &stopped},
		nil,
		fakeService{name: "worker", startFn: blockUntilDone, mu: &mu, stopped: &stopped},
	)
	if names := runner.Names(); len(names) != 2 {
		t.Fatalf("nil services should be ignored, got %v", names)
	}

	err := runner.Run(context.Background(), time.Second, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected first service error, got %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(stopped) != 2 || stopped[0] != "worker" || stopped[1] != "http" {
		t.Fatalf("unexpected stop order: %v", stopped)
	}
}

func TestRunnerCancelledContextIsCleanExit(t *testing.T) {
	var mu sync.Mutex
	stopped := []string{}
	runner := NewRunner(fakeService{name: "http", startFn: blockUntilDone, mu: &mu, stopped: &stopped})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	if err := runner.Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("cancelled run should return nil, got %v", err)
	}
}

func TestNormalizeOptions(t *testing.T) {
	opts := normalizeOptions(Options{Mode: " API "})
	if opts.Mode != ModeAPI || opts.ShutdownTimeout != 10*time.Second || opts.Logger == nil {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if validMode("cron") {
		t.Fatalf("cron should not be a valid mode")
	}
}

func TestNewHTTPServiceTimeouts(t *testing.T) {
	svc := NewHTTPService(":0", nil, config.ServerConfig{ReadTimeoutSeconds: 30})
	if svc.server.ReadTimeout != 30*time.Second {
		t.Fatalf("read timeout want 30s got %s", svc.server.ReadTimeout)
	}
	if svc.server.WriteTimeout != defaultHTTPTimeout {
		t.Fatalf("write timeout should fall back to default, got %s", svc.server.WriteTimeout)
	}
}
