package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/config"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	if err := InitRedis(&config.RedisConfig{Enabled: false}); err != nil {
		t.Fatalf("init disabled redis failed: %v", err)
	}
	ctx := context.Background()
	if err := SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute); err != nil {
		t.Fatalf("set on disabled cache should not fail: %v", err)
	}
	var dest map[string]int
	hit, err := GetJSON(ctx, "k", &dest)
	if err != nil || hit {
		t.Fatalf("disabled cache should miss, hit=%v err=%v", hit, err)
	}
	if err := Del(ctx, "k"); err != nil {
		t.Fatalf("del on disabled cache should not fail: %v", err)
	}
	if Client() != nil {
		t.Fatalf("client should be nil when disabled")
	}
}

func TestMetricsSnapshotKeyIsPeriodScoped(t *testing.T) {
	if got := MetricsSnapshotKey(2024, 3); got != "metrics:snapshot:2024-03" {
		t.Fatalf("unexpected key: %s", got)
	}
	if Key("x") == "x" {
		t.Fatalf("expected prefixed key")
	}
}

func TestBuildUserAuthState(t *testing.T) {
	invalid := time.Unix(1700000000, 0)
	state := BuildUserAuthState(&models.User{
		ID:                 3,
		Username:           "ana",
		IsActive:           true,
		TokenVersion:       2,
		TokenInvalidBefore: &invalid,
	})
	if state.UserID != 3 || state.Username != "ana" || !state.IsActive {
		t.Fatalf("unexpected state: %+v", state)
	}
	if state.TokenInvalidBefore != 1700000000 || state.TokenVersion != 2 {
		t.Fatalf("unexpected token fields: %+v", state)
	}
	if BuildUserAuthState(nil) != nil {
		t.Fatalf("nil user should give nil state")
	}
}

func TestUserAuthStateAccepts(t *testing.T) {
	cutoff := time.Unix(1700000000, 0)
	state := &UserAuthState{UserID: 1, TokenVersion: 3, TokenInvalidBefore: cutoff.Unix()}
	before := cutoff.Add(-time.Minute)
	after := cutoff.Add(time.Minute)
	if state.Accepts(2, &after) {
		t.Fatalf("older token version must be rejected")
	}
	if state.Accepts(3, &before) {
		t.Fatalf("token issued before cutoff must be rejected")
	}
	if !state.Accepts(3, &after) || !state.Accepts(3, nil) {
		t.Fatalf("current token should be accepted")
	}
	var missing *UserAuthState
	if missing.Accepts(0, nil) {
		t.Fatalf("nil state must reject")
	}
}
