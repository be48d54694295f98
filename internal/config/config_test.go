package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestDefaultsCarryCompanyIdentityAndMetrics(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		t.Fatalf("unmarshal defaults failed: %v", err)
	}
	if got := cfg.Company.Label(); got != "TRANSPORTES BIRDAY COMERCIO LTDA (00.343.915/0001-08)" {
		t.Fatalf("unexpected company label: %s", got)
	}
	if cfg.Metrics.CacheTTLSeconds != 45 || cfg.Metrics.TopClients != 10 {
		t.Fatalf("unexpected metrics defaults: %+v", cfg.Metrics)
	}
	if cfg.Storage.Driver != "local" {
		t.Fatalf("unexpected storage driver: %s", cfg.Storage.Driver)
	}
}

func TestServerLocationFallsBack(t *testing.T) {
	loc := ServerConfig{TimeZone: "Not/AZone"}.Location()
	if loc == nil {
		t.Fatalf("expected fallback location")
	}
	if loc.String() != "BRT" {
		t.Fatalf("unexpected fallback location: %s", loc.String())
	}
}
