package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
environment: test
providers:
  - id: coingecko
    kind: coingecko
    priority: 1
  - id: binance
    kind: binance
    priority: 2
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Breaker.FailureThreshold != 3 || cfg.Breaker.Cooldown != 30*time.Second {
		t.Fatalf("breaker defaults = %+v", cfg.Breaker)
	}
	if cfg.Cache.PriceTTL != 30*time.Second || cfg.Cache.IdleEviction != time.Hour {
		t.Fatalf("cache defaults = %+v", cfg.Cache)
	}
	if cfg.Exchange.Kind != "paper" || cfg.Exchange.SubmitTimeout != 10*time.Second {
		t.Fatalf("exchange defaults = %+v", cfg.Exchange)
	}
	for _, p := range cfg.Providers {
		if p.Timeout != 5*time.Second || p.BurstLimit != 10 || p.RateLimit != 1 {
			t.Fatalf("provider defaults = %+v", p)
		}
	}
}

func TestLoadRejectsMissingEnvironment(t *testing.T) {
	_, err := Load(writeConfig(t, `
providers:
  - id: a
    kind: coingecko
`))
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadRejectsUnknownProviderKind(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
providers:
  - id: a
    kind: kraken
`))
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadRejectsDuplicateProviderIDs(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
providers:
  - id: a
    kind: coingecko
  - id: a
    kind: binance
`))
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadRejectsKafkaWithoutBrokers(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
kafka:
  enabled: true
`))
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("PROVIDER_COINGECKO_API_KEY", "secret")
	t.Setenv("EXCHANGE_API_KEY", "xkey")

	cfg, err := LoadWithEnv(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Providers[0].APIKey != "secret" {
		t.Fatalf("provider api key = %q, want env override", cfg.Providers[0].APIKey)
	}
	if cfg.Exchange.APIKey != "xkey" {
		t.Fatalf("exchange api key = %q, want env override", cfg.Exchange.APIKey)
	}
}

func TestLoadRejectsBadExchangeKind(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
exchange:
  kind: ftx
`))
	if err == nil {
		t.Fatalf("expected validation error")
	}
}
