package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := defaults()

	if cfg.Engine.DatasetThreshold != 0.55 {
		t.Errorf("DatasetThreshold = %g, want 0.55", cfg.Engine.DatasetThreshold)
	}
	if cfg.Engine.MaxGrowthSkills != 6 {
		t.Errorf("MaxGrowthSkills = %d, want 6", cfg.Engine.MaxGrowthSkills)
	}
	if cfg.Engine.MCQCount != 10 {
		t.Errorf("MCQCount = %d, want 10", cfg.Engine.MCQCount)
	}
	if cfg.Engine.CacheTTL != time.Hour {
		t.Errorf("CacheTTL = %v, want 1h", cfg.Engine.CacheTTL)
	}
	if cfg.Engine.RetryAttempts != 2 {
		t.Errorf("RetryAttempts = %d, want 2", cfg.Engine.RetryAttempts)
	}
	if cfg.Engine.RetryBackoff != 2*time.Second {
		t.Errorf("RetryBackoff = %v, want 2s", cfg.Engine.RetryBackoff)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FUTUREPROOF_SERVER_PORT", "9999")
	t.Setenv("FUTUREPROOF_DATASET_THRESHOLD", "0.7")
	t.Setenv("FUTUREPROOF_CACHE_TTL", "3600")
	t.Setenv("FUTUREPROOF_RETRY_BACKOFF", "500ms")

	cfg := defaults()
	applyEnvOverrides(&cfg)

	if cfg.Server.Port != 9999 {
		t.Errorf("Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Engine.DatasetThreshold != 0.7 {
		t.Errorf("DatasetThreshold = %g, want 0.7", cfg.Engine.DatasetThreshold)
	}
	if cfg.Engine.CacheTTL != time.Hour {
		t.Errorf("CacheTTL = %v, want 1h (bare seconds form)", cfg.Engine.CacheTTL)
	}
	if cfg.Engine.RetryBackoff != 500*time.Millisecond {
		t.Errorf("RetryBackoff = %v, want 500ms", cfg.Engine.RetryBackoff)
	}
}

func TestEnvOverrideMalformedKeepsDefault(t *testing.T) {
	t.Setenv("FUTUREPROOF_SERVER_PORT", "not-a-number")

	cfg := defaults()
	applyEnvOverrides(&cfg)

	if cfg.Server.Port != 4600 {
		t.Errorf("Port = %d, want default 4600 when override is malformed", cfg.Server.Port)
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("FUTUREPROOF_GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() succeeded without an API key, want error")
	}
}

func TestLoadAPIKeyFallback(t *testing.T) {
	t.Setenv("FUTUREPROOF_GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "legacy-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Gemini.APIKey != "legacy-key" {
		t.Errorf("APIKey = %q, want fallback from GOOGLE_API_KEY", cfg.Gemini.APIKey)
	}
}
