package config

import (
	"fmt"
	"strconv"
)

// KV is one configuration entry for display.
type KV struct {
	Key   string
	Value string
}

// ShowAll returns the effective configuration as displayable key/value
// pairs, in keySpec order. Secrets are redacted.
func ShowAll(cfg Config) []KV {
	return []KV{
		{"server.port", strconv.Itoa(cfg.Server.Port)},
		{"server.api_token", redact(cfg.Server.APIToken)},
		{"gemini.api_key", redact(cfg.Gemini.APIKey)},
		{"gemini.flash_model", cfg.Gemini.FlashModel},
		{"gemini.pro_model", cfg.Gemini.ProModel},
		{"gemini.embed_model", cfg.Gemini.EmbedModel},
		{"engine.dataset_threshold", strconv.FormatFloat(cfg.Engine.DatasetThreshold, 'g', -1, 64)},
		{"engine.max_growth_skills", strconv.Itoa(cfg.Engine.MaxGrowthSkills)},
		{"engine.max_certifications", strconv.Itoa(cfg.Engine.MaxCertifications)},
		{"engine.mcq_count", strconv.Itoa(cfg.Engine.MCQCount)},
		{"engine.cache_ttl", cfg.Engine.CacheTTL.String()},
		{"engine.retry_attempts", strconv.Itoa(cfg.Engine.RetryAttempts)},
		{"engine.retry_backoff", cfg.Engine.RetryBackoff.String()},
		{"engine.call_timeout", cfg.Engine.CallTimeout.String()},
		{"dataset.path", cfg.Dataset.Path},
		{"storage.data_dir", cfg.Storage.DataDir},
		{"log.level", cfg.Log.Level},
	}
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return fmt.Sprintf("****%s", s[len(s)-4:])
}
