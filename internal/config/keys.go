package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kFloat
	kDuration
)

type keySpec struct {
	key   string
	typ   keyType
	env   string
	apply func(cfg *Config, v any)
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "FUTUREPROOF_SERVER_PORT",
		apply: func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
	},
	{
		key: "server.api_token", typ: kString, env: "FUTUREPROOF_API_TOKEN",
		apply: func(cfg *Config, v any) { cfg.Server.APIToken = v.(string) },
	},
	{
		key: "gemini.api_key", typ: kString, env: "FUTUREPROOF_GEMINI_API_KEY",
		apply: func(cfg *Config, v any) { cfg.Gemini.APIKey = v.(string) },
	},
	{
		// Fallback used by the original deployment environment.
		key: "gemini.api_key", typ: kString, env: "GOOGLE_API_KEY",
		apply: func(cfg *Config, v any) {
			if cfg.Gemini.APIKey == "" {
				cfg.Gemini.APIKey = v.(string)
			}
		},
	},
	{
		key: "gemini.flash_model", typ: kString, env: "FUTUREPROOF_GEMINI_FLASH_MODEL",
		apply: func(cfg *Config, v any) { cfg.Gemini.FlashModel = v.(string) },
	},
	{
		key: "gemini.pro_model", typ: kString, env: "FUTUREPROOF_GEMINI_PRO_MODEL",
		apply: func(cfg *Config, v any) { cfg.Gemini.ProModel = v.(string) },
	},
	{
		key: "gemini.embed_model", typ: kString, env: "FUTUREPROOF_GEMINI_EMBED_MODEL",
		apply: func(cfg *Config, v any) { cfg.Gemini.EmbedModel = v.(string) },
	},
	{
		key: "engine.dataset_threshold", typ: kFloat, env: "FUTUREPROOF_DATASET_THRESHOLD",
		apply: func(cfg *Config, v any) { cfg.Engine.DatasetThreshold = v.(float64) },
	},
	{
		key: "engine.max_growth_skills", typ: kInt, env: "FUTUREPROOF_MAX_GROWTH_SKILLS",
		apply: func(cfg *Config, v any) { cfg.Engine.MaxGrowthSkills = v.(int) },
	},
	{
		key: "engine.max_certifications", typ: kInt, env: "FUTUREPROOF_MAX_CERTIFICATIONS",
		apply: func(cfg *Config, v any) { cfg.Engine.MaxCertifications = v.(int) },
	},
	{
		key: "engine.mcq_count", typ: kInt, env: "FUTUREPROOF_MCQ_COUNT",
		apply: func(cfg *Config, v any) { cfg.Engine.MCQCount = v.(int) },
	},
	{
		key: "engine.cache_ttl", typ: kDuration, env: "FUTUREPROOF_CACHE_TTL",
		apply: func(cfg *Config, v any) { cfg.Engine.CacheTTL = v.(time.Duration) },
	},
	{
		key: "engine.retry_attempts", typ: kInt, env: "FUTUREPROOF_RETRY_ATTEMPTS",
		apply: func(cfg *Config, v any) { cfg.Engine.RetryAttempts = v.(int) },
	},
	{
		key: "engine.retry_backoff", typ: kDuration, env: "FUTUREPROOF_RETRY_BACKOFF",
		apply: func(cfg *Config, v any) { cfg.Engine.RetryBackoff = v.(time.Duration) },
	},
	{
		key: "engine.call_timeout", typ: kDuration, env: "FUTUREPROOF_CALL_TIMEOUT",
		apply: func(cfg *Config, v any) { cfg.Engine.CallTimeout = v.(time.Duration) },
	},
	{
		key: "dataset.path", typ: kString, env: "FUTUREPROOF_DATASET_PATH",
		apply: func(cfg *Config, v any) { cfg.Dataset.Path = v.(string) },
	},
	{
		key: "storage.data_dir", typ: kString, env: "FUTUREPROOF_DATA_DIR",
		apply: func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
	},
	{
		key: "log.level", typ: kString, env: "FUTUREPROOF_LOG_LEVEL",
		apply: func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
	},
}

// applyEnvOverrides walks the spec table and applies every environment
// variable that is set and parses cleanly. Malformed values are reported to
// stderr and skipped, keeping the default.
func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		raw, ok := os.LookupEnv(s.env)
		if !ok || raw == "" {
			continue
		}
		v, err := parseValue(s.typ, raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] ignoring %s=%q: %v\n", s.env, raw, err)
			continue
		}
		s.apply(cfg, v)
	}
}

func parseValue(typ keyType, raw string) (any, error) {
	switch typ {
	case kString:
		return raw, nil
	case kInt:
		return strconv.Atoi(raw)
	case kFloat:
		return strconv.ParseFloat(raw, 64)
	case kDuration:
		// Accept both Go duration syntax ("2s") and bare seconds ("3600").
		if d, err := time.ParseDuration(raw); err == nil {
			return d, nil
		}
		secs, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("not a duration or second count")
		}
		return time.Duration(secs) * time.Second, nil
	default:
		return nil, fmt.Errorf("unknown key type %d", typ)
	}
}
