package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Gemini  GeminiConfig
	Engine  EngineConfig
	Dataset DatasetConfig
	Storage StorageConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port     int
	APIToken string
}

type GeminiConfig struct {
	APIKey     string
	FlashModel string
	ProModel   string
	EmbedModel string
}

// EngineConfig holds the inference tunables. Every value has a fixed
// default; none is derived at runtime.
type EngineConfig struct {
	DatasetThreshold  float64
	MaxGrowthSkills   int
	MaxCertifications int
	MCQCount          int
	CacheTTL          time.Duration
	RetryAttempts     int
	RetryBackoff      time.Duration
	CallTimeout       time.Duration
}

type DatasetConfig struct {
	Path string
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4600,
		},
		Gemini: GeminiConfig{
			FlashModel: "gemini-2.5-flash",
			ProModel:   "gemini-2.5-pro",
			EmbedModel: "gemini-embedding-001",
		},
		Engine: EngineConfig{
			DatasetThreshold:  0.55,
			MaxGrowthSkills:   6,
			MaxCertifications: 5,
			MCQCount:          10,
			CacheTTL:          time.Hour,
			RetryAttempts:     2,
			RetryBackoff:      2 * time.Second,
			CallTimeout:       30 * time.Second,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "futureproof-data"
		}
	}
	return filepath.Join(dir, "futureproof")
}

// Load reads configuration from defaults, an optional .env file in the
// working directory, and FUTUREPROOF_* environment variables (highest
// precedence). The Gemini API key is the only required value: without it
// the engine cannot operate, so Load fails rather than returning a config
// that would break on the first request.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	applyEnvOverrides(&cfg)

	if cfg.Gemini.APIKey == "" {
		return Config{}, fmt.Errorf("missing required config: Gemini API key. Set FUTUREPROOF_GEMINI_API_KEY (or GOOGLE_API_KEY)")
	}

	return cfg, nil
}
