package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Chunking defaults
	DefaultStrategy   string
	DefaultMaxTokens  int
	DefaultOverlap    int
	DefaultMinTokens  int
	TokenScheme       string
	CohesionThreshold float64

	// Task state
	TaskRetention time.Duration

	// Result persistence. Empty disables the store.
	DBPath string
}

// Load reads configuration from the environment. When DOCCHUNK_CONFIG
// names a YAML file, its values are applied first and the environment
// overrides them.
func Load() Config {
	cfg := Config{
		Port: "8091",

		WorkerCount:  4,
		MaxQueueSize: 100,

		MaxUploadBytes: 52428800, // 50MB

		DefaultStrategy:   "adaptive",
		DefaultMaxTokens:  512,
		DefaultOverlap:    50,
		DefaultMinTokens:  0,
		TokenScheme:       "words",
		CohesionThreshold: 0.25,

		TaskRetention: 1 * time.Hour,

		DBPath: "docchunk.db",
	}

	if path := os.Getenv("DOCCHUNK_CONFIG"); path != "" {
		applyFile(&cfg, path)
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("DOCCHUNK_API_KEY", cfg.APIKey)

	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)

	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)

	cfg.DefaultStrategy = envOr("DEFAULT_STRATEGY", cfg.DefaultStrategy)
	cfg.DefaultMaxTokens = envInt("DEFAULT_MAX_TOKENS", cfg.DefaultMaxTokens)
	cfg.DefaultOverlap = envInt("DEFAULT_OVERLAP", cfg.DefaultOverlap)
	cfg.DefaultMinTokens = envInt("DEFAULT_MIN_TOKENS", cfg.DefaultMinTokens)
	cfg.TokenScheme = envOr("TOKEN_SCHEME", cfg.TokenScheme)
	cfg.CohesionThreshold = envFloat("COHESION_THRESHOLD", cfg.CohesionThreshold)

	cfg.TaskRetention = envDuration("TASK_RETENTION", cfg.TaskRetention)

	cfg.DBPath = envOr("DB_PATH", cfg.DBPath)

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.DefaultMaxTokens <= 0 {
		cfg.DefaultMaxTokens = 512
	}
	if cfg.DefaultOverlap < 0 {
		cfg.DefaultOverlap = 0
	}
	if cfg.DefaultMinTokens < 0 {
		cfg.DefaultMinTokens = 0
	}
	if cfg.TaskRetention <= 0 {
		cfg.TaskRetention = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCCHUNK_API_KEY is required")
	}
	if c.DefaultOverlap >= c.DefaultMaxTokens {
		return fmt.Errorf("DEFAULT_OVERLAP must be smaller than DEFAULT_MAX_TOKENS")
	}
	return nil
}

// fileConfig mirrors Config with pointer fields so absent keys leave the
// defaults alone.
type fileConfig struct {
	Port              *string  `yaml:"port"`
	APIKey            *string  `yaml:"api_key"`
	WorkerCount       *int     `yaml:"worker_count"`
	MaxQueueSize      *int     `yaml:"max_queue_size"`
	MaxUploadBytes    *int64   `yaml:"max_upload_bytes"`
	DefaultStrategy   *string  `yaml:"default_strategy"`
	DefaultMaxTokens  *int     `yaml:"default_max_tokens"`
	DefaultOverlap    *int     `yaml:"default_overlap"`
	DefaultMinTokens  *int     `yaml:"default_min_tokens"`
	TokenScheme       *string  `yaml:"token_scheme"`
	CohesionThreshold *float64 `yaml:"cohesion_threshold"`
	TaskRetention     *string  `yaml:"task_retention"`
	DBPath            *string  `yaml:"db_path"`
}

func applyFile(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return
	}
	if fc.Port != nil {
		cfg.Port = *fc.Port
	}
	if fc.APIKey != nil {
		cfg.APIKey = *fc.APIKey
	}
	if fc.WorkerCount != nil {
		cfg.WorkerCount = *fc.WorkerCount
	}
	if fc.MaxQueueSize != nil {
		cfg.MaxQueueSize = *fc.MaxQueueSize
	}
	if fc.MaxUploadBytes != nil {
		cfg.MaxUploadBytes = *fc.MaxUploadBytes
	}
	if fc.DefaultStrategy != nil {
		cfg.DefaultStrategy = *fc.DefaultStrategy
	}
	if fc.DefaultMaxTokens != nil {
		cfg.DefaultMaxTokens = *fc.DefaultMaxTokens
	}
	if fc.DefaultOverlap != nil {
		cfg.DefaultOverlap = *fc.DefaultOverlap
	}
	if fc.DefaultMinTokens != nil {
		cfg.DefaultMinTokens = *fc.DefaultMinTokens
	}
	if fc.TokenScheme != nil {
		cfg.TokenScheme = *fc.TokenScheme
	}
	if fc.CohesionThreshold != nil {
		cfg.CohesionThreshold = *fc.CohesionThreshold
	}
	if fc.TaskRetention != nil {
		if d, err := time.ParseDuration(*fc.TaskRetention); err == nil {
			cfg.TaskRetention = d
		}
	}
	if fc.DBPath != nil {
		cfg.DBPath = *fc.DBPath
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
