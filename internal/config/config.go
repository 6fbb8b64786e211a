package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the matchd configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Matching  MatchingConfig  `yaml:"matching"`
	Autonomy  AutonomyConfig  `yaml:"autonomy"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// HTTPConfig holds HTTP server settings. Empty APIKeys disables auth.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	APIKeys         []string `yaml:"api_keys"`
}

// DatabaseConfig holds store connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	Dimensions     int    `yaml:"dimensions"`
	TimeoutSec     int    `yaml:"timeout_sec"`
	MaxAttempts    int    `yaml:"max_attempts"`
	BackoffBaseSec int    `yaml:"backoff_base_sec"`
	CacheEnabled   bool   `yaml:"cache_enabled"`
}

// MatchingConfig holds scorer and ranker tunables.
type MatchingConfig struct {
	RelevanceWeight   float64 `yaml:"relevance_weight"`
	TrustWeight       float64 `yaml:"trust_weight"`
	ReciprocityWeight float64 `yaml:"reciprocity_weight"`
	RelevanceFloor    float64 `yaml:"relevance_floor"`
	MinOverall        float64 `yaml:"min_overall"`
	TopK              int     `yaml:"top_k"`
	MaxInFlight       int     `yaml:"max_in_flight"`
}

// AutonomyConfig holds autonomy gate tunables.
type AutonomyConfig struct {
	AutoFloor    float64 `yaml:"auto_floor"`
	VetoWindowHr int     `yaml:"veto_window_hours"`
}

// LifecycleConfig holds lifecycle window settings.
type LifecycleConfig struct {
	ResponseWindowDays   int `yaml:"response_window_days"`
	CompletionWindowDays int `yaml:"completion_window_days"`
}

// StorageConfig holds store key settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// Load reads configuration from config/<env>.yaml with ${VAR:-default}
// environment expansion.
func Load(env string) (Config, error) {
	path := filepath.Join("config", fmt.Sprintf("%s.yaml", env))

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from ENV, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with the documented defaults.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 15
	}
	if c.Embedding.MaxAttempts <= 0 {
		c.Embedding.MaxAttempts = 3
	}
	if c.Embedding.BackoffBaseSec <= 0 {
		c.Embedding.BackoffBaseSec = 1
	}
	if c.Matching.RelevanceWeight <= 0 && c.Matching.TrustWeight <= 0 && c.Matching.ReciprocityWeight <= 0 {
		c.Matching.RelevanceWeight = 0.5
		c.Matching.TrustWeight = 0.25
		c.Matching.ReciprocityWeight = 0.25
	}
	if c.Matching.RelevanceFloor <= 0 {
		c.Matching.RelevanceFloor = 0.6
	}
	if c.Matching.MinOverall <= 0 {
		c.Matching.MinOverall = 0.6
	}
	if c.Matching.TopK <= 0 {
		c.Matching.TopK = 50
	}
	if c.Matching.MaxInFlight <= 0 {
		c.Matching.MaxInFlight = 10
	}
	if c.Autonomy.AutoFloor <= 0 {
		c.Autonomy.AutoFloor = 0.75
	}
	if c.Autonomy.VetoWindowHr <= 0 {
		c.Autonomy.VetoWindowHr = 24
	}
	if c.Lifecycle.ResponseWindowDays <= 0 {
		c.Lifecycle.ResponseWindowDays = 7
	}
	if c.Lifecycle.CompletionWindowDays <= 0 {
		c.Lifecycle.CompletionWindowDays = 30
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "pf:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	sum := c.Matching.RelevanceWeight + c.Matching.TrustWeight + c.Matching.ReciprocityWeight
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("matching weights must sum to 1.0, got %v", sum)
	}
	if c.Matching.RelevanceFloor < 0 || c.Matching.RelevanceFloor > 1 {
		return fmt.Errorf("matching.relevance_floor must be in [0,1], got %v", c.Matching.RelevanceFloor)
	}
	if c.Matching.MinOverall < 0 || c.Matching.MinOverall > 1 {
		return fmt.Errorf("matching.min_overall must be in [0,1], got %v", c.Matching.MinOverall)
	}
	if c.Autonomy.AutoFloor < 0 || c.Autonomy.AutoFloor > 1 {
		return fmt.Errorf("autonomy.auto_floor must be in [0,1], got %v", c.Autonomy.AutoFloor)
	}
	return nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
