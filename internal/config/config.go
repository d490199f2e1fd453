package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the moviereco configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Cache      CacheConfig      `yaml:"cache"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Resilience ResilienceConfig `yaml:"resilience"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	CORSOrigins     []string `yaml:"cors_origins"`
	RateLimitRPM    int      `yaml:"rate_limit_rpm"` // 0 = disabled
}

// DatabaseConfig holds Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
}

// EmbeddingConfig holds the OpenAI-compatible embedding endpoint settings.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	TimeoutSec int    `yaml:"timeout_sec"`
	Cache      bool   `yaml:"cache"`
}

// GenerationConfig holds the chat completion endpoint settings.
type GenerationConfig struct {
	Provider     string  `yaml:"provider"`
	APIKey       string  `yaml:"api_key"`
	BaseURL      string  `yaml:"base_url"`
	Model        string  `yaml:"model"`
	SystemPrompt string  `yaml:"system_prompt"`
	Temperature  float32 `yaml:"temperature"`
	TopP         float32 `yaml:"top_p"`
	MaxTokens    int     `yaml:"max_tokens"`
	TimeoutSec   int     `yaml:"timeout_sec"`
}

// RetrievalConfig holds candidate retrieval limits.
type RetrievalConfig struct {
	GenreLimit      int `yaml:"genre_limit"`
	SimilarN        int `yaml:"similar_n"`
	SimilarCap      int `yaml:"similar_cap"`
	VectorCandidate int `yaml:"vector_candidates"` // EF_RUNTIME
	HNSWM           int `yaml:"hnsw_m"`
	HNSWEFConstruct int `yaml:"hnsw_ef_construction"`
}

// CacheConfig holds query cache settings.
type CacheConfig struct {
	NormalizeKeys bool `yaml:"normalize_keys"`
}

// CatalogConfig holds TMDB seeding settings.
type CatalogConfig struct {
	APIKey     string  `yaml:"api_key"`
	BaseURL    string  `yaml:"base_url"`
	Language   string  `yaml:"language"`
	Pages      int     `yaml:"pages"`
	RatePerSec float64 `yaml:"rate_per_sec"`
	Workers    int     `yaml:"workers"`
}

// ResilienceConfig holds retry and circuit breaker settings for outbound clients.
type ResilienceConfig struct {
	MaxAttempts      int `yaml:"max_attempts"`
	BreakerFailures  int `yaml:"breaker_failures"`
	BreakerOpenSec   int `yaml:"breaker_open_sec"`
	InitialBackoffMS int `yaml:"initial_backoff_ms"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit YAML path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 5001
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if len(c.HTTP.CORSOrigins) == 0 {
		c.HTTP.CORSOrigins = []string{"*"}
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "movies:"
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "local"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "all-MiniLM-L6-v2"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 384
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 10
	}

	if c.Generation.Provider == "" {
		c.Generation.Provider = "groq"
	}
	if c.Generation.BaseURL == "" {
		c.Generation.BaseURL = "https://api.groq.com/openai/v1"
	}
	if c.Generation.Model == "" {
		c.Generation.Model = "llama-3.3-70b-versatile"
	}
	if c.Generation.SystemPrompt == "" {
		c.Generation.SystemPrompt = "You are a movie recommendation assistant."
	}
	if c.Generation.Temperature <= 0 {
		c.Generation.Temperature = 0.7
	}
	if c.Generation.TopP <= 0 {
		c.Generation.TopP = 1
	}
	if c.Generation.MaxTokens <= 0 {
		c.Generation.MaxTokens = 1024
	}
	if c.Generation.TimeoutSec <= 0 {
		c.Generation.TimeoutSec = 30
	}

	if c.Retrieval.GenreLimit <= 0 {
		c.Retrieval.GenreLimit = 150
	}
	if c.Retrieval.SimilarN <= 0 {
		c.Retrieval.SimilarN = 5
	}
	if c.Retrieval.SimilarCap <= 0 {
		c.Retrieval.SimilarCap = 20
	}
	if c.Retrieval.VectorCandidate <= 0 {
		c.Retrieval.VectorCandidate = 1000
	}
	if c.Retrieval.HNSWM <= 0 {
		c.Retrieval.HNSWM = 16
	}
	if c.Retrieval.HNSWEFConstruct <= 0 {
		c.Retrieval.HNSWEFConstruct = 200
	}

	if c.Catalog.BaseURL == "" {
		c.Catalog.BaseURL = "https://api.themoviedb.org/3"
	}
	if c.Catalog.Language == "" {
		c.Catalog.Language = "en-US"
	}
	if c.Catalog.Pages <= 0 {
		c.Catalog.Pages = 500
	}
	if c.Catalog.RatePerSec <= 0 {
		c.Catalog.RatePerSec = 20
	}
	if c.Catalog.Workers <= 0 {
		c.Catalog.Workers = 4
	}

	if c.Resilience.MaxAttempts <= 0 {
		c.Resilience.MaxAttempts = 3
	}
	if c.Resilience.BreakerFailures <= 0 {
		c.Resilience.BreakerFailures = 5
	}
	if c.Resilience.BreakerOpenSec <= 0 {
		c.Resilience.BreakerOpenSec = 30
	}
	if c.Resilience.InitialBackoffMS <= 0 {
		c.Resilience.InitialBackoffMS = 200
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.HTTP.RateLimitRPM < 0 {
		return fmt.Errorf("http.rate_limit_rpm must not be negative, got %d", c.HTTP.RateLimitRPM)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Embedding.BaseURL == "" {
		return fmt.Errorf("embedding.base_url is required")
	}
	if c.Generation.Temperature > 2 {
		return fmt.Errorf("generation.temperature must be in (0, 2], got %g", c.Generation.Temperature)
	}
	if c.Generation.TopP > 1 {
		return fmt.Errorf("generation.top_p must be in (0, 1], got %g", c.Generation.TopP)
	}
	if c.Retrieval.SimilarCap < c.Retrieval.SimilarN {
		return fmt.Errorf(
			"retrieval.similar_cap (%d) must be >= retrieval.similar_n (%d)",
			c.Retrieval.SimilarCap, c.Retrieval.SimilarN,
		)
	}
	if c.Retrieval.VectorCandidate < c.Retrieval.SimilarCap {
		return fmt.Errorf(
			"retrieval.vector_candidates (%d) must be >= retrieval.similar_cap (%d)",
			c.Retrieval.VectorCandidate, c.Retrieval.SimilarCap,
		)
	}
	return nil
}

// EmbeddingTimeout returns the per-call embedding timeout.
func (c *Config) EmbeddingTimeout() time.Duration {
	return time.Duration(c.Embedding.TimeoutSec) * time.Second
}

// GenerationTimeout returns the per-call generation timeout.
func (c *Config) GenerationTimeout() time.Duration {
	return time.Duration(c.Generation.TimeoutSec) * time.Second
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
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
