// Package config provides application configuration with multi-source
// priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (DATABASE_URL, TAHLIL_* overrides)
//  2. Config file (~/.tahlil/config.yaml or ./config.yaml)
//  3. Default values
//
// GEMINI_API_KEY is read directly by Genkit, not through Viper; Validate only
// checks it is present.
//
// Sensitive fields (the database password) are masked in MarshalJSON.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	"github.com/tatweerlabs/tahlil/internal/rag"
)

var (
	// ErrMissingAPIKey indicates GEMINI_API_KEY is not set.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidPort indicates the HTTP port is out of range.
	ErrInvalidPort = errors.New("invalid port")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is empty.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the database name is empty.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidRerankerURL indicates the reranker base URL is empty.
	ErrInvalidRerankerURL = errors.New("invalid reranker URL")

	// ErrInvalidPipeline indicates the retrieval tunables are inconsistent.
	ErrInvalidPipeline = errors.New("invalid pipeline configuration")

	// ErrInvalidRateLimit indicates the rate limit values are out of range.
	ErrInvalidRateLimit = errors.New("invalid rate limit")
)

// Config stores the service configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON. When
// adding new secrets, update MarshalJSON.
type Config struct {
	// HTTP server
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`

	// Model configuration
	GenModel      string `mapstructure:"gen_model" json:"gen_model"`
	EmbedderModel string `mapstructure:"embedder_model" json:"embedder_model"`
	EmbedDim      int    `mapstructure:"embed_dim" json:"embed_dim"`

	// Cross-encoder reranking service
	RerankerURL   string `mapstructure:"reranker_url" json:"reranker_url"`
	RerankerModel string `mapstructure:"reranker_model" json:"reranker_model"`

	// Retrieval tunables
	FetchK        int `mapstructure:"fetch_k" json:"fetch_k"`
	RerankK       int `mapstructure:"rerank_k" json:"rerank_k"`
	ContextK      int `mapstructure:"context_k" json:"context_k"`
	ReserveOffset int `mapstructure:"reserve_offset" json:"reserve_offset"`
	HistoryWindow int `mapstructure:"history_window" json:"history_window"`

	// Storage configuration
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`

	// HTTP surface
	CORSOrigins    []string `mapstructure:"cors_origins" json:"cors_origins"`
	RateLimitRPS   float64  `mapstructure:"rate_limit_rps" json:"rate_limit_rps"`
	RateLimitBurst int      `mapstructure:"rate_limit_burst" json:"rate_limit_burst"`

	// Logging
	LogLevel string `mapstructure:"log_level" json:"log_level"`
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".tahlil")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine, defaults apply.
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL overrides the individual postgres_* settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("host", "0.0.0.0")
	viper.SetDefault("port", 8080)

	viper.SetDefault("gen_model", "googleai/gemini-2.5-flash")
	viper.SetDefault("embedder_model", "gemini-embedding-001")
	viper.SetDefault("embed_dim", 768)

	viper.SetDefault("reranker_url", "http://localhost:8501")
	viper.SetDefault("reranker_model", "BAAI/bge-reranker-v2-m3")

	viper.SetDefault("fetch_k", 20)
	viper.SetDefault("rerank_k", 10)
	viper.SetDefault("context_k", 6)
	viper.SetDefault("reserve_offset", 6)
	viper.SetDefault("history_window", 3)

	viper.SetDefault("postgres_host", "localhost")
	viper.SetDefault("postgres_port", 5432)
	viper.SetDefault("postgres_user", "tahlil")
	viper.SetDefault("postgres_password", "tahlil_dev_password")
	viper.SetDefault("postgres_db_name", "tahlil")
	viper.SetDefault("postgres_ssl_mode", "disable")

	viper.SetDefault("cors_origins", []string{"http://localhost:4200"})
	viper.SetDefault("rate_limit_rps", 5.0)
	viper.SetDefault("rate_limit_burst", 10)

	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_json", true)
}

// bindEnvVariables binds environment overrides explicitly. GEMINI_API_KEY is
// deliberately absent: Genkit reads it itself.
func bindEnvVariables() {
	// Hardcoded strings cannot fail to bind; a panic here is a bug.
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("port", "TAHLIL_PORT")
	mustBind("reranker_url", "TAHLIL_RERANKER_URL")
	mustBind("cors_origins", "TAHLIL_CORS_ORIGINS")
	mustBind("log_level", "TAHLIL_LOG_LEVEL")
}

// Validate checks the configuration and fails fast on inconsistencies.
func (c *Config) Validate() error {
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY is not set", ErrMissingAPIKey)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host is empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name is empty", ErrInvalidPostgresDBName)
	}
	if c.RerankerURL == "" {
		return fmt.Errorf("%w: URL is empty", ErrInvalidRerankerURL)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("%w: rps=%v burst=%d", ErrInvalidRateLimit, c.RateLimitRPS, c.RateLimitBurst)
	}
	if err := c.PipelineConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPipeline, err)
	}
	return nil
}

// PipelineConfig maps the retrieval tunables onto the pipeline's config type.
func (c *Config) PipelineConfig() rag.Config {
	return rag.Config{
		FetchK:        c.FetchK,
		RerankK:       c.RerankK,
		ContextK:      c.ContextK,
		ReserveOffset: c.ReserveOffset,
		HistoryWindow: c.HistoryWindow,
	}
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// MarshalJSON masks sensitive fields so the config can be logged safely.
func (c *Config) MarshalJSON() ([]byte, error) {
	type alias Config
	masked := alias(*c)
	if masked.PostgresPassword != "" {
		masked.PostgresPassword = "***"
	}
	return json.Marshal(masked)
}
