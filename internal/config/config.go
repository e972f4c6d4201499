// Package config loads IdeaSpark settings from defaults, an optional config
// file, environment variables and command-line flags, in that order of
// precedence (flags win).
//
// The config file lives in the IdeaSpark home directory ($IDEASPARK_HOME,
// default ~/.ideaspark) as config.yaml or config.toml. Environment variables
// use the IDEASPARK_ prefix with dots replaced by underscores, e.g.
// IDEASPARK_DB_PATH or IDEASPARK_AI_MODEL.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "IDEASPARK"

// Config is the fully resolved configuration.
type Config struct {
	Home      string          `mapstructure:"home" yaml:"home" toml:"home"`
	DB        DBConfig        `mapstructure:"db" yaml:"db" toml:"db"`
	Log       LogConfig       `mapstructure:"log" yaml:"log" toml:"log"`
	AI        AIConfig        `mapstructure:"ai" yaml:"ai" toml:"ai"`
	Dashboard DashboardConfig `mapstructure:"dashboard" yaml:"dashboard" toml:"dashboard"`
}

// DBConfig locates the task database.
type DBConfig struct {
	Path string `mapstructure:"path" yaml:"path" toml:"path"`
}

// LogConfig controls the shared log sink.
type LogConfig struct {
	File       string `mapstructure:"file" yaml:"file" toml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups" toml:"max_backups"`
	Verbose    bool   `mapstructure:"verbose" yaml:"verbose" toml:"verbose"`
}

// AIConfig configures the idea generator.
type AIConfig struct {
	APIKey            string        `mapstructure:"api_key" yaml:"api_key" toml:"api_key"`
	Model             string        `mapstructure:"model" yaml:"model" toml:"model"`
	BaseURL           string        `mapstructure:"base_url" yaml:"base_url" toml:"base_url"`
	MaxTokens         int           `mapstructure:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`
	Temperature       float64       `mapstructure:"temperature" yaml:"temperature" toml:"temperature"`
	MaxRetries        int           `mapstructure:"max_retries" yaml:"max_retries" toml:"max_retries"`
	InitialRetryDelay time.Duration `mapstructure:"initial_retry_delay" yaml:"initial_retry_delay" toml:"initial_retry_delay"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout" toml:"timeout"`
	Language          string        `mapstructure:"language" yaml:"language" toml:"language"`
}

// DashboardConfig configures the live dashboard.
type DashboardConfig struct {
	Port     int           `mapstructure:"port" yaml:"port" toml:"port"`
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce" toml:"debounce"`
}

// DefaultHome returns $IDEASPARK_HOME, falling back to ~/.ideaspark.
func DefaultHome() string {
	if home := os.Getenv(EnvPrefix + "_HOME"); home != "" {
		return home
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return ".ideaspark"
	}
	return filepath.Join(userHome, ".ideaspark")
}

// New returns a viper instance with defaults and environment binding set up
// for the given home directory. Callers may bind flags onto it before Load.
func New(home string) *viper.Viper {
	v := viper.New()

	v.SetDefault("home", home)
	v.SetDefault("db.path", filepath.Join(home, "ideaspark.db"))

	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.verbose", false)

	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "claude-sonnet-4-5")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.max_tokens", 256)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.max_retries", 5)
	v.SetDefault("ai.initial_retry_delay", "3s")
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("ai.language", "en")

	v.SetDefault("dashboard.port", 8080)
	v.SetDefault("dashboard.debounce", "200ms")

	v.SetConfigName("config")
	v.AddConfigPath(home)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file (if present) and resolves every setting.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MaxAIRetries is the largest accepted ai.max_retries.
const MaxAIRetries = 20

// Validate checks that the resolved values are usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DB.Path) == "" {
		return fmt.Errorf("db.path is required")
	}
	if c.AI.MaxRetries < 1 || c.AI.MaxRetries > MaxAIRetries {
		return fmt.Errorf("ai.max_retries must be between 1 and %d (got %d)", MaxAIRetries, c.AI.MaxRetries)
	}
	if c.AI.InitialRetryDelay < 0 {
		return fmt.Errorf("ai.initial_retry_delay cannot be negative")
	}
	if c.AI.Language != "en" && c.AI.Language != "id" {
		return fmt.Errorf("ai.language must be en or id (got %q)", c.AI.Language)
	}
	if c.Dashboard.Port < 0 || c.Dashboard.Port > 65535 {
		return fmt.Errorf("dashboard.port out of range (got %d)", c.Dashboard.Port)
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.AI.APIKey != "" {
		c.AI.APIKey = "********"
	}
	return c
}
