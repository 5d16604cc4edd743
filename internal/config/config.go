// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	HTTPAddr       string `mapstructure:"HTTP_ADDR"`
	DBURL          string `mapstructure:"DB_URL"`
	MigrationsPath string `mapstructure:"MIGRATIONS_PATH"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL"`

	GithubAPIURL          string `mapstructure:"GITHUB_API_URL"`
	GithubDiffConcurrency int    `mapstructure:"GITHUB_DIFF_CONCURRENCY"`

	GitBackend             string `mapstructure:"GIT_BACKEND"`
	GitLogMaxCount         int    `mapstructure:"GIT_LOG_MAX_COUNT"`
	DefaultRepositoryLabel string `mapstructure:"DEFAULT_REPOSITORY_LABEL"`

	LLMProvider  string        `mapstructure:"LLM_PROVIDER"`
	LLMModel     string        `mapstructure:"LLM_MODEL"`
	LLMAPIKey    string        `mapstructure:"LLM_API_KEY"`
	LLMBaseURL   string        `mapstructure:"LLM_BASE_URL"`
	LLMMaxTokens int           `mapstructure:"LLM_MAX_TOKENS"`
	LLMTimeout   time.Duration `mapstructure:"LLM_TIMEOUT"`

	NotionAPIKey     string `mapstructure:"NOTION_API_KEY"`
	NotionDatabaseID string `mapstructure:"NOTION_DATABASE_ID"`

	RedisAddr string `mapstructure:"REDIS_ADDR"`
}

var defaults = map[string]any{
	"LOG_LEVEL":                "info",
	"HTTP_ADDR":                ":8080",
	"MIGRATIONS_PATH":          "file://migrations",
	"JWT_TTL":                  "24h",
	"GITHUB_DIFF_CONCURRENCY":  5,
	"GIT_BACKEND":              "exec",
	"GIT_LOG_MAX_COUNT":        10,
	"DEFAULT_REPOSITORY_LABEL": "Gibwerk",
	"LLM_PROVIDER":             "anthropic",
	"LLM_MODEL":                "claude-3-opus-20240229",
	"LLM_MAX_TOKENS":           1000,
	"LLM_TIMEOUT":              "60s",
}

// Keys without a default still need binding so viper.Unmarshal sees them
// when they only exist in the environment.
var optionalKeys = []string{
	"DB_URL",
	"JWT_SECRET",
	"GITHUB_API_URL",
	"LLM_API_KEY",
	"LLM_BASE_URL",
	"NOTION_API_KEY",
	"NOTION_DATABASE_ID",
	"REDIS_ADDR",
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// Load from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if file not found

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range optionalKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DBURL == "" {
		return errors.New("DB_URL is a required configuration field")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is a required configuration field")
	}
	switch c.GitBackend {
	case "exec", "gogit":
	default:
		return fmt.Errorf("GIT_BACKEND must be one of exec, gogit (got %q)", c.GitBackend)
	}
	if c.GitLogMaxCount <= 0 {
		return errors.New("GIT_LOG_MAX_COUNT must be positive")
	}
	if c.GithubDiffConcurrency <= 0 {
		return errors.New("GITHUB_DIFF_CONCURRENCY must be positive")
	}
	if c.LLMMaxTokens <= 0 {
		return errors.New("LLM_MAX_TOKENS must be positive")
	}
	if c.LLMTimeout <= 0 {
		return errors.New("LLM_TIMEOUT must be a positive duration")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be a positive duration")
	}
	return nil
}

// NotionEnabled reports whether both Notion settings are present.
func (c *Config) NotionEnabled() bool {
	return c.NotionAPIKey != "" && c.NotionDatabaseID != ""
}
