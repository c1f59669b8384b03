package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultAPIBaseURL is the local development verification service.
const DefaultAPIBaseURL = "http://localhost:4000"

// Config captures client and dev server settings. Every key can be set from
// the environment or from an optional mobileauth.yaml.
type Config struct {
	Env       string `mapstructure:"APP_ENV"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Auth client.
	APIBaseURL     string        `mapstructure:"API_BASE_URL"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	// Dev verification server.
	DevServerAddr        string        `mapstructure:"DEV_SERVER_ADDR"`
	DevMetricsAddr       string        `mapstructure:"DEV_METRICS_ADDR"`
	DevSigningKey        string        `mapstructure:"DEV_SIGNING_KEY"`
	DevCodeTTL           time.Duration `mapstructure:"DEV_CODE_TTL"`
	DevTokenTTL          time.Duration `mapstructure:"DEV_TOKEN_TTL"`
	DevMaxVerifyAttempts int           `mapstructure:"DEV_MAX_VERIFY_ATTEMPTS"`
	DevMaxSends          int           `mapstructure:"DEV_MAX_SENDS"`
	DevSendWindow        time.Duration `mapstructure:"DEV_SEND_WINDOW"`
	DevFixedCode         string        `mapstructure:"DEV_FIXED_CODE"`
}

var defaults = map[string]any{
	"APP_ENV":                 "development",
	"LOG_LEVEL":               "info",
	"LOG_FORMAT":              "json",
	"API_BASE_URL":            DefaultAPIBaseURL,
	"REQUEST_TIMEOUT":         "30s",
	"DEV_SERVER_ADDR":         ":4000",
	"DEV_METRICS_ADDR":        ":9090",
	"DEV_SIGNING_KEY":         "dev-secret-key-change-me",
	"DEV_CODE_TTL":            "10m",
	"DEV_TOKEN_TTL":           "1h",
	"DEV_MAX_VERIFY_ATTEMPTS": 5,
	"DEV_MAX_SENDS":           5,
	"DEV_SEND_WINDOW":         "10m",
	"DEV_FIXED_CODE":          "",
}

// Load builds a Config from defaults, an optional mobileauth.yaml in the
// working directory or ./config, and the environment, in increasing priority.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("mobileauth")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the client or dev server cannot run with.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute http(s) URL, got %q", c.APIBaseURL)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must not be negative")
	}
	if c.DevCodeTTL <= 0 || c.DevTokenTTL <= 0 || c.DevSendWindow <= 0 {
		return fmt.Errorf("DEV_CODE_TTL, DEV_TOKEN_TTL and DEV_SEND_WINDOW must be positive")
	}
	if c.DevMaxVerifyAttempts <= 0 || c.DevMaxSends <= 0 {
		return fmt.Errorf("DEV_MAX_VERIFY_ATTEMPTS and DEV_MAX_SENDS must be positive")
	}
	if c.DevFixedCode != "" && !isSixDigits(c.DevFixedCode) {
		return fmt.Errorf("DEV_FIXED_CODE must be 6 digits")
	}
	return nil
}

// IsProduction reports whether the app runs against a production backend.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func isSixDigits(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
