package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is used when neither the environment nor the config file names a backend.
const DefaultAPIURL = "http://localhost:8000/api/v1"

// ClientConfig holds settings for talking to the knowledge API.
type ClientConfig struct {
	BaseURL        string  `yaml:"base_url"`
	TimeoutSec     int     `yaml:"timeout_sec"`
	MaxUploadBytes int64   `yaml:"max_upload_bytes"`
	SearchPageRate float64 `yaml:"search_page_rate"`
}

// Timeout returns the per-request timeout.
func (c ClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// SessionConfig locates the durable session key/value store.
type SessionConfig struct {
	Dir string `yaml:"dir"`
}

// ObservabilityConfig holds logging and metrics output settings.
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	MetricsFile string `yaml:"metrics_file"`
}

// StandInConfig configures the in-memory stand-in backend.
type StandInConfig struct {
	Port            string `yaml:"port"`
	JWTSecret       string `yaml:"jwt_secret"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
}

// AppConfig is the centralized configuration struct for the binaries.
// It is populated from an optional YAML file and then from environment
// variables, which take precedence.
type AppConfig struct {
	Client        ClientConfig        `yaml:"client"`
	Session       SessionConfig       `yaml:"session"`
	Observability ObservabilityConfig `yaml:"observability"`
	StandIn       StandInConfig       `yaml:"standin"`
}

// Load reads the YAML file named by NIBBLIFY_CONFIG (if any) and overlays
// environment variables. A .env file can be auto-loaded by importing:
// _ "github.com/joho/godotenv/autoload"
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	if path := os.Getenv("NIBBLIFY_CONFIG"); path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *AppConfig) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func (c *AppConfig) applyEnv() {
	c.Client.BaseURL = getEnv("NIBBLIFY_API_URL", c.Client.BaseURL)
	c.Client.TimeoutSec = getEnvInt("NIBBLIFY_HTTP_TIMEOUT_SEC", c.Client.TimeoutSec)
	c.Client.MaxUploadBytes = int64(getEnvInt("NIBBLIFY_MAX_UPLOAD_BYTES", int(c.Client.MaxUploadBytes)))
	c.Client.SearchPageRate = getEnvFloat("NIBBLIFY_SEARCH_PAGE_RATE", c.Client.SearchPageRate)
	c.Session.Dir = getEnv("NIBBLIFY_SESSION_DIR", c.Session.Dir)
	c.Observability.LogLevel = getEnv("NIBBLIFY_LOG_LEVEL", c.Observability.LogLevel)
	c.Observability.MetricsFile = getEnv("NIBBLIFY_METRICS_FILE", c.Observability.MetricsFile)
	c.StandIn.Port = getEnv("STANDIN_PORT", c.StandIn.Port)
	c.StandIn.JWTSecret = getEnv("STANDIN_JWT_SECRET", c.StandIn.JWTSecret)
	c.StandIn.TokenTTLMinutes = getEnvInt("STANDIN_TOKEN_TTL_MINUTES", c.StandIn.TokenTTLMinutes)
}

func (c *AppConfig) applyDefaults() {
	if c.Client.BaseURL == "" {
		c.Client.BaseURL = DefaultAPIURL
	}
	if c.Client.TimeoutSec <= 0 {
		c.Client.TimeoutSec = 30
	}
	if c.Client.MaxUploadBytes <= 0 {
		c.Client.MaxUploadBytes = 10 * 1024 * 1024
	}
	if c.Client.SearchPageRate <= 0 {
		c.Client.SearchPageRate = 5
	}
	if c.Session.Dir == "" {
		c.Session.Dir = defaultSessionDir()
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
	if c.StandIn.Port == "" {
		c.StandIn.Port = "8000"
	}
	if c.StandIn.TokenTTLMinutes <= 0 {
		c.StandIn.TokenTTLMinutes = 60 * 24 * 8
	}
}

func defaultSessionDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "nibblify")
	}
	return filepath.Join(os.TempDir(), "nibblify")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}
