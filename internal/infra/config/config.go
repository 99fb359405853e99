package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the companion.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Backend BackendConfig `yaml:"backend"`
	Reading ReadingConfig `yaml:"reading"`
	Cache   CacheConfig   `yaml:"cache"`
	Auth    AuthConfig    `yaml:"auth"`
}

// HTTPConfig controls the local JSON surface.
type HTTPConfig struct {
	Address        string        `yaml:"address"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	AllowedOrigins []string      `yaml:"allowedOrigins"`
}

// BackendConfig points at the remote tarot API.
type BackendConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// ReadingConfig tunes the reading wizard.
type ReadingConfig struct {
	HandSize       int           `yaml:"handSize"`
	DefaultDetail  string        `yaml:"defaultDetail"`
	StatusInterval time.Duration `yaml:"statusInterval"`
	StatusMessages []string      `yaml:"statusMessages"`
	CatalogTTL     time.Duration `yaml:"catalogTtl"`
}

// CacheConfig selects the catalog cache backend.
type CacheConfig struct {
	Valkey ValkeyConfig `yaml:"valkey"`
}

// ValkeyConfig contains connection information for the shared cache.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// AuthConfig controls where the bearer token is kept.
type AuthConfig struct {
	TokenPath string `yaml:"tokenPath"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		origins := make([]string, 0)
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		cfg.HTTP.AllowedOrigins = origins
	}
	if v := os.Getenv("TAROT_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("TAROT_BACKEND_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Backend.Timeout = parsed
		}
	}
	if v := os.Getenv("READING_HAND_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Reading.HandSize = parsed
		}
	}
	if v := os.Getenv("READING_DEFAULT_DETAIL"); v != "" {
		cfg.Reading.DefaultDetail = v
	}
	if v := os.Getenv("READING_STATUS_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Reading.StatusInterval = parsed
		}
	}
	if v := os.Getenv("READING_CATALOG_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Reading.CatalogTTL = parsed
		}
	}
	if v := os.Getenv("VALKEY_ENABLED"); v != "" {
		cfg.Cache.Valkey.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("VALKEY_ADDR"); v != "" {
		cfg.Cache.Valkey.Addr = v
	}
	if v := os.Getenv("TAROT_TOKEN_PATH"); v != "" {
		cfg.Auth.TokenPath = v
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 90 * time.Second,
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:5000",
			Timeout: 60 * time.Second,
		},
		Reading: ReadingConfig{
			HandSize:       20,
			DefaultDetail:  "detailed",
			StatusInterval: 2 * time.Second,
			CatalogTTL:     6 * time.Hour,
		},
		Cache: CacheConfig{
			Valkey: ValkeyConfig{
				Enabled: false,
				Prefix:  "tarot",
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return errors.New("backend.baseUrl cannot be empty")
	}
	if c.Backend.Timeout <= 0 {
		return errors.New("backend.timeout must be positive")
	}
	if c.Reading.HandSize <= 0 {
		return errors.New("reading.handSize must be positive")
	}
	if c.Reading.DefaultDetail != "detailed" && c.Reading.DefaultDetail != "brief" {
		return errors.New("reading.defaultDetail must be detailed or brief")
	}
	if c.Reading.StatusInterval <= 0 {
		return errors.New("reading.statusInterval must be positive")
	}
	if c.Reading.CatalogTTL < 0 {
		return errors.New("reading.catalogTtl cannot be negative")
	}
	if c.Cache.Valkey.Enabled && strings.TrimSpace(c.Cache.Valkey.Addr) == "" {
		return errors.New("cache.valkey.addr cannot be empty when valkey is enabled")
	}
	return nil
}
