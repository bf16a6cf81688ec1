package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends for the credential store.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type AppConfig struct {
	LogLevel string `yaml:"log_level"`
}

type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type StorageConfig struct {
	Backend    string      `yaml:"backend"`
	Path       string      `yaml:"path"`
	SQLitePath string      `yaml:"sqlite_path"`
	Redis      RedisConfig `yaml:"redis"`
}

type ConfigFile struct {
	App     AppConfig     `yaml:"app"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
}

// Config is the resolved runtime configuration.
type Config struct {
	LogLevel       string
	APIBaseURL     string
	RequestTimeout time.Duration
	StorageBackend string
	StoragePath    string
	SQLitePath     string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads config/config.yml, then applies environment overrides.
func Load() (*Config, error) {
	return LoadFrom("config/config.yml")
}

// LoadFrom reads the given config file and applies environment overrides.
func LoadFrom(path string) (*Config, error) {
	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	timeout, err := time.ParseDuration(env("TAXIRANK_API_TIMEOUT", configFile.API.Timeout))
	if err != nil {
		return nil, fmt.Errorf("invalid API timeout: %w", err)
	}

	cfg := &Config{
		LogLevel:       env("TAXIRANK_LOG_LEVEL", configFile.App.LogLevel),
		APIBaseURL:     env("TAXIRANK_API_URL", configFile.API.BaseURL),
		RequestTimeout: timeout,
		StorageBackend: env("TAXIRANK_STORAGE_BACKEND", configFile.Storage.Backend),
		StoragePath:    env("TAXIRANK_STORAGE_PATH", configFile.Storage.Path),
		SQLitePath:     env("TAXIRANK_SQLITE_PATH", configFile.Storage.SQLitePath),
		RedisAddr:      env("TAXIRANK_REDIS_ADDR", configFile.Storage.Redis.Addr),
		RedisPassword:  env("TAXIRANK_REDIS_PASSWORD", configFile.Storage.Redis.Password),
		RedisDB:        configFile.Storage.Redis.DB,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api base_url is required")
	}
	switch c.StorageBackend {
	case BackendFile:
		if c.StoragePath == "" {
			c.StoragePath = defaultStoragePath()
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("storage sqlite_path is required for the sqlite backend")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("storage redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	return nil
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "credentials.json"
	}
	return filepath.Join(home, ".taxirank", "credentials.json")
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}
