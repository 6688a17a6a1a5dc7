// Package config loads application configuration from a YAML file and
// environment variables. Priority: ENV > YAML > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root application configuration, shared by the TUI and
// the HTTP service.
type Config struct {
	OwnerID string       `yaml:"owner_id" env:"MARKS_OWNER_ID" env-default:"local"`
	Server  ServerConfig `yaml:"server"`
	Store   StoreConfig  `yaml:"store"`
	Redis   RedisConfig  `yaml:"redis"`
	Log     LogConfig    `yaml:"log"`
}

// ServerConfig holds settings for `marks serve`.
type ServerConfig struct {
	Addr            string `yaml:"addr"             env:"MARKS_SERVER_ADDR"             env-default:":8080"`
	ShutdownTimeout string `yaml:"shutdown_timeout" env:"MARKS_SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// StoreConfig selects and configures the bookmark store backend.
type StoreConfig struct {
	// Backend is "sqlite" or "postgres".
	Backend     string `yaml:"backend"      env:"MARKS_STORE_BACKEND" env-default:"sqlite"`
	SQLitePath  string `yaml:"sqlite_path"  env:"MARKS_SQLITE_PATH"`
	PostgresDSN string `yaml:"postgres_dsn" env:"MARKS_POSTGRES_DSN"`
}

// RedisConfig configures the shared change feed. An empty Addr keeps the
// feed in-process only.
type RedisConfig struct {
	Addr     string `yaml:"addr"     env:"MARKS_REDIS_ADDR"`
	Password string `yaml:"password" env:"MARKS_REDIS_PASSWORD"`
	DB       int    `yaml:"db"       env:"MARKS_REDIS_DB" env-default:"0"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level" env:"MARKS_LOG_LEVEL" env-default:"info"`
	// File receives TUI logs; terminal output would corrupt the screen.
	File string `yaml:"file" env:"MARKS_LOG_FILE"`
}

// Load reads configuration. The YAML file path comes from MARKS_CONFIG
// (fallback ~/.config/marks/config.yaml). A missing fallback file is not
// an error; an explicitly configured one is.
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv("MARKS_CONFIG")
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case "sqlite":
	case "postgres":
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("store.postgres_dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("store.backend must be \"sqlite\" or \"postgres\" (got %q)", c.Store.Backend)
	}
	if c.OwnerID == "" {
		return fmt.Errorf("owner_id must not be empty")
	}
	return nil
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.yaml"
	}
	return filepath.Join(home, ".config", "marks", "config.yaml")
}
