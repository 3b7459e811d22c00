package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Storage struct {
		Driver string `yaml:"driver"`
		SQLite struct {
			Path string `yaml:"path"`
		} `yaml:"sqlite"`
		Postgres struct {
			URL string `yaml:"url"`
		} `yaml:"postgres"`
		// Keep is how many snapshots survive each save; 0 keeps all of them.
		Keep int `yaml:"keep"`
	} `yaml:"storage"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Roster struct {
		TTL string `yaml:"ttl"`
	} `yaml:"roster"`
	Reports struct {
		Dir    string `yaml:"dir"`
		Format string `yaml:"format"`
	} `yaml:"reports"`
	Quiz struct {
		Shuffle bool `yaml:"shuffle"`
	} `yaml:"quiz"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Default is used when no config file exists.
func Default() Config {
	var cfg Config
	cfg.Storage.Driver = DriverSQLite
	cfg.Storage.SQLite.Path = "quiz.db"
	cfg.Storage.Keep = 10
	cfg.Redis.TTL = "10m"
	cfg.Roster.TTL = "10m"
	cfg.Reports.Dir = "."
	cfg.Reports.Format = "txt"
	cfg.Quiz.Shuffle = true
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

// Load reads YAML config from path on top of Default. A missing file is not an error.
// The result is not validated, callers apply their overrides and then call Validate.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.SQLite.Path == "" {
			return errors.New("storage.sqlite.path is required")
		}
	case DriverPostgres:
		if c.Storage.Postgres.URL == "" {
			return errors.New("storage.postgres.url is required")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Keep < 0 {
		return fmt.Errorf("storage.keep must not be negative, got %d", c.Storage.Keep)
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
