package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/syssam/graphcache/dialect"
)

// Config is the YAML configuration of the command.
//
//	dialect: postgres
//	dsn: postgres://localhost/library?sslmode=disable
//	schema: library.yaml
//	wait: 2ms
//	max_batch: 500
//	slow_threshold: 50ms
type Config struct {
	// Dialect is the database/sql driver name: postgres, mysql or sqlite.
	Dialect string `yaml:"dialect"`
	// DSN is the data source name passed to the driver.
	DSN string `yaml:"dsn"`
	// Schema is the path of the schema file, relative to the config file.
	Schema string `yaml:"schema"`
	// Wait is the batching window of the loaders.
	Wait time.Duration `yaml:"wait,omitempty"`
	// MaxBatch caps the identifiers per lookup. Zero means unlimited.
	MaxBatch int `yaml:"max_batch,omitempty"`
	// SlowThreshold is the duration above which queries are logged.
	SlowThreshold time.Duration `yaml:"slow_threshold,omitempty"`
}

// LoadConfig reads the config file at path and resolves the schema path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if cfg.Schema != "" && !filepath.IsAbs(cfg.Schema) {
		cfg.Schema = filepath.Join(filepath.Dir(path), cfg.Schema)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Dialect {
	case dialect.Postgres, dialect.MySQL, dialect.SQLite:
	case "":
		return fmt.Errorf("missing dialect")
	default:
		return fmt.Errorf("unsupported dialect %q", c.Dialect)
	}
	switch {
	case c.DSN == "":
		return fmt.Errorf("missing dsn")
	case c.Schema == "":
		return fmt.Errorf("missing schema")
	case c.Wait < 0:
		return fmt.Errorf("negative wait %s", c.Wait)
	case c.MaxBatch < 0:
		return fmt.Errorf("negative max_batch %d", c.MaxBatch)
	}
	return nil
}
