// Package config loads service configuration. An optional YAML file sets
// the base values and environment variables override it, so containerized
// deployments can stay file-free.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Backend names accepted for PAYMENTS_BACKEND.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendFile     = "file"
)

type Config struct {
	// HTTP Server
	Port string `yaml:"port"`

	// Persistence backend for ledger snapshots
	Backend     string `yaml:"backend"`
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
	DataDir     string `yaml:"data_dir"`

	// AMQP change notifications (optional, empty URL disables)
	AMQPURL      string `yaml:"amqp_url"`
	AMQPExchange string `yaml:"amqp_exchange"`
	AMQPQueue    string `yaml:"amqp_queue"`
}

// Load reads the optional YAML file named by PAYMENTS_CONFIG_FILE (or
// ./config.yaml when present), then applies environment overrides.
func Load() (*Config, error) {
	cfg := &Config{
		Port:         "8082",
		Backend:      BackendMemory,
		SQLitePath:   "./data/vendorpay.db",
		AMQPExchange: "vendorpay",
		AMQPQueue:    "ledger_changes",
	}

	path := os.Getenv("PAYMENTS_CONFIG_FILE")
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Backend = getEnv("PAYMENTS_BACKEND", cfg.Backend)
	cfg.SQLitePath = getEnv("SQLITE_DB_PATH", cfg.SQLitePath)
	cfg.PostgresDSN = getEnv("POSTGRES_DSN", cfg.PostgresDSN)
	cfg.DataDir = getEnv("DATA_DIR", cfg.DataDir)
	cfg.AMQPURL = getEnv("AMQP_URL", cfg.AMQPURL)
	cfg.AMQPExchange = getEnv("AMQP_EXCHANGE", cfg.AMQPExchange)
	cfg.AMQPQueue = getEnv("AMQP_QUEUE", cfg.AMQPQueue)

	return cfg, nil
}

// Validate collects every configuration problem instead of stopping at the
// first one.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.Backend {
	case BackendMemory, BackendFile:
	case BackendSQLite:
		if c.SQLitePath == "" {
			problems = append(problems, "sqlite backend needs SQLITE_DB_PATH")
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			problems = append(problems, "postgres backend needs POSTGRES_DSN")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid backend '%s': must be one of %s, %s, %s, %s",
			c.Backend, BackendMemory, BackendSQLite, BackendPostgres, BackendFile))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
