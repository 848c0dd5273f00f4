package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

type Config struct {
	Environment               string        `koanf:"environment"`
	ServerHost                string        `koanf:"server_host"`
	ServerPort                int           `koanf:"server_port"`
	FrontendURL               string        `koanf:"frontend_url"`
	DatabaseFilePath          string        `koanf:"database_file_path"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay"`
	JWTSecret                 string        `koanf:"jwt_secret"`
}

const (
	configFileENV = "CONFIG_FILE"
	envPrefix     = "TOMELINE_"
)

// New loads configuration from defaults, then an optional YAML file (path
// from CONFIG_FILE, falling back to ./tomeline.yaml), then TOMELINE_*
// environment variables. Later sources win.
func New() (*Config, error) {
	cfg := &Config{
		Environment:               "development",
		ServerHost:                "127.0.0.1",
		ServerPort:                6236,
		FrontendURL:               "http://localhost:6060",
		DatabaseFilePath:          "./tmp/data.sqlite",
		DatabaseBusyTimeout:       5 * time.Second,
		DatabaseMaxRetries:        5,
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		JWTSecret:                 "tomeline-dev-secret",
	}

	k := koanf.New(".")

	path := os.Getenv(configFileENV)
	if path == "" {
		path = "./tomeline.yaml"
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	switch cfg.Environment {
	case "test":
		cfg.DatabaseFilePath = ":memory:"
		cfg.DatabaseDebug = false
	case "production":
		if os.Getenv(envPrefix+"JWT_SECRET") == "" && !k.Exists("jwt_secret") {
			return nil, errors.New("jwt_secret must be set in production")
		}
	}

	return cfg, nil
}
