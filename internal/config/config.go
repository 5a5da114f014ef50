// Package config loads application settings from an optional config file,
// a .env file and NEWSDEX_-prefixed environment variables, in that order of
// increasing precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime settings for the harvest and server binaries.
type Config struct {
	StorePath      string
	Workers        int
	FetchTimeout   time.Duration
	MaxBodyBytes   int
	UserAgent      string
	ServerAddr     string
	PublishersFile string
	LogLevel       string
}

// Load reads configuration. path may be empty; env vars and defaults then
// apply alone.
func Load(path string) (Config, error) {
	// Best effort; a missing .env file is fine.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("store.path", "newsdex.db")
	v.SetDefault("ingest.workers", 10)
	v.SetDefault("ingest.fetch_timeout", "15s")
	v.SetDefault("ingest.max_body_bytes", 1<<20)
	v.SetDefault("ingest.user_agent", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("publishers.file", "")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("NEWSDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		StorePath:      v.GetString("store.path"),
		Workers:        v.GetInt("ingest.workers"),
		FetchTimeout:   v.GetDuration("ingest.fetch_timeout"),
		MaxBodyBytes:   v.GetInt("ingest.max_body_bytes"),
		UserAgent:      v.GetString("ingest.user_agent"),
		ServerAddr:     v.GetString("server.addr"),
		PublishersFile: v.GetString("publishers.file"),
		LogLevel:       v.GetString("log.level"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.StorePath) == "" {
		return fmt.Errorf("store.path is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("ingest.workers must be at least 1, got %d", c.Workers)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("ingest.fetch_timeout must be positive, got %s", c.FetchTimeout)
	}
	return nil
}
