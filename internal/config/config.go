package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/text/encoding/htmlindex"
)

type Config struct {
	Server  ServerConfig
	Data    DataConfig
	Reload  ReloadConfig
	Loader  LoaderConfig
	DB      DatabaseConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host          string
	Port          int
	RateLimitRPS  int
	ShutdownGrace time.Duration
}

type DataConfig struct {
	EventsPath    string
	PortfolioPath string
	PremiumPath   string
	Encoding      string
}

type ReloadConfig struct {
	Enabled  bool
	Schedule string
}

type LoaderConfig struct {
	Workers int
}

type DatabaseConfig struct {
	Path          string
	KeepSnapshots int
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:          getEnv("SERVER_HOST", "localhost"),
			Port:          getEnvInt("SERVER_PORT", 8080),
			RateLimitRPS:  getEnvInt("RATE_LIMIT_RPS", 10),
			ShutdownGrace: getEnvDuration("SHUTDOWN_GRACE", 10*time.Second),
		},
		Data: DataConfig{
			EventsPath:    getEnv("EVENTS_PATH", "./data/data.csv"),
			PortfolioPath: getEnv("PORTFOLIO_PATH", "./data/euroshield_portfolio_by_country.csv"),
			PremiumPath:   getEnv("PREMIUM_PATH", "./data/euroshield_premium_by_peril.csv"),
			Encoding:      getEnv("INPUT_ENCODING", "utf-8"),
		},
		Reload: ReloadConfig{
			Enabled:  getEnvBool("RELOAD_ENABLED", true),
			Schedule: getEnv("RELOAD_SCHEDULE", "@every 10m"),
		},
		Loader: LoaderConfig{
			Workers: getEnvInt("LOADER_WORKERS", 3),
		},
		DB: DatabaseConfig{
			Path:          os.Getenv("DB_PATH"),
			KeepSnapshots: getEnvInt("DB_KEEP_SNAPSHOTS", 5),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if _, ok := os.LookupEnv("DB_PATH"); !ok {
		cfg.DB.Path = "./data/climate-risk.db"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimitRPS < 1 {
		return fmt.Errorf("rate limit must be at least 1 request per second")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if strings.TrimSpace(c.Data.EventsPath) == "" || strings.TrimSpace(c.Data.PortfolioPath) == "" || strings.TrimSpace(c.Data.PremiumPath) == "" {
		return fmt.Errorf("events, portfolio and premium paths are required")
	}
	if _, err := htmlindex.Get(strings.ToLower(c.Data.Encoding)); err != nil {
		return fmt.Errorf("invalid input encoding: %s", c.Data.Encoding)
	}

	if c.Loader.Workers < 1 {
		return fmt.Errorf("loader workers must be at least 1")
	}
	if c.DB.KeepSnapshots < 1 {
		return fmt.Errorf("snapshot retention must be at least 1")
	}

	if c.Reload.Enabled {
		if _, err := cron.ParseStandard(c.Reload.Schedule); err != nil {
			return fmt.Errorf("invalid reload schedule %q: %w", c.Reload.Schedule, err)
		}
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
