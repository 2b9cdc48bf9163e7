package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tinyio/shortener/internal/logger"
)

// Config maps the whole application configuration.
// The `mapstructure` tags tie each field to its key in the config file
// (or to the environment variable bound to that key).
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Shortener ShortenerConfig `mapstructure:"shortener"`
}

// AppConfig holds process-wide settings.
type AppConfig struct {
	Env string `mapstructure:"env"` // "development" switches to console logging
}

// ServerConfig holds the gin server settings.
type ServerConfig struct {
	Port    int    `mapstructure:"port"`
	BaseURL string `mapstructure:"base_url"` // prefix of every short URL handed out
}

// DatabaseConfig holds the connection string and pool settings.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
}

// ShortenerConfig holds slug generation settings.
type ShortenerConfig struct {
	SlugLength  int `mapstructure:"slug_length"`
	MaxAttempts int `mapstructure:"max_attempts"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"app.env":         "APP_ENV",
	"server.port":     "PORT",
	"server.base_url": "BASE_URL",
	"database.url":    "DATABASE_URL",
}

// LoadConfig reads configs/config.yaml (or ./config.yaml), applies defaults for
// every key and lets environment variables override them. A .env file in the
// working directory is loaded into the environment first when present.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("error binding %s to %s: %w", key, env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		logger.Debug().Msg("no config file found, using defaults and environment")
	} else {
		logger.Debug().Str("file", v.ConfigFileUsed()).Msg("config file loaded")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "production")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.base_url", "https://tiny.io")
	v.SetDefault("database.url", "sqlite:///./database/api_data.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime_minutes", 5)
	v.SetDefault("shortener.slug_length", 6)
	v.SetDefault("shortener.max_attempts", 5)
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url must not be empty")
	}
	if c.Server.BaseURL == "" {
		return errors.New("server.base_url must not be empty")
	}
	if c.Shortener.SlugLength <= 0 {
		return fmt.Errorf("shortener.slug_length must be positive, got %d", c.Shortener.SlugLength)
	}
	if c.Shortener.MaxAttempts <= 0 {
		return fmt.Errorf("shortener.max_attempts must be positive, got %d", c.Shortener.MaxAttempts)
	}
	return nil
}
