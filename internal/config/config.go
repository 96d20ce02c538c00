package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env    string `mapstructure:"env"`    // current application environment (local, dev, prod etc)
	Server Server `mapstructure:"server"` // HTTP server section
	DB     DB     `mapstructure:"database"`
	OpenAI OpenAI `mapstructure:"openai"`
	Feed   Feed   `mapstructure:"feed"`
}

// Server contains HTTP server parameters.
type Server struct {
	Addr            string        `mapstructure:"addr"`             // listen address, host:port
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`     // max time to read a request
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`    // max time to write a response
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"` // graceful shutdown deadline
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// OpenAI contains content generation parameters. The API key is optional;
// without one, generated content falls back to static placeholders.
type OpenAI struct {
	APIKey string `mapstructure:"-"` // loaded from environment
	Model  string `mapstructure:"model"`
}

// Feed contains daily feed scheduling parameters.
type Feed struct {
	CronSpec    string `mapstructure:"cron_spec"`    // when to pre-generate feeds, cron syntax, UTC
	HistoryDays int    `mapstructure:"history_days"` // default window for feed history queries
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("feed.cron_spec", "5 0 * * *")
	v.SetDefault("feed.history_days", 30)

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.DB.URL = v.GetString("database_url")
	if cfg.DB.URL == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	// The OpenAI key is optional; mock content is served without it.
	cfg.OpenAI.APIKey = v.GetString("openai_api_key")

	return &cfg, nil
}
