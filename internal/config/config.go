package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  PostgresConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	CORS      CORSConfig      `yaml:"cors"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Forecast  ForecastConfig  `yaml:"forecast"`
	Seed      SeedConfig      `yaml:"seed"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port int `yaml:"port"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// ConnString builds the lib/pq connection string. The DB_CONN_STR
// environment variable, when set, wins over the file settings.
func (c PostgresConfig) ConnString() string {
	if env := os.Getenv("DB_CONN_STR"); env != "" {
		return env
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// AuthConfig contains API authentication settings
type AuthConfig struct {
	APIToken string `yaml:"api_token"`
}

// CORSConfig contains cross-origin settings for the HTTP API
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// SchedulerConfig controls the nightly snapshot materializer
type SchedulerConfig struct {
	Enabled bool `yaml:"enabled"`
	// Cron spec in standard 5-field form
	MaterializeSpec string `yaml:"materialize_spec"`
}

// ForecastConfig holds projection defaults
type ForecastConfig struct {
	// Flat appreciation rate for properties without one of their own
	DefaultAppreciationRate float64 `yaml:"default_appreciation_rate"`
}

// SeedConfig controls demo data seeding on startup
type SeedConfig struct {
	Demo bool `yaml:"demo"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Database: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			Database: "investment_tracker",
			SSLMode:  "disable",
		},
		Auth: AuthConfig{
			APIToken: "dev-token",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Scheduler: SchedulerConfig{
			Enabled:         true,
			MaterializeSpec: "30 2 * * *",
		},
		Forecast: ForecastConfig{
			DefaultAppreciationRate: 0.05,
		},
	}
}

// LoadConfig loads configuration from a YAML file, overlaying the defaults.
// A missing file is not an error; the defaults apply.
func LoadConfig(filepath string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}
