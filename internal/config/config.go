package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Supabase    SupabaseConfig    `mapstructure:"supabase"`
	StatsEngine StatsEngineConfig `mapstructure:"stats_engine"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

// SupabaseConfig holds Supabase-specific configuration
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

// StatsEngineConfig holds configuration for the external statistics and
// sentiment service. Calls are single-shot with a bounded timeout; on
// timeout or error the caller degrades to its fallback path instead of
// retrying.
type StatsEngineConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("stats_engine.url", "http://localhost:5001")
	v.SetDefault("stats_engine.timeout", 15*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read from environment variables
	v.SetEnvPrefix("MOODHABIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Also bind to non-prefixed environment variables for backward compatibility
	v.BindEnv("server.port", "PORT")
	v.BindEnv("supabase.url", "SUPABASE_URL")
	v.BindEnv("supabase.service_key", "SUPABASE_SERVICE_KEY")
	v.BindEnv("stats_engine.url", "STATS_API_URL")

	// Read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// It's okay if config file doesn't exist
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks that all required configuration values are present
func (c *Config) Validate() error {
	if c.Supabase.URL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.Supabase.ServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}
	if c.StatsEngine.URL == "" {
		return fmt.Errorf("STATS_API_URL is required")
	}
	if c.StatsEngine.Timeout <= 0 {
		return fmt.Errorf("stats_engine.timeout must be positive")
	}
	return nil
}
