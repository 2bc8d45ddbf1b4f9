package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configuration constants
const (
	// Remote record service
	RemoteURL          = "REMOTE_URL"
	RemoteTimeout      = "REMOTE_TIMEOUT"
	HealthCheckTimeout = "HEALTH_CHECK_TIMEOUT"

	// Session persistence
	SessionBackend = "SESSION_BACKEND"
	SessionFile    = "SESSION_FILE"

	// Redis (session backend "redis" only)
	RedisAddr     = "REDIS_ADDR"
	RedisPassword = "REDIS_PASSWORD"
	RedisDB       = "REDIS_DB"

	// Logging
	LogLevel  = "LOG_LEVEL"
	LogFormat = "LOG_FORMAT"

	// Cascade delete worker pool
	CascadeMaxWorkers  = 4
	CascadeMaxCapacity = 64
)

// Session backends
const (
	SessionBackendFile  = "file"
	SessionBackendRedis = "redis"
)

// Config holds all application configuration
type Config struct {
	Remote  RemoteConfig
	Session SessionConfig
	Redis   RedisConfig
	Logging LoggingConfig
}

// RemoteConfig holds the remote record service configuration
type RemoteConfig struct {
	// BaseURL is the single externally supplied base URL of the service
	BaseURL string
	// Timeout bounds every record/auth request
	Timeout time.Duration
	// HealthCheckTimeout bounds the reachability pre-check
	HealthCheckTimeout time.Duration
}

// SessionConfig holds session persistence configuration
type SessionConfig struct {
	Backend  string
	FilePath string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from environment variables and .envrc file
func LoadConfig() (*Config, error) {
	viper.SetConfigName(".envrc")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	// Config file is optional; environment variables alone are fine
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{
		Remote: RemoteConfig{
			BaseURL:            viper.GetString(RemoteURL),
			Timeout:            viper.GetDuration(RemoteTimeout),
			HealthCheckTimeout: viper.GetDuration(HealthCheckTimeout),
		},
		Session: SessionConfig{
			Backend:  viper.GetString(SessionBackend),
			FilePath: viper.GetString(SessionFile),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString(RedisAddr),
			Password: viper.GetString(RedisPassword),
			DB:       viper.GetInt(RedisDB),
		},
		Logging: LoggingConfig{
			Level:  viper.GetString(LogLevel),
			Format: viper.GetString(LogFormat),
		},
	}

	return config, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault(RemoteURL, "http://localhost:8090")
	viper.SetDefault(RemoteTimeout, 30*time.Second)
	viper.SetDefault(HealthCheckTimeout, 15*time.Second)

	viper.SetDefault(SessionBackend, SessionBackendFile)
	viper.SetDefault(SessionFile, ".pricetrail/session.json")

	viper.SetDefault(RedisAddr, "localhost:6379")
	viper.SetDefault(RedisPassword, "")
	viper.SetDefault(RedisDB, 0)

	viper.SetDefault(LogLevel, "info")
	viper.SetDefault(LogFormat, "json")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Remote.BaseURL == "" {
		return fmt.Errorf("remote base URL is required")
	}

	switch c.Session.Backend {
	case SessionBackendFile:
		if c.Session.FilePath == "" {
			return fmt.Errorf("session file path is required for the file backend")
		}
	case SessionBackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("Redis address is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}

	return nil
}
