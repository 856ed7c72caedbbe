package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Bridge listener
	Host string `env:"SIMBRIDGE_HOST" default:""`
	Port int    `env:"SIMBRIDGE_PORT" default:"1234"`

	// Status surface (0 disables it)
	AdminPort int `env:"ADMIN_PORT" default:"0"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
	LogDir    string `env:"LOG_DIR" default:"logs"`

	// Transport limits
	MaxFrameSize  int           `env:"MAX_FRAME_SIZE" default:"1048576"`
	ShutdownGrace time.Duration `env:"SHUTDOWN_GRACE" default:"5s"`
}

// LoadConfig reads an optional .env file from the working directory, then the
// process environment. Values already set in the environment win.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the environment alone.
func FromEnv() (*Config, error) {
	config := &Config{}

	loadEnvString(&config.Host, "SIMBRIDGE_HOST", "")
	if err := loadEnvInt(&config.Port, "SIMBRIDGE_PORT", 1234); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.AdminPort, "ADMIN_PORT", 0); err != nil {
		return nil, err
	}

	loadEnvString(&config.LogLevel, "LOG_LEVEL", "info")
	loadEnvString(&config.LogFormat, "LOG_FORMAT", "text")
	loadEnvString(&config.LogDir, "LOG_DIR", "logs")

	if err := loadEnvInt(&config.MaxFrameSize, "MAX_FRAME_SIZE", 1024*1024); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.ShutdownGrace, "SHUTDOWN_GRACE", 5*time.Second); err != nil {
		return nil, err
	}

	config.LogLevel = strings.ToLower(config.LogLevel)
	config.LogFormat = strings.ToLower(config.LogFormat)
	return config, nil
}

func loadEnvString(target *string, key, defaultValue string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

// Validate reports every problem at once rather than stopping at the first.
func (c *Config) Validate() error {
	var problems []string

	// 0 on the bridge port asks the OS for an ephemeral port.
	if c.Port < 0 || c.Port > 65535 {
		problems = append(problems, "SIMBRIDGE_PORT must be between 0 and 65535")
	}
	if c.AdminPort < 0 || c.AdminPort > 65535 {
		problems = append(problems, "ADMIN_PORT must be between 0 and 65535")
	}
	if c.AdminPort != 0 && c.AdminPort == c.Port {
		problems = append(problems, "ADMIN_PORT must differ from SIMBRIDGE_PORT")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}
	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		problems = append(problems, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	if c.MaxFrameSize <= 0 {
		problems = append(problems, "MAX_FRAME_SIZE must be positive")
	}
	if c.ShutdownGrace < 0 {
		problems = append(problems, "SHUTDOWN_GRACE must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ListenAddr is the bridge address for the given port.
func (c *Config) ListenAddr(port int) string {
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

// AdminAddr is empty when the status surface is disabled.
func (c *Config) AdminAddr() string {
	if c.AdminPort == 0 {
		return ""
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(c.AdminPort))
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
