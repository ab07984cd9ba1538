package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
// Following 12-factor app principles, all config is loaded from environment variables
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Checkout CheckoutConfig
	Events   EventsConfig
	// PolicyFile optionally points at a YAML pricing policy; empty means
	// compiled-in defaults.
	PolicyFile string
	LogLevel   string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

type AuthConfig struct {
	APIKeys []string // Valid API keys for authentication
}

type CheckoutConfig struct {
	// InitialOrderStatus is either "confirmed" or "pending_payment".
	InitialOrderStatus string
}

type EventsConfig struct {
	// AMQPURL enables order-event publishing when non-empty.
	AMQPURL   string
	QueueName string
	PoolSize  int
	Workers   int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 30),
		},
		Auth: AuthConfig{
			APIKeys: getEnvAsSlice("API_KEYS", []string{"apitest"}),
		},
		Checkout: CheckoutConfig{
			InitialOrderStatus: getEnv("INITIAL_ORDER_STATUS", "confirmed"),
		},
		Events: EventsConfig{
			AMQPURL:   getEnv("AMQP_URL", ""),
			QueueName: getEnv("ORDER_QUEUE", "order_events"),
			PoolSize:  getEnvAsInt("AMQP_POOL_SIZE", 5),
			Workers:   getEnvAsInt("WAREHOUSE_WORKERS", 3),
		},
		PolicyFile: getEnv("PRICING_POLICY_FILE", ""),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("at least one API key must be configured")
	}

	switch c.Checkout.InitialOrderStatus {
	case "confirmed", "pending_payment":
	default:
		return fmt.Errorf("invalid initial order status: %s (must be confirmed or pending_payment)", c.Checkout.InitialOrderStatus)
	}

	if c.Events.AMQPURL != "" {
		if c.Events.QueueName == "" {
			return fmt.Errorf("ORDER_QUEUE is required when AMQP_URL is set")
		}
		if c.Events.PoolSize <= 0 {
			return fmt.Errorf("AMQP_POOL_SIZE must be positive")
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
