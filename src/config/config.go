// Package config provides configuration for the bridge: environment-driven
// settings for the binaries, and the verbatim pass-through Map handed to the
// broker client adapter.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds the application configuration for the runbridge binaries.
type Config struct {
	// Brokers is the Kafka bootstrap server list.
	Brokers []string
	// Topic is the topic documents are published to and consumed from.
	Topic string
	// GroupID is the consumer group id; empty means no group coordination.
	GroupID string
	// Codec selects the wire format, "json" (default) or "msgpack".
	Codec string
	// PostgresDSN is the archive database connection string; only the
	// archive agent requires it.
	PostgresDSN string
}

// LoadFromEnv loads configuration from environment variables.
// RUNBRIDGE_BROKERS and RUNBRIDGE_TOPIC are required.
func LoadFromEnv() (*Config, error) {
	brokers := os.Getenv("RUNBRIDGE_BROKERS")
	if brokers == "" {
		return nil, fmt.Errorf("RUNBRIDGE_BROKERS environment variable is required (e.g. localhost:9092)")
	}

	topic := os.Getenv("RUNBRIDGE_TOPIC")
	if topic == "" {
		return nil, fmt.Errorf("RUNBRIDGE_TOPIC environment variable is required")
	}

	cfg := &Config{
		Brokers:     strings.Split(brokers, ","),
		Topic:       topic,
		GroupID:     os.Getenv("RUNBRIDGE_GROUP_ID"),
		Codec:       os.Getenv("RUNBRIDGE_CODEC"),
		PostgresDSN: os.Getenv("RUNBRIDGE_POSTGRES_DSN"),
	}
	if cfg.Codec == "" {
		cfg.Codec = "json"
	}
	if cfg.Codec != "json" && cfg.Codec != "msgpack" {
		return nil, fmt.Errorf("RUNBRIDGE_CODEC must be \"json\" or \"msgpack\", got %q", cfg.Codec)
	}

	return cfg, nil
}

// MustLoadFromEnv loads configuration from environment variables and panics
// on error. Useful in main() where configuration errors are fatal.
func MustLoadFromEnv() *Config {
	cfg, err := LoadFromEnv()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
