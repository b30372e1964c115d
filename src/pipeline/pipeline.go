// Package pipeline wires the bridge components for the two deployment
// shapes: a fully in-process local mode for demos and tests, and a
// Kafka-backed mode for real deployments. Mode is auto-detected from the
// configured broker list.
package pipeline

import (
	"runbridge/src/broker"
	"runbridge/src/codec"
	"runbridge/src/publisher"
	"runbridge/src/store"
)

// Mode selects how the bridge components are wired.
type Mode int

const (
	// LocalMode runs everything in one process over the in-memory broker.
	LocalMode Mode = iota
	// KafkaMode connects to an external Kafka-compatible cluster.
	KafkaMode
)

func (m Mode) String() string {
	switch m {
	case LocalMode:
		return "local"
	case KafkaMode:
		return "kafka"
	default:
		return "unknown"
	}
}

// Config holds the settings shared by both pipeline modes.
type Config struct {
	Brokers     []string
	Topic       string
	GroupID     string
	Codec       string
	PostgresDSN string
}

// DetectMode returns KafkaMode when a broker list is configured, LocalMode
// otherwise.
func DetectMode(cfg *Config) Mode {
	if len(cfg.Brokers) > 0 {
		return KafkaMode
	}
	return LocalMode
}

// Pipeline produces the wired components of one deployment shape.
type Pipeline interface {
	// Publisher returns a document publisher for the configured topic.
	Publisher() (*publisher.Publisher, error)
	// ConsumerClient returns a fresh consumer-mode broker client.
	ConsumerClient() (broker.ConsumerClient, error)
	// Store returns the document archive.
	Store() store.Store
	// Codec returns the configured wire format.
	Codec() codec.Codec
	// Close releases everything the pipeline owns.
	Close() error
}

// New creates the pipeline for the detected mode.
func New(cfg *Config) (Pipeline, error) {
	if DetectMode(cfg) == KafkaMode {
		return NewKafkaPipeline(cfg)
	}
	return NewLocalPipeline(cfg)
}
