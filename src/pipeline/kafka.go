package pipeline

import (
	"context"
	"fmt"

	"runbridge/src/broker"
	"runbridge/src/codec"
	"runbridge/src/logger"
	"runbridge/src/publisher"
	"runbridge/src/store"
)

// KafkaPipeline wires the components against an external Kafka-compatible
// cluster, with the archive in Postgres when a DSN is configured and
// in-memory otherwise.
type KafkaPipeline struct {
	cfg   *Config
	store store.Store
	cdc   codec.Codec
	log   logger.Logger
}

// NewKafkaPipeline creates a pipeline connected to the configured cluster.
func NewKafkaPipeline(cfg *Config) (*KafkaPipeline, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("a broker list is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("a topic is required")
	}
	cdc, err := codec.ByName(cfg.Codec)
	if err != nil {
		return nil, err
	}

	log := logger.NewConsoleLogger()

	var st store.Store
	if cfg.PostgresDSN != "" {
		pg, err := store.NewPostgresStore(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
		}
		if err := pg.EnsureSchema(context.Background()); err != nil {
			pg.Close()
			return nil, fmt.Errorf("failed to prepare schema: %w", err)
		}
		st = pg
	} else {
		st = store.NewMemoryStore()
	}

	return &KafkaPipeline{cfg: cfg, store: st, cdc: cdc, log: log}, nil
}

// Publisher implements Pipeline.
func (p *KafkaPipeline) Publisher() (*publisher.Publisher, error) {
	return publisher.New(publisher.Config{
		Topic:            p.cfg.Topic,
		BootstrapServers: p.cfg.Brokers,
		FlushOnStop:      true,
	}, p.cdc, p.log)
}

// ConsumerClient implements Pipeline.
func (p *KafkaPipeline) ConsumerClient() (broker.ConsumerClient, error) {
	return broker.NewKafkaConsumer(p.cfg.Brokers, p.cfg.GroupID, "earliest", nil, p.log)
}

// Store implements Pipeline.
func (p *KafkaPipeline) Store() store.Store {
	return p.store
}

// Codec implements Pipeline.
func (p *KafkaPipeline) Codec() codec.Codec {
	return p.cdc
}

// Close implements Pipeline.
func (p *KafkaPipeline) Close() error {
	return p.store.Close()
}
