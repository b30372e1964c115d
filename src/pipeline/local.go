package pipeline

import (
	"fmt"

	"runbridge/src/broker"
	"runbridge/src/codec"
	"runbridge/src/logger"
	"runbridge/src/publisher"
	"runbridge/src/store"
)

// LocalPipeline wires every component over the in-memory broker, so a
// publisher, a consumer and the archive can run in one process with no
// external services.
type LocalPipeline struct {
	cfg    *Config
	broker *broker.InMemoryBroker
	store  *store.MemoryStore
	cdc    codec.Codec
}

// NewLocalPipeline creates a self-contained in-process pipeline.
func NewLocalPipeline(cfg *Config) (*LocalPipeline, error) {
	if cfg.Topic == "" {
		return nil, fmt.Errorf("a topic is required")
	}
	cdc, err := codec.ByName(cfg.Codec)
	if err != nil {
		return nil, err
	}

	return &LocalPipeline{
		cfg:    cfg,
		broker: broker.NewInMemoryBroker(),
		store:  store.NewMemoryStore(),
		cdc:    cdc,
	}, nil
}

// Publisher implements Pipeline.
func (p *LocalPipeline) Publisher() (*publisher.Publisher, error) {
	// The bootstrap server list is only descriptive for the in-memory
	// broker, but the publisher still requires one.
	return publisher.NewWithClient(publisher.Config{
		Topic:            p.cfg.Topic,
		BootstrapServers: []string{"in-memory"},
		FlushOnStop:      true,
	}, p.broker.Producer(), p.cdc, logger.NewSilentLogger())
}

// ConsumerClient implements Pipeline.
func (p *LocalPipeline) ConsumerClient() (broker.ConsumerClient, error) {
	return p.broker.Consumer(), nil
}

// Store implements Pipeline.
func (p *LocalPipeline) Store() store.Store {
	return p.store
}

// Codec implements Pipeline.
func (p *LocalPipeline) Codec() codec.Codec {
	return p.cdc
}

// Close implements Pipeline.
func (p *LocalPipeline) Close() error {
	p.broker.Close()
	return p.store.Close()
}
