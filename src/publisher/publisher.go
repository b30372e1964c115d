// Package publisher sends documents to a Kafka topic. A Publisher is the
// bridge's outbound half: an acquisition session calls it once per emitted
// document, and the broker carries the encoded envelope to any number of
// remote consumers.
package publisher

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"runbridge/src/broker"
	"runbridge/src/codec"
	"runbridge/src/config"
	"runbridge/src/documents"
	"runbridge/src/logger"
)

// Config holds the publisher configuration.
type Config struct {
	// Topic every document is published to. Required.
	Topic string

	// BootstrapServers is the Kafka server list. When ProducerConfig also
	// carries "bootstrap.servers" the two are combined, constructor
	// argument first.
	BootstrapServers []string

	// Key is the default ordering key. Messages sharing a key land on one
	// partition in send order; an empty key imposes no ordering.
	Key string

	// ProducerConfig is passed through to the client adapter verbatim.
	// When "enable.idempotence" is absent it defaults to true.
	ProducerConfig config.Map

	// FlushOnStop flushes the producer whenever a "stop" document is
	// published, so a completed run is fully on the broker before the
	// session moves on.
	FlushOnStop bool
}

// effectiveConfig returns the pass-through configuration actually used to
// build the client: bootstrap servers combined (constructor argument first)
// and idempotence defaulted on.
func (c Config) effectiveConfig() config.Map {
	combined := config.CombineBootstrapServers(c.BootstrapServers, c.ProducerConfig)
	eff := c.ProducerConfig.Clone()
	eff[config.KeyBootstrapServers] = strings.Join(combined, ",")
	if _, ok := eff[config.KeyEnableIdempotence]; !ok {
		eff[config.KeyEnableIdempotence] = true
	}
	return eff
}

func (c Config) validate() error {
	if c.Topic == "" {
		return fmt.Errorf("publisher: topic is required")
	}
	if len(c.BootstrapServers) == 0 && c.ProducerConfig.GetString(config.KeyBootstrapServers) == "" {
		return fmt.Errorf("publisher: at least one bootstrap server is required")
	}
	return nil
}

// Publisher publishes encoded document envelopes to one topic. Delivery is
// asynchronous: Publish enqueues without waiting for acknowledgement, and
// Flush is the only way to deterministically observe that all in-flight
// messages have been acknowledged (inspect DeliveryStats afterwards).
type Publisher struct {
	topic       string
	key         string
	flushOnStop bool
	cfg         config.Map

	client broker.ProducerClient
	cdc    codec.Codec
	log    logger.Logger

	mu        sync.Mutex
	delivered int
	failed    int
}

// New creates a Publisher connected to a Kafka cluster.
func New(cfg Config, cdc codec.Codec, log logger.Logger) (*Publisher, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	eff := cfg.effectiveConfig()
	servers := strings.Split(eff.GetString(config.KeyBootstrapServers), ",")

	client, err := broker.NewKafkaProducer(servers, eff, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}
	return NewWithClient(cfg, client, cdc, log)
}

// NewWithClient creates a Publisher over an existing producer client.
// Tests and the local demo mode use it with the in-memory broker.
func NewWithClient(cfg Config, client broker.ProducerClient, cdc codec.Codec, log logger.Logger) (*Publisher, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	p := &Publisher{
		topic:       cfg.Topic,
		key:         cfg.Key,
		flushOnStop: cfg.FlushOnStop,
		cfg:         cfg.effectiveConfig(),
		client:      client,
		cdc:         cdc,
		log:         log,
	}
	p.log.Debug("publisher created: %s", p)
	return p, nil
}

// Publish encodes (name, doc) and enqueues it under the publisher's default
// key. It does not block for acknowledgement; a delivery failure surfaces
// asynchronously through the delivery report, never here.
func (p *Publisher) Publish(name string, doc documents.Document) error {
	return p.PublishKeyed(p.key, name, doc)
}

// PublishKeyed publishes one document under key, overriding the default
// ordering key for this call only. An empty key removes ordering for this
// message.
func (p *Publisher) PublishKeyed(key, name string, doc documents.Document) error {
	data, err := p.cdc.Encode(documents.Envelope{Name: name, Doc: doc})
	if err != nil {
		return fmt.Errorf("failed to encode %q document: %w", name, err)
	}

	var keyBytes []byte
	if key != "" {
		keyBytes = []byte(key)
	}

	p.log.Debug("publishing document: topic=%q key=%q name=%q", p.topic, key, name)
	p.client.Produce(p.topic, keyBytes, data, p.onDelivery)
	p.client.Poll(0)

	if p.flushOnStop && name == documents.NameStop {
		return p.Flush(0)
	}
	return nil
}

// Flush blocks until every previously published message is acknowledged or
// the client's retry policy gives up. timeout <= 0 means no limit.
func (p *Publisher) Flush(timeout time.Duration) error {
	p.log.Debug("flushing publisher for topic %q", p.topic)
	return p.client.Flush(timeout)
}

// onDelivery records the outcome of one produced message. It runs on the
// client's delivery goroutine.
func (p *Publisher) onDelivery(report broker.DeliveryReport) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if report.Err != nil {
		p.failed++
		p.log.Error("message delivery failed: %v", report.Err)
		return
	}
	p.delivered++
	p.log.Debug("message delivered to topic %q [partition %d]", report.Topic, report.Partition)
}

// DeliveryStats returns how many delivery reports have recorded success and
// permanent failure. Call after Flush for a complete count.
func (p *Publisher) DeliveryStats() (delivered, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.delivered, p.failed
}

// ClusterMetadata returns what the broker knows about this publisher's
// topic.
func (p *Publisher) ClusterMetadata(timeout time.Duration) (*broker.ClusterMetadata, error) {
	return p.client.ListTopics(p.topic, timeout)
}

// EffectiveConfig returns a copy of the combined pass-through configuration
// the publisher was built with.
func (p *Publisher) EffectiveConfig() config.Map {
	return p.cfg.Clone()
}

// Close flushes outstanding messages and releases the client.
func (p *Publisher) Close() error {
	err := p.Flush(0)
	p.client.Close()
	return err
}

// String renders the publisher configuration with credentials masked.
func (p *Publisher) String() string {
	return fmt.Sprintf("Publisher(topic=%q key=%q codec=%q producer_config=%s)",
		p.topic, p.key, p.cdc.Name(), p.cfg)
}
