// Package broker: Kafka client adapters built on franz-go.
package broker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl/plain"
	"github.com/twmb/franz-go/pkg/sasl/scram"

	"runbridge/src/config"
	"runbridge/src/logger"
)

// commonClientOpts translates the recognized pass-through configuration keys
// shared by producers and consumers into franz-go options.
func commonClientOpts(bootstrapServers []string, cfg config.Map) ([]kgo.Opt, error) {
	if len(bootstrapServers) == 0 {
		return nil, fmt.Errorf("at least one bootstrap server is required")
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(bootstrapServers...),
	}

	if ms := cfg.GetInt(config.KeyRequestTimeoutMS, 0); ms > 0 {
		opts = append(opts, kgo.ProduceRequestTimeout(time.Duration(ms)*time.Millisecond))
	}

	mechanism := cfg.GetString(config.KeySASLMechanism)
	user := cfg.GetString(config.KeySASLUsername)
	pass := cfg.GetString(config.KeySASLPassword)
	if mechanism != "" || user != "" {
		switch mechanism {
		case "", "PLAIN":
			opts = append(opts, kgo.SASL(plain.Auth{User: user, Pass: pass}.AsMechanism()))
		case "SCRAM-SHA-256":
			opts = append(opts, kgo.SASL(scram.Auth{User: user, Pass: pass}.AsSha256Mechanism()))
		case "SCRAM-SHA-512":
			opts = append(opts, kgo.SASL(scram.Auth{User: user, Pass: pass}.AsSha512Mechanism()))
		default:
			return nil, fmt.Errorf("unsupported sasl.mechanisms value %q", mechanism)
		}
	}

	return opts, nil
}

// KafkaProducerClient is the producer-mode adapter over a franz-go client.
//
// The default configuration is idempotent: delivery is acknowledged by all
// in-sync replicas, retried until it succeeds, and ordered per partition.
// Setting "enable.idempotence" to false relaxes this and honors "acks".
type KafkaProducerClient struct {
	client *kgo.Client
	log    logger.Logger
}

// NewKafkaProducer creates a connected producer adapter.
func NewKafkaProducer(bootstrapServers []string, cfg config.Map, log logger.Logger) (*KafkaProducerClient, error) {
	opts, err := commonClientOpts(bootstrapServers, cfg)
	if err != nil {
		return nil, err
	}
	opts = append(opts, kgo.AllowAutoTopicCreation())

	if !cfg.GetBool(config.KeyEnableIdempotence, true) {
		opts = append(opts, kgo.DisableIdempotentWrite())
		switch cfg.GetString(config.KeyAcks) {
		case "0":
			opts = append(opts, kgo.RequiredAcks(kgo.NoAck()))
		case "1":
			opts = append(opts, kgo.RequiredAcks(kgo.LeaderAck()))
		default:
			opts = append(opts, kgo.RequiredAcks(kgo.AllISRAcks()))
		}
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer client: %w", err)
	}

	log.Debug("kafka producer connected: servers=%v config=%s", bootstrapServers, cfg)
	return &KafkaProducerClient{client: client, log: log}, nil
}

// Produce implements ProducerClient. The delivery callback fires on one of
// the client's internal goroutines once the broker acknowledges the message
// or retries are exhausted.
func (p *KafkaProducerClient) Produce(topic string, key, value []byte, onDelivery DeliveryFunc) {
	record := &kgo.Record{Topic: topic, Key: key, Value: value}
	p.client.Produce(context.Background(), record, func(r *kgo.Record, err error) {
		if onDelivery != nil {
			onDelivery(DeliveryReport{Topic: r.Topic, Partition: r.Partition, Err: err})
		}
	})
}

// Poll implements ProducerClient. franz-go invokes delivery promises from
// its own goroutines, so there is nothing to drain here.
func (p *KafkaProducerClient) Poll(timeout time.Duration) {}

// Flush implements ProducerClient.
func (p *KafkaProducerClient) Flush(timeout time.Duration) error {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := p.client.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush producer: %w", err)
	}
	return nil
}

// ListTopics implements ProducerClient.
func (p *KafkaProducerClient) ListTopics(topic string, timeout time.Duration) (*ClusterMetadata, error) {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	adm := kadm.NewClient(p.client)
	var (
		meta kadm.Metadata
		err  error
	)
	if topic == "" {
		meta, err = adm.Metadata(ctx)
	} else {
		meta, err = adm.Metadata(ctx, topic)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cluster metadata: %w", err)
	}

	out := &ClusterMetadata{Topics: make(map[string]int32, len(meta.Topics))}
	for _, b := range meta.Brokers {
		out.Brokers = append(out.Brokers, fmt.Sprintf("%s:%d", b.Host, b.Port))
	}
	for name, detail := range meta.Topics {
		out.Topics[name] = int32(len(detail.Partitions))
	}
	return out, nil
}

// Close implements ProducerClient.
func (p *KafkaProducerClient) Close() {
	p.client.Close()
}

// KafkaConsumerClient is the consumer-mode adapter over a franz-go client.
// The client is created on Subscribe because franz-go fixes the consumed
// topic set at construction.
//
// Methods are not safe for concurrent use; the polling consumer runs a
// single cooperative loop per client.
type KafkaConsumerClient struct {
	bootstrapServers []string
	groupID          string
	autoOffsetReset  string
	cfg              config.Map
	log              logger.Logger

	client  *kgo.Client
	pending []*Message
	closed  bool
}

// NewKafkaConsumer creates a consumer adapter. autoOffsetReset is "earliest"
// or "latest" (the default): where to begin when the group has no committed
// offset.
func NewKafkaConsumer(bootstrapServers []string, groupID, autoOffsetReset string, cfg config.Map, log logger.Logger) (*KafkaConsumerClient, error) {
	switch autoOffsetReset {
	case "", "latest", "earliest":
	default:
		return nil, fmt.Errorf("auto.offset.reset must be \"earliest\" or \"latest\", got %q", autoOffsetReset)
	}
	if len(bootstrapServers) == 0 {
		return nil, fmt.Errorf("at least one bootstrap server is required")
	}

	return &KafkaConsumerClient{
		bootstrapServers: bootstrapServers,
		groupID:          groupID,
		autoOffsetReset:  autoOffsetReset,
		cfg:              cfg.Clone(),
		log:              log,
	}, nil
}

// Subscribe implements ConsumerClient. It connects the underlying client.
func (c *KafkaConsumerClient) Subscribe(topics []string) error {
	if c.closed {
		return fmt.Errorf("consumer client is closed")
	}
	if c.client != nil {
		return fmt.Errorf("consumer client is already subscribed")
	}
	if len(topics) == 0 {
		return fmt.Errorf("at least one topic is required")
	}

	opts, err := commonClientOpts(c.bootstrapServers, c.cfg)
	if err != nil {
		return err
	}
	opts = append(opts, kgo.ConsumeTopics(topics...))
	if c.groupID != "" {
		opts = append(opts, kgo.ConsumerGroup(c.groupID))
	}
	if c.autoOffsetReset == "earliest" {
		opts = append(opts, kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()))
	} else {
		opts = append(opts, kgo.ConsumeResetOffset(kgo.NewOffset().AtEnd()))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return fmt.Errorf("failed to create Kafka consumer client: %w", err)
	}
	c.client = client

	c.log.Debug("kafka consumer subscribed: topics=%v group=%q config=%s", topics, c.groupID, c.cfg)
	return nil
}

// Poll implements ConsumerClient. Fetches are buffered internally and handed
// out one message per call.
func (c *KafkaConsumerClient) Poll(timeout time.Duration) *Message {
	if c.client == nil || c.closed {
		return nil
	}
	if len(c.pending) == 0 {
		c.fetch(timeout)
	}
	if len(c.pending) == 0 {
		return nil
	}
	msg := c.pending[0]
	c.pending = c.pending[1:]
	return msg
}

func (c *KafkaConsumerClient) fetch(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fetches := c.client.PollFetches(ctx)
	if fetches.IsClientClosed() {
		return
	}

	for _, fe := range fetches.Errors() {
		// A deadline on the poll context is the no-message case, not a
		// broker error.
		if errors.Is(fe.Err, context.DeadlineExceeded) || errors.Is(fe.Err, context.Canceled) {
			continue
		}
		c.pending = append(c.pending, &Message{Topic: fe.Topic, Partition: fe.Partition, Err: fe.Err})
	}

	fetches.EachRecord(func(r *kgo.Record) {
		c.pending = append(c.pending, &Message{
			Topic:     r.Topic,
			Partition: r.Partition,
			Key:       r.Key,
			Value:     r.Value,
		})
	})
}

// Close implements ConsumerClient.
func (c *KafkaConsumerClient) Close() {
	if c.closed {
		return
	}
	c.closed = true
	if c.client != nil {
		c.client.Close()
	}
}
