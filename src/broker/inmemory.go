// Package broker: in-process broker used by tests and local demo mode.
package broker

import (
	"fmt"
	"sync"
	"time"
)

// InMemoryBroker is a single-process stand-in for a Kafka cluster. It
// retains every published message per topic, so a consumer that subscribes
// late still sees the full history ("earliest" semantics). Producer and
// consumer clients created from one broker satisfy the same adapter
// interfaces as the Kafka-backed clients.
type InMemoryBroker struct {
	mu        sync.Mutex
	logs      map[string][]*Message
	consumers []*InMemoryConsumerClient
	closed    bool
}

// NewInMemoryBroker creates an empty in-memory broker.
func NewInMemoryBroker() *InMemoryBroker {
	return &InMemoryBroker{logs: make(map[string][]*Message)}
}

// Close rejects further publishes. Existing consumers keep draining their
// buffered messages.
func (b *InMemoryBroker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

func (b *InMemoryBroker) publish(topic string, key, value []byte) (int32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, fmt.Errorf("broker is closed")
	}

	msg := &Message{Topic: topic, Partition: 0, Key: key, Value: value}
	b.logs[topic] = append(b.logs[topic], msg)
	for _, c := range b.consumers {
		c.deliver(msg)
	}
	return msg.Partition, nil
}

// Producer returns a producer-mode client for this broker.
func (b *InMemoryBroker) Producer() *InMemoryProducerClient {
	return &InMemoryProducerClient{broker: b}
}

// Consumer returns a consumer-mode client for this broker.
func (b *InMemoryBroker) Consumer() *InMemoryConsumerClient {
	c := &InMemoryConsumerClient{
		broker: b,
		ch:     make(chan *Message, 1024),
		topics: make(map[string]bool),
	}
	b.mu.Lock()
	b.consumers = append(b.consumers, c)
	b.mu.Unlock()
	return c
}

type pendingReport struct {
	report DeliveryReport
	fn     DeliveryFunc
}

// InMemoryProducerClient implements ProducerClient against an InMemoryBroker.
// Like the real client library, delivery callbacks do not fire inside
// Produce; they are drained by Poll or Flush.
type InMemoryProducerClient struct {
	mu      sync.Mutex
	broker  *InMemoryBroker
	pending []pendingReport
}

// Produce implements ProducerClient.
func (p *InMemoryProducerClient) Produce(topic string, key, value []byte, onDelivery DeliveryFunc) {
	partition, err := p.broker.publish(topic, key, value)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, pendingReport{
		report: DeliveryReport{Topic: topic, Partition: partition, Err: err},
		fn:     onDelivery,
	})
}

// Poll implements ProducerClient: drains every pending delivery report.
func (p *InMemoryProducerClient) Poll(timeout time.Duration) {
	p.drainReports()
}

// Flush implements ProducerClient. All messages are already "delivered" by
// Produce, so flushing only drains the reports.
func (p *InMemoryProducerClient) Flush(timeout time.Duration) error {
	p.drainReports()
	return nil
}

func (p *InMemoryProducerClient) drainReports() {
	p.mu.Lock()
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	for _, pr := range pending {
		if pr.fn != nil {
			pr.fn(pr.report)
		}
	}
}

// ListTopics implements ProducerClient.
func (p *InMemoryProducerClient) ListTopics(topic string, timeout time.Duration) (*ClusterMetadata, error) {
	p.broker.mu.Lock()
	defer p.broker.mu.Unlock()

	meta := &ClusterMetadata{
		Brokers: []string{"inmemory:0"},
		Topics:  make(map[string]int32),
	}
	for name := range p.broker.logs {
		if topic == "" || name == topic {
			meta.Topics[name] = 1
		}
	}
	return meta, nil
}

// Close implements ProducerClient.
func (p *InMemoryProducerClient) Close() {
	p.drainReports()
}

// InMemoryConsumerClient implements ConsumerClient against an InMemoryBroker.
type InMemoryConsumerClient struct {
	broker *InMemoryBroker

	mu     sync.Mutex
	ch     chan *Message
	topics map[string]bool
	closed bool
}

// Subscribe implements ConsumerClient. The retained history of each topic is
// replayed into the consumer's buffer before new messages arrive.
func (c *InMemoryConsumerClient) Subscribe(topics []string) error {
	if len(topics) == 0 {
		return fmt.Errorf("at least one topic is required")
	}

	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("consumer client is closed")
	}
	for _, t := range topics {
		if c.topics[t] {
			continue
		}
		c.topics[t] = true
		for _, msg := range c.broker.logs[t] {
			c.enqueue(msg)
		}
	}
	return nil
}

// InjectError enqueues a broker-reported error result, as a real cluster
// would surface a transient fetch failure. Tests use it to exercise the poll
// loop's recovered-fault path.
func (c *InMemoryConsumerClient) InjectError(topic string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enqueue(&Message{Topic: topic, Err: err})
}

func (c *InMemoryConsumerClient) deliver(msg *Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.topics[msg.Topic] {
		return
	}
	c.enqueue(msg)
}

// enqueue drops the message when the buffer is full; callers hold c.mu.
func (c *InMemoryConsumerClient) enqueue(msg *Message) {
	select {
	case c.ch <- msg:
	default:
	}
}

// Poll implements ConsumerClient.
func (c *InMemoryConsumerClient) Poll(timeout time.Duration) *Message {
	select {
	case msg := <-c.ch:
		return msg
	case <-time.After(timeout):
		return nil
	}
}

// Close implements ConsumerClient.
func (c *InMemoryConsumerClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}
