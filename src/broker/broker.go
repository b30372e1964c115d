// Package broker wraps the Kafka client library behind small producer and
// consumer adapter interfaces. The rest of the bridge depends only on these
// interfaces; connection management, partition assignment, offset commits and
// delivery retries belong to the underlying client.
package broker

import "time"

// Message is one broker-delivered unit returned by a consumer poll.
// A message is immutable once observed; the poll loop drops its reference
// when it moves to the next iteration.
type Message struct {
	Topic     string
	Partition int32
	// Key is the optional ordering key; nil when the producer sent none.
	Key   []byte
	Value []byte
	// Err is a broker-reported error for this poll result. When Err is
	// non-nil the fields besides Topic and Partition are undefined and
	// Value must not be decoded.
	Err error
}

// DeliveryReport is the asynchronous acknowledgement for one produced
// message: where it landed, or why delivery permanently failed.
type DeliveryReport struct {
	Topic     string
	Partition int32
	Err       error
}

// DeliveryFunc is invoked once per produced message, from the client's
// delivery machinery, never from the caller's goroutine.
type DeliveryFunc func(report DeliveryReport)

// ClusterMetadata summarizes what the broker knows about itself and the
// requested topics.
type ClusterMetadata struct {
	// Brokers holds host:port addresses of the cluster members.
	Brokers []string
	// Topics maps topic name to partition count.
	Topics map[string]int32
}

// ProducerClient is the producer-mode adapter over the Kafka client.
type ProducerClient interface {
	// Produce enqueues one message without blocking for acknowledgement.
	// onDelivery, if non-nil, is invoked asynchronously with the outcome.
	Produce(topic string, key, value []byte, onDelivery DeliveryFunc)

	// Poll gives the client a chance to surface pending delivery reports.
	Poll(timeout time.Duration)

	// Flush blocks until every previously enqueued message is acknowledged
	// or the client's retry policy gives up. timeout <= 0 means no limit.
	Flush(timeout time.Duration) error

	// ListTopics returns cluster metadata for topic, or for every topic
	// when topic is empty.
	ListTopics(topic string, timeout time.Duration) (*ClusterMetadata, error)

	// Close releases the client connection.
	Close()
}

// ConsumerClient is the consumer-mode adapter over the Kafka client.
type ConsumerClient interface {
	// Subscribe registers the topics this client consumes.
	Subscribe(topics []string) error

	// Poll blocks up to timeout for the next message. It returns nil when
	// no message arrived within the timeout; a returned message may carry
	// Err when the broker reported an error for this poll result.
	Poll(timeout time.Duration) *Message

	// Close releases the client connection. Safe to call more than once.
	Close()
}
