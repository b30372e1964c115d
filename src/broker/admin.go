// Package broker: topic administration helpers.
package broker

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"runbridge/src/config"
)

// TopicAdmin creates and deletes topics. Tests use it to start from topics
// carrying no old messages; deployments use it to provision document topics
// before the first run.
type TopicAdmin struct {
	client *kgo.Client
	adm    *kadm.Client
}

// NewTopicAdmin creates a connected admin client.
func NewTopicAdmin(bootstrapServers []string, cfg config.Map) (*TopicAdmin, error) {
	opts, err := commonClientOpts(bootstrapServers, cfg)
	if err != nil {
		return nil, err
	}
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka admin client: %w", err)
	}
	return &TopicAdmin{client: client, adm: kadm.NewClient(client)}, nil
}

// CreateTopics creates the named topics. A topic that already exists is not
// an error.
func (a *TopicAdmin) CreateTopics(ctx context.Context, partitions int32, replicationFactor int16, topics ...string) error {
	if len(topics) == 0 {
		return nil
	}
	resps, err := a.adm.CreateTopics(ctx, partitions, replicationFactor, nil, topics...)
	if err != nil {
		return fmt.Errorf("failed to create topics: %w", err)
	}
	for _, resp := range resps {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("failed to create topic %q: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}

// DeleteTopics deletes the named topics along with any unconsumed messages.
// A topic that does not exist is not an error.
func (a *TopicAdmin) DeleteTopics(ctx context.Context, topics ...string) error {
	if len(topics) == 0 {
		return nil
	}
	resps, err := a.adm.DeleteTopics(ctx, topics...)
	if err != nil {
		return fmt.Errorf("failed to delete topics: %w", err)
	}
	for _, resp := range resps {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.UnknownTopicOrPartition) {
			return fmt.Errorf("failed to delete topic %q: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}

// Close releases the admin connection.
func (a *TopicAdmin) Close() {
	a.client.Close()
}
