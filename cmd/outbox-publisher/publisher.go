package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/maldonadorepuestos/storefront/pkg/db/models"
	"github.com/maldonadorepuestos/storefront/pkg/outbox/registry"
)

const publishTimeout = 15 * time.Second

type publishResult interface {
	Get(context.Context) (string, error)
}

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

// publisherFactory returns nil when no publisher exists for topic.
type publisherFactory func(topic string) publisher

type topicSource interface {
	Publisher(name string) *gcppubsub.Publisher
}

// pubsubPublishers adapts the Pub/Sub client so tests can swap in fakes.
func pubsubPublishers(src topicSource) publisherFactory {
	return func(topic string) publisher {
		p := src.Publisher(topic)
		if p == nil {
			return nil
		}
		return pubsubPublisher{p}
	}
}

type pubsubPublisher struct {
	p *gcppubsub.Publisher
}

func (p pubsubPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return p.p.Publish(ctx, msg)
}

// publish sends the stored envelope unchanged; routing metadata rides in
// the attributes so subscribers can filter without decoding.
func publish(ctx context.Context, publishers publisherFactory, event models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	topic := resolved.Descriptor.Topic
	pub := publishers(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("no publisher for topic %s", topic))
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	result := pub.Publish(ctx, &gcppubsub.Message{
		Data: event.Payload,
		Attributes: map[string]string{
			"event_id":       resolved.Envelope.EventID,
			"event_type":     string(event.EventType),
			"aggregate_type": string(event.AggregateType),
			"aggregate_id":   strconv.FormatInt(event.AggregateID, 10),
			"created_at":     event.CreatedAt.Format(time.RFC3339Nano),
		},
	})
	if result == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher for %s returned no result", topic))
	}
	_, err := result.Get(ctx)
	return err
}
