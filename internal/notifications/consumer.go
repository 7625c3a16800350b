package notifications

import (
	"context"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/maldonadorepuestos/storefront/pkg/email"
	"github.com/maldonadorepuestos/storefront/pkg/enums"
	"github.com/maldonadorepuestos/storefront/pkg/logger"
	"github.com/maldonadorepuestos/storefront/pkg/metrics"
	"github.com/maldonadorepuestos/storefront/pkg/outbox"
	"github.com/maldonadorepuestos/storefront/pkg/outbox/payloads"
	"github.com/maldonadorepuestos/storefront/pkg/outbox/registry"
)

const quoteNotificationConsumer = "quote-notifications"

type receiver interface {
	Receive(ctx context.Context, f func(context.Context, *pubsub.Message)) error
}

type payloadDecoder interface {
	DecodePayload(eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) (interface{}, error)
}

type processedTracker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer, eventID string) (bool, error)
	Delete(ctx context.Context, consumer, eventID string) error
}

type ConsumerParams struct {
	Subscription receiver
	Registry     payloadDecoder
	Idempotency  processedTracker
	Sender       email.Sender
	AdminEmail   string
	Metrics      *metrics.ConsumerMetrics
	Logger       *logger.Logger
}

// Consumer turns quote.created events into the shop alert and the customer
// receipt. Each recipient is deduplicated on its own so a redelivery after a
// partial failure only resends what did not go out.
type Consumer struct {
	subscription receiver
	registry     payloadDecoder
	idempotency  processedTracker
	sender       email.Sender
	adminEmail   string
	metrics      *metrics.ConsumerMetrics
	logg         *logger.Logger
}

func NewConsumer(params ConsumerParams) (*Consumer, error) {
	if params.Subscription == nil {
		return nil, fmt.Errorf("quote subscription required")
	}
	if params.Registry == nil {
		return nil, fmt.Errorf("event registry required")
	}
	if params.Idempotency == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("email sender required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		subscription: params.Subscription,
		registry:     params.Registry,
		idempotency:  params.Idempotency,
		sender:       params.Sender,
		adminEmail:   params.AdminEmail,
		metrics:      params.Metrics,
		logg:         params.Logger,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	started := time.Now()
	eventType := msg.Attributes["event_type"]
	fields := map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	}
	logCtx := c.logg.WithFields(ctx, fields)

	if eventType != string(enums.EventQuoteCreated) {
		c.logg.Info(logCtx, "skipping non-quote event")
		return processResult{ack: true}
	}

	envelope, err := registry.DecodeEnvelope(msg.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		c.metrics.IncFailure(quoteNotificationConsumer)
		return processResult{ack: true}
	}
	decoded, err := c.registry.DecodePayload(enums.EventQuoteCreated, envelope)
	if err != nil {
		c.logg.Error(logCtx, "failed to parse payload", err)
		c.metrics.IncFailure(quoteNotificationConsumer)
		return processResult{ack: true}
	}
	event := decoded.(*payloads.QuoteCreatedEvent)
	logCtx = c.logg.WithField(c.logg.WithQuoteID(logCtx, event.QuoteID), "event_id", envelope.EventID)

	outgoingEmails, err := quoteEmails(*event, c.adminEmail)
	if err != nil {
		c.logg.Error(logCtx, "failed to render quote emails", err)
		c.metrics.IncFailure(quoteNotificationConsumer)
		return processResult{ack: true}
	}

	failed := false
	for _, out := range outgoingEmails {
		scope := quoteNotificationConsumer + "-" + out.recipient
		sendCtx := c.logg.WithField(logCtx, "recipient", out.recipient)

		already, err := c.idempotency.CheckAndMarkProcessed(ctx, scope, envelope.EventID)
		if err != nil {
			c.logg.Error(sendCtx, "idempotency check failed", err)
			failed = true
			continue
		}
		if already {
			c.logg.Info(sendCtx, "email already sent")
			continue
		}
		if err := c.sender.Send(ctx, out.message); err != nil {
			c.logg.Error(sendCtx, "quote email failed", err)
			_ = c.idempotency.Delete(ctx, scope, envelope.EventID)
			failed = true
			continue
		}
	}

	c.metrics.ObserveDuration(quoteNotificationConsumer, time.Since(started))
	if failed {
		c.metrics.IncFailure(quoteNotificationConsumer)
		return processResult{nack: true}
	}
	c.metrics.IncSuccess(quoteNotificationConsumer)
	c.logg.Info(logCtx, "quote notifications delivered")
	return processResult{ack: true}
}
