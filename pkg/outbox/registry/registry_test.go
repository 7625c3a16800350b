package registry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maldonadorepuestos/storefront/pkg/config"
	"github.com/maldonadorepuestos/storefront/pkg/db/models"
	"github.com/maldonadorepuestos/storefront/pkg/enums"
	"github.com/maldonadorepuestos/storefront/pkg/outbox"
	"github.com/maldonadorepuestos/storefront/pkg/outbox/payloads"
)

func TestResolveDecodesQuoteCreated(t *testing.T) {
	reg := newTestEventRegistry(t)
	data, err := json.Marshal(payloads.QuoteCreatedEvent{
		QuoteID: 7,
		Name:    "Juan Pérez",
		Email:   "juan@example.com",
		Phone:   "2614000000",
		Items: []payloads.QuoteItemSnapshot{
			{ProductID: 3, ProductCode: "FLT-001", ProductName: "Filtro de aceite", Quantity: 2},
		},
	})
	require.NoError(t, err)

	resolved, err := reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventQuoteCreated,
		AggregateType: enums.AggregateQuote,
		AggregateID:   7,
		Payload:       envelopeFor(t, data),
	})
	require.NoError(t, err)

	assert.Equal(t, "quote-topic", resolved.Descriptor.Topic)
	assert.NotEmpty(t, resolved.Envelope.EventID)
	assert.False(t, resolved.Envelope.OccurredAt.IsZero())

	payload, ok := resolved.Payload.(*payloads.QuoteCreatedEvent)
	require.True(t, ok, "payload type %T", resolved.Payload)
	assert.Equal(t, int64(7), payload.QuoteID)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, "FLT-001", payload.Items[0].ProductCode)
}

func TestResolveRejectsAsNonRetryable(t *testing.T) {
	reg := newTestEventRegistry(t)

	cases := map[string]models.OutboxEvent{
		"unknown event": {
			EventType:     enums.OutboxEventType("quote.archived"),
			AggregateType: enums.AggregateQuote,
			AggregateID:   1,
			Payload:       envelopeFor(t, []byte(`{}`)),
		},
		"aggregate mismatch": {
			EventType:     enums.EventQuoteCreated,
			AggregateType: enums.OutboxAggregateType("user"),
			AggregateID:   1,
			Payload:       envelopeFor(t, []byte(`{"quote_id":1}`)),
		},
		"missing aggregate id": {
			EventType:     enums.EventQuoteCreated,
			AggregateType: enums.AggregateQuote,
			Payload:       envelopeFor(t, []byte(`{"quote_id":1}`)),
		},
		"null payload": {
			EventType:     enums.EventQuoteCreated,
			AggregateType: enums.AggregateQuote,
			AggregateID:   1,
			Payload:       envelopeFor(t, []byte("null")),
		},
		"payload of wrong shape": {
			EventType:     enums.EventQuoteCreated,
			AggregateType: enums.AggregateQuote,
			AggregateID:   1,
			Payload:       envelopeFor(t, []byte(`{"quote_id":"seven"}`)),
		},
		"broken envelope": {
			EventType:     enums.EventQuoteCreated,
			AggregateType: enums.AggregateQuote,
			AggregateID:   1,
			Payload:       json.RawMessage(`{"version":`),
		},
	}

	for name, event := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := reg.Resolve(event)
			var nonRetry NonRetryableError
			require.ErrorAs(t, err, &nonRetry)
		})
	}
}

func TestDecodeEnvelopeRequiresEventID(t *testing.T) {
	_, err := DecodeEnvelope([]byte(`{"version":1,"data":{}}`))
	assert.EqualError(t, err, "envelope missing event id")
}

func TestNewEventRegistryRequiresTopic(t *testing.T) {
	_, err := NewEventRegistry(config.PubSubConfig{})
	assert.EqualError(t, err, "quote topic is required")
}

func TestNonRetryableErrorMessage(t *testing.T) {
	assert.Equal(t, "non-retryable error", NonRetryableError{}.Error())
}

func newTestEventRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{QuoteTopic: "quote-topic"})
	require.NoError(t, err)
	return reg
}

func envelopeFor(t *testing.T, data []byte) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	require.NoError(t, err)
	return raw
}
