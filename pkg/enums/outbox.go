package enums

// OutboxAggregateType names the entity an outbox event belongs to.
type OutboxAggregateType string

const AggregateQuote OutboxAggregateType = "quote"

func (a OutboxAggregateType) IsValid() bool {
	return a == AggregateQuote
}

// OutboxEventType is stored in outbox_events.event_type and published as the
// event_type message attribute.
type OutboxEventType string

const EventQuoteCreated OutboxEventType = "quote.created"

func (e OutboxEventType) IsValid() bool {
	return e == EventQuoteCreated
}
