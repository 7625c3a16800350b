package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"

	"github.com/maldonadorepuestos/storefront/pkg/config"
	"github.com/maldonadorepuestos/storefront/pkg/db/models"
	"github.com/maldonadorepuestos/storefront/pkg/enums"
	"github.com/maldonadorepuestos/storefront/pkg/logger"
	"github.com/maldonadorepuestos/storefront/pkg/metrics"
	"github.com/maldonadorepuestos/storefront/pkg/outbox/registry"
)

const (
	defaultBatchSize   = 50
	defaultPoll        = 500 * time.Millisecond
	defaultMaxAttempts = 10
	maxErrorBackoff    = 10 * time.Second
	jitterWindow       = 250 * time.Millisecond
)

type pinger interface {
	Ping(context.Context) error
}

type txRunner interface {
	pinger
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id int64) error
	MarkFailedTx(tx *gorm.DB, id int64, err error) error
	MarkTerminalTx(tx *gorm.DB, id int64, err error) error
}

type dlqRepository interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type registryResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type ServiceParams struct {
	Outbox     config.OutboxConfig
	Logger     *logger.Logger
	DB         txRunner
	Broker     pinger
	Publishers publisherFactory
	Repository outboxRepository
	Registry   registryResolver
	DLQ        dlqRepository
	Metrics    *metrics.OutboxMetrics
}

// Service drains outbox_events into Pub/Sub. Each batch runs in one
// transaction so FOR UPDATE SKIP LOCKED keeps concurrent publishers apart.
type Service struct {
	logg        *logger.Logger
	db          txRunner
	broker      pinger
	publishers  publisherFactory
	repo        outboxRepository
	registry    registryResolver
	dlq         dlqRepository
	metrics     *metrics.OutboxMetrics
	batchSize   int
	maxAttempts int
	poll        time.Duration
}

func NewService(p ServiceParams) (*Service, error) {
	required := []struct {
		name string
		ok   bool
	}{
		{"logger", p.Logger != nil},
		{"database", p.DB != nil},
		{"broker", p.Broker != nil},
		{"publisher factory", p.Publishers != nil},
		{"outbox repository", p.Repository != nil},
		{"event registry", p.Registry != nil},
		{"dlq repository", p.DLQ != nil},
	}
	for _, r := range required {
		if !r.ok {
			return nil, fmt.Errorf("outbox publisher: %s is required", r.name)
		}
	}

	s := &Service{
		logg:        p.Logger,
		db:          p.DB,
		broker:      p.Broker,
		publishers:  p.Publishers,
		repo:        p.Repository,
		registry:    p.Registry,
		dlq:         p.DLQ,
		metrics:     p.Metrics,
		batchSize:   p.Outbox.BatchSize,
		maxAttempts: p.Outbox.MaxAttempts,
		poll:        time.Duration(p.Outbox.PollIntervalMS) * time.Millisecond,
	}
	if s.batchSize <= 0 {
		s.batchSize = defaultBatchSize
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = defaultMaxAttempts
	}
	if s.poll <= 0 {
		s.poll = defaultPoll
	}
	return s, nil
}

// Run polls until ctx ends. A full batch is followed immediately by the
// next one; an empty batch waits one jittered poll; a failing batch backs
// off exponentially up to maxErrorBackoff.
func (s *Service) Run(ctx context.Context) error {
	for name, dep := range map[string]pinger{"database": s.db, "pubsub": s.broker} {
		if err := dep.Ping(ctx); err != nil {
			return fmt.Errorf("%s not ready: %w", name, err)
		}
	}

	idle := retry.WithJitter(jitterWindow, retry.NewConstant(s.poll))
	failing := s.errorBackoff()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		processed, err := s.processBatch(ctx)
		var wait retry.Backoff
		switch {
		case err != nil:
			s.logg.Error(ctx, "outbox batch failed", err)
			wait = failing
		case processed:
			failing = s.errorBackoff()
			continue
		default:
			failing = s.errorBackoff()
			wait = idle
		}

		d, _ := wait.Next()
		if err := sleep(ctx, d); err != nil {
			return err
		}
	}
}

func (s *Service) errorBackoff() retry.Backoff {
	return retry.WithJitter(jitterWindow, retry.WithCappedDuration(maxErrorBackoff, retry.NewExponential(s.poll)))
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// processBatch reports whether any row was claimed.
func (s *Service) processBatch(ctx context.Context) (bool, error) {
	claimed := 0
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize, s.maxAttempts)
		if err != nil {
			return fmt.Errorf("claim outbox rows: %w", err)
		}
		claimed = len(events)
		for _, event := range events {
			if err := s.settle(ctx, tx, event); err != nil {
				return err
			}
		}
		return nil
	})
	return claimed > 0, err
}

// settle publishes one row and records the result. Only bookkeeping
// failures are returned; publish failures are written to the row.
func (s *Service) settle(ctx context.Context, tx *gorm.DB, event models.OutboxEvent) error {
	log := newEventLog(event, s.batchSize)

	resolved, err := s.registry.Resolve(event)
	if err != nil {
		return s.deadLetter(ctx, tx, event, enums.OutboxDLQReasonNonRetryable, err, log)
	}
	log.resolved(resolved)

	err = publish(ctx, s.publishers, event, resolved)
	var permanent registry.NonRetryableError
	switch {
	case err == nil:
		if err := s.repo.MarkPublishedTx(tx, event.ID); err != nil {
			return fmt.Errorf("mark published %d: %w", event.ID, err)
		}
		s.metrics.Inc(string(event.EventType), metrics.OutboxResultPublished)
		s.logg.Info(s.logg.WithFields(ctx, log), "outbox event published")
		return nil

	case errors.As(err, &permanent):
		return s.deadLetter(ctx, tx, event, enums.OutboxDLQReasonNonRetryable, err, log)

	case event.AttemptCount+1 >= s.maxAttempts:
		log["attempt_count"] = event.AttemptCount + 1
		return s.deadLetter(ctx, tx, event, enums.OutboxDLQReasonMaxAttempts,
			fmt.Errorf("gave up after %d attempts: %w", event.AttemptCount+1, err), log)
	}

	log["attempt_count"] = event.AttemptCount + 1
	s.logg.WarnErr(s.logg.WithFields(ctx, log), "outbox publish failed, will retry", err)
	s.metrics.Inc(string(event.EventType), metrics.OutboxResultFailed)
	if err := s.repo.MarkFailedTx(tx, event.ID, err); err != nil {
		return fmt.Errorf("mark failed %d: %w", event.ID, err)
	}
	return nil
}

func (s *Service) deadLetter(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, reason enums.OutboxDLQErrorReason, cause error, log eventLog) error {
	log["error_reason"] = reason
	s.logg.WarnErr(s.logg.WithFields(ctx, log), "outbox event dead-lettered", cause)
	s.metrics.Inc(string(event.EventType), metrics.OutboxResultDeadLettered)

	msg := cause.Error()
	entry := models.OutboxDLQ{
		EventID:       event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		ErrorReason:   reason,
		ErrorMessage:  &msg,
		AttemptCount:  event.AttemptCount,
		FailedAt:      time.Now().UTC(),
	}
	if err := s.dlq.InsertTx(tx, entry); err != nil {
		return fmt.Errorf("insert dlq %d: %w", event.ID, err)
	}
	if err := s.repo.MarkTerminalTx(tx, event.ID, cause); err != nil {
		return fmt.Errorf("mark terminal %d: %w", event.ID, err)
	}
	return nil
}

// eventLog is the field set attached to every per-row log line.
type eventLog map[string]any

func newEventLog(event models.OutboxEvent, batchSize int) eventLog {
	log := eventLog{
		"outbox_id":      event.ID,
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID,
		"attempt_count":  event.AttemptCount,
		"batch_size":     batchSize,
	}
	if event.LastError != nil {
		log["last_error"] = *event.LastError
	}
	return log
}

func (l eventLog) resolved(r *registry.ResolvedEvent) {
	l["topic"] = r.Descriptor.Topic
	if r.Envelope.EventID != "" {
		l["event_id"] = r.Envelope.EventID
		l["occurred_at"] = r.Envelope.OccurredAt.Format(time.RFC3339Nano)
	}
}
