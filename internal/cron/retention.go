package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maldonadorepuestos/storefront/pkg/logger"
	"github.com/maldonadorepuestos/storefront/pkg/metrics"
	"gorm.io/gorm"
)

const (
	OutboxRetentionJobName = "outbox-retention"
	CartRetentionJobName   = "cart-retention"

	defaultOutboxRetention = 30 * 24 * time.Hour
	defaultCartRetention   = 90 * 24 * time.Hour
)

// Purger deletes rows older than cutoff and reports how many went away.
type Purger interface {
	DeleteStaleBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

// PurgerFunc adapts a repository method with the purge signature.
type PurgerFunc func(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)

func (f PurgerFunc) DeleteStaleBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	return f(ctx, tx, cutoff)
}

type RetentionJobParams struct {
	Logger  *logger.Logger
	DB      txRunner
	Purger  Purger
	Window  time.Duration
	Metrics *metrics.JobMetrics
}

// NewOutboxRetentionJob drops published outbox rows older than the window.
// Pass outbox.Repository.DeletePublishedBefore wrapped in a PurgerFunc.
func NewOutboxRetentionJob(params RetentionJobParams) (Job, error) {
	return asJob(newRetentionJob(OutboxRetentionJobName, defaultOutboxRetention, params))
}

// NewCartRetentionJob drops server cart lines nobody touched within the
// window, so abandoned carts do not pin products forever.
func NewCartRetentionJob(params RetentionJobParams) (Job, error) {
	return asJob(newRetentionJob(CartRetentionJobName, defaultCartRetention, params))
}

func asJob(j *retentionJob, err error) (Job, error) {
	if err != nil {
		return nil, err
	}
	return j, nil
}

func newRetentionJob(name string, fallback time.Duration, params RetentionJobParams) (*retentionJob, error) {
	if params.DB == nil {
		return nil, errors.New("cron: db runner required")
	}
	if params.Purger == nil {
		return nil, fmt.Errorf("cron: %s: purger required", name)
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Window <= 0 {
		params.Window = fallback
	}
	return &retentionJob{
		name:    name,
		logg:    params.Logger,
		db:      params.DB,
		purger:  params.Purger,
		window:  params.Window,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

type retentionJob struct {
	name    string
	logg    *logger.Logger
	db      txRunner
	purger  Purger
	window  time.Duration
	metrics *metrics.JobMetrics
	now     func() time.Time
}

func (j *retentionJob) Name() string { return j.name }

func (j *retentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.window)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := j.purger.DeleteStaleBefore(ctx, tx, cutoff)
		deleted = n
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", j.name, err)
	}
	j.metrics.AddRowsDeleted(j.name, deleted)
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	}), "retention cleanup complete")
	return nil
}
