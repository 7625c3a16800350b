package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/maldonadorepuestos/storefront/pkg/metrics"
)

type fakeLock struct {
	mu       sync.Mutex
	held     bool
	releases int
	err      error
}

func (f *fakeLock) released() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.releases
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.held = false
	f.releases++
	return nil
}

type testJob struct {
	name string
	err  error
	runs int
}

func (j *testJob) Name() string { return j.name }

func (j *testJob) Run(context.Context) error {
	j.runs++
	return j.err
}

func TestRegistrySkipsNilJobs(t *testing.T) {
	first := &testJob{name: "first"}
	r := NewRegistry(first, nil)
	r.Register(nil)
	r.Register(&testJob{name: "second"})

	jobs := r.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "first", jobs[0].Name())
	assert.Equal(t, "second", jobs[1].Name())
}

func TestServiceRunCycleRunsEveryJobEvenOnFailure(t *testing.T) {
	ok := &testJob{name: "ok"}
	failing := &testJob{name: "failing", err: errors.New("boom")}
	after := &testJob{name: "after"}
	lock := &fakeLock{}
	reg := prometheus.NewRegistry()

	svc, err := NewService(ServiceParams{
		Registry: NewRegistry(ok, failing, after),
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(reg),
	})
	require.NoError(t, err)

	require.NoError(t, svc.runCycle(context.Background()))
	assert.Equal(t, 1, ok.runs)
	assert.Equal(t, 1, failing.runs)
	assert.Equal(t, 1, after.runs)
	assert.False(t, lock.held)
	assert.Equal(t, 1, lock.releases)
}

func TestServiceSkipsCycleWhenLockHeld(t *testing.T) {
	job := &testJob{name: "job"}
	lock := &fakeLock{held: true}
	svc, err := NewService(ServiceParams{Registry: NewRegistry(job), Lock: lock})
	require.NoError(t, err)

	require.NoError(t, svc.runCycle(context.Background()))
	assert.Zero(t, job.runs)
	assert.Zero(t, lock.releases)
}

func TestServiceLockErrorIsReturned(t *testing.T) {
	svc, err := NewService(ServiceParams{Lock: &fakeLock{err: errors.New("redis down")}})
	require.NoError(t, err)

	assert.Error(t, svc.runCycle(context.Background()))
}

func TestServiceRunStopsWithContext(t *testing.T) {
	job := &testJob{name: "job"}
	lock := &fakeLock{}
	svc, err := NewService(ServiceParams{Registry: NewRegistry(job), Lock: lock, Interval: time.Hour})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, func() bool { return lock.released() == 1 }, time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, 1, job.runs)
}

func TestNewServiceRequiresLock(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)
}

type memLockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemLockStore() *memLockStore { return &memLockStore{data: map[string]string{}} }

func (m *memLockStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value.(string)
	return true, nil
}

func (m *memLockStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memLockStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func TestRedisLockIsExclusive(t *testing.T) {
	ctx := context.Background()
	store := newMemLockStore()
	a, err := NewRedisLock(store, "maldonado:cron:lock:test", 0)
	require.NoError(t, err)
	b, err := NewRedisLock(store, "maldonado:cron:lock:test", 0)
	require.NoError(t, err)

	got, err := a.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, got)

	require.NoError(t, b.Release(ctx))
	_, stillHeld := store.data["maldonado:cron:lock:test"]
	assert.True(t, stillHeld, "a non-owner must not release the lock")

	require.NoError(t, a.Release(ctx))
	got, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestRedisLockReleaseLeavesForeignOwner(t *testing.T) {
	ctx := context.Background()
	store := newMemLockStore()
	l, err := NewRedisLock(store, "k", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx)
	require.NoError(t, err)
	store.data["k"] = "someone-else"

	require.NoError(t, l.Release(ctx))
	assert.Equal(t, "someone-else", store.data["k"])
}

func TestNewRedisLockValidates(t *testing.T) {
	_, err := NewRedisLock(nil, "k", 0)
	assert.Error(t, err)
	_, err = NewRedisLock(newMemLockStore(), "", 0)
	assert.Error(t, err)
}

type passthroughTx struct{}

func (passthroughTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type recordingPurger struct {
	cutoff time.Time
	calls  int
	rows   int64
	err    error
}

func (p *recordingPurger) DeleteStaleBefore(_ context.Context, _ *gorm.DB, cutoff time.Time) (int64, error) {
	p.calls++
	p.cutoff = cutoff
	return p.rows, p.err
}

func TestRetentionJobsUseWindowOrDefault(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		build    func(RetentionJobParams) (Job, error)
		window   time.Duration
		wantName string
		wantAge  time.Duration
	}{
		{"outbox default", NewOutboxRetentionJob, 0, OutboxRetentionJobName, defaultOutboxRetention},
		{"cart default", NewCartRetentionJob, 0, CartRetentionJobName, defaultCartRetention},
		{"cart custom", NewCartRetentionJob, 48 * time.Hour, CartRetentionJobName, 48 * time.Hour},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			purger := &recordingPurger{rows: 4}
			job, err := tc.build(RetentionJobParams{DB: passthroughTx{}, Purger: purger, Window: tc.window})
			require.NoError(t, err)
			job.(*retentionJob).now = func() time.Time { return now }

			require.NoError(t, job.Run(context.Background()))
			assert.Equal(t, tc.wantName, job.Name())
			assert.Equal(t, 1, purger.calls)
			assert.True(t, purger.cutoff.Equal(now.Add(-tc.wantAge)), "cutoff %s", purger.cutoff)
		})
	}
}

func TestRetentionJobWrapsError(t *testing.T) {
	purger := &recordingPurger{err: errors.New("locked")}
	job, err := NewOutboxRetentionJob(RetentionJobParams{DB: passthroughTx{}, Purger: purger})
	require.NoError(t, err)

	err = job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), OutboxRetentionJobName)
}

func TestRetentionJobValidates(t *testing.T) {
	job, err := NewCartRetentionJob(RetentionJobParams{Purger: &recordingPurger{}})
	assert.Error(t, err)
	assert.Nil(t, job)

	job, err = NewCartRetentionJob(RetentionJobParams{DB: passthroughTx{}})
	assert.Error(t, err)
	assert.Nil(t, job)
}

func TestPurgerFuncAdapts(t *testing.T) {
	var got time.Time
	p := PurgerFunc(func(_ context.Context, _ *gorm.DB, cutoff time.Time) (int64, error) {
		got = cutoff
		return 2, nil
	})
	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	n, err := p.DeleteStaleBefore(context.Background(), nil, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.True(t, got.Equal(cutoff))
}
