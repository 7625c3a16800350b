// Package search drives the type-ahead product search box.
package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/maldonadorepuestos/storefront/pkg/debounce"
	"github.com/maldonadorepuestos/storefront/pkg/logger"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/gateway"
)

const (
	DefaultDebounce  = 300 * time.Millisecond
	DefaultLimit     = 8
	DefaultMinLength = 2
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDebouncing
	PhaseLoading
	PhaseResults
	PhaseEmpty
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDebouncing:
		return "debouncing"
	case PhaseLoading:
		return "loading"
	case PhaseResults:
		return "results"
	case PhaseEmpty:
		return "empty"
	}
	return "unknown"
}

// Settled reports whether no search is scheduled or running.
func (p Phase) Settled() bool {
	return p != PhaseDebouncing && p != PhaseLoading
}

// Searcher runs the remote search. *gateway.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string, page, pageSize int) (*gateway.ProductPage, error)
}

// View is a snapshot of the search box. Selected is -1 when nothing is
// highlighted. Recent is only filled while Idle.
type View struct {
	Query    string
	Phase    Phase
	Open     bool
	Results  []gateway.Product
	Selected int
	Recent   []string
	Err      error
}

type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionOpenProduct
	ActionViewAll
)

// Action is the navigation a key press or selection asks for.
type Action struct {
	Kind    ActionKind
	Product *gateway.Product
	Query   string
}

type Options struct {
	Debounce  time.Duration
	Limit     int
	MinLength int
	Logger    *logger.Logger
}

// Coordinator debounces keystrokes into searches. Every fired search gets a
// sequence number; a response is applied only if its number is still the
// latest, and starting a new search cancels the one in flight.
type Coordinator struct {
	searcher  Searcher
	recent    *RecentSearches
	debouncer *debounce.Debouncer
	limit     int
	minLen    int
	logg      *logger.Logger

	mu       sync.Mutex
	query    string
	phase    Phase
	open     bool
	results  []gateway.Product
	selected int
	err      error
	seq      uint64
	cancel   context.CancelFunc
	subs     map[int]func(View)
	nextSub  int
	closed   bool

	notifyMu sync.Mutex
}

func NewCoordinator(searcher Searcher, recent *RecentSearches, opts Options) *Coordinator {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.MinLength <= 0 {
		opts.MinLength = DefaultMinLength
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if recent == nil {
		recent = NewRecentSearches(nil, opts.Logger)
	}
	return &Coordinator{
		searcher:  searcher,
		recent:    recent,
		debouncer: debounce.New(opts.Debounce),
		limit:     opts.Limit,
		minLen:    opts.MinLength,
		logg:      opts.Logger,
		selected:  -1,
		subs:      map[int]func(View){},
	}
}

// Subscribe registers fn for every state change and returns a function that
// removes it. fn must not call back into the Coordinator synchronously.
func (c *Coordinator) Subscribe(fn func(View)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Coordinator) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) Recent() *RecentSearches {
	return c.recent
}

// SetQuery handles a keystroke. Short queries go straight to Idle; anything
// else (re)schedules the search.
func (c *Coordinator) SetQuery(query string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.query = query
	c.open = true
	c.selected = -1
	c.err = nil
	if c.tooShort(query) {
		c.debouncer.Cancel()
		c.abortLocked()
		c.results = nil
		c.phase = PhaseIdle
	} else {
		c.phase = PhaseDebouncing
		c.debouncer.Trigger(c.fire)
	}
	c.notifyLocked()
}

// Flush fires a scheduled search without waiting for the quiet period.
func (c *Coordinator) Flush() bool {
	return c.debouncer.Flush()
}

// Await blocks until the current search settles or ctx ends.
func (c *Coordinator) Await(ctx context.Context) (View, error) {
	settled := make(chan View, 1)
	unsubscribe := c.Subscribe(func(v View) {
		if v.Phase.Settled() {
			select {
			case settled <- v:
			default:
			}
		}
	})
	defer unsubscribe()

	if v := c.View(); v.Phase.Settled() {
		return v, nil
	}
	select {
	case v := <-settled:
		return v, nil
	case <-ctx.Done():
		return c.View(), ctx.Err()
	}
}

func (c *Coordinator) fire() {
	c.mu.Lock()
	if c.closed || c.tooShort(c.query) {
		c.mu.Unlock()
		return
	}
	c.abortLocked()
	c.seq++
	seq := c.seq
	query := strings.TrimSpace(c.query)
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.phase = PhaseLoading
	c.notifyLocked()

	go c.run(ctx, seq, query)
}

func (c *Coordinator) run(ctx context.Context, seq uint64, query string) {
	page, err := c.searcher.Search(ctx, query, 1, c.limit)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.logg.Debug(c.logg.WithField(context.Background(), "query", query), "search: discarding stale response")
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.selected = -1
	switch {
	case err != nil:
		c.results = nil
		c.err = err
		c.phase = PhaseEmpty
		if !errors.Is(err, context.Canceled) {
			c.logg.WarnErr(c.logg.WithField(context.Background(), "query", query), "search failed", err)
		}
	case page == nil || len(page.Items) == 0:
		c.results = nil
		c.phase = PhaseEmpty
	default:
		items := page.Items
		if len(items) > c.limit {
			items = items[:c.limit]
		}
		c.results = append([]gateway.Product(nil), items...)
		c.phase = PhaseResults
	}
	c.notifyLocked()
}

// MoveDown highlights the next result, stopping at the last one.
func (c *Coordinator) MoveDown() {
	c.mu.Lock()
	if len(c.results) == 0 {
		c.mu.Unlock()
		return
	}
	if c.selected < len(c.results)-1 {
		c.selected++
	}
	c.notifyLocked()
}

// MoveUp moves the highlight up; above the first result means no selection.
func (c *Coordinator) MoveUp() {
	c.mu.Lock()
	if c.selected > -1 {
		c.selected--
	}
	c.notifyLocked()
}

// Enter opens the highlighted product, or asks for the full results page
// when nothing is highlighted. Both record the query. A query below the
// minimum length does nothing.
func (c *Coordinator) Enter(ctx context.Context) Action {
	c.mu.Lock()
	if c.selected >= 0 && c.selected < len(c.results) {
		idx := c.selected
		c.mu.Unlock()
		return c.Select(ctx, idx)
	}
	query := strings.TrimSpace(c.query)
	short := c.tooShort(query)
	c.mu.Unlock()
	if short {
		return Action{Kind: ActionNone}
	}
	c.recent.Add(ctx, query)
	c.reset()
	return Action{Kind: ActionViewAll, Query: query}
}

// Select opens result i and records the typed query.
func (c *Coordinator) Select(ctx context.Context, i int) Action {
	c.mu.Lock()
	if i < 0 || i >= len(c.results) {
		c.mu.Unlock()
		return Action{Kind: ActionNone}
	}
	product := c.results[i]
	query := strings.TrimSpace(c.query)
	c.mu.Unlock()

	c.recent.Add(ctx, query)
	c.reset()
	return Action{Kind: ActionOpenProduct, Product: &product, Query: query}
}

// Escape closes the dropdown and drops the highlight.
func (c *Coordinator) Escape() {
	c.mu.Lock()
	c.open = false
	c.selected = -1
	c.notifyLocked()
}

// Close stops pending and in-flight work. The Coordinator ignores input
// afterwards.
func (c *Coordinator) Close() {
	c.debouncer.Cancel()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.abortLocked()
}

func (c *Coordinator) reset() {
	c.debouncer.Cancel()
	c.mu.Lock()
	c.abortLocked()
	c.query = ""
	c.open = false
	c.results = nil
	c.selected = -1
	c.err = nil
	c.phase = PhaseIdle
	c.notifyLocked()
}

// abortLocked cancels the in-flight search and bumps seq so its response is
// ignored.
func (c *Coordinator) abortLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
		c.seq++
	}
}

func (c *Coordinator) tooShort(query string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(query)) < c.minLen
}

func (c *Coordinator) snapshotLocked() View {
	v := View{
		Query:    c.query,
		Phase:    c.phase,
		Open:     c.open,
		Results:  append([]gateway.Product(nil), c.results...),
		Selected: c.selected,
		Err:      c.err,
	}
	if c.phase == PhaseIdle {
		v.Recent = c.recent.List()
	}
	return v
}

// notifyLocked snapshots state, releases mu and delivers to subscribers.
func (c *Coordinator) notifyLocked() {
	view := c.snapshotLocked()
	subs := make([]func(View), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()
	for _, fn := range subs {
		fn(view)
	}
}
