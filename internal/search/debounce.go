// Package search runs type-ahead lookups. A keystroke schedules a search after a quiet period; a newer
// keystroke cancels both the pending schedule and any search already running, and results that arrive for a
// superseded query are dropped.
package search

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

const (
	DefaultDelay     = 300 * time.Millisecond
	DefaultMinLength = 2
)

type SearchFunc[T any] func(ctx context.Context, q string) ([]T, error)

// Response is delivered once per query that was not superseded.
type Response[T any] struct {
	Query   string
	Results []T
	Err     error
}

type timer interface {
	Stop() bool
}

type Debouncer[T any] struct {
	search    SearchFunc[T]
	deliver   func(Response[T])
	delay     time.Duration
	minLength int
	afterFunc func(time.Duration, func()) timer

	mu     sync.Mutex
	ctx    context.Context
	stop   context.CancelFunc
	seq    uint64
	query  string
	timer  timer
	cancel context.CancelFunc
	closed bool
}

type Option[T any] func(*Debouncer[T])

func WithDelay[T any](d time.Duration) Option[T] {
	return func(db *Debouncer[T]) {
		db.delay = d
	}
}

func WithMinLength[T any](n int) Option[T] {
	return func(db *Debouncer[T]) {
		db.minLength = n
	}
}

func withAfterFunc[T any](f func(time.Duration, func()) timer) Option[T] {
	return func(db *Debouncer[T]) {
		db.afterFunc = f
	}
}

// New creates a debouncer. deliver is called with the debouncer's lock held so that a response can never be
// delivered after its query was superseded; it must not call back into the debouncer.
func New[T any](ctx context.Context, search SearchFunc[T], deliver func(Response[T]), opts ...Option[T]) *Debouncer[T] {
	ctx, stop := context.WithCancel(ctx)
	db := &Debouncer[T]{
		search:    search,
		deliver:   deliver,
		delay:     DefaultDelay,
		minLength: DefaultMinLength,
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
		ctx:  ctx,
		stop: stop,
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Type records a new query. Anything scheduled or running for an earlier query is cancelled. A query shorter
// than the minimum length is answered at once with no results.
func (db *Debouncer[T]) Type(q string) {
	q = strings.TrimSpace(q)

	db.mu.Lock()
	if db.closed {
		db.mu.Unlock()
		return
	}
	db.supersede()
	db.query = q
	seq := db.seq

	if utf8.RuneCountInString(q) < db.minLength {
		db.deliver(Response[T]{Query: q})
		db.mu.Unlock()
		return
	}
	db.timer = db.afterFunc(db.delay, func() { db.run(seq) })
	db.mu.Unlock()
}

// Flush runs the pending query now instead of waiting for the quiet period.
func (db *Debouncer[T]) Flush() {
	db.mu.Lock()
	if db.timer == nil || !db.timer.Stop() {
		db.mu.Unlock()
		return
	}
	db.timer = nil
	seq := db.seq
	db.mu.Unlock()

	db.run(seq)
}

// Cancel drops whatever is scheduled or running.
func (db *Debouncer[T]) Cancel() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.supersede()
}

// Close cancels everything; later calls to Type are ignored.
func (db *Debouncer[T]) Close() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.supersede()
	db.closed = true
	db.stop()
}

// supersede must be called with db.mu held.
func (db *Debouncer[T]) supersede() {
	db.seq++
	if db.timer != nil {
		db.timer.Stop()
		db.timer = nil
	}
	if db.cancel != nil {
		db.cancel()
		db.cancel = nil
	}
}

func (db *Debouncer[T]) run(seq uint64) {
	db.mu.Lock()
	if seq != db.seq || db.closed {
		db.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(db.ctx)
	db.cancel = cancel
	db.timer = nil
	q := db.query
	db.mu.Unlock()

	results, err := db.search(ctx, q)
	cancel()

	db.mu.Lock()
	defer db.mu.Unlock()
	if seq != db.seq {
		log.Debug().Str("query", q).Msg("dropping superseded search results")
		return
	}
	db.cancel = nil
	db.deliver(Response[T]{Query: q, Results: results, Err: err})
}
