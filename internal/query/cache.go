// Package query caches the results of read operations against the backend. Entries are addressed by
// structural keys, concurrent reads of one key share a single fetch, and invalidated entries are refetched
// either immediately, when someone is subscribed to them, or on their next read.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrClosed    = errors.New("query cache closed")
	ErrUndefined = errors.New("no fetcher defined for query kind")
)

// Kind names a resource collection, such as "campaigns" or "characters-for-campaign".
type Kind string

// Key addresses one cache entry. Keys are compared by value: the same kind and scope always designate the same
// entry.
type Key struct {
	Kind  Kind
	Scope string
}

// NewKey builds a key from a kind and its scoping parameters, e.g. NewKey("campaign-detail", 5).
func NewKey(kind Kind, scope ...any) Key {
	parts := make([]string, len(scope))
	for i, s := range scope {
		parts[i] = fmt.Sprint(s)
	}
	return Key{Kind: kind, Scope: strings.Join(parts, "/")}
}

func (k Key) String() string {
	if k.Scope == "" {
		return string(k.Kind)
	}
	return string(k.Kind) + "(" + k.Scope + ")"
}

type Status int

const (
	// StatusIdle means nothing was ever fetched for the key.
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Result is a snapshot of an entry. Value holds the last successfully fetched value, even when a later fetch
// failed or a refetch is running; Err holds the error of the last fetch, if it failed.
type Result struct {
	Key       Key
	Value     any
	HasValue  bool
	Err       error
	Status    Status
	Loading   bool
	Stale     bool
	UpdatedAt time.Time
}

// FetchFunc reads the current server value for key.
type FetchFunc func(ctx context.Context, key Key) (any, error)

type Listener func(Result)

type subscription struct {
	listener Listener
	active   atomic.Bool
}

type entry struct {
	value     any
	hasValue  bool
	err       error
	loading   bool
	stale     bool
	updatedAt time.Time
	// gen is bumped by every invalidation; a fetch whose starting generation differs from gen on arrival
	// may predate the invalidation and leaves the entry stale.
	gen  uint64
	done chan struct{}
	subs map[uint64]*subscription

	// dirty is set when the entry changed since subscribers were last notified. Only the goroutine that set
	// delivering notifies, so listeners of one entry are called in order and never concurrently.
	dirty      bool
	delivering bool
	// waiters are closed once a state at least as new as the one they were queued with has been delivered.
	waiters []chan struct{}
}

// queue records that subscribers must see the entry's current state and reports whether the caller has to run
// deliver. c.mu must be held.
func (e *entry) queue(done chan struct{}) bool {
	e.dirty = true
	if done != nil {
		e.waiters = append(e.waiters, done)
	}
	if e.delivering {
		return false
	}
	e.delivering = true
	return true
}

func (e *entry) result(key Key) Result {
	r := Result{
		Key:       key,
		Value:     e.value,
		HasValue:  e.hasValue,
		Err:       e.err,
		Loading:   e.loading,
		Stale:     e.stale,
		UpdatedAt: e.updatedAt,
	}
	switch {
	case e.loading:
		r.Status = StatusPending
	case e.err != nil:
		r.Status = StatusError
	case e.hasValue:
		r.Status = StatusSuccess
	}
	return r
}

type Cache struct {
	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	closed   bool
	fetchers map[Kind]FetchFunc
	entries  map[Key]*entry
	nextSub  uint64
	wg       sync.WaitGroup
	now      func() time.Time
}

// New creates a cache whose fetches run under ctx. Close cancels them.
func New(ctx context.Context) *Cache {
	ctx, cancel := context.WithCancel(ctx)
	return &Cache{
		ctx:      ctx,
		cancel:   cancel,
		fetchers: map[Kind]FetchFunc{},
		entries:  map[Key]*entry{},
		now:      time.Now,
	}
}

// Define sets the fetcher used for every key of kind.
func (c *Cache) Define(kind Kind, fetch FetchFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchers[kind] = fetch
}

func (c *Cache) entry(key Key) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{subs: map[uint64]*subscription{}}
		c.entries[key] = e
	}
	return e
}

// Read returns the cached value if it is present and fresh. Otherwise it starts a fetch, unless one is already
// running for key, and returns a pending result carrying whatever value and error the entry already had.
// Read never blocks on the network.
func (c *Cache) Read(key Key) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entry(key)
	if e.loading || (e.hasValue && !e.stale) {
		return e.result(key)
	}

	if err := c.fetch(key, e); err != nil {
		r := e.result(key)
		r.Err = err
		r.Status = StatusError
		return r
	}
	return e.result(key)
}

// Peek returns the entry as it is, without fetching.
func (c *Cache) Peek(key Key) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Result{Key: key}
	}
	return e.result(key)
}

// Await reads key and, if a fetch is running, blocks until it settles or ctx is done. The returned error is
// only ever ctx's error; fetch errors are reported in the result.
func (c *Cache) Await(ctx context.Context, key Key) (Result, error) {
	r := c.Read(key)
	for r.Loading {
		c.mu.Lock()
		done := c.entry(key).done
		c.mu.Unlock()

		if done != nil {
			select {
			case <-done:
			case <-ctx.Done():
				return c.Peek(key), ctx.Err()
			}
		}
		// A fetch restarted by an invalidation that arrived mid-flight is waited for too.
		r = c.Peek(key)
	}
	return r, nil
}

// fetch starts the single fetch for key. c.mu must be held.
func (c *Cache) fetch(key Key, e *entry) error {
	if c.closed {
		return ErrClosed
	}
	fetcher, ok := c.fetchers[key.Kind]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUndefined, key.Kind)
	}

	e.loading = true
	e.done = make(chan struct{})
	gen := e.gen

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		log.Debug().Str("key", key.String()).Msg("fetching")
		value, err := fetcher(c.ctx, key)
		c.settle(key, gen, value, err)
	}()
	return nil
}

func (c *Cache) settle(key Key, gen uint64, value any, err error) {
	c.mu.Lock()
	e := c.entry(key)
	e.loading = false
	if err != nil {
		log.Debug().Err(err).Str("key", key.String()).Msg("fetch failed")
		e.err = err
	} else {
		e.value, e.hasValue, e.err = value, true, nil
		e.updatedAt = c.now()
		if e.gen == gen {
			e.stale = false
		}
	}

	done := e.done
	e.done = nil

	// Invalidated while in flight: the value may predate the write that caused the invalidation.
	if e.gen != gen && len(e.subs) > 0 {
		if ferr := c.fetch(key, e); ferr != nil {
			log.Error().Err(ferr).Str("key", key.String()).Msg("failed to refetch invalidated query")
		}
	}

	deliver := e.queue(done)
	c.mu.Unlock()

	if deliver {
		c.deliver(key, e)
	}
}

// deliver notifies the subscribers of key until no newer state is pending. A state that changed while listeners
// were running is read again rather than replayed, so the last call each listener gets is the entry's latest.
func (c *Cache) deliver(key Key, e *entry) {
	c.mu.Lock()
	for e.dirty {
		e.dirty = false
		r := e.result(key)
		subs := snapshot(e.subs)
		waiters := e.waiters
		e.waiters = nil
		c.mu.Unlock()

		notify(subs, r)
		for _, w := range waiters {
			close(w)
		}
		c.mu.Lock()
	}
	e.delivering = false
	c.mu.Unlock()
}

// Subscribe registers l to be notified synchronously every time the entry for key settles or is invalidated.
// The returned function unregisters it; after it returns, l is never called again. Subscribing does not fetch.
func (c *Cache) Subscribe(key Key, l Listener) (unsubscribe func()) {
	c.mu.Lock()
	e := c.entry(key)
	id := c.nextSub
	c.nextSub++
	sub := &subscription{listener: l}
	sub.active.Store(true)
	e.subs[id] = sub
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.active.Store(false)
			c.mu.Lock()
			delete(c.entry(key).subs, id)
			c.mu.Unlock()
		})
	}
}

// Subscribers returns the number of listeners registered for key.
func (c *Cache) Subscribers(key Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return 0
	}
	return len(e.subs)
}

// Invalidate marks the entries stale. Entries with subscribers are refetched right away, the others on their
// next read.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	var pending []Key
	for _, key := range keys {
		if c.invalidate(key) {
			pending = append(pending, key)
		}
	}
	c.mu.Unlock()

	c.deliverAll(pending)
}

// InvalidateKind invalidates every cached key of the given kinds and returns the keys it found.
func (c *Cache) InvalidateKind(kinds ...Kind) []Key {
	c.mu.Lock()
	var touched, pending []Key
	for key := range c.entries {
		for _, kind := range kinds {
			if key.Kind != kind {
				continue
			}
			touched = append(touched, key)
			if c.invalidate(key) {
				pending = append(pending, key)
			}
		}
	}
	c.mu.Unlock()

	c.deliverAll(pending)
	return touched
}

func (c *Cache) deliverAll(keys []Key) {
	for _, key := range keys {
		c.mu.Lock()
		e := c.entries[key]
		c.mu.Unlock()
		c.deliver(key, e)
	}
}

// invalidate marks key stale and refetches it when subscribed. It reports whether the caller has to run
// deliver for key. c.mu must be held.
func (c *Cache) invalidate(key Key) bool {
	e, ok := c.entries[key]
	if !ok {
		return false
	}

	e.stale = true
	e.gen++
	log.Debug().Str("key", key.String()).Int("subscribers", len(e.subs)).Msg("invalidated")

	if len(e.subs) == 0 {
		return false
	}
	if !e.loading {
		if err := c.fetch(key, e); err != nil {
			log.Error().Err(err).Str("key", key.String()).Msg("failed to refetch invalidated query")
		}
	}
	return e.queue(nil)
}

// Close cancels running fetches and waits for them to settle. Reads after Close never fetch.
func (c *Cache) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

func snapshot(subs map[uint64]*subscription) []*subscription {
	out := make([]*subscription, 0, len(subs))
	for _, s := range subs {
		out = append(out, s)
	}
	return out
}

func notify(subs []*subscription, r Result) {
	for _, s := range subs {
		if s.active.Load() {
			s.listener(r)
		}
	}
}

// Value extracts a typed value from a result.
func Value[T any](r Result) (T, bool) {
	v, ok := r.Value.(T)
	return v, ok && r.HasValue
}

// Get awaits key and returns its value typed. When the last fetch failed, the previous value, if any, is
// returned together with the error.
func Get[T any](ctx context.Context, c *Cache, key Key) (T, error) {
	r, err := c.Await(ctx, key)
	v, _ := Value[T](r)
	if err != nil {
		return v, err
	}
	return v, r.Err
}
