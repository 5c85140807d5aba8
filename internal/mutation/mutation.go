// Package mutation runs writes against the backend and, once the server has confirmed them, marks the affected
// cached queries stale.
package mutation

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"codeberg.org/gruf/go-mutexes"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/tabletop/internal/client"
	"github.com/sidereusnuntius/tabletop/internal/query"
)

var ErrNoOperation = errors.New("mutation has no operation")

type State int

const (
	StatePending State = iota
	StateResolved
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Mutation describes a single write. Do performs it; on success the listed keys and every cached key of the
// listed kinds are invalidated.
type Mutation struct {
	Name             string
	Do               func(ctx context.Context) (any, error)
	Invalidates      []query.Key
	InvalidatesKinds []query.Kind
	// Lock serializes mutations sharing the same non-empty value, e.g. "character:7".
	Lock string
	// IgnoreNotFound treats a 404 as the write having already been applied. Used by deletes.
	IgnoreNotFound bool
}

// Record is the outcome of one execution.
type Record struct {
	ID          uuid.UUID
	Name        string
	State       State
	Result      any
	Err         error
	Started     time.Time
	Finished    time.Time
	Invalidated []query.Key
}

// Invalidator is the part of the query cache the executor needs.
type Invalidator interface {
	Invalidate(keys ...query.Key)
	InvalidateKind(kinds ...query.Kind) []query.Key
}

type Executor struct {
	cache Invalidator
	locks *mutexes.MutexMap
	now   func() time.Time

	mu        sync.Mutex
	observers map[int]func(Record)
	nextObs   int
}

func New(cache Invalidator) *Executor {
	locks := mutexes.MutexMap{}
	return &Executor{
		cache:     cache,
		locks:     &locks,
		now:       time.Now,
		observers: map[int]func(Record){},
	}
}

// Execute performs m once. The invalidation happens after the server confirmed the write and before Execute
// returns, so a read issued after Execute returns never sees the pre-mutation cache entry as fresh.
// The error, if any, is returned and also recorded.
func (e *Executor) Execute(ctx context.Context, m Mutation) (Record, error) {
	rec := Record{
		ID:      uuid.New(),
		Name:    m.Name,
		State:   StatePending,
		Started: e.now(),
	}
	if m.Do == nil {
		rec.State, rec.Err, rec.Finished = StateFailed, ErrNoOperation, e.now()
		return rec, ErrNoOperation
	}

	if m.Lock != "" {
		unlock := e.locks.Lock(m.Lock)
		defer unlock()
	}
	e.notify(rec)

	result, err := m.Do(ctx)
	if err != nil && m.IgnoreNotFound && client.IsNotFound(err) {
		log.Debug().Str("mutation", m.Name).Msg("target already gone, treating as applied")
		err = nil
	}

	rec.Finished = e.now()
	if err != nil {
		log.Debug().Err(err).Str("mutation", m.Name).Msg("mutation failed")
		rec.State, rec.Err = StateFailed, err
		e.notify(rec)
		return rec, err
	}

	rec.State, rec.Result = StateResolved, result
	rec.Invalidated = append([]query.Key(nil), m.Invalidates...)
	if e.cache != nil {
		e.cache.Invalidate(m.Invalidates...)
		if len(m.InvalidatesKinds) > 0 {
			for _, key := range e.cache.InvalidateKind(m.InvalidatesKinds...) {
				if !slices.Contains(rec.Invalidated, key) {
					rec.Invalidated = append(rec.Invalidated, key)
				}
			}
		}
	}
	log.Debug().Str("mutation", m.Name).Stringer("id", rec.ID).Int("invalidated", len(rec.Invalidated)).Msg("mutation resolved")
	e.notify(rec)
	return rec, nil
}

// Observe registers f to be called when an execution starts and when it settles.
func (e *Executor) Observe(f func(Record)) (stop func()) {
	e.mu.Lock()
	id := e.nextObs
	e.nextObs++
	e.observers[id] = f
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.observers, id)
		e.mu.Unlock()
	}
}

func (e *Executor) notify(rec Record) {
	e.mu.Lock()
	observers := make([]func(Record), 0, len(e.observers))
	for _, f := range e.observers {
		observers = append(observers, f)
	}
	e.mu.Unlock()

	for _, f := range observers {
		f(rec)
	}
}
