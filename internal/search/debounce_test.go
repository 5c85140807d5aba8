package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var ctx = context.Background()

type fakeTimer struct {
	mu      sync.Mutex
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (t *fakeTimer) fire() {
	t.mu.Lock()
	if t.stopped || t.fired {
		t.mu.Unlock()
		return
	}
	t.fired = true
	t.mu.Unlock()
	t.f()
}

type clock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *clock) afterFunc(_ time.Duration, f func()) timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *clock) last() *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timers[len(c.timers)-1]
}

type harness struct {
	clock     *clock
	db        *Debouncer[string]
	mu        sync.Mutex
	queries   []string
	responses []Response[string]
}

func newHarness(search SearchFunc[string]) *harness {
	h := &harness{clock: &clock{}}
	record := func(ctx context.Context, q string) ([]string, error) {
		h.mu.Lock()
		h.queries = append(h.queries, q)
		h.mu.Unlock()
		return search(ctx, q)
	}
	h.db = New(ctx, record, func(r Response[string]) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.responses = append(h.responses, r)
	}, withAfterFunc[string](h.clock.afterFunc))
	return h
}

func echo(_ context.Context, q string) ([]string, error) {
	return []string{q + "ce"}, nil
}

func TestType_ShortQueryAnswersWithoutSearching(t *testing.T) {
	h := newHarness(echo)
	defer h.db.Close()

	h.db.Type(" a ")

	if len(h.queries) != 0 || len(h.clock.timers) != 0 {
		t.Error("a short query must not be searched")
	}
	if diff := cmp.Diff([]Response[string]{{Query: "a"}}, h.responses); diff != "" {
		t.Errorf("unexpected responses (-want +got):\n%s", diff)
	}
}

func TestType_MinimumLengthCountsCharacters(t *testing.T) {
	cases := []struct {
		query    string
		searched bool
	}{
		{query: "é"},
		{query: "日"},
		{query: "éa", searched: true},
		{query: "日本", searched: true},
	}
	for _, c := range cases {
		t.Run(c.query, func(t *testing.T) {
			h := newHarness(echo)
			defer h.db.Close()

			h.db.Type(c.query)
			if searched := len(h.clock.timers) > 0; searched != c.searched {
				t.Errorf("expected searched=%t for %q", c.searched, c.query)
			}
		})
	}
}

func TestType_Debounces(t *testing.T) {
	h := newHarness(echo)
	defer h.db.Close()

	h.db.Type("al")
	first := h.clock.last()
	h.db.Type("ali")

	first.fire()
	h.clock.last().fire()

	if diff := cmp.Diff([]string{"ali"}, h.queries); diff != "" {
		t.Errorf("unexpected searches (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Response[string]{{Query: "ali", Results: []string{"alice"}}}, h.responses); diff != "" {
		t.Errorf("unexpected responses (-want +got):\n%s", diff)
	}
}

func TestType_CancelsInFlightSearch(t *testing.T) {
	started := make(chan struct{}, 1)
	h := newHarness(func(ctx context.Context, q string) ([]string, error) {
		if q == "al" {
			started <- struct{}{}
			<-ctx.Done()
			return []string{"stale"}, ctx.Err()
		}
		return echo(ctx, q)
	})
	defer h.db.Close()

	h.db.Type("al")
	slow := h.clock.last()
	done := make(chan struct{})
	go func() {
		defer close(done)
		slow.fire()
	}()
	<-started

	h.db.Type("ali")
	<-done
	h.clock.last().fire()

	if diff := cmp.Diff([]Response[string]{{Query: "ali", Results: []string{"alice"}}}, h.responses); diff != "" {
		t.Errorf("superseded results must be dropped (-want +got):\n%s", diff)
	}
}

func TestFlush(t *testing.T) {
	h := newHarness(echo)
	defer h.db.Close()

	h.db.Type("ali")
	h.db.Flush()

	if len(h.responses) != 1 || h.responses[0].Query != "ali" {
		t.Errorf("expected an immediate search, got %v", h.responses)
	}
	h.clock.last().fire()
	if len(h.queries) != 1 {
		t.Errorf("the flushed timer must not search again, got %v", h.queries)
	}

	h.db.Flush()
	if len(h.queries) != 1 {
		t.Error("flush without a pending query must do nothing")
	}
}

func TestCancelAndClose(t *testing.T) {
	h := newHarness(func(context.Context, string) ([]string, error) {
		return nil, errors.New("unexpected search")
	})

	h.db.Type("ali")
	h.db.Cancel()
	h.clock.last().fire()

	h.db.Close()
	h.db.Type("alice")

	if len(h.queries) != 0 || len(h.responses) != 0 {
		t.Errorf("expected nothing to run, got %v %v", h.queries, h.responses)
	}
}
