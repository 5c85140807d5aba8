package mutation

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sidereusnuntius/tabletop/internal/client"
	"github.com/sidereusnuntius/tabletop/internal/query"
)

var ctx = context.Background()

type invalidations struct {
	mu    sync.Mutex
	keys  []query.Key
	kinds []query.Kind
	// cached are the keys InvalidateKind reports as present.
	cached []query.Key
}

func (i *invalidations) Invalidate(keys ...query.Key) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.keys = append(i.keys, keys...)
}

func (i *invalidations) InvalidateKind(kinds ...query.Kind) []query.Key {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.kinds = append(i.kinds, kinds...)
	var touched []query.Key
	for _, key := range i.cached {
		if slices.Contains(kinds, key.Kind) {
			touched = append(touched, key)
		}
	}
	return touched
}

func TestExecute(t *testing.T) {
	characters := query.NewKey("characters-for-campaign", 3)
	character := query.NewKey("character", 7)
	notFound := &client.HttpError{Status: http.StatusNotFound, Message: "Character not found"}

	cases := []struct {
		name        string
		err         error
		ignore404   bool
		state       State
		invalidated []query.Key
	}{
		{
			name:        "success invalidates",
			state:       StateResolved,
			invalidated: []query.Key{characters, character},
		},
		{
			name:  "failure invalidates nothing",
			err:   &client.HttpError{Status: http.StatusForbidden, Message: "Not enough permissions"},
			state: StateFailed,
		},
		{
			name:  "network failure invalidates nothing",
			err:   &client.HttpError{Message: client.NetworkError},
			state: StateFailed,
		},
		{
			name:  "not found fails by default",
			err:   notFound,
			state: StateFailed,
		},
		{
			name:        "not found is satisfied when ignored",
			err:         notFound,
			ignore404:   true,
			state:       StateResolved,
			invalidated: []query.Key{characters, character},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			inv := &invalidations{}
			e := New(inv)
			calls := 0

			rec, err := e.Execute(ctx, Mutation{
				Name: "delete-character",
				Do: func(context.Context) (any, error) {
					calls++
					return nil, c.err
				},
				Invalidates:    []query.Key{characters, character},
				IgnoreNotFound: c.ignore404,
			})

			if calls != 1 {
				t.Errorf("expected exactly one attempt, got %d", calls)
			}
			if rec.State != c.state {
				t.Errorf("expected state %s, got %s", c.state, rec.State)
			}
			if c.state == StateFailed && (err == nil || !errors.Is(rec.Err, c.err)) {
				t.Errorf("expected the error to be returned and recorded, got %v", err)
			}
			if c.state == StateResolved && err != nil {
				t.Errorf("unexpected error: %s", err)
			}
			if diff := cmp.Diff(c.invalidated, inv.keys); diff != "" {
				t.Errorf("unexpected invalidations (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExecute_InvalidatesKinds(t *testing.T) {
	campaigns := query.NewKey("campaigns")
	detail := query.NewKey("campaign-detail", 5)
	inv := &invalidations{cached: []query.Key{campaigns, query.NewKey("me"), query.NewKey("character", 7)}}
	rec, err := New(inv).Execute(ctx, Mutation{
		Name:             "logout",
		Do:               func(context.Context) (any, error) { return nil, nil },
		Invalidates:      []query.Key{detail, campaigns},
		InvalidatesKinds: []query.Kind{"campaigns", "me"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]query.Kind{"campaigns", "me"}, inv.kinds); diff != "" {
		t.Errorf("unexpected kinds (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]query.Key{detail, campaigns, query.NewKey("me")}, rec.Invalidated); diff != "" {
		t.Errorf("the record must list every invalidated key once (-want +got):\n%s", diff)
	}
}

func TestExecute_RecordsKeysOfInvalidatedKinds(t *testing.T) {
	c := query.New(ctx)
	defer c.Close()
	c.Define("characters-for-campaign", func(context.Context, query.Key) (any, error) {
		return []string{}, nil
	})
	three := query.NewKey("characters-for-campaign", 3)
	if _, err := c.Await(ctx, three); err != nil {
		t.Fatal(err)
	}

	rec, err := New(c).Execute(ctx, Mutation{
		Name:             "import-character",
		Do:               func(context.Context) (any, error) { return nil, nil },
		InvalidatesKinds: []query.Kind{"characters-for-campaign"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]query.Key{three}, rec.Invalidated); diff != "" {
		t.Errorf("unexpected invalidated keys (-want +got):\n%s", diff)
	}
	if r := c.Peek(three); !r.Stale {
		t.Error("expected the cached key to be stale")
	}
}

func TestExecute_InvalidatesBeforeReturning(t *testing.T) {
	c := query.New(ctx)
	defer c.Close()

	version := 0
	c.Define("campaigns", func(context.Context, query.Key) (any, error) {
		return version, nil
	})
	key := query.NewKey("campaigns")
	if _, err := c.Await(ctx, key); err != nil {
		t.Fatal(err)
	}

	_, err := New(c).Execute(ctx, Mutation{
		Name:        "create-campaign",
		Do:          func(context.Context) (any, error) { version++; return version, nil },
		Invalidates: []query.Key{key},
	})
	if err != nil {
		t.Fatal(err)
	}

	r, err := c.Await(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if r.Value != 1 {
		t.Errorf("a read after the mutation must observe it, got %v", r.Value)
	}
}

func TestExecute_Lock(t *testing.T) {
	e := New(&invalidations{})
	started := make(chan struct{})
	release := make(chan struct{})

	var mu sync.Mutex
	var order []string
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, s)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		e.Execute(ctx, Mutation{Name: "first", Lock: "character:7", Do: func(context.Context) (any, error) {
			record("first start")
			close(started)
			<-release
			record("first end")
			return nil, nil
		}})
	}()

	<-started
	go func() {
		defer wg.Done()
		e.Execute(ctx, Mutation{Name: "second", Lock: "character:7", Do: func(context.Context) (any, error) {
			record("second")
			return nil, nil
		}})
	}()

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if diff := cmp.Diff([]string{"first start", "first end", "second"}, order); diff != "" {
		t.Errorf("mutations sharing a lock must not overlap (-want +got):\n%s", diff)
	}
}

func TestObserve(t *testing.T) {
	e := New(nil)
	var states []State
	stop := e.Observe(func(r Record) { states = append(states, r.State) })

	e.Execute(ctx, Mutation{Name: "ok", Do: func(context.Context) (any, error) { return nil, nil }})
	e.Execute(ctx, Mutation{Name: "bad", Do: func(context.Context) (any, error) { return nil, errors.New("no") }})
	stop()
	e.Execute(ctx, Mutation{Name: "unobserved", Do: func(context.Context) (any, error) { return nil, nil }})

	want := []State{StatePending, StateResolved, StatePending, StateFailed}
	if diff := cmp.Diff(want, states); diff != "" {
		t.Errorf("unexpected states (-want +got):\n%s", diff)
	}
}

func TestExecute_NoOperation(t *testing.T) {
	rec, err := New(nil).Execute(ctx, Mutation{Name: "empty"})
	if !errors.Is(err, ErrNoOperation) || rec.State != StateFailed {
		t.Errorf("unexpected result %v, %v", rec.State, err)
	}
}
