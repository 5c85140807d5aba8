package sqlstore

import (
	"errors"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/tabletop/internal/initialization"
	"github.com/sidereusnuntius/tabletop/internal/storage"
)

var store storage.Storage

func TestMain(m *testing.M) {
	d, err := initialization.OpenDB("file:kvtest?mode=memory&cache=shared")
	if err != nil {
		log.Fatal().Err(err).Msg("tests setup failure")
		return
	}

	err = initialization.SetupDB(d, "../../../migrations")
	if err != nil {
		log.Fatal().Err(err).Msg("tests setup failure")
		return
	}
	store = New(d)
	m.Run()
}

func TestSetGet(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
		err   error
	}{
		{"insert", "session", "first", nil},
		{"upsert", "session", "second", nil},
		{"empty key", "", "x", storage.ErrBadKey},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := store.Set(c.key, []byte(c.value))
			if c.err != nil {
				if !errors.Is(err, c.err) {
					t.Errorf("expected %s, got %v", c.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}

			got, err := store.Get(c.key)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if string(got) != c.value {
				t.Errorf("expected %q, got %q", c.value, got)
			}
		})
	}
}

func TestDeleteAndClear(t *testing.T) {
	if err := store.Delete("absent"); !errors.Is(err, storage.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}

	for _, key := range []string{"a", "b"} {
		if err := store.Set(key, []byte(key)); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.Delete("a"); err != nil {
		t.Errorf("unexpected error: %s", err)
	}
	if _, err := store.Get("a"); !errors.Is(err, storage.ErrNotExist) {
		t.Errorf("expected a to be deleted, got %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get("b"); !errors.Is(err, storage.ErrNotExist) {
		t.Errorf("expected b to be cleared, got %v", err)
	}
}
