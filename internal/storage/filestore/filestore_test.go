package filestore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/tabletop/internal/storage"
)

var store storage.Storage
var path string

func TestMain(m *testing.M) {
	var err error
	path, err = os.MkdirTemp(".", "tempdir")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup tests")
		return
	}

	store = &FileStore{
		Root: path,
	}

	code := m.Run()
	if err = os.RemoveAll(path); err != nil {
		log.Fatal().Err(err).Msg("removal of temporary directory failed")
	}
	os.Exit(code)
}

func TestSetGet(t *testing.T) {
	cases := []struct {
		Casename string
		Key      string
		Content  string
		Err      error
	}{
		{"create key", "session", `{"token":"a"}`, nil},
		{"replace key", "session", `{"token":"b"}`, nil},
		{"nested path", "../escape", "nope", storage.ErrBadKey},
		{"empty key", "", "nope", storage.ErrBadKey},
	}

	for _, c := range cases {
		t.Run(c.Casename, func(t *testing.T) {
			err := store.Set(c.Key, []byte(c.Content))
			if c.Err != nil {
				if !errors.Is(err, c.Err) {
					t.Errorf("unexpected error type.\nexpected: %s\ngot: %s\n", c.Err, err)
				}
				return
			}
			if err != nil {
				t.Fatal("unexpected error:", err)
			}

			content, err := os.ReadFile(filepath.Join(path, c.Key))
			if err != nil {
				t.Fatalf("failed to read file: %s", err)
			}
			if string(content) != c.Content {
				t.Errorf("expected \"%s\", got \"%s\"", c.Content, content)
			}

			got, err := store.Get(c.Key)
			if err != nil {
				t.Fatal("unexpected error:", err)
			}
			if string(got) != c.Content {
				t.Errorf("expected \"%s\", got \"%s\"", c.Content, got)
			}
		})
	}
}

func TestGetMissing(t *testing.T) {
	_, err := store.Get("missing")
	if !errors.Is(err, storage.ErrNotExist) {
		t.Errorf("unexpected err: %s\nexpected \"%s\"", err, storage.ErrNotExist)
	}
}

func TestDelete(t *testing.T) {
	name := "moribundus"
	if err := store.Set(name, []byte("x")); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	err := store.Delete(name)
	if err != nil {
		t.Errorf("unexpected error: %s", err)
	}

	name = "none"
	err = store.Delete(name)
	if err == nil || !errors.Is(err, storage.ErrNotExist) {
		t.Errorf("unexpected err: %s\nexpected \"%s\"", err, storage.ErrNotExist)
	}
}

func TestClear(t *testing.T) {
	for _, key := range []string{"a", "b"} {
		if err := store.Set(key, []byte(key)); err != nil {
			t.Fatal(err)
		}
	}

	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"a", "b"} {
		if _, err := store.Get(key); !errors.Is(err, storage.ErrNotExist) {
			t.Errorf("expected %s to be cleared, got %v", key, err)
		}
	}
}

func TestNew_NotADirectory(t *testing.T) {
	file := filepath.Join(path, "plain")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	defer os.Remove(file)

	if _, err := New(file); !errors.Is(err, storage.ErrNotDir) {
		t.Errorf("expected ErrNotDir, got %v", err)
	}
}
