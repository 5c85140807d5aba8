package sqlstore

import (
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/tabletop/internal/storage"
)

// SqlStore keeps keys in the kv table of the application's SQLite database.
type SqlStore struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) storage.Storage {
	return &SqlStore{
		db:  db,
		now: time.Now,
	}
}

// HandleError hides database details behind the storage sentinel errors.
func (s *SqlStore) HandleError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return storage.ErrNotExist
	default:
		log.Error().Err(err).Msg("kv store error")
		return storage.ErrInternal
	}
}

func (s *SqlStore) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, storage.ErrBadKey
	}

	var value []byte
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	return value, s.HandleError(err)
}

func (s *SqlStore) Set(key string, value []byte) error {
	if key == "" {
		return storage.ErrBadKey
	}

	_, err := s.db.Exec(`INSERT INTO kv(key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().Unix())
	return s.HandleError(err)
}

func (s *SqlStore) Delete(key string) error {
	res, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key)
	if err != nil {
		return s.HandleError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return s.HandleError(err)
	}
	if n == 0 {
		return storage.ErrNotExist
	}
	return nil
}

func (s *SqlStore) Clear() error {
	_, err := s.db.Exec("DELETE FROM kv")
	return s.HandleError(err)
}
