package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

const (
	SqliteStore = "sqlite"
	FileStore   = "file"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Configuration struct {
	// ApiUrl is the base of the campaign manager's REST API, including the version prefix.
	ApiUrl *url.URL
	// DbUrl is the path to the sqlite database holding the persisted session and the import queue.
	DbUrl            string
	MigrationsFolder string
	// SessionStore selects where the session is persisted: SqliteStore or FileStore.
	SessionStore string
	SessionDir   string
	Port         uint16
	// Debug, if true, will make the application log all HTTP requests and other events.
	Debug bool
	// SearchDebounce is how long the user search waits after the last keystroke.
	SearchDebounce  time.Duration
	MinSearchLength int
	// CookieKey signs the web UI's flash cookies. Must be 32 bytes long.
	CookieKey     string
	ImportWorkers int
}

func (c Configuration) validate() error {
	var errs []error
	if c.ApiUrl.Scheme != "http" && c.ApiUrl.Scheme != "https" {
		errs = append(errs, fmt.Errorf("%w: api url must be http or https, got %q", ErrInvalidConfig, c.ApiUrl.Scheme))
	}
	if c.SessionStore != SqliteStore && c.SessionStore != FileStore {
		errs = append(errs, fmt.Errorf("%w: unknown session store %q", ErrInvalidConfig, c.SessionStore))
	}
	if c.SessionStore == FileStore && c.SessionDir == "" {
		errs = append(errs, fmt.Errorf("%w: session directory is required by the file store", ErrInvalidConfig))
	}
	if len(c.CookieKey) != 32 {
		errs = append(errs, fmt.Errorf("%w: cookie key must be 32 bytes long", ErrInvalidConfig))
	}
	if c.MinSearchLength < 1 {
		errs = append(errs, fmt.Errorf("%w: minimum search length must be positive", ErrInvalidConfig))
	}
	if c.SearchDebounce < 0 {
		errs = append(errs, fmt.Errorf("%w: search debounce cannot be negative", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}
