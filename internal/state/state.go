// Package state wires the application together: the database, the session, the backend client, the query
// cache and the mutation executor. Every front end (CLI or web UI) builds one State and tears it down on exit.
package state

import (
	"context"
	"database/sql"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/tabletop/internal/client"
	"github.com/sidereusnuntius/tabletop/internal/config"
	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/sidereusnuntius/tabletop/internal/initialization"
	"github.com/sidereusnuntius/tabletop/internal/mutation"
	"github.com/sidereusnuntius/tabletop/internal/query"
	"github.com/sidereusnuntius/tabletop/internal/queue"
	"github.com/sidereusnuntius/tabletop/internal/resource"
	"github.com/sidereusnuntius/tabletop/internal/search"
	"github.com/sidereusnuntius/tabletop/internal/service"
	core "github.com/sidereusnuntius/tabletop/internal/service/impl"
	"github.com/sidereusnuntius/tabletop/internal/session"
	"github.com/sidereusnuntius/tabletop/internal/storage"
	"github.com/sidereusnuntius/tabletop/internal/storage/filestore"
	"github.com/sidereusnuntius/tabletop/internal/storage/sqlstore"
)

type State struct {
	Config   config.Configuration
	DB       *sql.DB
	Session  *session.Store
	Service  service.Service
	Cache    *query.Cache
	Executor *mutation.Executor
	// Users is the debounced member search; its responses are published on UserResults.
	Users       *search.Debouncer[domain.User]
	UserResults *search.Feed[domain.User]
	// Importer is nil until StartImports is called.
	Importer queue.Importer

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	teardown    sync.Once
}

// sessionTokens breaks the cycle between the client, which needs the session's token, and the session, which
// authenticates through the client.
type sessionTokens struct {
	store *session.Store
}

func (t *sessionTokens) Token() string {
	if t.store == nil {
		return ""
	}
	return t.store.Token()
}

// New opens the database, applies the migrations and restores the persisted session. httpClient may be nil.
func New(ctx context.Context, cfg config.Configuration, httpClient *http.Client) (*State, error) {
	db, err := initialization.OpenDB(cfg.DbUrl)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("db", cfg.DbUrl).Msg("database connection established")

	if err = initialization.SetupDB(db, cfg.MigrationsFolder); err != nil {
		db.Close()
		return nil, err
	}

	store, err := openStorage(cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	if httpClient == nil {
		httpClient = newHTTPClient()
	}
	tokens := &sessionTokens{}
	svc := core.New(client.New(cfg.ApiUrl, tokens, httpClient), cfg.MinSearchLength)

	sess, err := session.New(store, svc)
	if err != nil {
		db.Close()
		return nil, err
	}
	tokens.store = sess

	ctx, cancel := context.WithCancel(ctx)
	cache := query.New(ctx)
	resource.Register(cache, svc)

	s := &State{
		Config:      cfg,
		DB:          db,
		Session:     sess,
		Service:     svc,
		Cache:       cache,
		Executor:    mutation.New(cache),
		UserResults: search.NewFeed[domain.User](),
		ctx:         ctx,
		cancel:      cancel,
	}
	s.Users = search.New(ctx, svc.SearchUsers, s.UserResults.Publish,
		search.WithDelay[domain.User](cfg.SearchDebounce),
		search.WithMinLength[domain.User](cfg.MinSearchLength),
	)

	// Everything cached belongs to the previous identity.
	s.unsubscribe = sess.Subscribe(func(session.Session) {
		log.Debug().Msg("identity changed, invalidating cached queries")
		s.Cache.InvalidateKind(resource.Kinds...)
	})
	return s, nil
}

// newHTTPClient leaves timeouts to the platform defaults; requests are bounded by their contexts.
func newHTTPClient() *http.Client {
	return &http.Client{}
}

func openStorage(cfg config.Configuration, db *sql.DB) (storage.Storage, error) {
	if cfg.SessionStore == config.FileStore {
		return filestore.New(cfg.SessionDir)
	}
	return sqlstore.New(db), nil
}

// StartImports starts the background import queue. Only long running front ends need it.
func (s *State) StartImports() error {
	blClient, err := initialization.InitQueue(s.DB, s.Config.ImportWorkers)
	if err != nil {
		return err
	}
	s.Importer = queue.New(s.ctx, blClient, s.Executor, s.Service)
	return nil
}

// Teardown stops every background activity and closes the database. It is safe to call more than once.
func (s *State) Teardown() {
	s.teardown.Do(func() {
		s.unsubscribe()
		s.Users.Close()
		s.Cache.Close()
		s.cancel()
		if err := s.DB.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	})
}
