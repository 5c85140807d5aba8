// Package session holds the authenticated identity of the process. There is a single session per process;
// it is restored from storage on startup and persisted on every change.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/tabletop/internal/client"
	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/sidereusnuntius/tabletop/internal/storage"
	"github.com/sidereusnuntius/tabletop/internal/validate"
)

const storageKey = "session"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

type Session struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

func (s Session) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

// Authenticator is the part of the backend the session needs to establish an identity.
type Authenticator interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.Token, error)
	Register(ctx context.Context, reg domain.Registration) (domain.User, error)
	Me(ctx context.Context, token string) (domain.User, error)
}

type Store struct {
	mu        sync.RWMutex
	current   Session
	storage   storage.Storage
	auth      Authenticator
	listeners map[uint64]func(Session)
	nextID    uint64
	now       func() time.Time
}

func New(store storage.Storage, auth Authenticator) (*Store, error) {
	s := &Store{
		storage:   store,
		auth:      auth,
		listeners: map[uint64]func(Session){},
		now:       time.Now,
	}
	if err := s.restore(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) restore() error {
	data, err := s.storage.Get(storageKey)
	if errors.Is(err, storage.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var restored Session
	if err = json.Unmarshal(data, &restored); err != nil {
		log.Warn().Err(err).Msg("discarding unreadable persisted session")
		return s.storage.Clear()
	}

	if !restored.IsAuthenticated() || s.expired(restored.Token) {
		log.Info().Msg("persisted session expired")
		return s.storage.Clear()
	}

	s.current = restored
	log.Debug().Str("username", restored.User.Username).Msg("session restored")
	return nil
}

// expired reads the exp claim of a JWT access token without verifying it; the backend remains the authority.
// Tokens that are not JWTs never expire client-side.
func (s *Store) expired(token string) bool {
	var claims jwt.RegisteredClaims
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(s.now())
}

// Login exchanges the credentials for a token and fetches the matching identity. The session is only replaced
// when both steps succeed.
func (s *Store) Login(ctx context.Context, creds domain.Credentials) error {
	if err := validate.Credentials(creds); err != nil {
		return err
	}

	token, err := s.auth.Login(ctx, creds)
	if err != nil {
		switch client.StatusOf(err) {
		case http.StatusBadRequest, http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrInvalidCredentials, err)
		}
		return err
	}

	user, err := s.auth.Me(ctx, token.AccessToken)
	if err != nil {
		return err
	}

	return s.replace(Session{Token: token.AccessToken, User: &user})
}

// Register creates the account and logs into it.
func (s *Store) Register(ctx context.Context, reg domain.Registration) error {
	if err := validate.SignUpForm(reg); err != nil {
		return err
	}

	if _, err := s.auth.Register(ctx, reg); err != nil {
		return err
	}

	return s.Login(ctx, domain.Credentials{Username: reg.Username, Password: reg.Password})
}

// Logout clears the session. Queries already in flight are left alone.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.current = Session{}
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	err := s.storage.Clear()
	if err != nil {
		log.Error().Err(err).Msg("failed to clear persisted session")
	}
	notify(listeners, Session{})
	return err
}

func (s *Store) replace(next Session) error {
	data, err := json.Marshal(next)
	if err != nil {
		return err
	}
	if err = s.storage.Set(storageKey, data); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = next
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	log.Info().Str("username", next.User.Username).Msg("logged in")
	notify(listeners, next)
	return nil
}

// Token implements client.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

func (s *Store) CurrentUser() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current.User == nil {
		return domain.User{}, false
	}
	return *s.current.User, true
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.IsAuthenticated()
}

func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers f to be called after every login and logout. The returned function removes it.
func (s *Store) Subscribe(f func(Session)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = f
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) snapshotListeners() []func(Session) {
	out := make([]func(Session), 0, len(s.listeners))
	for _, f := range s.listeners {
		out = append(out, f)
	}
	return out
}

func notify(listeners []func(Session), s Session) {
	for _, f := range listeners {
		f(s)
	}
}
