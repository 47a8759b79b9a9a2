package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/handiism/vinyl-vault/internal/logging"
	"github.com/handiism/vinyl-vault/internal/model"
	"github.com/handiism/vinyl-vault/internal/storage"
)

// Keys under which the session is persisted.
const (
	TokenKey    = "token"
	UsernameKey = "username"
)

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	SignIn(ctx context.Context, creds model.Credentials) (string, error)
	SignUp(ctx context.Context, creds model.Credentials) (string, error)
}

// Snapshot is a point-in-time view of the session.
type Snapshot struct {
	Token string

	// User is nil when signed out.
	User *model.User

	// Loading is true until Hydrate has finished.
	Loading bool
}

// Authenticated reports whether a valid session is present.
func (s Snapshot) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to check token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store is the session state.
//
// It is safe for concurrent use. Subscribers are called after every change,
// outside the lock, on the goroutine that made the change.
type Store struct {
	kv   storage.Store
	auth Authenticator
	now  func() time.Time
	log  zerolog.Logger

	mu      sync.RWMutex
	token   string
	user    *model.User
	loading bool

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewStore creates a Store in the loading state. Call Hydrate before use.
func NewStore(kv storage.Store, auth Authenticator, opts ...Option) *Store {
	s := &Store{
		kv:      kv,
		auth:    auth,
		now:     time.Now,
		log:     logging.Component("session"),
		loading: true,
		subs:    make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate restores the persisted session.
//
// A persisted token that fails to decode is cleared and the session ends up
// signed out; this is not reported as an error. An error is returned only
// when the store itself cannot be read.
func (s *Store) Hydrate(ctx context.Context) error {
	defer s.finishLoading()

	token, ok, err := s.kv.Get(ctx, TokenKey)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if !ok || token == "" {
		s.log.Debug().Msg("no stored session")
		return nil
	}

	username, _, err := s.kv.Get(ctx, UsernameKey)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}

	user, err := DecodeToken(token, username, s.now())
	if err != nil {
		s.log.Info().Str("reason", err.Error()).Msg("session cleared")
		if err := s.kv.Delete(ctx, TokenKey, UsernameKey); err != nil {
			s.log.Warn().Err(err).Msg("clear stored session")
		}
		return nil
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()

	s.log.Info().Str("user", user.Username).Msg("session restored")
	return nil
}

func (s *Store) finishLoading() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
	s.notify()
}

// SignIn authenticates with existing credentials.
//
// On failure the session is left unchanged and the error carries a
// message fit for display.
func (s *Store) SignIn(ctx context.Context, creds model.Credentials) error {
	return s.authenticate(ctx, creds, s.auth.SignIn)
}

// SignUp registers a new account and signs in with it.
func (s *Store) SignUp(ctx context.Context, creds model.Credentials) error {
	return s.authenticate(ctx, creds, s.auth.SignUp)
}

func (s *Store) authenticate(ctx context.Context, creds model.Credentials, call func(context.Context, model.Credentials) (string, error)) error {
	if err := model.Validate(creds); err != nil {
		return err
	}

	token, err := call(ctx, creds)
	if err != nil {
		return err
	}

	user, err := DecodeToken(token, creds.Username, s.now())
	if err != nil {
		s.log.Warn().Err(err).Msg("server returned an unusable token")
		return err
	}

	if err := s.kv.Put(ctx, map[string]string{
		TokenKey:    token,
		UsernameKey: creds.Username,
	}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()

	s.log.Info().Str("user", user.Username).Msg("signed in")
	s.notify()
	return nil
}

// SignOut clears the session. It is safe to call when already signed out.
func (s *Store) SignOut(ctx context.Context) {
	s.mu.Lock()
	changed := s.token != "" || s.user != nil
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.kv.Delete(ctx, TokenKey, UsernameKey); err != nil {
		s.log.Warn().Err(err).Msg("clear stored session")
	}

	if changed {
		s.log.Info().Msg("signed out")
		s.notify()
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Token: s.token, Loading: s.loading}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// Token returns the current token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// CurrentUser returns the signed-in user.
func (s *Store) CurrentUser() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// Subscribe registers fn to be called after every change. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify() {
	snap := s.Snapshot()

	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
