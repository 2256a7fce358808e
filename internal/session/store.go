package session

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"claimsportal/domain/claim"
	"claimsportal/domain/core"
	"claimsportal/internal"
	"claimsportal/internal/errors"
	"claimsportal/ports"
)

// Snapshot is what subscribers observe after every change
type Snapshot struct {
	Identity      *claim.Identity
	Authenticated bool
}

// Store holds the single active identity of this process and mirrors it into client storage
type Store struct {
	mu       sync.RWMutex
	storage  ports.ClientStorage
	nav      ports.Navigator
	log      *internal.Logger
	identity *claim.Identity

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

var _ ports.TokenSource = (*Store)(nil)

// Option configures a Store
type Option func(*Store)

// WithNavigator routes Login and Logout through nav
func WithNavigator(nav ports.Navigator) Option {
	return func(s *Store) { s.nav = nav }
}

func WithLogger(log *internal.Logger) Option {
	return func(s *Store) { s.log = log }
}

// NewStore creates an empty, unauthenticated store. Call Restore to pick up a persisted identity.
func NewStore(storage ports.ClientStorage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		log:     internal.DefaultLogger,
		subs:    make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads the persisted identity, if any. A malformed record leaves the session empty.
// The identity is not checked against the backend.
func (s *Store) Restore() error {
	raw, ok, err := s.storage.Get(ports.KeyIdentity)
	if err != nil {
		return errors.Wrap(err, "failed to read persisted identity")
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}

	var id claim.Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil || !id.Valid() {
		s.log.Warn("ignoring malformed persisted identity")
		return nil
	}

	s.mu.Lock()
	s.identity = &id
	s.mu.Unlock()

	s.notify()
	return nil
}

// Login makes id the active identity, persists it and navigates to the role's home route
func (s *Store) Login(id claim.Identity) (string, error) {
	raw, err := json.Marshal(id)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode identity")
	}
	if err := s.storage.Set(ports.KeyIdentity, string(raw)); err != nil {
		return "", errors.Wrap(err, "failed to persist identity")
	}

	s.mu.Lock()
	s.identity = &id
	s.mu.Unlock()

	s.log.Infow("signed in", "user_id", id.ID.String(), "role", string(id.Role))
	s.notify()

	route := id.Role.Home()
	s.navigate(route)
	return route, nil
}

// Logout clears the identity and the persisted identity and token together
func (s *Store) Logout() (string, error) {
	s.mu.Lock()
	s.identity = nil
	s.mu.Unlock()

	err := s.storage.Remove(ports.KeyIdentity, ports.KeyToken)

	s.notify()
	s.navigate(claim.RouteSignIn)
	if err != nil {
		return claim.RouteSignIn, errors.Wrap(err, "failed to clear persisted session")
	}
	return claim.RouteSignIn, nil
}

// IsAuthenticated reports whether an identity is active
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil
}

// Identity returns a copy of the active identity
func (s *Store) Identity() (claim.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return claim.Identity{}, false
	}
	return *s.identity, true
}

// RequireIdentity is the guard used by protected operations
func (s *Store) RequireIdentity() (claim.Identity, error) {
	id, ok := s.Identity()
	if !ok {
		return claim.Identity{}, errors.WithCode(errors.CodeUnauthorized, core.ErrUnauthenticated)
	}
	return id, nil
}

// Token reads the persisted bearer token
func (s *Store) Token() string {
	t, ok, err := s.storage.Get(ports.KeyToken)
	if err != nil || !ok {
		return ""
	}
	return t
}

// SetToken persists the bearer token
func (s *Store) SetToken(token string) error {
	if err := s.storage.Set(ports.KeyToken, token); err != nil {
		return errors.Wrap(err, "failed to persist token")
	}
	return nil
}

// Subscribe registers fn for change notifications and returns its cancel func
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

func (s *Store) snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return Snapshot{}
	}
	id := *s.identity
	return Snapshot{Identity: &id, Authenticated: true}
}

func (s *Store) notify() {
	snap := s.snapshot()

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

func (s *Store) navigate(route string) {
	if s.nav != nil {
		s.nav.Navigate(route)
	}
}

type storeKey struct{}

// WithStore attaches s to ctx
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeKey{}, s)
}

// FromContext returns the store installed by WithStore. A missing store is a wiring bug and panics.
func FromContext(ctx context.Context) *Store {
	s, ok := ctx.Value(storeKey{}).(*Store)
	if !ok || s == nil {
		panic("session store must be installed before use")
	}
	return s
}
