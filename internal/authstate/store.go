package authstate

import (
	"context"
	"errors"
	"log"
	"sync"

	"moviemirror/models"
	"moviemirror/services/sessions"
)

var ErrNotStarted = errors.New("auth state store not started")

// AccountProvider is the slice of the accounts service the store needs.
type AccountProvider interface {
	Register(email, password, name string) (models.Account, error)
	Authenticate(email, password string) (models.Account, error)
}

// SessionProvider is the slice of the sessions service the store needs.
// The store never invents session state on its own; everything it knows
// comes from the provider's snapshot and its event feed.
type SessionProvider interface {
	Create(account models.Account, userAgent, ipAddress string) (models.Session, error)
	CreatePersistent(account models.Account, userAgent, ipAddress string) (models.Session, error)
	Revoke(token string) error
	ActiveSessions() []models.Session
	Subscribe() (<-chan sessions.Event, func())
}

// State is the authentication view for a single token.
type State struct {
	User            *models.Session `json:"user,omitempty"`
	IsAuthenticated bool            `json:"isAuthenticated"`
	IsLoading       bool            `json:"isLoading"`
}

// Store mirrors the active sessions of a SessionProvider. It subscribes
// to the provider's event feed, restores existing sessions at startup
// and keeps a token-keyed view that guards and handlers can read without
// touching the provider. Until Start has restored the initial snapshot
// every lookup reports IsLoading.
type Store struct {
	accounts AccountProvider
	sessions SessionProvider

	mu      sync.RWMutex
	active  map[string]models.Session
	loading bool
	started bool

	cancelSub func()
	done      chan struct{}
}

// NewStore creates an auth state store. Call Start before serving
// requests and Close during shutdown.
func NewStore(accounts AccountProvider, sessionSvc SessionProvider) *Store {
	return &Store{
		accounts: accounts,
		sessions: sessionSvc,
		active:   make(map[string]models.Session),
		loading:  true,
	}
}

// Start subscribes to session events, restores the provider's current
// sessions and launches the consumer goroutine. The subscription is
// acquired before the snapshot so no event can fall between the two.
func (s *Store) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	events, cancel := s.sessions.Subscribe()
	s.cancelSub = cancel
	s.done = make(chan struct{})

	restored := s.sessions.ActiveSessions()

	s.mu.Lock()
	for _, session := range restored {
		s.active[session.Token] = session
	}
	s.loading = false
	s.mu.Unlock()

	if len(restored) > 0 {
		log.Printf("[authstate] restored %d active session(s)", len(restored))
	}

	go s.consume(ctx, events)
}

// Close releases the event subscription and waits for the consumer
// goroutine to drain. Safe to call more than once.
func (s *Store) Close() {
	s.mu.Lock()
	cancel := s.cancelSub
	s.cancelSub = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-s.done
}

// consume applies session events to the mirror in the order they arrive.
// A single goroutine owns all writes driven by events, so ordering is
// exactly the provider's emission order.
func (s *Store) consume(ctx context.Context, events <-chan sessions.Event) {
	defer close(s.done)

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.apply(ev)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Store) apply(ev sessions.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Type {
	case sessions.EventSignedIn:
		s.active[ev.Session.Token] = ev.Session
	case sessions.EventSignedOut:
		delete(s.active, ev.Session.Token)
	default:
		log.Printf("[authstate] ignoring unknown event type %q", ev.Type)
	}
}

// Current returns the authentication state for the given token. While
// the store has not finished restoring, IsLoading is true and the
// caller must treat the result as undecided rather than signed out.
func (s *Store) Current(token string) State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.loading {
		return State{IsLoading: true}
	}

	session, ok := s.active[token]
	if !ok || session.IsExpired() {
		return State{}
	}

	copied := session
	return State{User: &copied, IsAuthenticated: true}
}

// Loading reports whether the initial session restore is still pending.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Login verifies credentials and creates a session. The mirror is not
// updated here; the sign-in lands through the event feed, which keeps
// the store's view consistent with the provider even when a login and a
// revocation race.
func (s *Store) Login(email, password, userAgent, ipAddress string, remember bool) (models.Session, error) {
	account, err := s.accounts.Authenticate(email, password)
	if err != nil {
		return models.Session{}, err
	}

	if remember {
		return s.sessions.CreatePersistent(account, userAgent, ipAddress)
	}
	return s.sessions.Create(account, userAgent, ipAddress)
}

// Register creates a new account and immediately signs it in.
func (s *Store) Register(email, password, name, userAgent, ipAddress string) (models.Session, error) {
	account, err := s.accounts.Register(email, password, name)
	if err != nil {
		return models.Session{}, err
	}
	return s.sessions.Create(account, userAgent, ipAddress)
}

// Logout revokes the session behind the token. The mirror entry is
// removed when the provider's SIGNED_OUT event arrives.
func (s *Store) Logout(token string) error {
	return s.sessions.Revoke(token)
}

// ActiveCount returns the number of sessions in the mirror.
func (s *Store) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.active)
}
