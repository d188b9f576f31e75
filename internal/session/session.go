// Package session holds the client session (bearer token and delivery
// pincode) and tells subscribers when the pincode changes.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"

	"ilbmart/internal/models"
	"ilbmart/internal/repositories"
)

// PincodeListener is called after the pincode has changed and been persisted.
type PincodeListener func(ctx context.Context, pincode string)

// Session is the single source of truth for token and pincode. It is created
// once at startup and shared by every service.
type Session struct {
	repo repositories.SessionRepository

	mu      sync.RWMutex
	current models.Session

	listenersMu sync.Mutex
	listeners   []*listener
}

type listener struct {
	fn PincodeListener
}

// Open loads the persisted session.
func Open(ctx context.Context, repo repositories.SessionRepository) (*Session, error) {
	token, err := repo.Get(ctx, models.SessionTokenKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load session token: %w", err)
	}
	pincode, err := repo.Get(ctx, models.SessionPincodeKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load session pincode: %w", err)
	}
	return &Session{
		repo:    repo,
		current: models.Session{Token: token, Pincode: pincode},
	}, nil
}

// Snapshot returns a copy of the current values.
func (s *Session) Snapshot() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Token returns the bearer token, or "".
func (s *Session) Token() string {
	return s.Snapshot().Token
}

// Pincode returns the delivery pincode, or "".
func (s *Session) Pincode() string {
	return s.Snapshot().Pincode
}

// LoggedIn reports whether a token is present.
func (s *Session) LoggedIn() bool {
	return s.Snapshot().LoggedIn()
}

// SetToken stores and persists a new token.
func (s *Session) SetToken(ctx context.Context, token string) error {
	if err := s.repo.Put(ctx, models.SessionTokenKey, token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	s.mu.Lock()
	s.current.Token = token
	s.mu.Unlock()
	return nil
}

// SetPincode persists the pincode and then notifies subscribers in
// subscription order. Every successful submission notifies, including a
// resubmission of the current pincode.
func (s *Session) SetPincode(ctx context.Context, pincode string) error {
	if err := s.repo.Put(ctx, models.SessionPincodeKey, pincode); err != nil {
		return fmt.Errorf("failed to persist pincode: %w", err)
	}
	s.mu.Lock()
	s.current.Pincode = pincode
	s.mu.Unlock()
	log.Printf("Session pincode set to %s", pincode)

	s.listenersMu.Lock()
	listeners := append([]*listener(nil), s.listeners...)
	s.listenersMu.Unlock()
	for _, l := range listeners {
		l.fn(ctx, pincode)
	}
	return nil
}

// Logout removes the token. The pincode is kept.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.repo.Delete(ctx, models.SessionTokenKey); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	s.mu.Lock()
	s.current.Token = ""
	s.mu.Unlock()
	return nil
}

// Subscribe registers fn for pincode changes. The returned func removes it.
func (s *Session) Subscribe(fn PincodeListener) (unsubscribe func()) {
	l := &listener{fn: fn}
	s.listenersMu.Lock()
	s.listeners = append(s.listeners, l)
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			defer s.listenersMu.Unlock()
			for i, existing := range s.listeners {
				if existing == l {
					s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}
