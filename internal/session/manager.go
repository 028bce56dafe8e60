package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/fjod/go_cart/eventhub/internal/domain"
	"github.com/fjod/go_cart/eventhub/internal/logger"
	"github.com/fjod/go_cart/eventhub/internal/repository"
	"golang.org/x/sync/singleflight"
)

// Actor is the authenticated identity behind the session.
type Actor struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Session is the device's view of who is signed in. Profile may be nil
// for a signed-in actor whose profile row does not exist yet. Settled is
// false until the first Restore or SignIn completes.
type Session struct {
	Actor   *Actor          `json:"actor"`
	Profile *domain.Profile `json:"profile"`
	Settled bool            `json:"settled"`
}

func (s Session) Authenticated() bool {
	return s.Actor != nil
}

type Verifier interface {
	Verify(token string) (*Actor, error)
}

type ProfileFetcher interface {
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
}

// Manager holds the current session of this device.
type Manager struct {
	verifier Verifier
	profiles ProfileFetcher
	log      *slog.Logger
	sfg      singleflight.Group

	mu      sync.RWMutex
	current Session
}

func NewManager(verifier Verifier, profiles ProfileFetcher, log *slog.Logger) *Manager {
	if log == nil {
		log = logger.Discard()
	}
	return &Manager{
		verifier: verifier,
		profiles: profiles,
		log:      log.With("component", "session"),
	}
}

func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Restore settles the session at start-up from a persisted token. An empty
// or invalid token settles to signed out.
func (m *Manager) Restore(ctx context.Context, token string) Session {
	if token == "" {
		return m.set(Session{Settled: true})
	}
	s, err := m.SignIn(ctx, token)
	if err != nil {
		m.log.WarnContext(ctx, "stored session is not valid, continuing signed out", "error", err)
		return m.set(Session{Settled: true})
	}
	return s
}

// SignIn verifies token and loads the actor's profile. A missing or
// unreadable profile leaves Profile nil without failing the sign-in.
func (m *Manager) SignIn(ctx context.Context, token string) (Session, error) {
	actor, err := m.verifier.Verify(token)
	if err != nil {
		return m.Current(), err
	}

	profile := m.fetchProfile(ctx, actor.ID)
	return m.set(Session{Actor: actor, Profile: profile, Settled: true}), nil
}

func (m *Manager) SignOut() {
	m.set(Session{Settled: true})
}

// RefreshProfile re-reads the profile of the signed-in actor.
func (m *Manager) RefreshProfile(ctx context.Context) Session {
	cur := m.Current()
	if cur.Actor == nil {
		return cur
	}
	profile := m.fetchProfile(ctx, cur.Actor.ID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current.Actor != nil && m.current.Actor.ID == cur.Actor.ID {
		m.current.Profile = profile
	}
	return m.current
}

func (m *Manager) fetchProfile(ctx context.Context, actorID string) *domain.Profile {
	v, err, _ := m.sfg.Do(actorID, func() (interface{}, error) {
		return m.profiles.GetProfile(ctx, actorID)
	})
	if err != nil {
		if !errors.Is(err, repository.ErrProfileNotFound) {
			m.log.ErrorContext(ctx, "profile fetch failed", "actor_id", actorID, "error", err)
		}
		return nil
	}
	return v.(*domain.Profile)
}

func (m *Manager) set(s Session) Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
	return s
}
