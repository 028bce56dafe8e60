package session

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/eventhub/internal/domain"
)

type mockProfiles struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile
	err      error
	calls    int
}

func (m *mockProfiles) GetProfile(_ context.Context, id string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.profiles[id]
	if !ok {
		return nil, errProfileMissing
	}
	return p, nil
}
