package store

import (
	"context"
	"sync"

	"github.com/couchcryptid/task-trek/internal/domain"
)

// Memory keeps preferences in a map. Contents are lost on restart.
type Memory struct {
	mu     sync.RWMutex
	themes map[string]domain.Theme
}

func NewMemory() *Memory {
	return &Memory{themes: make(map[string]domain.Theme)}
}

func (m *Memory) GetTheme(_ context.Context, visitorID string) (domain.Theme, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.themes[visitorID]
	if !ok {
		return "", domain.ErrPreferenceNotFound
	}
	return t, nil
}

func (m *Memory) PutTheme(_ context.Context, visitorID string, t domain.Theme) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.themes[visitorID] = t
	return nil
}

func (m *Memory) CheckReadiness(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }
