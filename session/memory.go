package session

import (
	"context"
	"sync"
)

// Memory is an in-process [Store]. It is the default backend and holds the
// session only for the lifetime of the process.
type Memory struct {
	mu      sync.RWMutex
	current *Session
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(ctx context.Context) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return nil, ErrNoSession
	}
	return m.current.Clone(), nil
}

func (m *Memory) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s.Clone()
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	return nil
}
