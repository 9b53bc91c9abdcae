package revocation

import (
	"context"
	"sync"
	"time"
)

type Memory struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]time.Time)}
}

func (m *Memory) Revoke(_ context.Context, token string, exp, now time.Time) error {
	if !exp.After(now) {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.entries[token]; ok && cur.After(exp) {
		return nil
	}
	m.entries[token] = exp
	return nil
}

func (m *Memory) IsRevoked(_ context.Context, token string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.entries[token]
	return ok && exp.After(now), nil
}

func (m *Memory) Purge(_ context.Context, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for tok, exp := range m.entries {
		if !exp.After(now) {
			delete(m.entries, tok)
		}
	}
	return nil
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
