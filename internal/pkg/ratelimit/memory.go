package ratelimit

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	count int64
	first time.Time
}

// Memory is a process-local Store. Stale entries are dropped only when read, so the
// map grows with the number of distinct keys seen inside one window.
type Memory struct {
	mu      sync.Mutex
	window  time.Duration
	entries map[string]*entry
	now     func() time.Time
}

// NewMemory creates a Memory store with the given window.
func NewMemory(window time.Duration) *Memory {
	return &Memory{
		window:  window,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
	return m
}

// lookup returns the live entry for key, deleting it first when its window has elapsed.
// Caller holds m.mu.
func (m *Memory) lookup(key string, now time.Time) *entry {
	e, ok := m.entries[key]
	if !ok {
		return nil
	}
	if now.Sub(e.first) > m.window {
		delete(m.entries, key)
		return nil
	}
	return e
}

func (m *Memory) Hit(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e := m.lookup(key, now)
	if e == nil {
		e = &entry{first: now}
		m.entries[key] = e
	}
	e.count++
	return e.count, nil
}

func (m *Memory) Count(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e := m.lookup(key, m.now()); e != nil {
		return e.count, nil
	}
	return 0, nil
}

func (m *Memory) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of tracked keys, stale ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
