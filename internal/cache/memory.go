package cache

import (
	"context"
	"sync"
	"time"
)

const defaultMaxEntries = 10000

type memoryEntry struct {
	value   string
	expires time.Time
}

// Memory is a mutex-guarded map with expiry. A background janitor sweeps
// expired entries every ttl, and the map never holds more than max entries:
// when full, expired entries go first, then the one closest to expiry.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	max     int
	now     func() time.Time

	stop      chan struct{}
	closeOnce sync.Once
}

var _ Cache = (*Memory)(nil)

// NewMemory creates an empty Memory cache with the given default ttl and
// starts its janitor. Call Close to stop it.
func NewMemory(ttl time.Duration) *Memory {
	m := newMemory(ttl, defaultMaxEntries, time.Now)
	go m.janitor(m.ttl)
	return m
}

func newMemory(ttl time.Duration, max int, now func() time.Time) *Memory {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if max <= 0 {
		max = defaultMaxEntries
	}
	return &Memory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		max:     max,
		now:     now,
		stop:    make(chan struct{}),
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if !m.now().Before(e.expires) {
		m.mu.Lock()
		if cur, ok := m.entries[key]; ok && cur.expires.Equal(e.expires) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.ttl
	}
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.max {
		m.sweepLocked(now)
		if len(m.entries) >= m.max {
			m.evictSoonestLocked()
		}
	}
	m.entries[key] = memoryEntry{value: value, expires: now.Add(ttl)}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired ones not yet swept
// included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Sweep removes every expired entry.
func (m *Memory) Sweep() {
	now := m.now()
	m.mu.Lock()
	m.sweepLocked(now)
	m.mu.Unlock()
}

// Close stops the janitor. It is safe to call more than once.
func (m *Memory) Close() {
	m.closeOnce.Do(func() { close(m.stop) })
}

func (m *Memory) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-m.stop:
			return
		}
	}
}

func (m *Memory) sweepLocked(now time.Time) {
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
		}
	}
}

func (m *Memory) evictSoonestLocked() {
	var (
		victim string
		first  time.Time
		found  bool
	)
	for k, e := range m.entries {
		if !found || e.expires.Before(first) {
			victim, first, found = k, e.expires, true
		}
	}
	if found {
		delete(m.entries, victim)
	}
}
