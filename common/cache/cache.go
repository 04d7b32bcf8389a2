package cache

import (
	"sync"
	"time"

	mbLog "github.com/pdbogen/slackin/common/log"
)

var log = mbLog.Log

// Store is a keyed cache whose entries expire after a per-entry TTL.
type Store interface {
	// Get returns the value stored under key, if present and not yet expired.
	Get(key string) (interface{}, bool)
	// Set stores value under key until ttl has elapsed. A non-positive ttl stores nothing.
	Set(key string, value interface{}, ttl time.Duration)
}

type Entry struct {
	Value     interface{}
	ExpiresAt time.Time
}

// Memory is a process-local Store. The zero value is not usable; see NewMemory.
type Memory struct {
	Entries     map[string]*Entry
	EntriesMu   sync.Mutex
	now         func() time.Time
	sweep       time.Duration
	janitorOnce sync.Once
}

var _ Store = (*Memory)(nil)

type Option func(*Memory)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) { m.now = now }
}

// WithSweep sets how often expired entries are dropped; zero disables the janitor.
func WithSweep(every time.Duration) Option {
	return func(m *Memory) { m.sweep = every }
}

func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		Entries: map[string]*Entry{},
		now:     time.Now,
		sweep:   time.Minute,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Get(key string) (interface{}, bool) {
	m.EntriesMu.Lock()
	defer m.EntriesMu.Unlock()

	e, ok := m.Entries[key]
	if !ok {
		log.Debugf("cache miss %s", key)
		return nil, false
	}
	if !m.now().Before(e.ExpiresAt) {
		log.Debugf("cache expired %s", key)
		delete(m.Entries, key)
		return nil, false
	}
	return e.Value, true
}

func (m *Memory) Set(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		log.Warningf("refusing to cache %s with non-positive ttl %s", key, ttl)
		return
	}
	if m.sweep > 0 {
		m.janitorOnce.Do(m.janitor)
	}

	m.EntriesMu.Lock()
	defer m.EntriesMu.Unlock()
	m.Entries[key] = &Entry{Value: value, ExpiresAt: m.now().Add(ttl)}
	log.Debugf("cache set %s for %s", key, ttl)
}

// ExpiresAt reports when the entry under key expires.
func (m *Memory) ExpiresAt(key string) (time.Time, bool) {
	m.EntriesMu.Lock()
	defer m.EntriesMu.Unlock()
	e, ok := m.Entries[key]
	if !ok {
		return time.Time{}, false
	}
	return e.ExpiresAt, true
}

func (m *Memory) janitor() {
	go func() {
		for {
			time.Sleep(m.sweep)
			m.clean()
		}
	}()
}

func (m *Memory) clean() {
	m.EntriesMu.Lock()
	defer m.EntriesMu.Unlock()

	now := m.now()
	for key, e := range m.Entries {
		if !now.Before(e.ExpiresAt) {
			delete(m.Entries, key)
		}
	}
}
