package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestMemoryGetSet(t *testing.T) {
	c := newClock()
	m := NewMemory(WithClock(c.now), WithSweep(0))

	_, ok := m.Get("k")
	assert.False(t, ok)

	m.Set("k", "v", 5*time.Second)
	v, ok := m.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	exp, ok := m.ExpiresAt("k")
	require.True(t, ok)
	assert.Equal(t, c.t.Add(5*time.Second), exp)

	c.advance(4999 * time.Millisecond)
	_, ok = m.Get("k")
	assert.True(t, ok)

	c.advance(time.Millisecond)
	_, ok = m.Get("k")
	assert.False(t, ok, "entry must expire exactly at its deadline")
}

func TestMemoryReplace(t *testing.T) {
	c := newClock()
	m := NewMemory(WithClock(c.now), WithSweep(0))

	m.Set("k", 1, time.Minute)
	m.Set("k", 2, time.Second)
	v, ok := m.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	c.advance(time.Second)
	_, ok = m.Get("k")
	assert.False(t, ok)
}

func TestMemoryNonPositiveTTL(t *testing.T) {
	m := NewMemory(WithSweep(0))
	for _, ttl := range []time.Duration{0, -time.Second} {
		m.Set("k", "v", ttl)
		_, ok := m.Get("k")
		assert.False(t, ok, "ttl %s", ttl)
	}
}

func TestMemoryClean(t *testing.T) {
	c := newClock()
	m := NewMemory(WithClock(c.now), WithSweep(0))
	m.Set("short", 1, time.Second)
	m.Set("long", 2, time.Hour)

	c.advance(time.Minute)
	m.clean()

	m.EntriesMu.Lock()
	defer m.EntriesMu.Unlock()
	assert.NotContains(t, m.Entries, "short")
	assert.Contains(t, m.Entries, "long")
}
