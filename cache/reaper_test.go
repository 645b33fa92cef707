package cache

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reapEvery = 5 * time.Millisecond

// Uses a fake clock so "age" is deterministic; only the scan tick is real.
func TestReaper_RemovesAgedEntries(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{}
	c := newCache(t, Options[int, string]{
		Capacity:     3,
		Step:         1,
		MaxAge:       30 * time.Second,
		ReapInterval: reapEvery,
		Clock:        clk,
	})
	c.Put(13, "Kyiv")
	c.Put(94, "Buda")
	c.Put(34, "Java")

	clk.add(35 * time.Second)
	require.Eventually(t, func() bool { return c.Stats().Reaped == 3 }, time.Second, reapEvery)

	for _, k := range []int{13, 94, 34} {
		_, ok := c.Get(k)
		assert.False(t, ok, "key %d", k)
	}
	// Soft removal: keys are still tracked.
	assert.Equal(t, 3, c.Len())
}

func TestReaper_KeepsFreshEntries(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{}
	c := newCache(t, Options[string, int]{
		Capacity:     4,
		Step:         1,
		MaxAge:       time.Minute,
		ReapInterval: reapEvery,
		Clock:        clk,
	})
	c.Put("old", 1)
	clk.add(50 * time.Second)
	c.Put("new", 2)
	clk.add(20 * time.Second)

	require.Eventually(t, func() bool { return c.Stats().Reaped == 1 }, time.Second, reapEvery)
	_, ok := c.Get("old")
	assert.False(t, ok)
	v, ok := c.Get("new")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	// A write refreshes the age.
	clk.add(50 * time.Second)
	c.Put("new", 3)
	clk.add(30 * time.Second)
	time.Sleep(10 * reapEvery)
	v, ok = c.Get("new")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

// Reads promote but never refresh the age; only writes do.
func TestReaper_GetDoesNotRefreshAge(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{}
	c := newCache(t, Options[int, string]{
		Capacity:     3,
		Step:         1,
		MaxAge:       30 * time.Second,
		ReapInterval: reapEvery,
		Clock:        clk,
	})
	c.Put(1, "Kyiv")
	c.Put(2, "Buda")

	clk.add(20 * time.Second)
	for i := 0; i < 5; i++ {
		v, ok := c.Get(1)
		require.True(t, ok)
		require.Equal(t, "Kyiv", v)
	}
	assert.Equal(t, []int{1, 2}, c.Keys())

	clk.add(15 * time.Second)
	require.Eventually(t, func() bool { return c.Stats().Reaped == 2 }, time.Second, reapEvery)
	_, ok := c.Get(1)
	assert.False(t, ok)
}

func TestReaper_RemovalVetoProtects(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{}
	var mu sync.Mutex
	var reasons []EvictReason
	c := newCache(t, Options[int, string]{
		Capacity:     3,
		Step:         1,
		MaxAge:       time.Second,
		ReapInterval: reapEvery,
		Clock:        clk,
		Removal:      func(k int, _ string) bool { return k != 7 },
		OnEvict: func(_ int, _ string, r EvictReason) {
			mu.Lock()
			reasons = append(reasons, r)
			mu.Unlock()
		},
	})
	c.Put(7, "pinned")
	c.Put(8, "loose")
	clk.add(time.Minute)

	require.Eventually(t, func() bool { return c.Stats().Reaped == 1 }, time.Second, reapEvery)
	v, ok := c.Get(7)
	require.True(t, ok)
	assert.Equal(t, "pinned", v)
	_, ok = c.Get(8)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, c.Stats().Vetoes, uint64(1))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []EvictReason{EvictAge}, reasons)
}

func TestReaper_CustomAgePolicy(t *testing.T) {
	t.Parallel()

	c := newCache(t, Options[string, int]{
		Capacity:     8,
		Step:         1,
		ReapInterval: reapEvery,
		// MaxAge is ignored once an age policy is supplied.
		MaxAge:    time.Nanosecond,
		AgePolicy: func(_ string, v int, _ time.Duration) bool { return v < 0 },
	})
	c.Put("neg", -1)
	c.Put("pos", 1)

	require.Eventually(t, func() bool { return c.Stats().Reaped == 1 }, time.Second, reapEvery)
	_, ok := c.Get("neg")
	assert.False(t, ok)
	_, ok = c.Get("pos")
	assert.True(t, ok)

	c.SetAgePolicy(func(string, int, time.Duration) bool { return true })
	require.Eventually(t, func() bool { return c.Stats().Reaped == 2 }, time.Second, reapEvery)
}

// After Close returns the reaper must not touch the cache again.
func TestReaper_StopsOnClose(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	var mu sync.Mutex
	logger := slog.New(slog.NewTextHandler(&lockedWriter{w: &buf, mu: &mu}, &slog.HandlerOptions{Level: slog.LevelDebug}))

	clk := &fakeClock{}
	c := New(Options[int, int]{
		Capacity:     4,
		Step:         1,
		MaxAge:       time.Second,
		ReapInterval: time.Millisecond,
		Clock:        clk,
		Logger:       logger,
	}).(*cache[int, int])
	c.Put(1, 1)
	clk.add(time.Minute)
	require.Eventually(t, func() bool { return c.Stats().Reaped == 1 }, time.Second, time.Millisecond)

	require.NoError(t, c.Close())
	reaped := c.Stats().Reaped
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, reaped, c.Stats().Reaped)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, buf.String(), "reaper cycle")
	assert.Contains(t, buf.String(), "cache closed")
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
