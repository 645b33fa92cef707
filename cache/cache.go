package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/IvanBrykalov/mfucache/policy"
)

var (
	// ErrNotFound is returned by Remove for a key the cache does not track.
	ErrNotFound = errors.New("cache: key not found")
	// ErrDeclined is returned by Remove when the removal veto blocks it.
	ErrDeclined = errors.New("cache: removal declined by veto")
	// ErrClosed is returned by Remove after Close.
	ErrClosed = errors.New("cache: closed")
)

// cache is the Cache implementation: a store plus the reaper that owns its
// background goroutine.
type cache[K comparable, V any] struct {
	s   *store[K, V]
	log *slog.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New constructs a cache with the provided Options and starts its reaper.
// Defaults:
//   - nil Metrics      -> NoopMetrics
//   - nil Logger       -> discard
//   - nil AgePolicy    -> entries older than MaxAge expire
//   - nil vetoes       -> allow everything
//   - ReapInterval <= 0 -> DefaultReapInterval
//
// It panics if Capacity <= 0 or Step < 0.
func New[K comparable, V any](opt Options[K, V]) Cache[K, V] {
	if opt.Capacity <= 0 {
		panic("Capacity must be > 0")
	}
	if opt.Step < 0 {
		panic("Step must be >= 0")
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Logger == nil {
		opt.Logger = slog.New(slog.DiscardHandler)
	}
	if opt.ReapInterval <= 0 {
		opt.ReapInterval = DefaultReapInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &cache[K, V]{
		s:      newStore(opt),
		log:    opt.Logger.With(slog.String("component", "mfucache")),
		cancel: cancel,
	}

	c.wg.Add(1)
	go c.reapLoop(ctx, opt.ReapInterval)
	return c
}

// ---- Cache[K,V] implementation ----

func (c *cache[K, V]) Get(k K) (V, bool) { return c.s.Get(k) }

func (c *cache[K, V]) Put(k K, v V) PutResult { return c.s.Put(k, v) }

func (c *cache[K, V]) Remove(k K) (V, error) { return c.s.Remove(k) }

func (c *cache[K, V]) Clear() { c.s.Clear() }

func (c *cache[K, V]) Values() []V { return c.s.Values() }

func (c *cache[K, V]) Keys() []K { return c.s.Keys() }

func (c *cache[K, V]) Len() int { return c.s.Len() }

func (c *cache[K, V]) Stats() Stats { return c.s.Stats() }

func (c *cache[K, V]) SetAgePolicy(p policy.AgePolicy[K, V]) { c.s.setAgePolicy(p) }

func (c *cache[K, V]) SetAdmission(v policy.Veto[K, V]) { c.s.setVeto(&c.s.admission, v) }

func (c *cache[K, V]) SetUpdate(v policy.Veto[K, V]) { c.s.setVeto(&c.s.update, v) }

func (c *cache[K, V]) SetRemoval(v policy.Veto[K, V]) { c.s.setVeto(&c.s.removal, v) }

// Close stops the reaper and waits for it before dropping every entry, so no
// reaper cycle can touch the cache after Close returns.
func (c *cache[K, V]) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		c.wg.Wait()
		c.s.purge()
		c.log.Debug("cache closed")
	})
	return nil
}
