package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/IvanBrykalov/mfucache/internal/sequence"
	"github.com/IvanBrykalov/mfucache/policy"
)

// store is the single lock domain of the cache: the key table, the ordered
// index and the policies are always read and written together under mu.
type store[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu     sync.Mutex
	m      map[K]*sequence.Node[entry[K, V]]
	seq    *sequence.Sequence[entry[K, V]]
	cap    int
	step   int
	closed bool

	age       policy.AgePolicy[K, V]
	admission policy.Veto[K, V]
	update    policy.Veto[K, V]
	removal   policy.Veto[K, V]

	opt Options[K, V]

	// ---- counters (read by Stats without the lock) ----
	hits   atomic.Uint64
	misses atomic.Uint64
	trims  atomic.Uint64
	reaped atomic.Uint64
	vetoes atomic.Uint64
}

func newStore[K comparable, V any](opt Options[K, V]) *store[K, V] {
	s := &store[K, V]{
		m:    make(map[K]*sequence.Node[entry[K, V]], opt.Capacity),
		seq:  sequence.New[entry[K, V]](),
		cap:  opt.Capacity,
		step: opt.Step,
		opt:  opt,
	}
	s.age = s.ageOrDefault(opt.AgePolicy)
	s.admission = vetoOrAllow(opt.Admission)
	s.update = vetoOrAllow(opt.Update)
	s.removal = vetoOrAllow(opt.Removal)
	return s
}

// Get promotes a tracked key and returns its value if it is live.
func (s *store[K, V]) Get(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	if s.closed {
		return zero, false
	}
	n, ok := s.m[k]
	if !ok {
		s.miss()
		return zero, false
	}

	s.promoteLocked(n)
	if !n.Value.live {
		s.miss()
		return zero, false
	}
	s.hits.Add(1)
	s.opt.Metrics.Hit()
	return n.Value.val, true
}

// Put writes k→v unless a veto declines, then promotes and trims.
func (s *store[K, V]) Put(k K, v V) PutResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return PutClosed
	}

	res := PutUpdated
	n, ok := s.m[k]
	if !ok {
		if !s.admission(k, v) {
			s.vetoed(VetoAdmission)
			return PutDeclined
		}
		// New keys enter the table unlinked; promote links them at the tail.
		n = &sequence.Node[entry[K, V]]{Value: entry[K, V]{key: k}}
		s.m[k] = n
		res = PutInserted
	} else if !s.update(k, v) {
		s.vetoed(VetoUpdate)
		return PutDeclined
	}

	n.Value.set(v, s.now())
	s.promoteLocked(n)
	return res
}

// Remove soft-deletes k: the value is cleared, the key stays tracked.
func (s *store[K, V]) Remove(k K) (V, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	if s.closed {
		return zero, ErrClosed
	}
	return s.removeLocked(k)
}

// Clear hard-deletes every entry the removal veto allows.
func (s *store[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	for k, n := range s.m {
		e := &n.Value
		if !s.removal(k, e.val) {
			s.vetoed(VetoRemoval)
			continue
		}
		s.seq.Remove(n) // no-op for unlinked nodes
		delete(s.m, k)
		s.evicted(k, e.val, EvictClear)
	}
	s.reportSize()
}

// Values snapshots live values of the ordered index, head to tail.
func (s *store[K, V]) Values() []V {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	out := make([]V, 0, s.seq.Len())
	s.seq.Do(func(e entry[K, V]) bool {
		if e.live {
			out = append(out, e.val)
		}
		return true
	})
	return out
}

// Keys snapshots the keys of the ordered index, head to tail.
func (s *store[K, V]) Keys() []K {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	out := make([]K, 0, s.seq.Len())
	s.seq.Do(func(e entry[K, V]) bool {
		out = append(out, e.key)
		return true
	})
	return out
}

// Len returns the number of tracked keys.
func (s *store[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// Stats reads the sizes under the lock and the counters atomically.
func (s *store[K, V]) Stats() Stats {
	s.mu.Lock()
	tracked, linked := len(s.m), s.seq.Len()
	s.mu.Unlock()

	return Stats{
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Trims:   s.trims.Load(),
		Reaped:  s.reaped.Load(),
		Vetoes:  s.vetoes.Load(),
		Tracked: tracked,
		Linked:  linked,
	}
}

// reap soft-removes every live entry the age policy selects.
// It returns how many entries matched and how many were removed.
func (s *store[K, V]) reap() (expired, removed int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, 0
	}
	now := s.now()
	var keys []K
	for k, n := range s.m {
		e := &n.Value
		if !e.live {
			continue
		}
		if s.age(k, e.val, time.Duration(now-e.modified)) {
			keys = append(keys, k)
		}
	}
	for _, k := range keys {
		old, err := s.removeLocked(k)
		if err != nil {
			continue // removal veto protects the entry
		}
		s.reaped.Add(1)
		s.evicted(k, old, EvictAge)
		removed++
	}
	return len(keys), removed
}

// purge drops every entry regardless of vetoes and rejects further work.
func (s *store[K, V]) purge() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.seq.Clear()
	clear(s.m)
	s.reportSize()
}

func (s *store[K, V]) setAgePolicy(p policy.AgePolicy[K, V]) {
	s.mu.Lock()
	s.age = s.ageOrDefault(p)
	s.mu.Unlock()
}

func (s *store[K, V]) setVeto(dst *policy.Veto[K, V], v policy.Veto[K, V]) {
	s.mu.Lock()
	*dst = vetoOrAllow(v)
	s.mu.Unlock()
}

// -------------------- internals (mu held) --------------------

func (s *store[K, V]) removeLocked(k K) (V, error) {
	var zero V
	n, ok := s.m[k]
	if !ok {
		return zero, ErrNotFound
	}
	if !s.removal(k, n.Value.val) {
		s.vetoed(VetoRemoval)
		return zero, ErrDeclined
	}
	return n.Value.clear(), nil
}

// promoteLocked moves n toward the head (linking it first if needed) and
// trims the tail of the ordered index back to capacity.
func (s *store[K, V]) promoteLocked(n *sequence.Node[entry[K, V]]) {
	s.seq.Promote(n, s.step)
	for s.seq.Len() > s.cap {
		tail, err := s.seq.RemoveBack()
		if err != nil {
			break
		}
		// Trimmed nodes stay in the table.
		s.trims.Add(1)
		s.evicted(tail.Value.key, tail.Value.val, EvictTrim)
	}
	s.reportSize()
}

func (s *store[K, V]) evicted(k K, v V, reason EvictReason) {
	s.opt.Metrics.Evict(reason)
	if cb := s.opt.OnEvict; cb != nil {
		cb(k, v, reason)
	}
}

func (s *store[K, V]) vetoed(op VetoOp) {
	s.vetoes.Add(1)
	s.opt.Metrics.Veto(op)
}

func (s *store[K, V]) miss() {
	s.misses.Add(1)
	s.opt.Metrics.Miss()
}

func (s *store[K, V]) reportSize() {
	s.opt.Metrics.Size(len(s.m), s.seq.Len())
}

func (s *store[K, V]) now() int64 {
	if s.opt.Clock != nil {
		return s.opt.Clock.NowUnixNano()
	}
	return time.Now().UnixNano()
}

func (s *store[K, V]) ageOrDefault(p policy.AgePolicy[K, V]) policy.AgePolicy[K, V] {
	if p != nil {
		return p
	}
	return policy.OlderThan[K, V](s.opt.MaxAge)
}

func vetoOrAllow[K comparable, V any](v policy.Veto[K, V]) policy.Veto[K, V] {
	if v != nil {
		return v
	}
	return policy.Allow[K, V]()
}
