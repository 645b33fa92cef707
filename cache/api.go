package cache

import "github.com/IvanBrykalov/mfucache/policy"

// PutResult reports what Put did.
type PutResult int

const (
	// PutDeclined — the admission or update veto blocked the write.
	PutDeclined PutResult = iota
	// PutInserted — a new key was admitted.
	PutInserted
	// PutUpdated — an existing key (live or soft-removed) was overwritten.
	PutUpdated
	// PutClosed — the cache is closed; nothing was written.
	PutClosed
)

func (r PutResult) String() string {
	switch r {
	case PutDeclined:
		return "declined"
	case PutInserted:
		return "inserted"
	case PutUpdated:
		return "updated"
	case PutClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Trims   uint64 // entries detached from the ordered index
	Reaped  uint64 // entries soft-removed by the reaper
	Vetoes  uint64 // operations declined by a veto
	Tracked int    // keys in the table, soft-removed included
	Linked  int    // entries in the ordered index
}

// Cache is an in-memory key/value cache with a step-promoted ordered index,
// background age eviction and veto hooks.
// All methods are safe for concurrent use by multiple goroutines.
type Cache[K comparable, V any] interface {
	// Get returns the value for k and whether a live value is present.
	// A tracked key (even a soft-removed one) is promoted by Step.
	Get(k K) (V, bool)

	// Put inserts or updates k→v subject to the admission/update vetoes,
	// promotes the entry and trims the ordered index to Capacity.
	Put(k K, v V) PutResult

	// Remove clears the value of k (soft delete): the key stays tracked and
	// keeps its place in the ordered index. Returns ErrNotFound for an
	// untracked key and ErrDeclined when the removal veto blocks it.
	Remove(k K) (V, error)

	// Clear hard-deletes every entry the removal veto allows: the key leaves
	// both the table and the ordered index. Unlike Remove, nothing is kept.
	Clear()

	// Values returns the live values of the ordered index, head to tail.
	// Soft-removed entries are skipped, so Values can be shorter than Keys
	// and the two snapshots do not pair up index by index.
	Values() []V

	// Keys returns the keys of the ordered index, head to tail, soft-removed
	// ones included.
	Keys() []K

	// Len returns the number of tracked keys, soft-removed ones included.
	Len() int

	// Stats returns a snapshot of counters and sizes.
	Stats() Stats

	// Policy setters swap a hook at runtime; nil restores the default.
	SetAgePolicy(p policy.AgePolicy[K, V])
	SetAdmission(v policy.Veto[K, V])
	SetUpdate(v policy.Veto[K, V])
	SetRemoval(v policy.Veto[K, V])

	// Close stops the reaper, waits for it and drops all entries.
	// It is idempotent.
	Close() error
}
