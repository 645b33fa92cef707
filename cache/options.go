package cache

import (
	"log/slog"
	"time"

	"github.com/IvanBrykalov/mfucache/policy"
)

// DefaultReapInterval is the pause between two reaper scans.
const DefaultReapInterval = 30 * time.Second

// EvictReason explains why an entry left the ordered index or the cache.
type EvictReason int

const (
	// EvictTrim — detached from the ordered index because it exceeded Capacity.
	// The key stays in the table and is still retrievable.
	EvictTrim EvictReason = iota
	// EvictAge — value cleared by the reaper (soft removal).
	EvictAge
	// EvictClear — hard-deleted by Clear.
	EvictClear
)

func (r EvictReason) String() string {
	switch r {
	case EvictTrim:
		return "trim"
	case EvictAge:
		return "age"
	case EvictClear:
		return "clear"
	default:
		return "unknown"
	}
}

// VetoOp names the operation a veto declined.
type VetoOp int

const (
	// VetoAdmission — a new key was refused by Put.
	VetoAdmission VetoOp = iota
	// VetoUpdate — an overwrite of a tracked key was refused by Put.
	VetoUpdate
	// VetoRemoval — Remove, Clear or the reaper was refused for a key.
	VetoRemoval
)

func (o VetoOp) String() string {
	switch o {
	case VetoAdmission:
		return "admission"
	case VetoUpdate:
		return "update"
	case VetoRemoval:
		return "removal"
	default:
		return "unknown"
	}
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
// All calls happen under the cache lock.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Veto(op VetoOp)
	// Size reports the number of tracked keys and of linked (ordered) entries.
	Size(tracked, linked int)
}

// Clock provides time in UnixNano; useful for deterministic tests.
type Clock interface{ NowUnixNano() int64 }

// Options configures the cache. Zero values are safe;
// defaults are applied in New():
//   - ReapInterval <= 0  => DefaultReapInterval
//   - nil AgePolicy      => policy.OlderThan(MaxAge)
//   - nil vetoes         => policy.Allow
//   - nil Metrics        => NoopMetrics
//   - nil Logger         => discard
type Options[K comparable, V any] struct {
	// Capacity bounds the ordered index. The key table is not bounded by it.
	Capacity int

	// Step is how many positions an entry moves toward the head per access.
	Step int

	// MaxAge is the eviction horizon of the default age policy
	// (0 = never). Ignored when AgePolicy is set.
	MaxAge time.Duration

	// ReapInterval is the pause between reaper scans.
	ReapInterval time.Duration

	// Policies. See package policy for defaults and combinators.
	AgePolicy policy.AgePolicy[K, V]
	Admission policy.Veto[K, V]
	Update    policy.Veto[K, V]
	Removal   policy.Veto[K, V]

	// Observability
	// OnEvict is called under the cache lock; keep callbacks lightweight.
	OnEvict func(k K, v V, reason EvictReason)
	Metrics Metrics
	Logger  *slog.Logger

	// Clock allows overriding time source (tests). Nil => time.Now().
	Clock Clock
}
