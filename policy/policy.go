// Package policy defines the pluggable predicates a cache consults before it
// admits, updates, removes or ages out an entry.
//
// Predicates are plain functions. They are invoked under the cache lock, so
// they must be fast and must never call back into the cache.
package policy

import "time"

// Veto decides whether a mutation of k→v may proceed. Returning false blocks
// the operation (admission, update or removal) and leaves the cache unchanged.
type Veto[K comparable, V any] func(k K, v V) bool

// AgePolicy decides whether an entry should be removed by the background
// reaper. age is the time elapsed since the entry's last write.
type AgePolicy[K comparable, V any] func(k K, v V, age time.Duration) bool

// Allow returns a Veto that permits every operation. It is the default for
// admission, update and removal.
func Allow[K comparable, V any]() Veto[K, V] {
	return func(K, V) bool { return true }
}

// Deny returns a Veto that blocks every operation.
func Deny[K comparable, V any]() Veto[K, V] {
	return func(K, V) bool { return false }
}

// OlderThan returns the default age policy: an entry expires once its last
// write is more than maxAge ago. A non-positive maxAge never expires anything.
func OlderThan[K comparable, V any](maxAge time.Duration) AgePolicy[K, V] {
	if maxAge <= 0 {
		return func(K, V, time.Duration) bool { return false }
	}
	return func(_ K, _ V, age time.Duration) bool { return age > maxAge }
}

// All allows an operation only if every veto allows it. Nil vetoes are skipped.
func All[K comparable, V any](vs ...Veto[K, V]) Veto[K, V] {
	return func(k K, v V) bool {
		for _, fn := range vs {
			if fn != nil && !fn(k, v) {
				return false
			}
		}
		return true
	}
}

// Any allows an operation if at least one veto allows it.
// With no non-nil vetoes it denies.
func Any[K comparable, V any](vs ...Veto[K, V]) Veto[K, V] {
	return func(k K, v V) bool {
		for _, fn := range vs {
			if fn != nil && fn(k, v) {
				return true
			}
		}
		return false
	}
}

// Not inverts a veto.
func Not[K comparable, V any](fn Veto[K, V]) Veto[K, V] {
	return func(k K, v V) bool { return !fn(k, v) }
}

// Keys allows an operation only for keys accepted by match, regardless of the
// value. Handy for tenant isolation (e.g. a key prefix check).
func Keys[K comparable, V any](match func(K) bool) Veto[K, V] {
	return func(k K, _ V) bool { return match(k) }
}

// Values allows an operation only for values accepted by match.
func Values[K comparable, V any](match func(V) bool) Veto[K, V] {
	return func(_ K, v V) bool { return match(v) }
}
