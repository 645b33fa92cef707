package cache

// entry is the payload of a sequence node. The key table maps every tracked
// key to its node, whether or not the node is currently linked into the
// ordered index.
type entry[K comparable, V any] struct {
	key K
	val V

	// live is false after a soft removal: the key is still tracked but
	// carries no value.
	live bool

	// Last write in UnixNano; drives the age policy.
	modified int64
}

// set writes a value and refreshes the timestamp.
func (e *entry[K, V]) set(v V, now int64) {
	e.val = v
	e.live = true
	e.modified = now
}

// clear drops the value (tombstone). The timestamp is left as is.
func (e *entry[K, V]) clear() V {
	old := e.val
	var zero V
	e.val = zero
	e.live = false
	return old
}
