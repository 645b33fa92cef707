package cache

import (
	"errors"
	"strings"
	"testing"
)

// Fuzz Put/Get/Remove/Clear semantics under arbitrary string inputs.
// Guards against panics and ensures core invariants hold.
// NOTE: key/value lengths are capped to keep memory bounded during fuzzing.
func FuzzCache_PutGetRemove(f *testing.F) {
	f.Add("", "", uint8(0))
	f.Add("a", "1", uint8(1))
	f.Add("αβγ", "δ", uint8(2))
	f.Add("emoji🙂", "🙂🙂", uint8(7))
	f.Add("long", strings.Repeat("x", 1024), uint8(3))

	f.Fuzz(func(t *testing.T, k, v string, step uint8) {
		const limit = 1 << 12 // 4096
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}

		c := newCache(t, Options[string, string]{Capacity: 4, Step: int(step % 8)})

		// Fill with some neighbors so promotion has somewhere to go.
		for i := 0; i < 6; i++ {
			c.Put(k+strings.Repeat("#", i+1), v)
		}

		if res := c.Put(k, v); res != PutInserted {
			t.Fatalf("first Put: want inserted, got %v", res)
		}
		got, ok := c.Get(k)
		if !ok || got != v {
			t.Fatalf("after Put/Get: want %q, got %q ok=%v", v, got, ok)
		}
		if n := len(c.Keys()); n > 4 {
			t.Fatalf("ordered index exceeds capacity: %d", n)
		}

		// Soft remove keeps the key tracked.
		before := c.Len()
		old, err := c.Remove(k)
		if err != nil || old != v {
			t.Fatalf("Remove: want %q, got %q err=%v", v, old, err)
		}
		if _, ok := c.Get(k); ok {
			t.Fatalf("key must read as absent after Remove")
		}
		if c.Len() != before {
			t.Fatalf("Remove changed Len: %d -> %d", before, c.Len())
		}

		// Hard delete drops it.
		c.Clear()
		if _, err := c.Remove(k); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Remove after Clear: want ErrNotFound, got %v", err)
		}
		requireValid(t, c)
	})
}
