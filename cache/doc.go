// Package cache provides a generic in-memory key/value cache that keeps a
// bounded, frequency-biased ordering of its hot entries, evicts by both
// relative usage and absolute age, and lets the owner veto mutations.
//
// Design
//
//   - Storage: a map[K]*node table plus an intrusive doubly linked "ordered
//     index" (package internal/sequence). The table is the backing store and
//     is not bounded by Capacity; the ordered index is bounded and only
//     decides which entry is trimmed next.
//
//   - Promotion: every Get and Put moves the entry Step positions toward the
//     head instead of straight to the front. Repeated access therefore ranks
//     entries roughly by frequency at O(Step) cost per access.
//
//   - Trimming: when the ordered index exceeds Capacity its tail is detached.
//     The key stays in the table; the next access links it again at the tail
//     and promotes it.
//
//   - Deletion: Remove is a soft delete. It clears the value and keeps the key
//     tracked (Len does not change). Clear is a hard delete: allowed keys leave
//     both the table and the ordered index.
//
//   - Age: a reaper goroutine scans the table every ReapInterval (30s by
//     default) and soft-removes entries selected by the age policy (by default
//     "last write older than MaxAge"). Close stops it and waits for it.
//
//   - Vetoes: Admission, Update and Removal predicates may decline a
//     mutation; the reaper's removals go through the Removal veto as well.
//
//   - Concurrency: one mutex guards the table, the ordered index and the
//     policies. Policies and OnEvict run under it and must not call back into
//     the cache.
//
// Basic usage
//
//	c := cache.New[int, string](cache.Options[int, string]{
//	    Capacity: 3,
//	    Step:     1,
//	    MaxAge:   time.Minute,
//	})
//	defer c.Close()
//
//	c.Put(13, "Kyiv")
//	c.Put(94, "Buda")
//	c.Put(34, "Java")
//	fmt.Println(c.Values()) // [Buda Java Kyiv]
//
// With vetoes
//
//	c := cache.New[string, []byte](cache.Options[string, []byte]{
//	    Capacity:  1024,
//	    Step:      2,
//	    Admission: policy.Keys[string, []byte](func(k string) bool {
//	        return strings.HasPrefix(k, "tenant-a:")
//	    }),
//	    Removal:   policy.Not(policy.Keys[string, []byte](isPinned)),
//	})
//
// Exporting metrics (Prometheus adapter)
//
//	m := prom.New(nil, "mfucache", "demo", nil) // implements Metrics
//	c := cache.New[string, []byte](cache.Options[string, []byte]{
//	    Capacity: 10_000,
//	    Metrics:  m,
//	})
//
// Building with -tags mfudebug validates the ordered index after every
// mutation and panics on structural corruption.
package cache
