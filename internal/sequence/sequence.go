// Package sequence implements the ordered "hot index" of the cache: an
// intrusive doubly linked list whose nodes are repositioned by a fixed number
// of hops per access instead of being moved straight to the front.
//
// The list is not safe for concurrent use; the cache guards it with its own
// mutex together with the key table.
//
// Built with -tags mfudebug, every mutation runs Validate and panics on a
// structural violation. The tagged tests cover that mode:
//
//	go test -tags mfudebug ./internal/sequence/...
package sequence

import "errors"

// ErrEmpty is returned by RemoveBack when the sequence has no nodes.
var ErrEmpty = errors.New("sequence: empty")

// Node is a list element. A node is either unlinked (list == nil) or linked
// into exactly one Sequence. Membership is tracked by the owner pointer, not by
// the absence of neighbor links: the sole element of a sequence has no
// neighbors either.
type Node[T any] struct {
	// Value is the payload. Callers may read/write it in place.
	Value T

	prev *Node[T]
	next *Node[T]
	list *Sequence[T]
}

// Linked reports whether the node currently belongs to a sequence.
func (n *Node[T]) Linked() bool { return n.list != nil }

// Prev returns the neighbor closer to the head, or nil.
func (n *Node[T]) Prev() *Node[T] {
	if n.list == nil {
		return nil
	}
	return n.prev
}

// Next returns the neighbor closer to the tail, or nil.
func (n *Node[T]) Next() *Node[T] {
	if n.list == nil {
		return nil
	}
	return n.next
}

// Sequence is an ordered list, head = most promoted, tail = least promoted.
// The zero value is an empty sequence ready to use.
type Sequence[T any] struct {
	head *Node[T]
	tail *Node[T]
	len  int
}

// New returns an empty sequence.
func New[T any]() *Sequence[T] { return &Sequence[T]{} }

// Len returns the number of linked nodes.
func (s *Sequence[T]) Len() int { return s.len }

// IsEmpty reports whether the sequence has no nodes.
func (s *Sequence[T]) IsEmpty() bool { return s.len == 0 }

// Front returns the head node or nil.
func (s *Sequence[T]) Front() *Node[T] { return s.head }

// Back returns the tail node or nil.
func (s *Sequence[T]) Back() *Node[T] { return s.tail }

// HeadValue returns the head's value.
func (s *Sequence[T]) HeadValue() (T, bool) {
	if s.head == nil {
		var zero T
		return zero, false
	}
	return s.head.Value, true
}

// TailValue returns the tail's value.
func (s *Sequence[T]) TailValue() (T, bool) {
	if s.tail == nil {
		var zero T
		return zero, false
	}
	return s.tail.Value, true
}

// PushBack creates a node holding v and links it at the tail.
func (s *Sequence[T]) PushBack(v T) *Node[T] {
	n := &Node[T]{Value: v}
	s.linkBack(n)
	s.check()
	return n
}

// PushBackNode links an unlinked node at the tail.
// It panics if n is already linked somewhere.
func (s *Sequence[T]) PushBackNode(n *Node[T]) {
	if n.list != nil {
		panic("sequence: PushBackNode of a linked node")
	}
	s.linkBack(n)
	s.check()
}

// Promote moves n step positions toward the head, stopping at the head.
//
// An unlinked node is first appended at the tail, which is how new or trimmed
// entries (re-)enter the order. Promoting the head is a no-op.
// Cost is O(step).
func (s *Sequence[T]) Promote(n *Node[T], step int) {
	if step < 0 {
		panic("sequence: negative step")
	}
	switch n.list {
	case nil:
		s.linkBack(n)
	case s:
	default:
		panic("sequence: Promote of a node owned by another sequence")
	}
	if n == s.head {
		s.check()
		return
	}

	// Detach: neighbors skip n. n.prev is non-nil because n is not the head,
	// and it keeps pointing at n's old predecessor for the walk below.
	at := n.prev
	at.next = n.next
	if n.next != nil {
		n.next.prev = at
	} else {
		s.tail = at
	}

	// The first of the step+1 backward hops already landed on at.
	for i := 0; i < step; i++ {
		at = at.prev
		if at == nil {
			s.insertFront(n)
			s.check()
			return
		}
	}
	s.insertAfter(at, n)
	s.check()
}

// RemoveBack detaches and returns the tail node.
func (s *Sequence[T]) RemoveBack() (*Node[T], error) {
	n := s.tail
	if n == nil {
		return nil, ErrEmpty
	}
	s.unlink(n)
	s.check()
	return n, nil
}

// Remove detaches n from the sequence in O(1).
// It returns false if n is not linked into s.
func (s *Sequence[T]) Remove(n *Node[T]) bool {
	if n == nil || n.list != s {
		return false
	}
	s.unlink(n)
	s.check()
	return true
}

// RemoveFunc detaches the first node (from the head) whose value matches.
// This is the O(n) path for callers that only know a value.
func (s *Sequence[T]) RemoveFunc(match func(T) bool) bool {
	for n := s.head; n != nil; n = n.next {
		if match(n.Value) {
			s.unlink(n)
			s.check()
			return true
		}
	}
	return false
}

// NodeAt returns the i-th node counting from the head, or nil if out of range.
func (s *Sequence[T]) NodeAt(i int) *Node[T] {
	if i < 0 || i >= s.len {
		return nil
	}
	n := s.head
	for ; i > 0; i-- {
		n = n.next
	}
	return n
}

// IndexOf returns the distance of n from the head, or -1 if n is not linked
// into s.
func (s *Sequence[T]) IndexOf(n *Node[T]) int {
	if n == nil || n.list != s {
		return -1
	}
	i := 0
	for x := s.head; x != nil; x = x.next {
		if x == n {
			return i
		}
		i++
	}
	return -1
}

// Do calls fn for every value head to tail until fn returns false.
func (s *Sequence[T]) Do(fn func(T) bool) {
	for n := s.head; n != nil; n = n.next {
		if !fn(n.Value) {
			return
		}
	}
}

// Values returns a head-to-tail copy of all values.
func (s *Sequence[T]) Values() []T {
	out := make([]T, 0, s.len)
	for n := s.head; n != nil; n = n.next {
		out = append(out, n.Value)
	}
	return out
}

// Clear detaches every node and resets the sequence.
// Detached nodes keep their values.
func (s *Sequence[T]) Clear() {
	for n := s.head; n != nil; {
		next := n.next
		n.prev, n.next, n.list = nil, nil, nil
		n = next
	}
	s.head, s.tail, s.len = nil, nil, 0
}

// -------------------- internals --------------------

func (s *Sequence[T]) linkBack(n *Node[T]) {
	n.list = s
	n.next = nil
	n.prev = s.tail
	if s.tail != nil {
		s.tail.next = n
	} else {
		s.head = n
	}
	s.tail = n
	s.len++
}

// insertFront relinks an already counted node at the head.
func (s *Sequence[T]) insertFront(n *Node[T]) {
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	} else {
		s.tail = n
	}
	s.head = n
}

// insertAfter relinks an already counted node right after at.
func (s *Sequence[T]) insertAfter(at, n *Node[T]) {
	n.prev = at
	n.next = at.next
	if at.next != nil {
		at.next.prev = n
	} else {
		s.tail = n
	}
	at.next = n
}

func (s *Sequence[T]) unlink(n *Node[T]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		s.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		s.tail = n.prev
	}
	n.prev, n.next, n.list = nil, nil, nil
	s.len--
}

// check panics on structural corruption when built with -tags mfudebug.
func (s *Sequence[T]) check() {
	if !debugChecks {
		return
	}
	if err := s.Validate(); err != nil {
		panic(err)
	}
}
