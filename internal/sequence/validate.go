package sequence

import (
	"errors"
	"fmt"
)

// ErrCorrupt wraps every structural violation reported by Validate.
var ErrCorrupt = errors.New("sequence: corrupt")

// Validate walks the sequence and verifies head/tail boundaries, back-links,
// ownership and the length counter.
func (s *Sequence[T]) Validate() error {
	if s.head == nil || s.tail == nil {
		if s.head != s.tail || s.len != 0 {
			return fmt.Errorf("%w: head=%p tail=%p len=%d", ErrCorrupt, s.head, s.tail, s.len)
		}
		return nil
	}
	if s.head.prev != nil {
		return fmt.Errorf("%w: head has a predecessor", ErrCorrupt)
	}
	if s.tail.next != nil {
		return fmt.Errorf("%w: tail has a successor", ErrCorrupt)
	}

	count := 0
	var prev *Node[T]
	for n := s.head; n != nil; n = n.next {
		if n.list != s {
			return fmt.Errorf("%w: node %d not owned by this sequence", ErrCorrupt, count)
		}
		if n.prev != prev {
			return fmt.Errorf("%w: broken back-link at %d", ErrCorrupt, count)
		}
		count++
		if count > s.len {
			return fmt.Errorf("%w: more nodes than len=%d (cycle?)", ErrCorrupt, s.len)
		}
		prev = n
	}
	if prev != s.tail {
		return fmt.Errorf("%w: walk ended before tail", ErrCorrupt)
	}
	if count != s.len {
		return fmt.Errorf("%w: counted %d nodes, len=%d", ErrCorrupt, count, s.len)
	}
	return nil
}
