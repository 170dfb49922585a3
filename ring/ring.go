// Package ring implements a bounded lock-free MPSC claim/commit queue for
// outbound message publication: multiple producer goroutines (application
// threads submitting orders) claim a slot, fill it in place, and commit;
// one consumer goroutine (the event loop's sender) drains strictly in
// commit order. The algorithm is a sequence-numbered slot design (CAS
// producers, sequential consumer, one physical slot per unit of capacity),
// specialized from a generic Enqueue(*T) into claim-a-slot /
// fill-its-fields / commit, which is what a flyweight-based sender needs:
// producers write straight into the slot's buffer instead of handing the
// queue a fully-built value.
package ring

import (
	"sync/atomic"

	"code.hybscloud.com/iox"
)

// Slot is one claimed ring position. Producers get a Slot from TryClaim,
// mutate Data in place (it is reused across wraps, not reallocated), and
// call Commit or Abort exactly once.
type Slot[T any] struct {
	pos  uint64
	ring *Ring[T]

	// Data is the reusable payload the claiming goroutine fills before
	// committing. Its zero value on claim is whatever the previous
	// occupant of this physical slot left behind; callers that need a
	// clean value must reset it themselves.
	Data T
}

type cell[T any] struct {
	seq  atomic.Uint64
	data T
}

// Ring is a bounded MPSC queue with capacity rounded up to the next power
// of two, minimum 2.
type Ring[T any] struct {
	mask  uint64
	cells []cell[T]

	head atomic.Uint64 // next claim position, advanced by producers via CAS
	tail uint64        // next drain position, owned solely by the consumer
}

// New returns a Ring sized to at least capacity slots (rounded up to a
// power of two). Panics if capacity < 2.
func New[T any](capacity int) *Ring[T] {
	if capacity < 2 {
		panic("ring: capacity must be >= 2")
	}
	n := nextPow2(capacity)
	cells := make([]cell[T], n)
	for i := range cells {
		cells[i].seq.Store(uint64(i))
	}
	return &Ring[T]{mask: uint64(n - 1), cells: cells}
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// TryClaim reserves the next slot for the calling producer. It returns
// iox.ErrWouldBlock if the ring is full (the consumer hasn't drained
// enough to free a slot).
func (r *Ring[T]) TryClaim() (*Slot[T], error) {
	for {
		pos := r.head.Load()
		cell := &r.cells[pos&r.mask]
		seq := cell.seq.Load()
		diff := int64(seq) - int64(pos)
		switch {
		case diff == 0:
			if r.head.CompareAndSwap(pos, pos+1) {
				return &Slot[T]{pos: pos, ring: r, Data: cell.data}, nil
			}
		case diff < 0:
			return nil, iox.ErrWouldBlock
		default:
			// another producer has already advanced head past this
			// view; reload and retry.
		}
	}
}

// Commit makes s visible to the consumer in claim order. The slot's
// contents must not be mutated after Commit.
func (s *Slot[T]) Commit() {
	cell := &s.ring.cells[s.pos&s.ring.mask]
	cell.data = s.Data
	cell.seq.Store(s.pos + 1)
}

// Abort releases a claimed slot without publishing it, restoring it to the
// state the consumer expects before it can be claimed again; only safe to
// call when no other producer can have advanced past this slot, so Abort
// is for the rare immediate-validation-failure path, not general use.
func (s *Slot[T]) Abort() {
	// TryClaim never touched the cell's seq, so rolling head back is all
	// it takes for the next TryClaim to hand out this same position.
	s.ring.head.CompareAndSwap(s.pos+1, s.pos)
}

// TryDequeue returns the next committed slot's data in commit order, or
// iox.ErrWouldBlock if nothing committed is available yet. Must be called
// from a single consumer goroutine only.
func (r *Ring[T]) TryDequeue() (T, error) {
	var zero T
	pos := r.tail
	cell := &r.cells[pos&r.mask]
	seq := cell.seq.Load()
	diff := int64(seq) - int64(pos+1)
	if diff != 0 {
		return zero, iox.ErrWouldBlock
	}
	data := cell.data
	r.tail = pos + 1
	cell.seq.Store(pos + r.mask + 1)
	return data, nil
}
