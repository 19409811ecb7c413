// Package queue implements a fixed-capacity, single-producer/multi-consumer
// seqlock broadcast ring. One producer publishes decoded envelopes; any
// number of independent consumers read at their own pace. A consumer that
// falls more than the ring's capacity behind is skipped forward rather than
// blocked or errored — this is a replay pipeline over a replayable file
// source, so losing the tail of a lagging consumer's backlog is acceptable
// and cheaper than back-pressuring the producer.
package queue

import (
	"fmt"
	"sync/atomic"

	"github.com/ndrandal-quant/itchbook/internal/itch"
)

// cacheLinePad sizes the padding between a slot's sequence word and its
// payload, so the payload begins 64 bytes after the sequence word. Slots are
// not padded to a multiple of 64 bytes and the slot array is not aligned to
// a cache-line boundary, so neighbouring slots can share a cache line.
const cacheLinePad = 60

type slot struct {
	seq uint32 // atomic: even = committed, odd = write in progress
	_   [cacheLinePad]byte
	env itch.Envelope
}

// Queue is a power-of-two ring of slots. Capacity is fixed at construction;
// spec.md's Non-goals exclude dynamic resizing.
type Queue struct {
	slots    []slot
	mask     uint64
	writeIdx uint64 // atomic: index of the next slot the producer will write
}

// New allocates a queue with room for capacity envelopes. capacity must be
// a power of two.
func New(capacity int) (*Queue, error) {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		return nil, fmt.Errorf("queue: capacity %d is not a positive power of two", capacity)
	}
	return &Queue{
		slots: make([]slot, capacity),
		mask:  uint64(capacity - 1),
	}, nil
}

// Cap returns the queue's fixed slot count.
func (q *Queue) Cap() int { return len(q.slots) }

// Publish writes env into the next slot. Publish must be called from a
// single goroutine; the queue has no internal producer-side locking.
func (q *Queue) Publish(env itch.Envelope) {
	idx := q.writeIdx & q.mask
	s := &q.slots[idx]

	seq := atomic.LoadUint32(&s.seq)
	atomic.StoreUint32(&s.seq, seq+1) // odd: write in progress
	s.env = env
	atomic.StoreUint32(&s.seq, seq+2) // even: committed

	atomic.AddUint64(&q.writeIdx, 1)
}

// ConsumerState is a consumer's private read cursor. Each consumer owns
// exactly one and never shares it; there is no coordination between
// consumers beyond the slots they read from.
type ConsumerState struct {
	ReadIndex uint64
	Dropped   uint64 // count of envelopes skipped because this consumer lagged too far
}

// TryRead attempts to read the next envelope for this consumer. It returns
// false when the producer has not yet published past the consumer's
// current position — the caller should back off (spin, sleep, or park) and
// retry, exactly as a file-backed replay consumer would. When the consumer
// has fallen more than the ring's capacity behind the producer, TryRead
// silently advances ReadIndex to the oldest slot still live and increments
// Dropped: this is the queue's lossy-consumer contract, not an error.
func (q *Queue) TryRead(cs *ConsumerState) (itch.Envelope, bool) {
	wi := atomic.LoadUint64(&q.writeIdx)
	if cs.ReadIndex >= wi {
		return itch.Envelope{}, false
	}

	cap64 := uint64(len(q.slots))
	if wi-cs.ReadIndex > cap64 {
		skipped := wi - cap64 - cs.ReadIndex
		cs.Dropped += skipped
		cs.ReadIndex = wi - cap64
	}

	idx := cs.ReadIndex & q.mask
	s := &q.slots[idx]
	// The slot's k-th write (k = ReadIndex / capacity) commits sequence
	// 2(k+1); anything higher means a later lap has overwritten it.
	want := uint32(2 * (cs.ReadIndex/cap64 + 1))

	for {
		seq0 := atomic.LoadUint32(&s.seq)
		if seq0 > want {
			cs.Dropped++
			cs.ReadIndex++
			return q.TryRead(cs)
		}
		if seq0&1 == 1 {
			// producer mid-write of this very envelope. Back off to the
			// caller.
			return itch.Envelope{}, false
		}
		env := s.env
		seq1 := atomic.LoadUint32(&s.seq)
		if seq0 == seq1 {
			cs.ReadIndex++
			return env, true
		}
		// torn read: the producer committed a new write mid-copy. Retry.
	}
}
