package lanepool

import (
	"sync"
	"time"

	"github.com/mpcnet-protocol/mpcnet-go/pkg/log"
)

// Pool owns L interchangeable lanes and hands them out in strict
// ticket order: acquire number t is always served the lane at slot
// t mod L. A lane is exclusively owned by at most one caller at any
// instant.
//
// The zero value is not usable; construct with New.
type Pool[T any] struct {
	mu sync.Mutex

	// size is the current lane count L. It only changes together with
	// the rotation state, under mu, so no acquire ever computes its
	// slot against a stale L.
	size int

	// ticket is the next rotation ticket to assign.
	ticket uint64

	// returns maps slot -> lane for every lane currently inside the
	// pool. A lane released ahead of the rotation's need is staged
	// here until its slot comes around again; the rotation consuming
	// a slot is what merges the staged return back into circulation.
	returns map[int]T

	// waiters holds, per slot, the callers blocked until that slot is
	// released. Tickets are assigned under mu, so the FIFO order per
	// slot is ticket order.
	waiters map[int][]chan T

	logger log.Logger
}

// New builds a pool that owns the given lanes; lanes[i] starts at
// rotation slot i.
func New[T any](lanes []T) *Pool[T] {
	returns := make(map[int]T, len(lanes))
	for slot, lane := range lanes {
		returns[slot] = lane
	}
	return &Pool[T]{
		size:    len(lanes),
		returns: returns,
		waiters: make(map[int][]chan T),
	}
}

// SetLogger configures lane event logging. Pass nil to disable.
func (p *Pool[T]) SetLogger(logger log.Logger) {
	p.mu.Lock()
	p.logger = logger
	p.mu.Unlock()
}

// Len returns the current lane count L.
func (p *Pool[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size
}

// Acquire assigns the caller the next ticket and returns the lane at
// slot ticket mod L, blocking until that slot is released if it is
// currently out. Acquire never fails; there is no pool-exhaustion
// error. Callers blocked on different slots do not delay each other.
//
// Acquire panics if the pool has no lanes at all: a ticket cannot be
// mapped to a slot of an empty rotation.
func (p *Pool[T]) Acquire() (int, T) {
	p.mu.Lock()
	if p.size == 0 {
		p.mu.Unlock()
		panic("lanepool: acquire on empty pool")
	}

	ticket := p.ticket
	p.ticket++
	slot := int(ticket % uint64(p.size))

	if lane, ok := p.returns[slot]; ok {
		delete(p.returns, slot)
		p.logLane(log.LaneAcquire, slot, ticket)
		p.mu.Unlock()
		return slot, lane
	}

	// Slot is out with another caller. Register for a targeted
	// handoff and wait; the channel is buffered so the releaser
	// never blocks on us.
	ch := make(chan T, 1)
	p.waiters[slot] = append(p.waiters[slot], ch)
	p.logLane(log.LaneBlocked, slot, ticket)
	p.mu.Unlock()

	lane := <-ch
	p.mu.Lock()
	p.logLane(log.LaneAcquire, slot, ticket)
	p.mu.Unlock()
	return slot, lane
}

// Release reinserts the lane at the given slot. If a caller is already
// waiting for exactly this slot, the lane is handed to it directly;
// otherwise the return is staged until the rotation reaches the slot
// again. Releases may arrive in any order relative to the rotation's
// current need.
func (p *Pool[T]) Release(slot int, lane T) {
	p.mu.Lock()
	if q, ok := p.waiters[slot]; ok && len(q) > 0 {
		ch := q[0]
		if len(q) == 1 {
			delete(p.waiters, slot)
		} else {
			p.waiters[slot] = q[1:]
		}
		p.logLane(log.LaneRelease, slot, 0)
		p.mu.Unlock()
		ch <- lane
		return
	}

	p.returns[slot] = lane
	p.logLane(log.LaneRelease, slot, 0)
	p.mu.Unlock()
}

// Insert appends a new lane at the next rotation slot, growing L by
// one. The lane count and rotation state change as a single atomic
// step.
func (p *Pool[T]) Insert(lane T) {
	p.mu.Lock()
	slot := p.size
	p.size++
	p.returns[slot] = lane
	p.logLane(log.LaneInsert, slot, 0)
	p.mu.Unlock()
}

// Remove detaches the most recently added lane, shrinking L by one.
// It reports false if the pool is empty or that lane is currently
// checked out; an idle pool always succeeds.
func (p *Pool[T]) Remove() (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var zero T
	if p.size == 0 {
		return zero, false
	}
	slot := p.size - 1
	lane, ok := p.returns[slot]
	if !ok {
		return zero, false
	}
	delete(p.returns, slot)
	p.size--
	p.logLane(log.LaneRemove, slot, 0)
	return lane, true
}

// logLane emits a lane event. Callers hold p.mu.
func (p *Pool[T]) logLane(op log.LaneOp, slot int, ticket uint64) {
	if p.logger == nil {
		return
	}
	p.logger.Log(log.Event{
		Timestamp: time.Now(),
		Category:  log.CategoryLane,
		Lane: &log.LaneEvent{
			Op:       op,
			Slot:     slot,
			Ticket:   ticket,
			PoolSize: p.size,
		},
	})
}
