package lanepool

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mpcnet-protocol/mpcnet-go/pkg/log"
)

// acquireAsync runs Acquire on a goroutine and delivers the result, so
// tests can assert on blocking behavior without hanging on failure.
type acquired struct {
	slot int
	lane string
}

func acquireAsync(p *Pool[string]) <-chan acquired {
	ch := make(chan acquired, 1)
	go func() {
		slot, lane := p.Acquire()
		ch <- acquired{slot: slot, lane: lane}
	}()
	return ch
}

func waitAcquired(t *testing.T, ch <-chan acquired) acquired {
	t.Helper()
	select {
	case a := <-ch:
		return a
	case <-time.After(5 * time.Second):
		t.Fatal("acquire did not complete")
		return acquired{}
	}
}

func assertBlocked(t *testing.T, ch <-chan acquired) {
	t.Helper()
	select {
	case a := <-ch:
		t.Fatalf("acquire completed with slot %d, want blocked", a.slot)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestAcquireRotationOrder(t *testing.T) {
	for _, size := range []int{1, 2, 3, 5} {
		lanes := make([]string, size)
		for i := range lanes {
			lanes[i] = string(rune('a' + i))
		}
		p := New(lanes)

		for ticket := 0; ticket < 2*size+3; ticket++ {
			slot, lane := p.Acquire()
			if slot != ticket%size {
				t.Errorf("size %d ticket %d: slot = %d, want %d", size, ticket, slot, ticket%size)
			}
			if lane != lanes[slot] {
				t.Errorf("size %d ticket %d: lane = %q, want %q", size, ticket, lane, lanes[slot])
			}
			p.Release(slot, lane)
		}
	}
}

func TestOutOfOrderReleaseRejoinsRotation(t *testing.T) {
	p := New([]string{"A", "B", "C"})

	s0, a := p.Acquire()
	s1, b := p.Acquire()
	s2, c := p.Acquire()

	// Release against rotation order. Each lane must come back at its
	// own slot once the rotation reaches it again.
	p.Release(s2, c)
	p.Release(s0, a)
	p.Release(s1, b)

	for want, lane := range []string{"A", "B", "C"} {
		slot, got := p.Acquire()
		require.Equal(t, want, slot)
		require.Equal(t, lane, got)
	}
}

func TestAcquireBlocksUntilSlotReleased(t *testing.T) {
	p := New([]string{"A", "B", "C"})

	s0, a := p.Acquire() // ticket 0 -> slot 0
	p.Acquire()          // ticket 1 -> slot 1, held

	// Ticket 2 wants slot 2, which is free; ticket 3 wants slot 0,
	// which is out with us.
	s2, c := p.Acquire()
	require.Equal(t, 2, s2)
	require.Equal(t, "C", c)

	blocked := acquireAsync(p)
	assertBlocked(t, blocked)

	p.Release(s0, a)
	got := waitAcquired(t, blocked)
	require.Equal(t, 0, got.slot)
	require.Equal(t, "A", got.lane)
}

func TestReleaseWakesOnlyMatchingSlot(t *testing.T) {
	p := New([]string{"A", "B"})

	s0, a := p.Acquire()
	s1, b := p.Acquire()

	wantsSlot0 := acquireAsync(p) // ticket 2
	wantsSlot1 := acquireAsync(p) // ticket 3
	assertBlocked(t, wantsSlot0)
	assertBlocked(t, wantsSlot1)

	// Releasing slot 1 must wake the slot-1 waiter, not the slot-0 one.
	p.Release(s1, b)
	got := waitAcquired(t, wantsSlot1)
	require.Equal(t, 1, got.slot)
	assertBlocked(t, wantsSlot0)

	p.Release(s0, a)
	got = waitAcquired(t, wantsSlot0)
	require.Equal(t, 0, got.slot)
}

func TestWaitersServedInTicketOrder(t *testing.T) {
	p := New([]string{"A"})

	s0, a := p.Acquire()

	const waiters = 4
	order := make(chan int, waiters)
	var wg sync.WaitGroup
	for i := 0; i < waiters; i++ {
		// Sequential goroutine starts so ticket order matches i.
		started := make(chan struct{})
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			close(started)
			slot, lane := p.Acquire()
			order <- i
			p.Release(slot, lane)
		}(i)
		<-started
		// Give the goroutine time to take its ticket before the next
		// one starts.
		for {
			p.mu.Lock()
			taken := p.ticket == uint64(i+2)
			p.mu.Unlock()
			if taken {
				break
			}
			time.Sleep(time.Millisecond)
		}
	}

	p.Release(s0, a)
	wg.Wait()
	close(order)

	want := 0
	for got := range order {
		if got != want {
			t.Fatalf("waiter %d served out of order, want %d", got, want)
		}
		want++
	}
}

func TestNoDoubleIssue(t *testing.T) {
	p := New([]string{"A", "B", "C", "D"})

	var mu sync.Mutex
	held := make(map[string]bool)

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				slot, lane := p.Acquire()

				mu.Lock()
				if held[lane] {
					mu.Unlock()
					t.Errorf("lane %q issued twice", lane)
					p.Release(slot, lane)
					return
				}
				held[lane] = true
				mu.Unlock()

				mu.Lock()
				held[lane] = false
				mu.Unlock()

				p.Release(slot, lane)
			}
		}()
	}
	wg.Wait()

	// After quiescence every lane is back and the rotation still works.
	require.Equal(t, 4, p.Len())
	for i := 0; i < 4; i++ {
		slot, lane := p.Acquire()
		require.Equal(t, i, slot)
		p.Release(slot, lane)
	}
}

func TestInsertGrowsRotation(t *testing.T) {
	p := New([]string{"A", "B"})
	p.Insert("C")
	require.Equal(t, 3, p.Len())

	seen := make(map[string]int)
	for i := 0; i < 3; i++ {
		slot, lane := p.Acquire()
		seen[lane]++
		p.Release(slot, lane)
	}
	require.Equal(t, map[string]int{"A": 1, "B": 1, "C": 1}, seen)
}

func TestRemoveShrinksRotation(t *testing.T) {
	p := New([]string{"A", "B", "C"})

	lane, ok := p.Remove()
	require.True(t, ok)
	require.Equal(t, "C", lane)
	require.Equal(t, 2, p.Len())

	for i := 0; i < 6; i++ {
		slot, got := p.Acquire()
		require.Equal(t, i%2, slot)
		require.NotEqual(t, "C", got)
		p.Release(slot, got)
	}
}

func TestRemoveRefusesCheckedOutLane(t *testing.T) {
	p := New([]string{"A", "B"})

	slot, lane := p.Acquire() // slot 0
	_ = slot

	s1, b := p.Acquire() // slot 1, the most recently added lane
	if _, ok := p.Remove(); ok {
		t.Fatal("Remove succeeded while last lane was checked out")
	}

	p.Release(s1, b)
	got, ok := p.Remove()
	require.True(t, ok)
	require.Equal(t, "B", got)

	p.Release(0, lane)
}

func TestRemoveEmptyPool(t *testing.T) {
	p := New[string](nil)
	if _, ok := p.Remove(); ok {
		t.Fatal("Remove on empty pool reported success")
	}
}

func TestAcquireEmptyPoolPanics(t *testing.T) {
	p := New[string](nil)
	require.Panics(t, func() { p.Acquire() })
}

func TestInsertUnblocksNothingByItself(t *testing.T) {
	// A waiter blocked on slot 0 stays blocked across an Insert; only a
	// release of slot 0 serves it.
	p := New([]string{"A"})
	s0, a := p.Acquire()

	blocked := acquireAsync(p)
	assertBlocked(t, blocked)

	p.Insert("B")
	assertBlocked(t, blocked)

	p.Release(s0, a)
	got := waitAcquired(t, blocked)
	require.Equal(t, 0, got.slot)
	require.Equal(t, "A", got.lane)
}

// recordingLogger collects lane events; safe for concurrent use.
type recordingLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *recordingLogger) Log(e log.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recordingLogger) ops() []log.LaneOp {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make([]log.LaneOp, 0, len(r.events))
	for _, e := range r.events {
		ops = append(ops, e.Lane.Op)
	}
	return ops
}

func TestContendedAcquireLogsAcquire(t *testing.T) {
	// A handed-off lane must still count as an acquire in the event
	// stream, with the waiter's ticket, so captures balance acquires
	// against releases.
	rec := &recordingLogger{}
	p := New([]string{"A"})
	p.SetLogger(rec)

	s0, a := p.Acquire() // ticket 0, uncontended

	blocked := acquireAsync(p) // ticket 1, blocks on slot 0
	assertBlocked(t, blocked)

	p.Release(s0, a)
	got := waitAcquired(t, blocked)
	p.Release(got.slot, got.lane)

	require.Equal(t, []log.LaneOp{
		log.LaneAcquire,
		log.LaneBlocked,
		log.LaneRelease,
		log.LaneAcquire,
		log.LaneRelease,
	}, rec.ops())

	// The handoff acquire carries the waiter's ticket.
	handoff := rec.events[3]
	require.Equal(t, uint64(1), handoff.Lane.Ticket)
	require.Equal(t, 0, handoff.Lane.Slot)
}
