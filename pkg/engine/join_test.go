package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mpcnet-protocol/mpcnet-go/pkg/transport"
)

func TestJoin2NetReturnsInArgumentOrder(t *testing.T) {
	e := newNullEngine(t, 2, 2, 0)

	a, b := Join2Net(e,
		func(transport.Network) string { return "first" },
		func(transport.Network) int { return 2 },
	)
	require.Equal(t, "first", a)
	require.Equal(t, 2, b)
	requireAllLanesFree(t, e, 2)
}

func TestJoin3NetUsesDistinctLanes(t *testing.T) {
	// Three closures over three chan endpoints of the same party; each
	// closure must see its own lane. The peer echoes on all lanes.
	const lanes = 3
	nets := transport.NewChanNetworks(2, lanes)

	p0 := make([]transport.Network, lanes)
	for i, n := range nets[0] {
		p0[i] = n
	}
	e := New(0, 4, 0, p0)
	defer e.Close()

	// Party 1 echoes one message per lane.
	for _, n := range nets[1] {
		go func(n *transport.ChanNetwork) {
			data, err := n.Recv(0)
			if err != nil {
				t.Errorf("peer recv: %v", err)
				return
			}
			if err := n.Send(0, data); err != nil {
				t.Errorf("peer send: %v", err)
			}
		}(n)
	}

	ping := func(payload string) func(transport.Network) string {
		return func(net transport.Network) string {
			if err := net.Send(1, []byte(payload)); err != nil {
				t.Errorf("send: %v", err)
				return ""
			}
			data, err := net.Recv(1)
			if err != nil {
				t.Errorf("recv: %v", err)
				return ""
			}
			return string(data)
		}
	}

	r0, r1, r2 := Join3Net(e, ping("x"), ping("y"), ping("z"))
	require.Equal(t, "x", r0)
	require.Equal(t, "y", r1)
	require.Equal(t, "z", r2)
	requireAllLanesFree(t, e, lanes)
}

func TestJoin8NetAllLanesReleased(t *testing.T) {
	e := newNullEngine(t, 8, 8, 0)

	seen := [8]int{}
	mark := func(i int) func(transport.Network) int {
		return func(transport.Network) int {
			seen[i] = i + 1
			return i
		}
	}
	r0, r1, r2, r3, r4, r5, r6, r7 := Join8Net(e,
		mark(0), mark(1), mark(2), mark(3), mark(4), mark(5), mark(6), mark(7))
	require.Equal(t, []int{r0, r1, r2, r3, r4, r5, r6, r7}, []int{0, 1, 2, 3, 4, 5, 6, 7})
	for i, v := range seen {
		require.Equal(t, i+1, v)
	}
	requireAllLanesFree(t, e, 8)
}

func TestJoinNetFewerLanesThanArity(t *testing.T) {
	// Two lanes, three closures: the third acquire blocks until the
	// first closure's lane comes back, which only happens after the
	// join completes... so a sequential-acquire join with K > L would
	// deadlock. The fan-out therefore needs L >= K, and with L == K it
	// must complete.
	e := newNullEngine(t, 3, 3, 0)
	r0, r1, r2 := Join3Net(e,
		func(transport.Network) int { return 1 },
		func(transport.Network) int { return 2 },
		func(transport.Network) int { return 3 },
	)
	require.Equal(t, 6, r0+r1+r2)
}

func TestJoinNetPanicPropagatesAndPoisonsLanes(t *testing.T) {
	e := newNullEngine(t, 4, 4, 0)

	require.Panics(t, func() {
		Join2Net(e,
			func(transport.Network) int { return 1 },
			func(transport.Network) int { panic("mid-frame") },
		)
	})

	// Both fan-out lanes stay out of rotation; the two untouched lanes
	// still serve their slots.
	done := make(chan struct{})
	go func() {
		defer close(done)
		// Tickets 2 and 3 -> slots 2 and 3.
		s2, l2 := e.Lanes().Acquire()
		s3, l3 := e.Lanes().Acquire()
		e.Lanes().Release(s2, l2)
		e.Lanes().Release(s3, l3)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("healthy lanes unavailable after fan-out panic")
	}
}

func TestJoin2CPU(t *testing.T) {
	e := newNullEngine(t, 1, 1, 2)
	a, b := Join2CPU(e,
		func() int { return 7 },
		func() string { return "seven" },
	)
	require.Equal(t, 7, a)
	require.Equal(t, "seven", b)
}

func TestJoin5CPUNestedInJoin2CPU(t *testing.T) {
	// Nested fan-outs on a single-worker pool exercise the helping
	// wait: without it the outer join would starve the inner one.
	e := newNullEngine(t, 1, 1, 1)

	total, label := Join2CPU(e,
		func() int {
			a, b, c, d, f := Join5CPU(e,
				func() int { return 1 },
				func() int { return 2 },
				func() int { return 3 },
				func() int { return 4 },
				func() int { return 5 },
			)
			return a + b + c + d + f
		},
		func() string { return "sum" },
	)
	require.Equal(t, 15, total)
	require.Equal(t, "sum", label)
}

func TestJoinCPUPanicPropagates(t *testing.T) {
	e := newNullEngine(t, 1, 1, 2)
	require.Panics(t, func() {
		Join3CPU(e,
			func() int { return 1 },
			func() int { panic("degree too high") },
			func() int { return 3 },
		)
	})
}
