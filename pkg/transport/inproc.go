package transport

import (
	"fmt"
	"sync"
	"time"
)

// DefaultRecvTimeout bounds how long an in-process receive waits for a
// message before giving up. Real protocol runs never want an infinite
// hang in a test transport.
const DefaultRecvTimeout = 30 * time.Second

// mailbox is an unbounded FIFO for one ordered (sender, receiver) pair.
// put never blocks; take blocks with a bounded timeout.
type mailbox struct {
	mu     sync.Mutex
	q      [][]byte
	notify chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{notify: make(chan struct{}, 1)}
}

func (m *mailbox) put(data []byte) {
	m.mu.Lock()
	m.q = append(m.q, data)
	m.mu.Unlock()
	m.signal()
}

func (m *mailbox) signal() {
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

func (m *mailbox) take(timeout time.Duration) ([]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		m.mu.Lock()
		if len(m.q) > 0 {
			data := m.q[0]
			m.q = m.q[1:]
			more := len(m.q) > 0
			m.mu.Unlock()
			if more {
				// Keep waking any other waiter until the queue drains.
				m.signal()
			}
			return data, nil
		}
		m.mu.Unlock()

		select {
		case <-m.notify:
		case <-timer.C:
			return nil, fmt.Errorf("%w: recv after %v", ErrTimeout, timeout)
		}
	}
}

// ChanNetwork is the in-process test transport: one unbounded queue per
// ordered (sender, receiver) pair, no sockets involved. Send is a
// non-blocking publish; Recv blocks with a bounded timeout.
type ChanNetwork struct {
	id          int
	recvTimeout time.Duration
	send        map[int]*mailbox
	recv        map[int]*mailbox
}

// ID returns the party id of this endpoint.
func (n *ChanNetwork) ID() int { return n.id }

// SetRecvTimeout overrides the receive timeout for this endpoint.
func (n *ChanNetwork) SetRecvTimeout(d time.Duration) {
	n.recvTimeout = d
}

// Send publishes data to the given peer. The payload is copied so the
// caller may reuse its buffer.
func (n *ChanNetwork) Send(to int, data []byte) error {
	box, ok := n.send[to]
	if !ok {
		return fmt.Errorf("%w: send to party %d", ErrUnknownPeer, to)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	box.put(buf)
	return nil
}

// Recv blocks until a message from the given peer arrives or the
// receive timeout expires.
func (n *ChanNetwork) Recv(from int) ([]byte, error) {
	box, ok := n.recv[from]
	if !ok {
		return nil, fmt.Errorf("%w: recv from party %d", ErrUnknownPeer, from)
	}
	return box.take(n.recvTimeout)
}

// NewChanPartyNetworks builds one lane connecting the given number of
// parties in process: result[p] is party p's endpoint.
func NewChanPartyNetworks(parties int) []*ChanNetwork {
	nets := make([]*ChanNetwork, parties)
	for p := range nets {
		nets[p] = &ChanNetwork{
			id:          p,
			recvTimeout: DefaultRecvTimeout,
			send:        make(map[int]*mailbox),
			recv:        make(map[int]*mailbox),
		}
	}

	for i := 0; i < parties; i++ {
		for j := 0; j < parties; j++ {
			if i == j {
				continue
			}
			box := newMailbox()
			nets[i].send[j] = box
			nets[j].recv[i] = box
		}
	}

	return nets
}

// NewChanNetworks builds lanes in-process transports for every party:
// result[p][l] is party p's endpoint on lane l.
func NewChanNetworks(parties, lanes int) [][]*ChanNetwork {
	nets := make([][]*ChanNetwork, parties)
	for p := range nets {
		nets[p] = make([]*ChanNetwork, 0, lanes)
	}
	for l := 0; l < lanes; l++ {
		lane := NewChanPartyNetworks(parties)
		for p, n := range lane {
			nets[p] = append(nets[p], n)
		}
	}
	return nets
}
