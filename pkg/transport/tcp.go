package transport

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mpcnet-protocol/mpcnet-go/pkg/backoff"
	"github.com/mpcnet-protocol/mpcnet-go/pkg/log"
)

// DefaultWriteTimeout bounds how long a single send may block on the
// socket. Receives block indefinitely; protocol code decides how long
// it is willing to wait for a peer.
const DefaultWriteTimeout = 30 * time.Second

// sendHalf is the send direction of one peer link. The mutex serializes
// writers to this peer only; other peers and the receive direction are
// untouched.
type sendHalf struct {
	mu     sync.Mutex
	conn   net.Conn
	fw     *FrameWriter
	connID string
}

// recvHalf is the receive direction of one peer link.
type recvHalf struct {
	mu     sync.Mutex
	conn   net.Conn
	fr     *FrameReader
	connID string
}

// TCPNetwork is one lane of plain-TCP connectivity: a duplex connection
// per peer, split into independent send and receive halves over the
// same underlying stream.
type TCPNetwork struct {
	id           int
	writeTimeout time.Duration
	send         map[int]*sendHalf
	recv         map[int]*recvHalf
}

// ID returns the party id of this endpoint.
func (n *TCPNetwork) ID() int { return n.id }

// SetLogger configures frame logging on every peer link.
// Pass nil to disable logging.
func (n *TCPNetwork) SetLogger(logger log.Logger) {
	for _, h := range n.send {
		h.fw.SetLogger(logger, h.connID)
	}
	for _, h := range n.recv {
		h.fr.SetLogger(logger, h.connID)
	}
}

// Send transmits data to the given peer, blocking until the frame is
// fully written or the write timeout expires.
func (n *TCPNetwork) Send(to int, data []byte) error {
	h, ok := n.send[to]
	if !ok {
		return fmt.Errorf("%w: send to party %d", ErrUnknownPeer, to)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n.writeTimeout > 0 {
		_ = h.conn.SetWriteDeadline(time.Now().Add(n.writeTimeout))
	}
	if err := h.fw.WriteFrame(data); err != nil {
		return wrapTimeout(err)
	}
	return nil
}

// Recv blocks until a full frame from the given peer arrives.
func (n *TCPNetwork) Recv(from int) ([]byte, error) {
	h, ok := n.recv[from]
	if !ok {
		return nil, fmt.Errorf("%w: recv from party %d", ErrUnknownPeer, from)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := h.fr.ReadFrame()
	if err != nil {
		return nil, wrapTimeout(err)
	}
	return data, nil
}

// Close closes every peer connection of this lane.
func (n *TCPNetwork) Close() error {
	var firstErr error
	for _, h := range n.send {
		if err := h.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// wrapTimeout converts net timeout errors into ErrTimeout so callers
// can match the transport taxonomy with errors.Is.
func wrapTimeout(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

// NewTCPNetworks builds lanes fully peer-connected TCP transports for
// party id among the given addresses. addrs is ordered by party id and
// includes this party's own address at position id (it is skipped).
//
// For every lane and every peer, the numerically lower party dials
// (retrying at a fixed interval, without deadline, until the peer
// accepts) and the higher party accepts. The dialer sends the lane
// routing header immediately after connecting; the acceptor routes the
// connection by that header, so accept order does not matter.
func NewTCPNetworks(id int, bindAddr string, addrs []Address, lanes int) ([]*TCPNetwork, error) {
	listener, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: listen on %s: %v", ErrConnectFailed, bindAddr, err)
	}
	defer listener.Close()

	nets := make([]*TCPNetwork, lanes)
	for i := range nets {
		nets[i] = &TCPNetwork{
			id:           id,
			writeTimeout: DefaultWriteTimeout,
			send:         make(map[int]*sendHalf),
			recv:         make(map[int]*recvHalf),
		}
	}

	for i := 0; i < lanes; i++ {
		for otherID, addr := range addrs {
			switch {
			case id < otherID:
				conn, err := dialWithRetry(addr.String())
				if err != nil {
					return nil, err
				}
				if err := writeLaneHeader(conn, laneHeader{Lane: uint64(i), Party: uint64(id)}); err != nil {
					conn.Close()
					return nil, err
				}
				nets[i].addPeer(otherID, conn)

			case id > otherID:
				conn, err := listener.Accept()
				if err != nil {
					return nil, fmt.Errorf("%w: accept: %v", ErrConnectFailed, err)
				}
				if tc, ok := conn.(*net.TCPConn); ok {
					_ = tc.SetNoDelay(true)
				}
				h, err := readLaneHeader(conn)
				if err != nil {
					conn.Close()
					return nil, err
				}
				if h.Lane >= uint64(lanes) || h.Party >= uint64(len(addrs)) {
					conn.Close()
					return nil, fmt.Errorf("%w: header routes to lane %d party %d", ErrHandshakeFailed, h.Lane, h.Party)
				}
				nets[h.Lane].addPeer(int(h.Party), conn)

			default:
				continue
			}
		}
	}

	return nets, nil
}

// addPeer installs a duplex connection as this lane's link to a peer.
func (n *TCPNetwork) addPeer(peer int, conn net.Conn) {
	connID := uuid.NewString()
	n.send[peer] = &sendHalf{conn: conn, fw: NewFrameWriter(conn), connID: connID}
	n.recv[peer] = &recvHalf{conn: conn, fr: NewFrameReader(conn), connID: connID}
}

// dialWithRetry dials until the peer accepts, pacing attempts at the
// fixed establishment interval. There is no deadline; both endpoints
// are assumed eventually reachable.
func dialWithRetry(addr string) (net.Conn, error) {
	pace := backoff.NewFixed(backoff.EstablishInterval)
	for {
		conn, err := net.Dial("tcp", addr)
		if err == nil {
			if tc, ok := conn.(*net.TCPConn); ok {
				_ = tc.SetNoDelay(true)
			}
			return conn, nil
		}
		time.Sleep(pace.Next())
	}
}
