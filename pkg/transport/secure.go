package transport

import (
	"crypto"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/mpcnet-protocol/mpcnet-go/pkg/backoff"
	"github.com/mpcnet-protocol/mpcnet-go/pkg/log"
)

// TLSNetwork is one lane of TLS 1.3 connectivity. Unlike TCPNetwork,
// each peer link is two separate underlying connections carrying
// independent encrypted sessions, one per direction, because a single
// TLS session cannot cheaply support concurrent unsynchronized read and
// write. A one-byte role tag sent during setup disambiguates which
// session carries which direction.
type TLSNetwork struct {
	id           int
	writeTimeout time.Duration
	send         map[int]*sendHalf
	recv         map[int]*recvHalf
}

// ID returns the party id of this endpoint.
func (n *TLSNetwork) ID() int { return n.id }

// SetLogger configures frame logging on every directional session.
// Pass nil to disable logging.
func (n *TLSNetwork) SetLogger(logger log.Logger) {
	for _, h := range n.send {
		h.fw.SetLogger(logger, h.connID)
	}
	for _, h := range n.recv {
		h.fr.SetLogger(logger, h.connID)
	}
}

// Send transmits data to the given peer over the send-direction session.
func (n *TLSNetwork) Send(to int, data []byte) error {
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

// Recv blocks until a full frame arrives on the receive-direction session.
func (n *TLSNetwork) Recv(from int) ([]byte, error) {
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

// Close closes both directional sessions of every peer link.
func (n *TLSNetwork) Close() error {
	var firstErr error
	for _, h := range n.send {
		if err := h.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, h := range n.recv {
		if err := h.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NewTLSNetworks builds lanes fully peer-connected TLS transports.
// certs is ordered by party id (certs[id] must match key); every party
// certificate is trusted as a verification root, the way a closed MPC
// consortium distributes its roster out of band.
//
// Establishment visits every peer twice per lane, once per direction
// role. The numerically lower party always dials, so it plays the TLS
// client on both sessions; the role tag written inside the session
// tells the acceptor which direction the session will carry.
func NewTLSNetworks(id int, bindAddr string, addrs []Address, certs []*x509.Certificate, key crypto.PrivateKey, lanes int) ([]*TLSNetwork, error) {
	own, err := ownCertificate(id, certs, key)
	if err != nil {
		return nil, err
	}
	roots := partyCertPool(certs)
	serverCfg := newPeerServerTLSConfig(own)

	listener, err := tls.Listen("tcp", bindAddr, serverCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: listen on %s: %v", ErrConnectFailed, bindAddr, err)
	}
	defer listener.Close()

	nets := make([]*TLSNetwork, lanes)
	for i := range nets {
		nets[i] = &TLSNetwork{
			id:           id,
			writeTimeout: DefaultWriteTimeout,
			send:         make(map[int]*sendHalf),
			recv:         make(map[int]*recvHalf),
		}
	}

	for i := 0; i < lanes; i++ {
		for _, role := range []byte{roleForward, roleReverse} {
			for otherID, addr := range addrs {
				switch {
				case id < otherID:
					conn, err := dialTLSWithRetry(addr, own, roots)
					if err != nil {
						return nil, err
					}
					if err := writeLaneHeader(conn, laneHeader{Lane: uint64(i), Party: uint64(id)}); err != nil {
						conn.Close()
						return nil, err
					}
					if err := writeRoleTag(conn, role); err != nil {
						conn.Close()
						return nil, err
					}
					// Role tags are assigned from the lower party's view:
					// the forward session carries lower-id → higher-id
					// traffic, which for the dialer is the send direction.
					if role == roleForward {
						nets[i].send[otherID] = &sendHalf{conn: conn, fw: NewFrameWriter(conn), connID: uuid.NewString()}
					} else {
						nets[i].recv[otherID] = &recvHalf{conn: conn, fr: NewFrameReader(conn), connID: uuid.NewString()}
					}

				case id > otherID:
					conn, err := listener.Accept()
					if err != nil {
						return nil, fmt.Errorf("%w: accept: %v", ErrConnectFailed, err)
					}
					h, err := readLaneHeader(conn)
					if err != nil {
						conn.Close()
						return nil, err
					}
					tag, err := readRoleTag(conn)
					if err != nil {
						conn.Close()
						return nil, err
					}
					if h.Lane >= uint64(lanes) || h.Party >= uint64(len(addrs)) {
						conn.Close()
						return nil, fmt.Errorf("%w: header routes to lane %d party %d", ErrHandshakeFailed, h.Lane, h.Party)
					}
					peer := int(h.Party)
					if tag == roleForward {
						nets[h.Lane].recv[peer] = &recvHalf{conn: conn, fr: NewFrameReader(conn), connID: uuid.NewString()}
					} else {
						nets[h.Lane].send[peer] = &sendHalf{conn: conn, fw: NewFrameWriter(conn), connID: uuid.NewString()}
					}

				default:
					continue
				}
			}
		}
	}

	return nets, nil
}

// dialTLSWithRetry dials and completes the TLS handshake, retrying the
// TCP connect at the fixed establishment interval until the peer
// accepts. A failed TLS handshake on an accepted connection is fatal,
// not retried: the peer is reachable but misconfigured.
func dialTLSWithRetry(addr Address, own tls.Certificate, roots *x509.CertPool) (net.Conn, error) {
	cfg := newPeerClientTLSConfig(own, roots, addr.Hostname)
	pace := backoff.NewFixed(backoff.EstablishInterval)
	for {
		conn, err := net.Dial("tcp", addr.String())
		if err != nil {
			time.Sleep(pace.Next())
			continue
		}
		if tc, ok := conn.(*net.TCPConn); ok {
			_ = tc.SetNoDelay(true)
		}
		tlsConn := tls.Client(conn, cfg)
		if err := tlsConn.Handshake(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%w: TLS handshake with %s: %v", ErrHandshakeFailed, addr, err)
		}
		return tlsConn, nil
	}
}
