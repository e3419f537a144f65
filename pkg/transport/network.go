package transport

// Network is the capability a lane exposes to protocol code: identify
// yourself, send bytes to a peer, receive bytes from a peer.
//
// Send and Recv block until completion or a transport-defined timeout.
// Each (peer, direction) pair is independent: concurrent sends to
// different peers, and a concurrent send and receive involving the same
// peer, never contend on one lock. A Network is exclusively owned by
// whichever party currently holds it (the lane pool or one running
// closure); implementations do not need to support two goroutines
// sending to the same peer at once, but all of them do.
type Network interface {
	// ID returns the party id of this endpoint.
	ID() int

	// Send transmits data to the given peer.
	Send(to int, data []byte) error

	// Recv blocks until a message from the given peer arrives.
	Recv(from int) ([]byte, error)
}

// Compile-time interface satisfaction checks.
var (
	_ Network = (*TCPNetwork)(nil)
	_ Network = (*TLSNetwork)(nil)
	_ Network = (*ChanNetwork)(nil)
	_ Network = NullNetwork{}
)
