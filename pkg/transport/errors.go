package transport

import "errors"

// Transport errors. Send/Recv failures are returned to the closure that
// invoked them; neither the lane pool nor the engine retries I/O on the
// caller's behalf.
var (
	// ErrConnectFailed indicates an outbound connection could not be
	// established.
	ErrConnectFailed = errors.New("connect failed")

	// ErrTimeout indicates a send or receive exceeded the transport's
	// I/O timeout.
	ErrTimeout = errors.New("transport timeout")

	// ErrShortRead indicates the stream ended mid-frame or mid-header.
	ErrShortRead = errors.New("short read")

	// ErrUnknownPeer indicates the peer id has no connection on this lane.
	ErrUnknownPeer = errors.New("unknown peer")

	// ErrHandshakeFailed indicates the lane routing header or TLS
	// handshake was rejected during establishment.
	ErrHandshakeFailed = errors.New("handshake failed")
)
