// Package transport provides the peer-to-peer byte transport used by the
// MPC engine: point-to-point, peer-addressed send/receive with no routing
// or delivery guarantees beyond what the underlying variant offers.
//
// A Network value is one "lane": a full set of connections to every peer.
// Establishment builds L duplicate lanes so the engine can run L protocol
// steps against independent connection sets concurrently.
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│       Protocol Messages        │
//	├────────────────────────────────┤
//	│   Length-Prefix Framing (4B)   │
//	├────────────────────────────────┤
//	│   TCP  or  TLS 1.3 over TCP    │
//	└────────────────────────────────┘
//
// # Variants
//
//   - TCPNetwork: one duplex TCP connection per peer, split into
//     independent send and receive halves.
//   - TLSNetwork: two separate TLS 1.3 sessions per peer, one per
//     direction, so send and receive never contend on one session.
//   - ChanNetwork: in-process channels for tests, no sockets.
//   - NullNetwork: no-op stub for exercising compute-only paths.
//
// # Establishment
//
// For every lane and every unordered party pair the lower-id party dials
// and the higher-id party accepts, which avoids double-connect races. The
// dialer writes an 8-byte lane index and 8-byte origin party id
// (big-endian) immediately after connecting; the acceptor routes the
// connection by that header, independent of accept order.
package transport
