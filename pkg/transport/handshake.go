package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// laneHeaderSize is the size of the routing header written once per
// physical connection at establishment: 8-byte big-endian lane index
// followed by 8-byte big-endian origin party id.
const laneHeaderSize = 16

// Direction role tags appended to the lane header by the TLS variant.
// Each TLS session carries exactly one direction of traffic.
const (
	// roleForward marks the session that carries lower-id → higher-id data.
	roleForward byte = 0
	// roleReverse marks the session that carries higher-id → lower-id data.
	roleReverse byte = 1
)

// laneHeader routes a freshly accepted connection into the correct
// lane's send/receive slot, independent of accept order.
type laneHeader struct {
	Lane  uint64
	Party uint64
}

// writeLaneHeader writes the routing header to a new connection.
func writeLaneHeader(w io.Writer, h laneHeader) error {
	var buf [laneHeaderSize]byte
	binary.BigEndian.PutUint64(buf[0:8], h.Lane)
	binary.BigEndian.PutUint64(buf[8:16], h.Party)
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("%w: write lane header: %v", ErrHandshakeFailed, err)
	}
	return nil
}

// readLaneHeader reads the routing header from a new connection.
func readLaneHeader(r io.Reader) (laneHeader, error) {
	var buf [laneHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || err == io.EOF {
			return laneHeader{}, fmt.Errorf("%w: lane header: %v", ErrShortRead, err)
		}
		return laneHeader{}, fmt.Errorf("%w: read lane header: %v", ErrHandshakeFailed, err)
	}
	return laneHeader{
		Lane:  binary.BigEndian.Uint64(buf[0:8]),
		Party: binary.BigEndian.Uint64(buf[8:16]),
	}, nil
}

// writeRoleTag writes the one-byte direction tag (TLS variant only).
func writeRoleTag(w io.Writer, role byte) error {
	if _, err := w.Write([]byte{role}); err != nil {
		return fmt.Errorf("%w: write role tag: %v", ErrHandshakeFailed, err)
	}
	return nil
}

// readRoleTag reads the one-byte direction tag (TLS variant only).
func readRoleTag(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: role tag: %v", ErrShortRead, err)
	}
	if buf[0] != roleForward && buf[0] != roleReverse {
		return 0, fmt.Errorf("%w: unknown role tag %d", ErrHandshakeFailed, buf[0])
	}
	return buf[0], nil
}
