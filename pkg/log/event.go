package log

import "time"

// Event represents a transport or lane-pool event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the physical connection (UUID).
	// Empty for pool events, which are not tied to a connection.
	ConnectionID string `cbor:"2,keyasint,omitempty"`

	// Direction indicates message flow for frame events.
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Party is the local party id, when known.
	Party int `cbor:"5,keyasint,omitempty"`

	// Peer is the remote party id, when known.
	Peer int `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame *FrameEvent     `cbor:"7,keyasint,omitempty"` // framing layer
	Lane  *LaneEvent      `cbor:"8,keyasint,omitempty"` // lane pool
	Error *ErrorEventData `cbor:"9,keyasint,omitempty"` // errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryFrame is a length-prefixed frame written or read.
	CategoryFrame Category = 0
	// CategoryLane is a lane-pool state change.
	CategoryLane Category = 1
	// CategoryError is an error captured at any layer.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryFrame:
		return "FRAME"
	case CategoryLane:
		return "LANE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent describes one framed message at the transport layer.
type FrameEvent struct {
	// Size is the full frame size including the length prefix.
	Size int `cbor:"1,keyasint"`

	// Data is the frame payload, possibly truncated for the log.
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates Data was cut at the capture limit.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// LaneOp is a lane-pool operation kind.
type LaneOp uint8

const (
	// LaneAcquire records a lane handed to a caller.
	LaneAcquire LaneOp = 0
	// LaneRelease records a lane returned to the pool.
	LaneRelease LaneOp = 1
	// LaneBlocked records an acquire that had to wait for its slot.
	LaneBlocked LaneOp = 2
	// LaneInsert records a lane appended to the rotation.
	LaneInsert LaneOp = 3
	// LaneRemove records a lane detached from the rotation.
	LaneRemove LaneOp = 4
)

// String returns the operation name.
func (op LaneOp) String() string {
	switch op {
	case LaneAcquire:
		return "ACQUIRE"
	case LaneRelease:
		return "RELEASE"
	case LaneBlocked:
		return "BLOCKED"
	case LaneInsert:
		return "INSERT"
	case LaneRemove:
		return "REMOVE"
	default:
		return "UNKNOWN"
	}
}

// LaneEvent describes one lane-pool state change.
type LaneEvent struct {
	// Op is the pool operation.
	Op LaneOp `cbor:"1,keyasint"`

	// Slot is the rotation slot involved.
	Slot int `cbor:"2,keyasint"`

	// Ticket is the rotation ticket, for acquire events.
	Ticket uint64 `cbor:"3,keyasint,omitempty"`

	// PoolSize is the lane count after the operation.
	PoolSize int `cbor:"4,keyasint"`
}

// ErrorEventData describes an error captured at any layer.
type ErrorEventData struct {
	// Message is the error text.
	Message string `cbor:"1,keyasint"`

	// Context describes what the component was doing.
	Context string `cbor:"2,keyasint,omitempty"`
}
