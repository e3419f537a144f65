package transport

// NullNetwork is a stub transport: sends succeed and do nothing,
// receives return an empty payload immediately. It exercises
// compute-only code paths without real peers.
type NullNetwork struct{}

// NewNullNetworks builds lanes stub transports.
func NewNullNetworks(lanes int) []NullNetwork {
	return make([]NullNetwork, lanes)
}

// ID returns 0; a stub has no real identity.
func (NullNetwork) ID() int { return 0 }

// Send discards the data.
func (NullNetwork) Send(int, []byte) error { return nil }

// Recv returns an empty payload.
func (NullNetwork) Recv(int) ([]byte, error) { return []byte{}, nil }
