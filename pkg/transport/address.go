package transport

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Address parsing errors.
var (
	// ErrInvalidAddressFormat indicates the address is not "hostname:port".
	ErrInvalidAddressFormat = errors.New("invalid address format, expected hostname:port")

	// ErrInvalidPort indicates the port is not a valid uint16.
	ErrInvalidPort = errors.New("invalid port")
)

// Address is a network address as hostname and port. The hostname is
// DNS-resolved when dialing.
type Address struct {
	Hostname string
	Port     uint16
}

// NewAddress constructs an Address.
func NewAddress(hostname string, port uint16) Address {
	return Address{Hostname: hostname, Port: port}
}

// ParseAddress parses "hostname:port" into an Address.
func ParseAddress(s string) (Address, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil || host == "" {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddressFormat, s)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidPort, portStr)
	}
	return Address{Hostname: host, Port: uint16(port)}, nil
}

// String returns the address as "hostname:port".
func (a Address) String() string {
	return net.JoinHostPort(a.Hostname, strconv.Itoa(int(a.Port)))
}

// MarshalYAML encodes the address as a "hostname:port" scalar.
func (a Address) MarshalYAML() (any, error) {
	return a.String(), nil
}

// UnmarshalYAML decodes a "hostname:port" scalar.
func (a *Address) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseAddress(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
