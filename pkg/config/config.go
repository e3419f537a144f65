package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mpcnet-protocol/mpcnet-go/pkg/cert"
	"github.com/mpcnet-protocol/mpcnet-go/pkg/transport"
)

// Configuration errors.
var (
	// ErrInvalidAddress indicates a bind or peer address is malformed.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidConfig indicates the configuration is structurally
	// unusable (bad party id, no lanes, missing key material).
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Kind selects the transport variant a session runs on.
type Kind string

// Transport variants.
const (
	KindTCP  Kind = "tcp"
	KindTLS  Kind = "tls"
	KindChan Kind = "chan"
	KindNull Kind = "null"
)

// Config describes one party's view of a protocol session.
type Config struct {
	// PartyID is this party's index into Peers.
	PartyID int `yaml:"party_id"`

	// Bind is the local listen address for establishment.
	Bind string `yaml:"bind"`

	// Peers lists every party's address, ordered by party id. The
	// entry at PartyID is this party's own advertised address.
	Peers []transport.Address `yaml:"peers"`

	// Lanes is the number of duplicate transport instances to build.
	Lanes int `yaml:"lanes"`

	// Transport selects the variant.
	Transport Kind `yaml:"transport"`

	// Certificates are PEM certificate files, one per party, ordered
	// by party id. Required for the tls variant.
	Certificates []string `yaml:"certificates,omitempty"`

	// PrivateKey is this party's PEM EC key file. Required for the
	// tls variant.
	PrivateKey string `yaml:"private_key,omitempty"`
}

// Parse parses a session config from YAML bytes and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load loads a session config from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Validate checks the config for structural problems.
func (c *Config) Validate() error {
	if c.Lanes < 1 {
		return fmt.Errorf("%w: lanes must be at least 1, got %d", ErrInvalidConfig, c.Lanes)
	}
	if c.PartyID < 0 || c.PartyID >= len(c.Peers) {
		return fmt.Errorf("%w: party_id %d out of range for %d peers", ErrInvalidConfig, c.PartyID, len(c.Peers))
	}
	switch c.Transport {
	case KindTCP, KindTLS:
		if c.Bind == "" {
			return fmt.Errorf("%w: bind address required for %s transport", ErrInvalidAddress, c.Transport)
		}
		if _, err := transport.ParseAddress(c.Bind); err != nil {
			return fmt.Errorf("%w: bind: %v", ErrInvalidAddress, err)
		}
	case KindChan, KindNull:
		// no addresses needed
	default:
		return fmt.Errorf("%w: unknown transport kind %q", ErrInvalidConfig, c.Transport)
	}
	if c.Transport == KindTLS {
		if len(c.Certificates) != len(c.Peers) {
			return fmt.Errorf("%w: need one certificate per party, got %d for %d parties",
				ErrInvalidConfig, len(c.Certificates), len(c.Peers))
		}
		if c.PrivateKey == "" {
			return fmt.Errorf("%w: private_key required for tls transport", ErrInvalidConfig)
		}
	}
	return nil
}

// BuildNetworks establishes this party's lanes according to the
// config. The chan variant cannot be built per party - it exists only
// in process, across all parties at once - so it is rejected here;
// construct it directly with transport.NewChanNetworks.
func BuildNetworks(cfg *Config) ([]transport.Network, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Transport {
	case KindTCP:
		nets, err := transport.NewTCPNetworks(cfg.PartyID, cfg.Bind, cfg.Peers, cfg.Lanes)
		if err != nil {
			return nil, err
		}
		out := make([]transport.Network, len(nets))
		for i, n := range nets {
			out[i] = n
		}
		return out, nil

	case KindTLS:
		certs, err := cert.LoadCertificates(cfg.Certificates)
		if err != nil {
			return nil, err
		}
		key, err := cert.LoadPrivateKey(cfg.PrivateKey)
		if err != nil {
			return nil, err
		}
		nets, err := transport.NewTLSNetworks(cfg.PartyID, cfg.Bind, cfg.Peers, certs, key, cfg.Lanes)
		if err != nil {
			return nil, err
		}
		out := make([]transport.Network, len(nets))
		for i, n := range nets {
			out[i] = n
		}
		return out, nil

	case KindNull:
		nets := transport.NewNullNetworks(cfg.Lanes)
		out := make([]transport.Network, len(nets))
		for i, n := range nets {
			out[i] = n
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: transport kind %q cannot be built per party", ErrInvalidConfig, cfg.Transport)
	}
}
