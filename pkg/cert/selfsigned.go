package cert

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"net"
	"time"
)

// PartyIdentity is a freshly generated self-signed certificate and
// private key for one party. The secure transport trusts every party
// certificate as a root, so self-signed material is enough for a
// closed consortium (and for tests).
type PartyIdentity struct {
	Certificate *x509.Certificate
	PrivateKey  *ecdsa.PrivateKey
}

// GenerateSelfSigned creates a self-signed P-256 certificate for the
// given party, valid for the given duration and the loopback plus the
// provided hostnames.
func GenerateSelfSigned(partyID int, hostnames []string, validity time.Duration) (*PartyIdentity, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("generate serial: %w", err)
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			CommonName: fmt.Sprintf("party-%d", partyID),
		},
		NotBefore:             now.Add(-1 * time.Hour),
		NotAfter:              now.Add(validity),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		DNSNames:              append([]string{"localhost"}, hostnames...),
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificateRejected, err)
	}

	return &PartyIdentity{Certificate: cert, PrivateKey: key}, nil
}

// GenerateRoster creates one self-signed identity per party, ordered
// by party id.
func GenerateRoster(parties int, validity time.Duration) ([]*PartyIdentity, error) {
	roster := make([]*PartyIdentity, parties)
	for p := range roster {
		id, err := GenerateSelfSigned(p, nil, validity)
		if err != nil {
			return nil, err
		}
		roster[p] = id
	}
	return roster, nil
}
