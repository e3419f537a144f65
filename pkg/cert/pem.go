package cert

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// PEM encoding/decoding errors.
var (
	// ErrInvalidPEM indicates the data is not the expected PEM block.
	ErrInvalidPEM = errors.New("invalid PEM data")

	// ErrCertificateRejected indicates certificate or key material
	// could not be parsed or does not belong together.
	ErrCertificateRejected = errors.New("certificate rejected")
)

// EncodeCertPEM encodes an X.509 certificate to PEM format.
func EncodeCertPEM(cert *x509.Certificate) []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: cert.Raw,
	})
}

// DecodeCertPEM decodes a PEM-encoded X.509 certificate.
func DecodeCertPEM(data []byte) (*x509.Certificate, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, ErrInvalidPEM
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificateRejected, err)
	}
	return cert, nil
}

// EncodeKeyPEM encodes an ECDSA private key to PEM format.
func EncodeKeyPEM(key *ecdsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{
		Type:  "EC PRIVATE KEY",
		Bytes: der,
	}), nil
}

// DecodeKeyPEM decodes a PEM-encoded ECDSA private key.
func DecodeKeyPEM(data []byte) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "EC PRIVATE KEY" {
		return nil, ErrInvalidPEM
	}
	key, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificateRejected, err)
	}
	return key, nil
}

// LoadCertificate reads one PEM certificate from a file.
func LoadCertificate(path string) (*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeCertPEM(data)
}

// LoadCertificates reads one PEM certificate per party, ordered by
// party id.
func LoadCertificates(paths []string) ([]*x509.Certificate, error) {
	certs := make([]*x509.Certificate, len(paths))
	for i, path := range paths {
		c, err := LoadCertificate(path)
		if err != nil {
			return nil, fmt.Errorf("party %d certificate %s: %w", i, path, err)
		}
		certs[i] = c
	}
	return certs, nil
}

// LoadPrivateKey reads a PEM-encoded ECDSA private key from a file.
func LoadPrivateKey(path string) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeKeyPEM(data)
}
