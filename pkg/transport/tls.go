package transport

import (
	"crypto"
	"crypto/tls"
	"crypto/x509"
	"fmt"
)

// TLS constants for the secure lane transport.
const (
	// ALPNProtocol is the ALPN identifier negotiated on every session.
	ALPNProtocol = "mpcnet/1"
)

// newPeerServerTLSConfig builds the accept-side TLS configuration for a
// party. TLS 1.3 only, no fallback. The server presents the party's own
// certificate; clients authenticate the server against the shared set
// of party certificates, so client certificates are not requested
// (the lane header identifies the origin party).
func newPeerServerTLSConfig(own tls.Certificate) *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS13,
		MaxVersion: tls.VersionTLS13,

		Certificates: []tls.Certificate{own},

		NextProtos: []string{ALPNProtocol},

		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},

		SessionTicketsDisabled: true,
	}
}

// newPeerClientTLSConfig builds the dial-side TLS configuration.
// The client verifies the server certificate against the pool of all
// party certificates and the expected server name.
func newPeerClientTLSConfig(own tls.Certificate, roots *x509.CertPool, serverName string) *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS13,
		MaxVersion: tls.VersionTLS13,

		Certificates: []tls.Certificate{own},

		RootCAs:    roots,
		ServerName: serverName,

		NextProtos: []string{ALPNProtocol},

		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},

		SessionTicketsDisabled: true,
	}
}

// ownCertificate pairs this party's certificate with its private key,
// rejecting key material that does not belong to the certificate.
func ownCertificate(id int, certs []*x509.Certificate, key crypto.PrivateKey) (tls.Certificate, error) {
	if id < 0 || id >= len(certs) || certs[id] == nil {
		return tls.Certificate{}, fmt.Errorf("no certificate for party %d", id)
	}
	signer, ok := key.(crypto.Signer)
	if !ok {
		return tls.Certificate{}, fmt.Errorf("private key for party %d cannot sign", id)
	}
	pub, ok := certs[id].PublicKey.(interface{ Equal(crypto.PublicKey) bool })
	if !ok || !pub.Equal(signer.Public()) {
		return tls.Certificate{}, fmt.Errorf("private key does not match certificate for party %d", id)
	}
	return tls.Certificate{
		Certificate: [][]byte{certs[id].Raw},
		PrivateKey:  key,
		Leaf:        certs[id],
	}, nil
}

// partyCertPool assembles the trust pool from every party certificate.
func partyCertPool(certs []*x509.Certificate) *x509.CertPool {
	pool := x509.NewCertPool()
	for _, c := range certs {
		if c != nil {
			pool.AddCert(c)
		}
	}
	return pool
}
