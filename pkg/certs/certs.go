// Package certs provides the TLS material for the focusws listener: either
// an ephemeral self-signed chain or a PEM key pair loaded from disk.
package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"net"
	"time"
)

// validity of generated certificates
const validity = 365 * 24 * time.Hour

// SelfSigned creates a throwaway CA and a server certificate signed by it,
// valid for the given host names and IP addresses. The CA pool is returned
// so that tests and local clients can trust the server.
func SelfSigned(hosts []string) (*x509.CertPool, tls.Certificate, error) {
	var out tls.Certificate

	caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, out, fmt.Errorf("generating CA key: %w", err)
	}

	now := time.Now()
	caTmpl := &x509.Certificate{
		SerialNumber:          serial(),
		Subject:               pkix.Name{CommonName: "focusws ephemeral CA", Organization: []string{"BrainBuddy"}},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(validity),
		BasicConstraintsValid: true,
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTmpl, caTmpl, &caKey.PublicKey, caKey)
	if err != nil {
		return nil, out, fmt.Errorf("creating CA certificate: %w", err)
	}
	caCert, err := x509.ParseCertificate(caDER)
	if err != nil {
		return nil, out, fmt.Errorf("x509.ParseCertificate(ca): %w", err)
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, out, fmt.Errorf("generating server key: %w", err)
	}

	tmpl := &x509.Certificate{
		SerialNumber: serial(),
		Subject:      pkix.Name{CommonName: "focusws"},
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(validity),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			tmpl.IPAddresses = append(tmpl.IPAddresses, ip)
		} else if h != "" {
			tmpl.DNSNames = append(tmpl.DNSNames, h)
		}
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, caCert, &key.PublicKey, caKey)
	if err != nil {
		return nil, out, fmt.Errorf("creating server certificate: %w", err)
	}

	pool := x509.NewCertPool()
	pool.AddCert(caCert)

	out = tls.Certificate{
		Certificate: [][]byte{der, caDER},
		PrivateKey:  key,
	}
	return pool, out, nil
}

// DefaultHosts are the names an ephemeral certificate is issued for when
// the listener binds all interfaces.
func DefaultHosts(host string) []string {
	if host != "" {
		return []string{host}
	}
	return []string{"localhost", "127.0.0.1", "::1"}
}

// Load reads a PEM certificate and key from disk.
func Load(certFile, keyFile string) (tls.Certificate, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return cert, fmt.Errorf("tls.LoadX509KeyPair(%s, %s): %w", certFile, keyFile, err)
	}
	return cert, nil
}

// ServerConfig wraps cert into a TLS server configuration.
func ServerConfig(cert tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
}

func serial() *big.Int {
	limit := new(big.Int).Lsh(big.NewInt(1), 62)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return big.NewInt(time.Now().UnixNano())
	}
	return n
}
