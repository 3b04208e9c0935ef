package as2crypto

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// ParseCertificateFromPEM parses the first certificate from PEM-encoded data.
func ParseCertificateFromPEM(pemData []byte) (*x509.Certificate, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, fmt.Errorf("parse certificate: no PEM data found")
	}
	return x509.ParseCertificate(block.Bytes)
}

// ParseCertChainFromPEM parses every CERTIFICATE block in pemData in order,
// leaf first.
func ParseCertChainFromPEM(pemData []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	rest := pemData
	for len(rest) > 0 {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse certificate chain: %w", err)
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("parse certificate chain: no certificates found")
	}
	return certs, nil
}
