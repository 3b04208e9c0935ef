package certstore

import (
	"crypto"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	pkcs12 "software.sslmate.com/src/go-pkcs12"
)

// ImportPKCS12 decodes a PKCS#12 bundle (.p12/.pfx) into a Record ready to
// Save under a chosen alias.
func ImportPKCS12(alias string, data []byte, password string) (*Record, error) {
	privateKey, cert, caCerts, err := pkcs12.DecodeChain(data, password)
	if err != nil {
		return nil, fmt.Errorf("import pkcs12: %w", err)
	}

	signer, ok := privateKey.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("import pkcs12: private key does not implement crypto.Signer")
	}
	keyDER, err := x509.MarshalPKCS8PrivateKey(signer)
	if err != nil {
		return nil, fmt.Errorf("import pkcs12: marshal private key: %w", err)
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
	for _, ca := range caCerts {
		certPEM = append(certPEM, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: ca.Raw})...)
	}

	fingerprint := fmt.Sprintf("%x", sha256.Sum256(cert.Raw))

	return &Record{
		Alias:        alias,
		Subject:      cert.Subject.String(),
		Issuer:       cert.Issuer.String(),
		SerialNumber: cert.SerialNumber.String(),
		Fingerprint:  fingerprint,
		NotBefore:    cert.NotBefore,
		NotAfter:     cert.NotAfter,
		CertPEM:      certPEM,
		KeyPEM:       keyPEM,
	}, nil
}

// ImportCertificatePEM builds a receiver-only Record (no private key) from
// a bare PEM certificate file, for importing a trading partner's public
// certificate.
func ImportCertificatePEM(alias string, pemData []byte) (*Record, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, fmt.Errorf("import certificate: no PEM data found")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("import certificate: %w", err)
	}
	fingerprint := fmt.Sprintf("%x", sha256.Sum256(cert.Raw))
	return &Record{
		Alias:        alias,
		Subject:      cert.Subject.String(),
		Issuer:       cert.Issuer.String(),
		SerialNumber: cert.SerialNumber.String(),
		Fingerprint:  fingerprint,
		NotBefore:    cert.NotBefore,
		NotAfter:     cert.NotAfter,
		CertPEM:      pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw}),
	}, nil
}

func parsePrivateKey(keyPEM []byte) (crypto.Signer, error) {
	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil, fmt.Errorf("decode private key: no PEM data found")
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("private key does not implement crypto.Signer")
	}
	return signer, nil
}
