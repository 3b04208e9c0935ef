package as2crypto_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/evolvent-systems/as2send/internal/as2crypto"
	"github.com/stretchr/testify/require"
)

// selfSignedIdentity builds a throwaway RSA key + self-signed certificate
// for test use, grounded on this codebase's pkcs12/certstore import path
// (the shape the resulting identity needs: a leaf certificate plus a
// crypto.Signer).
func selfSignedIdentity(t *testing.T, commonName string) as2crypto.SignerIdentity {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: commonName},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return as2crypto.SignerIdentity{Cert: cert, Key: key}
}
