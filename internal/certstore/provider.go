package certstore

import (
	"crypto/x509"
	"fmt"

	"github.com/evolvent-systems/as2send/internal/as2crypto"
)

// Provider adapts Store to as2crypto.CertificateProvider, the interface
// Sender and SecurityPipeline actually depend on.
type Provider struct {
	store *Store
}

// NewProvider wraps store as an as2crypto.CertificateProvider.
func NewProvider(store *Store) *Provider {
	return &Provider{store: store}
}

// SignerIdentity resolves alias to a signing identity, requiring a stored
// private key.
func (p *Provider) SignerIdentity(alias string) (as2crypto.SignerIdentity, error) {
	return p.store.SignerIdentity(alias)
}

// Certificate resolves alias to its leaf certificate only.
func (p *Provider) Certificate(alias string) (*x509.Certificate, error) {
	r, err := p.store.Certificate(alias)
	if err != nil {
		return nil, err
	}
	certs, err := as2crypto.ParseCertChainFromPEM(r.CertPEM)
	if err != nil {
		return nil, fmt.Errorf("certstore: alias %q: %w", alias, err)
	}
	return certs[0], nil
}

var _ as2crypto.CertificateProvider = (*Provider)(nil)
