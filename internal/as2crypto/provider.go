// Package as2crypto implements the CryptoProvider: compression, signing,
// encryption, MIC computation, and their inverses, all built on the CMS
// SignedData/EnvelopedData primitives of go.mozilla.org/pkcs7.
package as2crypto

import (
	"crypto"
	"crypto/x509"

	"github.com/evolvent-systems/as2send/internal/as2model"
)

// SignerIdentity is the sender's signing certificate plus its private key,
// resolved by a certificate provider from the partnership's sender alias.
type SignerIdentity struct {
	Cert  *x509.Certificate
	Chain []*x509.Certificate // intermediates, cert excluded
	Key   crypto.Signer
}

// Provider is the CryptoProvider named in §2 of the specification: pure,
// no I/O, safe for concurrent use across Sender goroutines. Every method
// operates on an as2model.Part and returns a new one; none mutate in
// place, matching the "produces a transformed MIME body part" contract of
// SecurityPipeline.
type Provider interface {
	// Compress wraps part in application/pkcs7-mime; smime-type=compressed-data.
	Compress(part *as2model.Part) (*as2model.Part, error)

	// Sign wraps part in multipart/signed with a detached CMS signature.
	// micName is the RFC 3851 or RFC 5751 algorithm-name to advertise.
	Sign(part *as2model.Part, identity SignerIdentity, micAlg string, micName string, includeCert bool) (*as2model.Part, error)

	// Encrypt envelopes part to recipient using CMS EnvelopedData / AES-256-CBC.
	Encrypt(part *as2model.Part, recipient *x509.Certificate) (*as2model.Part, error)

	// ComputeMIC digests part's raw content (headers included per caller's
	// decision — see as2model.MIC and §4.2) using the named algorithm.
	ComputeMIC(part *as2model.Part, includeHeaders bool, algorithm string) (as2model.MIC, error)

	// VerifySigned verifies a multipart/signed part against the embedded or
	// supplied signer certificate, returning the certificate that verified.
	VerifySigned(part *as2model.Part, trustedSigner *x509.Certificate) (*x509.Certificate, error)

	// Decrypt opens a CMS EnvelopedData part using the given identity.
	Decrypt(part *as2model.Part, identity SignerIdentity) (*as2model.Part, error)
}

// CertificateProvider resolves partnership certificate aliases to
// signing/decryption identities or bare certificates. This is the
// external collaborator named in §1 ("certificate-store providers" are
// out of scope as an interface definition); internal/certstore ships a
// concrete SQLite-backed implementation, but Sender and SecurityPipeline
// depend only on this interface.
type CertificateProvider interface {
	// SignerIdentity resolves alias to a certificate+private-key pair,
	// used for the sender's signing alias.
	SignerIdentity(alias string) (SignerIdentity, error)

	// Certificate resolves alias to a bare certificate, used for the
	// receiver's encryption alias or for pinning an MDN's expected signer.
	Certificate(alias string) (*x509.Certificate, error)
}
