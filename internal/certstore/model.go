// Package certstore resolves a partnership's certificate aliases to
// signing/decryption identities, backed by SQLite. It is a concrete
// reference implementation of the certificate-store collaborator the
// specification treats as external: Sender and the pipeline depend only on
// the Provider interface, never on this package directly.
package certstore

import "time"

// Record is one stored identity: a certificate, optionally paired with a
// private key (for sender signing/decryption aliases) and its chain.
type Record struct {
	Alias        string
	Subject      string
	Issuer       string
	SerialNumber string
	Fingerprint  string
	NotBefore    time.Time
	NotAfter     time.Time
	CertPEM      []byte // leaf + chain, concatenated PEM blocks
	KeyPEM       []byte // PKCS#8 private key PEM; nil for receiver-only aliases
	CreatedAt    time.Time
}

// IsExpired reports whether this record's certificate has expired.
func (r *Record) IsExpired() bool {
	return time.Now().After(r.NotAfter)
}
