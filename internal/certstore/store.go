package certstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/evolvent-systems/as2send/internal/as2crypto"
	"github.com/evolvent-systems/as2send/internal/as2model"
	"github.com/evolvent-systems/as2send/internal/sqlitedb"
	"github.com/rs/zerolog"
)

const schema = `
CREATE TABLE IF NOT EXISTS certificate_aliases (
	alias         TEXT PRIMARY KEY,
	subject       TEXT NOT NULL,
	issuer        TEXT NOT NULL,
	serial_number TEXT NOT NULL,
	fingerprint   TEXT NOT NULL UNIQUE,
	not_before    DATETIME NOT NULL,
	not_after     DATETIME NOT NULL,
	cert_pem      BLOB NOT NULL,
	key_pem       BLOB,
	created_at    DATETIME NOT NULL
);
`

// Store is a SQLite-backed certificate alias store keyed by a flat
// partnership alias, since AS2 addresses identities by configured alias,
// not mailbox.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (creating if necessary) a certificate store at path.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := sqlitedb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("certstore: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("certstore: create schema: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Save upserts a record, keyed by alias with a uniqueness constraint on
// fingerprint to prevent the same certificate from being imported twice
// under different aliases.
func (s *Store) Save(r *Record) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO certificate_aliases (alias, subject, issuer, serial_number, fingerprint, not_before, not_after, cert_pem, key_pem, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(alias) DO UPDATE SET
			subject = excluded.subject,
			issuer = excluded.issuer,
			serial_number = excluded.serial_number,
			fingerprint = excluded.fingerprint,
			not_before = excluded.not_before,
			not_after = excluded.not_after,
			cert_pem = excluded.cert_pem,
			key_pem = excluded.key_pem`,
		r.Alias, r.Subject, r.Issuer, r.SerialNumber, r.Fingerprint,
		r.NotBefore, r.NotAfter, r.CertPEM, r.KeyPEM, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("certstore: save %q: %w", r.Alias, err)
	}
	return nil
}

// Get resolves alias to its stored record, or as2model.ErrCertificateNotFound.
func (s *Store) Get(alias string) (*Record, error) {
	r := &Record{Alias: alias}
	err := s.db.QueryRow(`
		SELECT subject, issuer, serial_number, fingerprint, not_before, not_after, cert_pem, key_pem, created_at
		FROM certificate_aliases WHERE alias = ?`, alias,
	).Scan(&r.Subject, &r.Issuer, &r.SerialNumber, &r.Fingerprint, &r.NotBefore, &r.NotAfter, &r.CertPEM, &r.KeyPEM, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, as2model.ErrCertificateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("certstore: get %q: %w", alias, err)
	}
	return r, nil
}

// Delete removes alias's record, if any.
func (s *Store) Delete(alias string) error {
	_, err := s.db.Exec("DELETE FROM certificate_aliases WHERE alias = ?", alias)
	if err != nil {
		return fmt.Errorf("certstore: delete %q: %w", alias, err)
	}
	return nil
}

// List returns every stored alias, most recently created first. CertPEM is
// not loaded; KeyPEM is, so callers can tell signing identities from
// certificate-only aliases.
func (s *Store) List() ([]*Record, error) {
	rows, err := s.db.Query(`
		SELECT alias, subject, issuer, serial_number, fingerprint, not_before, not_after, key_pem, created_at
		FROM certificate_aliases ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("certstore: list: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		r := &Record{}
		if err := rows.Scan(&r.Alias, &r.Subject, &r.Issuer, &r.SerialNumber, &r.Fingerprint, &r.NotBefore, &r.NotAfter, &r.KeyPEM, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("certstore: list: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SignerIdentity resolves alias to an as2crypto.SignerIdentity, requiring a
// stored private key (used for the sender's signing/decryption alias).
func (s *Store) SignerIdentity(alias string) (as2crypto.SignerIdentity, error) {
	r, err := s.Get(alias)
	if err != nil {
		return as2crypto.SignerIdentity{}, err
	}
	if len(r.KeyPEM) == 0 {
		return as2crypto.SignerIdentity{}, fmt.Errorf("certstore: alias %q has no private key", alias)
	}
	certs, err := as2crypto.ParseCertChainFromPEM(r.CertPEM)
	if err != nil {
		return as2crypto.SignerIdentity{}, fmt.Errorf("certstore: alias %q: %w", alias, err)
	}
	signer, err := parsePrivateKey(r.KeyPEM)
	if err != nil {
		return as2crypto.SignerIdentity{}, fmt.Errorf("certstore: alias %q: %w", alias, err)
	}
	identity := as2crypto.SignerIdentity{Cert: certs[0], Key: signer}
	if len(certs) > 1 {
		identity.Chain = certs[1:]
	}
	return identity, nil
}

// Certificate resolves alias to a bare certificate (used for the receiver's
// encryption/verification alias, which carries no private key).
func (s *Store) Certificate(alias string) (*Record, error) {
	return s.Get(alias)
}
