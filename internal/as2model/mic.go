package as2model

import (
	"bytes"
	"encoding/base64"
	"fmt"
)

// MIC is a Message Integrity Check: a digest paired with the algorithm
// identifier used to compute it. Equality is byte-wise on Digest AND
// identical (case-sensitive) on Algorithm.
type MIC struct {
	Digest    []byte
	Algorithm string
}

// Equal reports whether m and other carry the same digest bytes and the
// same algorithm identifier.
func (m MIC) Equal(other MIC) bool {
	return bytes.Equal(m.Digest, other.Digest) && m.Algorithm == other.Algorithm
}

// String renders the AS2 wire form: base64(digest) , algorithm-id.
func (m MIC) String() string {
	return fmt.Sprintf("%s, %s", base64.StdEncoding.EncodeToString(m.Digest), m.Algorithm)
}

// IsZero reports whether this MIC carries no digest.
func (m MIC) IsZero() bool {
	return len(m.Digest) == 0
}
