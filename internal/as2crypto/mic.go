package as2crypto

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"strings"

	"github.com/evolvent-systems/as2send/internal/as2model"
)

// micHashes maps both RFC 3851 (sha1, sha256, ...) and RFC 5751
// (sha-1, sha-256, ...) algorithm-name spellings to a hash constructor, so
// callers can name either and ComputeMIC picks the right digest.
var micHashes = map[string]func() hash.Hash{
	"md5":     md5.New,
	"sha1":    sha1.New,
	"sha-1":   sha1.New,
	"sha256":  sha256.New,
	"sha-256": sha256.New,
	"sha384":  sha512.New384,
	"sha-384": sha512.New384,
	"sha512":  sha512.New,
	"sha-512": sha512.New,
}

// ComputeMIC digests part per §4.2: when includeHeaders is true, the part's
// MIME headers (Content-Type and Content-Transfer-Encoding first, then any
// others it carries) are hashed along with the content, exactly
// the same serialization Sign uses for its signature input, so that a
// signed message's MIC covers the same bytes that were signed.
func (p *pkcs7Provider) ComputeMIC(part *as2model.Part, includeHeaders bool, algorithm string) (as2model.MIC, error) {
	if part == nil {
		return as2model.MIC{}, fmt.Errorf("compute mic: nil part")
	}
	alg := strings.ToLower(strings.TrimSpace(algorithm))
	newHash, ok := micHashes[alg]
	if !ok {
		return as2model.MIC{}, fmt.Errorf("compute mic: unsupported algorithm %q", algorithm)
	}

	var input []byte
	if includeHeaders {
		input = serializePart(part)
	} else {
		input = part.Content
	}

	h := newHash()
	h.Write(input)

	return as2model.MIC{Digest: h.Sum(nil), Algorithm: algorithm}, nil
}
