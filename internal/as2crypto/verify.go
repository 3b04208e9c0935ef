package as2crypto

import (
	"bytes"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"github.com/evolvent-systems/as2send/internal/as2model"
	"go.mozilla.org/pkcs7"
)

// VerifySigned verifies a multipart/signed part's detached CMS signature.
// The boundary-delimited
// signed content is sliced out of the raw bytes directly (RFC 2046 §5.1),
// never re-parsed and re-serialized, since any reordering of the first
// part's headers would invalidate the signature.
//
// If trustedSigner is non-nil, verification uses it explicitly (AS2
// partnerships pin a specific receiver certificate by alias rather than
// relying on a public CA chain); otherwise the certificate embedded in the
// PKCS#7 structure is used and returned so the caller can pin it later.
func (p *pkcs7Provider) VerifySigned(part *as2model.Part, trustedSigner *x509.Certificate) (*x509.Certificate, error) {
	if part == nil {
		return nil, fmt.Errorf("verify: nil part")
	}
	mediaType, params, err := mime.ParseMediaType(part.Headers.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("verify: parse content-type: %w", err)
	}
	if !strings.EqualFold(mediaType, "multipart/signed") {
		return nil, fmt.Errorf("verify: not multipart/signed (got %s)", mediaType)
	}

	boundary := params["boundary"]
	if boundary == "" {
		return nil, fmt.Errorf("verify: missing boundary parameter")
	}

	body := part.Content
	boundaryLine := []byte("--" + boundary)

	firstIdx := bytes.Index(body, boundaryLine)
	if firstIdx == -1 {
		return nil, fmt.Errorf("verify: cannot find opening boundary")
	}
	contentStart := firstIdx + len(boundaryLine)
	if contentStart+2 <= len(body) && body[contentStart] == '\r' && body[contentStart+1] == '\n' {
		contentStart += 2
	} else if contentStart < len(body) && body[contentStart] == '\n' {
		contentStart++
	}

	rest := body[contentStart:]
	delim := []byte("\r\n--" + boundary)
	endIdx := bytes.Index(rest, delim)
	if endIdx == -1 {
		delim = []byte("\n--" + boundary)
		endIdx = bytes.Index(rest, delim)
		if endIdx == -1 {
			return nil, fmt.Errorf("verify: cannot find closing boundary for signed part")
		}
	}
	signedContent := rest[:endIdx]

	reader := multipart.NewReader(bytes.NewReader(body), boundary)
	if first, err := reader.NextPart(); err == nil {
		io.Copy(io.Discard, first)
	}
	sigPart, err := reader.NextPart()
	if err != nil {
		return nil, fmt.Errorf("verify: read signature part: %w", err)
	}
	sigBytes, err := io.ReadAll(sigPart)
	if err != nil {
		return nil, fmt.Errorf("verify: read signature bytes: %w", err)
	}

	p7, err := pkcs7.Parse(sigBytes)
	if err != nil {
		decoded, decErr := base64.StdEncoding.DecodeString(stripCRLF(sigBytes))
		if decErr != nil {
			return nil, fmt.Errorf("verify: parse pkcs7 signature: %w", err)
		}
		p7, err = pkcs7.Parse(decoded)
		if err != nil {
			return nil, fmt.Errorf("verify: parse pkcs7 signature after base64 decode: %w", err)
		}
	}
	p7.Content = signedContent

	err = p7.Verify()
	signerCert := findSigner(p7)

	if trustedSigner != nil {
		// AS2 trust is established by the partnership's pinned certificate
		// alias, not a public CA chain: p7.Verify() will commonly fail
		// with an "unknown authority" style error for a self-issued
		// partner certificate even though the cryptographic signature is
		// valid. Accept iff the embedded signer matches the pinned
		// certificate exactly, regardless of that chain-trust failure.
		if signerCert == nil || !signerCert.Equal(trustedSigner) {
			return nil, fmt.Errorf("verify: signer certificate does not match partnership-pinned alias")
		}
		if err != nil && !isUntrustedCAError(err) {
			return nil, fmt.Errorf("verify: signature verification failed: %w", err)
		}
		return trustedSigner, nil
	}

	if err != nil {
		return nil, fmt.Errorf("verify: signature verification failed: %w", err)
	}
	return signerCert, nil
}

func isUntrustedCAError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "certificate signed by unknown authority") || strings.Contains(msg, "x509: certificate")
}

func findSigner(p7 *pkcs7.PKCS7) *x509.Certificate {
	for _, cert := range p7.Certificates {
		return cert
	}
	return nil
}
