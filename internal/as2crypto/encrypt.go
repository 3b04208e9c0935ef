package as2crypto

import (
	"bytes"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"net/textproto"

	"github.com/evolvent-systems/as2send/internal/as2model"
	"go.mozilla.org/pkcs7"
)

// pkcs7.Encrypt reads its cipher from a package-level variable; setting it
// once here keeps Encrypt from writing shared state on every call.
func init() {
	pkcs7.ContentEncryptionAlgorithm = pkcs7.EncryptionAlgorithmAES256CBC
}

// Encrypt envelope-encrypts part to recipient using CMS EnvelopedData with
// AES-256-CBC content encryption.
func (p *pkcs7Provider) Encrypt(part *as2model.Part, recipient *x509.Certificate) (*as2model.Part, error) {
	if part == nil {
		return nil, fmt.Errorf("encrypt: nil part")
	}
	if recipient == nil {
		return nil, fmt.Errorf("encrypt: no recipient certificate")
	}

	innerContent := serializePart(part)

	encrypted, err := pkcs7.Encrypt(innerContent, []*x509.Certificate{recipient})
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Type", `application/pkcs7-mime; smime-type=enveloped-data; name="smime.p7m"`)
	h.Set("Content-Transfer-Encoding", "base64")
	h.Set("Content-Disposition", `attachment; filename="smime.p7m"`)

	var out bytes.Buffer
	wrapBase64(&out, base64.StdEncoding.EncodeToString(encrypted))

	return &as2model.Part{Headers: h, Content: out.Bytes()}, nil
}

// Decrypt opens a CMS EnvelopedData part using identity's private key.
func (p *pkcs7Provider) Decrypt(part *as2model.Part, identity SignerIdentity) (*as2model.Part, error) {
	if part == nil {
		return nil, fmt.Errorf("decrypt: nil part")
	}
	if identity.Cert == nil || identity.Key == nil {
		return nil, fmt.Errorf("decrypt: no recipient identity")
	}

	raw, err := base64.StdEncoding.DecodeString(stripCRLF(part.Content))
	if err != nil {
		return nil, fmt.Errorf("decrypt: base64 decode: %w", err)
	}

	p7, err := pkcs7.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("decrypt: parse pkcs7: %w", err)
	}

	decrypted, err := p7.Decrypt(identity.Cert, identity.Key)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}

	return parsePart(decrypted)
}

// parsePart splits raw headers+blank-line+content bytes (as produced by
// serializePart on the sending side) back into a Part.
func parsePart(raw []byte) (*as2model.Part, error) {
	headerEnd := bytes.Index(raw, []byte("\r\n\r\n"))
	bodyStart := headerEnd + 4
	if headerEnd == -1 {
		headerEnd = bytes.Index(raw, []byte("\n\n"))
		bodyStart = headerEnd + 2
	}
	if headerEnd == -1 {
		return &as2model.Part{Headers: make(textproto.MIMEHeader), Content: raw}, nil
	}

	h := make(textproto.MIMEHeader)
	for _, line := range bytes.Split(raw[:headerEnd], []byte("\n")) {
		line = bytes.TrimRight(line, "\r")
		if len(line) == 0 {
			continue
		}
		idx := bytes.IndexByte(line, ':')
		if idx == -1 {
			continue
		}
		name := string(bytes.TrimSpace(line[:idx]))
		value := string(bytes.TrimSpace(line[idx+1:]))
		h.Add(name, value)
	}

	return &as2model.Part{Headers: h, Content: raw[bodyStart:]}, nil
}
