package as2crypto

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/textproto"

	"github.com/evolvent-systems/as2send/internal/as2model"
	"go.mozilla.org/pkcs7"
)

// Sign wraps part in a multipart/signed structure with a detached CMS
// signature. The first part's raw bytes (headers + blank line + content) are written manually
// rather than via a MIME multipart writer, because the signature covers
// those exact bytes and Go's textproto.MIMEHeader has unspecified map
// iteration order — any re-serialization risks producing different bytes
// than were actually signed.
func (p *pkcs7Provider) Sign(part *as2model.Part, identity SignerIdentity, micAlg string, micName string, includeCert bool) (*as2model.Part, error) {
	if part == nil {
		return nil, fmt.Errorf("sign: nil part")
	}
	if identity.Cert == nil || identity.Key == nil {
		return nil, fmt.Errorf("sign: no signer identity")
	}

	innerPartBytes := serializePart(part)

	signedData, err := pkcs7.NewSignedData(innerPartBytes)
	if err != nil {
		return nil, fmt.Errorf("sign: new signed data: %w", err)
	}
	if err := signedData.AddSigner(identity.Cert, identity.Key, pkcs7.SignerInfoConfig{}); err != nil {
		return nil, fmt.Errorf("sign: add signer: %w", err)
	}
	if includeCert {
		for _, ic := range identity.Chain {
			signedData.AddCertificate(ic)
		}
	}
	signedData.Detach()

	derSignature, err := signedData.Finish()
	if err != nil {
		return nil, fmt.Errorf("sign: finish: %w", err)
	}

	boundary := generateBoundary()
	var result bytes.Buffer

	result.WriteString("--" + boundary + "\r\n")
	result.Write(innerPartBytes)
	result.WriteString("\r\n")

	result.WriteString("--" + boundary + "\r\n")
	result.WriteString("Content-Type: application/pkcs7-signature; name=\"smime.p7s\"\r\n")
	result.WriteString("Content-Transfer-Encoding: base64\r\n")
	result.WriteString("Content-Disposition: attachment; filename=\"smime.p7s\"\r\n")
	result.WriteString("\r\n")
	wrapBase64(&result, base64.StdEncoding.EncodeToString(derSignature))

	result.WriteString("--" + boundary + "--\r\n")

	h := make(textproto.MIMEHeader)
	h.Set("Content-Type", fmt.Sprintf("multipart/signed; protocol=\"application/pkcs7-signature\"; micalg=%s; boundary=\"%s\"", micName, boundary))
	h.Set("MIME-Version", "1.0")

	return &as2model.Part{Headers: h, Content: result.Bytes()}, nil
}

// serializePart writes all of a part's headers (Content-Type and
// Content-Transfer-Encoding first, then any others the part carries)
// followed by a blank line and the content, exactly as the
// signature will be computed over. Callers needing the signed bytes for
// MIC computation must call this same function (see mic.go) so that the
// MIC input and the signature input are identical, per §4.2.
func serializePart(part *as2model.Part) []byte {
	var buf bytes.Buffer
	order := []string{"Content-Type", "Content-Transfer-Encoding"}
	writeHeaders(&buf, part.Headers, order)
	buf.Write(part.Content)
	return buf.Bytes()
}
