package as2crypto

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"fmt"
	"net/textproto"

	"github.com/evolvent-systems/as2send/internal/as2model"
)

// pkcs7Provider.Compress implements RFC 5402 compression: the part's
// content plus its headers are deflated (zlib, RFC 1950/1951) and wrapped
// as application/pkcs7-mime; smime-type=compressed-data, the same
// enveloping shape as EnvelopedData uses (base64, 76-column wrap).
func (p *pkcs7Provider) Compress(part *as2model.Part) (*as2model.Part, error) {
	if part == nil {
		return nil, fmt.Errorf("compress: nil part")
	}

	var inner bytes.Buffer
	order := []string{"Content-Type", "Content-Transfer-Encoding"}
	writeHeaders(&inner, part.Headers, order)
	inner.Write(part.Content)

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(inner.Bytes()); err != nil {
		return nil, fmt.Errorf("compress: deflate: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress: deflate close: %w", err)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Type", `application/pkcs7-mime; smime-type=compressed-data; name="smime.p7z"`)
	h.Set("Content-Transfer-Encoding", "base64")
	h.Set("Content-Disposition", `attachment; filename="smime.p7z"`)

	var out bytes.Buffer
	wrapBase64(&out, base64.StdEncoding.EncodeToString(compressed.Bytes()))

	return &as2model.Part{Headers: h, Content: out.Bytes()}, nil
}

// Decompress reverses Compress: base64-decode then zlib-inflate, yielding
// the inner headers+content bytes that were originally deflated. It is not
// part of the CryptoProvider contract; in this repository only the tests
// call it.
func Decompress(content []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(stripCRLF(content))
	if err != nil {
		return nil, fmt.Errorf("decompress: base64 decode: %w", err)
	}
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decompress: zlib reader: %w", err)
	}
	defer zr.Close()
	var out bytes.Buffer
	if _, err := out.ReadFrom(zr); err != nil {
		return nil, fmt.Errorf("decompress: inflate: %w", err)
	}
	return out.Bytes(), nil
}

func stripCRLF(b []byte) string {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c == '\r' || c == '\n' {
			continue
		}
		out = append(out, c)
	}
	return string(out)
}
