package as2crypto

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"net/textproto"
)

// generateBoundary creates a random MIME boundary string with enough
// entropy that collisions across concurrent sends are not a concern.
func generateBoundary() string {
	buf := make([]byte, 24)
	rand.Read(buf)
	return fmt.Sprintf("----=_as2_%x", buf)
}

// writeHeaders serializes the headers named in order first, in that order,
// then every remaining header in map iteration order (which is not
// defined), followed by a blank line.
func writeHeaders(buf *bytes.Buffer, h textproto.MIMEHeader, order []string) {
	written := make(map[string]bool, len(h))
	for _, k := range order {
		vs, ok := h[textproto.CanonicalMIMEHeaderKey(k)]
		if !ok {
			continue
		}
		for _, v := range vs {
			buf.WriteString(k + ": " + v + "\r\n")
		}
		written[textproto.CanonicalMIMEHeaderKey(k)] = true
	}
	for k, vs := range h {
		if written[k] {
			continue
		}
		for _, v := range vs {
			buf.WriteString(k + ": " + v + "\r\n")
		}
	}
	buf.WriteString("\r\n")
}

// wrapBase64 writes b64 with 76-character line wrapping per RFC 2045,
// matching the convention used throughout this codebase's S/MIME output.
func wrapBase64(buf *bytes.Buffer, b64 string) {
	for i := 0; i < len(b64); i += 76 {
		end := i + 76
		if end > len(b64) {
			end = len(b64)
		}
		buf.WriteString(b64[i:end] + "\r\n")
	}
}
