package mdn

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/htmlindex"
)

// decodeExplanation converts an MDN human-readable text part to UTF-8: if
// declaredCharset is empty/UTF-8 and the content is already valid UTF-8,
// it is returned as-is; otherwise the declared charset (or an
// auto-detected one) is used to decode.
func decodeExplanation(content []byte, declaredCharset string) string {
	if declaredCharset == "" || strings.EqualFold(declaredCharset, "utf-8") || strings.EqualFold(declaredCharset, "us-ascii") {
		if utf8.Valid(content) {
			return string(content)
		}
		enc, _, _ := charset.DetermineEncoding(content, "text/plain")
		decoded, err := enc.NewDecoder().Bytes(content)
		if err != nil {
			return string(content)
		}
		return string(decoded)
	}

	enc, err := htmlindex.Get(declaredCharset)
	if err != nil {
		return string(content)
	}
	decoded, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		return string(content)
	}
	return string(decoded)
}
