package as2model

import "net/textproto"

// Part is a MIME body part: a small header set plus raw content. The
// SecurityPipeline replaces a Message's Part wholesale at each pipeline
// stage (compress, sign, encrypt) rather than mutating Content in place,
// since each stage produces a structurally different MIME entity
// (multipart/signed, application/pkcs7-mime, ...).
type Part struct {
	Headers textproto.MIMEHeader
	Content []byte
}

// NewPart builds a Part with a single Content-Type header.
func NewPart(contentType string, content []byte) *Part {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Type", contentType)
	return &Part{Headers: h, Content: content}
}

// ContentType returns the part's Content-Type header, or "" if unset.
func (p *Part) ContentType() string {
	if p == nil {
		return ""
	}
	return p.Headers.Get("Content-Type")
}
