// Package mdn implements MdnReceiver (§4.5): parsing, verifying, and
// classifying a synchronous or asynchronous MDN reply.
package mdn

import (
	"bytes"
	"crypto/x509"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/textproto"

	gomessage "github.com/emersion/go-message"

	"github.com/evolvent-systems/as2send/internal/as2crypto"
	"github.com/evolvent-systems/as2send/internal/as2model"
	"github.com/rs/zerolog"
)

// MICHandler is invoked on MIC comparison outcome, matching §4.5 step 8's
// onMICMatch/onMICMismatch contract.
type MICHandler interface {
	OnMICMatch(msg *as2model.Message, returned as2model.MIC)
	OnMICMismatch(msg *as2model.Message, original, returned as2model.MIC)
}

// VerificationCertConsumer is invoked with the certificate that actually
// verified an MDN's signature, if one is registered (§4.5 step 6).
type VerificationCertConsumer func(cert *x509.Certificate)

// Receiver implements MdnReceiver.
type Receiver struct {
	crypto as2crypto.Provider
	certs  as2crypto.CertificateProvider
	log    zerolog.Logger

	mic      MICHandler
	onVerify VerificationCertConsumer
}

// New builds a Receiver.
func New(crypto as2crypto.Provider, certs as2crypto.CertificateProvider, mic MICHandler, onVerify VerificationCertConsumer, log zerolog.Logger) *Receiver {
	return &Receiver{crypto: crypto, certs: certs, mic: mic, onVerify: onVerify, log: log}
}

// Receive implements §4.5 steps 4-9 on an already-read response: parse the
// MIME part, verify the signature if present, extract disposition and MIC,
// compare MICs, and classify the disposition.
func (r *Receiver) Receive(msg *as2model.Message, respHeader http.Header, body []byte, originalMIC as2model.MIC) (*as2model.MDN, error) {
	mdnHeaders := make(textproto.MIMEHeader)
	for k, vs := range respHeader {
		for _, v := range vs {
			mdnHeaders.Add(k, v)
		}
	}

	part := &as2model.Part{Headers: mdnHeaders, Content: body}
	ct := respHeader.Get("Content-Type")

	mdn := &as2model.MDN{Headers: mdnHeaders, Body: body}

	var verifiedSignerAlias string
	if mediaType, _, err := mime.ParseMediaType(ct); err == nil && mediaType == "multipart/signed" {
		expectedCert, certErr := r.expectedSigner(msg)
		var cert *x509.Certificate
		var verifyErr error
		if certErr == nil {
			cert, verifyErr = r.crypto.VerifySigned(part, expectedCert)
		} else {
			cert, verifyErr = r.crypto.VerifySigned(part, nil)
		}
		if verifyErr != nil {
			return nil, &as2model.MdnVerifyError{MessageID: msg.MessageID, Reason: "signature verification failed", Err: verifyErr}
		}
		if r.onVerify != nil {
			r.onVerify(cert)
		}
		verifiedSignerAlias = cert.Subject.String()

		entity, err := gomessage.Read(entityReader(mdnHeaders, body))
		if err != nil {
			return nil, &as2model.MdnVerifyError{MessageID: msg.MessageID, Reason: "parse signed mdn body", Err: err}
		}
		plain, explanation, err := extractReport(entity)
		if err != nil {
			return nil, &as2model.MdnVerifyError{MessageID: msg.MessageID, Reason: "extract disposition-notification report", Err: err}
		}
		fields := machineFields(plain)
		mdn.Disposition = parseDisposition(fields)
		mdn.MIC = parseReceivedMIC(fields)
		mdn.Explanation = explanation
	} else {
		entity, err := gomessage.Read(entityReader(mdnHeaders, body))
		if err != nil {
			return nil, fmt.Errorf("mdn: parse body: %w", err)
		}
		plain, explanation, err := extractReport(entity)
		if err != nil {
			return nil, fmt.Errorf("mdn: extract disposition-notification report: %w", err)
		}
		fields := machineFields(plain)
		mdn.Disposition = parseDisposition(fields)
		mdn.MIC = parseReceivedMIC(fields)
		mdn.Explanation = explanation
	}
	_ = verifiedSignerAlias

	r.compareMIC(msg, originalMIC, mdn)

	switch mdn.Category() {
	case as2model.DispositionError, as2model.DispositionFailed:
		return mdn, &as2model.DispositionErrorType{MessageID: msg.MessageID, Disposition: mdn.Disposition, Category: mdn.Category()}
	case as2model.DispositionWarning:
		r.log.Warn().Str("message-id", msg.MessageID).Str("disposition", mdn.Disposition).Msg("mdn carried a warning disposition")
		return mdn, nil
	default:
		return mdn, nil
	}
}

// entityReader reconstructs the RFC 5322-style header-block-then-body
// stream go-message.Read expects, since the MDN's Content-Type (and any
// other MIME headers describing the body, e.g. boundary/protocol
// parameters) arrive as HTTP response headers, never duplicated inside the
// response body itself.
func entityReader(headers textproto.MIMEHeader, body []byte) io.Reader {
	var buf bytes.Buffer
	for key, values := range headers {
		for _, v := range values {
			fmt.Fprintf(&buf, "%s: %s\r\n", key, v)
		}
	}
	buf.WriteString("\r\n")
	buf.Write(body)
	return &buf
}

// expectedSigner resolves the certificate that should have signed the MDN:
// the MDN is sent back by the receiver, so the cross-mapped alias is the
// partnership's receiver certificate alias (§4.5 step 5).
func (r *Receiver) expectedSigner(msg *as2model.Message) (*x509.Certificate, error) {
	alias := msg.Partnership.ReceiverCertAlias
	if alias == "" {
		return nil, fmt.Errorf("no receiver certificate alias configured")
	}
	return r.certs.Certificate(alias)
}

func (r *Receiver) compareMIC(msg *as2model.Message, original as2model.MIC, mdn *as2model.MDN) {
	if r.mic == nil || mdn.MIC == nil {
		if r.mic != nil && mdn.MIC == nil && !original.IsZero() {
			r.mic.OnMICMismatch(msg, original, as2model.MIC{})
		}
		return
	}
	if original.Equal(*mdn.MIC) {
		r.mic.OnMICMatch(msg, *mdn.MIC)
	} else {
		r.mic.OnMICMismatch(msg, original, *mdn.MIC)
	}
}

// extractReport walks entity's parts (recursing into nested multiparts) to
// find the message/disposition-notification machine-readable part and the
// text/plain human-readable explanation.
func extractReport(entity *gomessage.Entity) (report []byte, explanation string, err error) {
	mr := entity.MultipartReader()
	if mr == nil {
		ct, params, _ := mime.ParseMediaType(entity.Header.Get("Content-Type"))
		content, readErr := io.ReadAll(entity.Body)
		if readErr != nil {
			return nil, "", readErr
		}
		if ct == "message/disposition-notification" {
			return content, "", nil
		}
		return nil, decodeExplanation(content, params["charset"]), nil
	}

	for {
		part, nextErr := mr.NextPart()
		if nextErr == io.EOF {
			break
		}
		if nextErr != nil {
			return nil, "", nextErr
		}
		ct, params, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))
		content, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			return nil, "", readErr
		}
		switch ct {
		case "message/disposition-notification":
			report = content
		case "text/plain":
			if explanation == "" {
				explanation = decodeExplanation(content, params["charset"])
			}
		default:
			if nestedMr := part.MultipartReader(); nestedMr != nil {
				nestedReport, nestedExplanation, nestedErr := extractReport(part)
				if nestedErr == nil {
					if len(nestedReport) > 0 {
						report = nestedReport
					}
					if explanation == "" {
						explanation = nestedExplanation
					}
				}
			}
		}
	}
	if report == nil {
		return nil, explanation, fmt.Errorf("no message/disposition-notification part found")
	}
	return report, explanation, nil
}
