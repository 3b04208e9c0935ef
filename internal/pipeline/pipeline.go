// Package pipeline implements SecurityPipeline (§4.1): compress/sign/
// encrypt applied to a MIME body part in protocol-correct order.
package pipeline

import (
	"fmt"

	"github.com/evolvent-systems/as2send/internal/as2crypto"
	"github.com/evolvent-systems/as2send/internal/as2model"
	"github.com/rs/zerolog"
)

// Pipeline applies compression, signing, and encryption to a Message's
// body per partnership configuration, in the normative order fixed by
// §4.1: compress-before-sign (if configured) → sign → compress-after-sign
// (if compress configured and not before-sign) → encrypt.
type Pipeline struct {
	crypto as2crypto.Provider
	certs  as2crypto.CertificateProvider
	log    zerolog.Logger
}

// New builds a Pipeline over the given CryptoProvider and CertificateProvider.
func New(crypto as2crypto.Provider, certs as2crypto.CertificateProvider, log zerolog.Logger) *Pipeline {
	return &Pipeline{crypto: crypto, certs: certs, log: log}
}

// MicInputCallback is fired exactly once, at the moment the bytes that
// will be signed (or, if signing is disabled, the source bytes) are fixed
// — a single-use hook per §9's design note, never stored on Message.
type MicInputCallback func(part *as2model.Part)

// Secure runs msg.Body through the pipeline, updating msg.Headers'
// Content-Transfer-Encoding and msg.ContentType per the side effects named in
// §4.1, and returns the transformed part. onMicInput is invoked with the
// part whose bytes the MIC (and, if signing, the signature) must cover.
func (p *Pipeline) Secure(msg *as2model.Message, onMicInput MicInputCallback) (*as2model.Part, error) {
	part := msg.Body
	partnership := msg.Partnership

	signing := partnership.SigningAlgorithm != ""
	encrypting := partnership.EncryptionAlgorithm != ""
	compressing := partnership.CompressionType != ""

	if compressing && partnership.CompressBeforeSign {
		compressed, err := p.crypto.Compress(part)
		if err != nil {
			return nil, &as2model.CryptoError{MessageID: msg.MessageID, Op: "compress-before-sign", Err: err}
		}
		part = compressed
	}

	if onMicInput != nil {
		if signing {
			onMicInput(part)
		} else {
			onMicInput(msg.Body)
		}
	}

	if signing {
		identity, err := p.certs.SignerIdentity(partnership.SenderCertAlias)
		if err != nil {
			return nil, &as2model.ConfigError{MessageID: msg.MessageID, Reason: fmt.Sprintf("resolve sender signing identity %q: %v", partnership.SenderCertAlias, err)}
		}
		if !knownAlgorithm(partnership.SigningAlgorithm) {
			p.log.Warn().Str("message-id", msg.MessageID).Str("algorithm", partnership.SigningAlgorithm).Msg("unrecognized signing algorithm; advertising the default mic algorithm")
		}
		micName := micAlgorithmName(partnership)
		signed, err := p.crypto.Sign(part, identity, partnership.SigningAlgorithm, micName, partnership.IncludeCertificateInSignedContent)
		if err != nil {
			return nil, &as2model.CryptoError{MessageID: msg.MessageID, Op: "sign", Err: err}
		}
		part = signed
	}

	if compressing && !partnership.CompressBeforeSign {
		compressed, err := p.crypto.Compress(part)
		if err != nil {
			return nil, &as2model.CryptoError{MessageID: msg.MessageID, Op: "compress-after-sign", Err: err}
		}
		part = compressed
	}

	if encrypting {
		receiverCert, err := p.certs.Certificate(partnership.ReceiverCertAlias)
		if err != nil {
			return nil, &as2model.ConfigError{MessageID: msg.MessageID, Reason: fmt.Sprintf("resolve receiver certificate %q: %v", partnership.ReceiverCertAlias, err)}
		}
		encrypted, err := p.crypto.Encrypt(part, receiverCert)
		if err != nil {
			return nil, &as2model.CryptoError{MessageID: msg.MessageID, Op: "encrypt", Err: err}
		}
		part = encrypted
	}

	msg.Headers["Content-Transfer-Encoding"] = partnership.EffectiveCTE()
	if compressing && !signing && !encrypting {
		msg.ContentType = "application/octet-stream"
	} else {
		msg.ContentType = part.ContentType()
	}

	return part, nil
}

// micAlgorithmName picks the MIC algorithm-name spelling (RFC 3851 or
// RFC 5751) per the partnership's UseRFC3851MICNames flag, substituting
// the partnership's default if the configured signing algorithm is
// unrecognized (Secure logs a warning in that case), per §4.2.
func micAlgorithmName(p *as2model.Partnership) string {
	alg := p.SigningAlgorithm
	if alg == "" {
		return p.DefaultMICAlgorithm()
	}
	if !knownAlgorithm(alg) {
		return p.DefaultMICAlgorithm()
	}
	if p.UseRFC3851MICNames {
		return rfc3851Name(alg)
	}
	return rfc5751Name(alg)
}

func knownAlgorithm(alg string) bool {
	switch alg {
	case "md5", "sha1", "sha256", "sha384", "sha512":
		return true
	default:
		return false
	}
}

func rfc3851Name(alg string) string { return alg }

func rfc5751Name(alg string) string {
	switch alg {
	case "sha1":
		return "sha-1"
	case "sha256":
		return "sha-256"
	case "sha384":
		return "sha-384"
	case "sha512":
		return "sha-512"
	default:
		return alg
	}
}
