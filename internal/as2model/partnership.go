package as2model

// MdnMode selects how (or whether) an MDN receipt is requested.
type MdnMode string

const (
	MdnNone  MdnMode = "none"
	MdnSync  MdnMode = "sync"
	MdnAsync MdnMode = "async"
)

// Partnership is a read-only snapshot of the policy governing one exchange
// between two AS2 parties. Every Message carries a reference to one; it
// must never be mutated by anything downstream of construction.
type Partnership struct {
	SenderAS2ID   string
	ReceiverAS2ID string
	URL           string

	SigningAlgorithm    string // "", "sha1", "sha256", "sha384", "sha512"
	EncryptionAlgorithm string // "" = no encryption; any other value encrypts with AES-256-CBC (the name does not select a cipher)
	CompressionType     string // "", "zlib"
	CompressBeforeSign  bool

	MdnMode            MdnMode
	ReceiptDeliveryURL string
	MdnOptions         string
	DispositionNotificationTo string

	ContentTransferEncoding string // default "binary"

	SenderCertAlias   string // resolves to a private key + certificate
	ReceiverCertAlias string // resolves to a certificate only

	IncludeCertificateInSignedContent bool
	UseRFC3851MICNames                bool
	QuoteHeaderValues                 bool

	RetryCount int
}

// Validate checks the cross-field invariants named in the data model: an
// async MDN mode requires a non-empty receipt-delivery URL; a configured
// signing algorithm requires a sender alias; a configured encryption
// algorithm requires a receiver alias. It does not attempt to resolve the
// aliases themselves — that is CertificateProvider's job at pipeline time.
func (p *Partnership) Validate() error {
	if p.MdnMode == MdnAsync && p.ReceiptDeliveryURL == "" {
		return &ConfigError{Reason: "async MDN mode requires a non-empty receipt-delivery URL"}
	}
	if p.SigningAlgorithm != "" && p.SenderCertAlias == "" {
		return &ConfigError{Reason: "signing algorithm configured without a sender certificate alias"}
	}
	if p.EncryptionAlgorithm != "" && p.ReceiverCertAlias == "" {
		return &ConfigError{Reason: "encryption algorithm configured without a receiver certificate alias"}
	}
	return nil
}

// EffectiveCTE returns the configured Content-Transfer-Encoding, defaulting
// to "binary" per §4.4 step 2.
func (p *Partnership) EffectiveCTE() string {
	if p.ContentTransferEncoding == "" {
		return "binary"
	}
	return p.ContentTransferEncoding
}

// DefaultMICAlgorithm returns the RFC 3851 or RFC 5751 algorithm-name
// default, selected by the UseRFC3851MICNames flag, matching the default
// this sender substitutes when SigningAlgorithm is unset or unrecognized.
func (p *Partnership) DefaultMICAlgorithm() string {
	if p.UseRFC3851MICNames {
		return "sha1"
	}
	return "sha-256"
}
