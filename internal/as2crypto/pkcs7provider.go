package as2crypto

import "github.com/rs/zerolog"

// pkcs7Provider is the production CryptoProvider implementation: stateless
// and safe for concurrent use, per the concurrency model's "CryptoProvider
// shared, must be thread-safe and stateless" requirement.
type pkcs7Provider struct {
	log zerolog.Logger
}

// New returns the CryptoProvider used by Sender/SecurityPipeline: CMS
// signing and enveloping via go.mozilla.org/pkcs7, compression via
// stdlib zlib.
func New(log zerolog.Logger) Provider {
	return &pkcs7Provider{log: log}
}
