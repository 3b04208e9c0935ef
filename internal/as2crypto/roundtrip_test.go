package as2crypto_test

import (
	"testing"

	"github.com/evolvent-systems/as2send/internal/as2crypto"
	"github.com/evolvent-systems/as2send/internal/as2model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompress_Decompress_RoundTrip(t *testing.T) {
	provider := as2crypto.New(zerolog.Nop())
	original := as2model.NewPart("text/plain", []byte("hello world, this is the payload"))

	compressed, err := provider.Compress(original)
	require.NoError(t, err)
	assert.Contains(t, compressed.ContentType(), "smime-type=compressed-data")

	decompressed, err := as2crypto.Decompress(compressed.Content)
	require.NoError(t, err)
	assert.Contains(t, string(decompressed), "hello world, this is the payload")
	assert.Contains(t, string(decompressed), "Content-Type: text/plain")
}

func TestSign_VerifySigned_RoundTrip(t *testing.T) {
	provider := as2crypto.New(zerolog.Nop())
	identity := selfSignedIdentity(t, "sender.example.com")

	original := as2model.NewPart("application/octet-stream", []byte("signed payload bytes"))

	signed, err := provider.Sign(original, identity, "sha256", "sha-256", false)
	require.NoError(t, err)
	assert.Contains(t, signed.ContentType(), "multipart/signed")

	verifiedCert, err := provider.VerifySigned(signed, identity.Cert)
	require.NoError(t, err)
	assert.True(t, verifiedCert.Equal(identity.Cert))
}

func TestSign_VerifySigned_WrongSignerRejected(t *testing.T) {
	provider := as2crypto.New(zerolog.Nop())
	signerIdentity := selfSignedIdentity(t, "sender.example.com")
	otherIdentity := selfSignedIdentity(t, "impostor.example.com")

	original := as2model.NewPart("application/octet-stream", []byte("signed payload bytes"))
	signed, err := provider.Sign(original, signerIdentity, "sha256", "sha-256", false)
	require.NoError(t, err)

	_, err = provider.VerifySigned(signed, otherIdentity.Cert)
	assert.Error(t, err)
}

func TestEncrypt_Decrypt_RoundTrip(t *testing.T) {
	provider := as2crypto.New(zerolog.Nop())
	identity := selfSignedIdentity(t, "receiver.example.com")

	original := as2model.NewPart("application/octet-stream", []byte("secret payload bytes"))

	encrypted, err := provider.Encrypt(original, identity.Cert)
	require.NoError(t, err)
	assert.Contains(t, encrypted.ContentType(), "smime-type=enveloped-data")

	decrypted, err := provider.Decrypt(encrypted, identity)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret payload bytes"), decrypted.Content)
}

func TestComputeMIC_DeterministicAndHeaderSensitive(t *testing.T) {
	provider := as2crypto.New(zerolog.Nop())
	part := as2model.NewPart("application/octet-stream", []byte("mic input bytes"))

	mic, err := provider.ComputeMIC(part, true, "sha256")
	require.NoError(t, err)
	assert.NotEmpty(t, mic.Digest)
	assert.Equal(t, "sha256", mic.Algorithm)

	micAgain, err := provider.ComputeMIC(part, true, "sha256")
	require.NoError(t, err)
	assert.True(t, mic.Equal(micAgain))

	micNoHeaders, err := provider.ComputeMIC(part, false, "sha256")
	require.NoError(t, err)
	assert.False(t, mic.Equal(micNoHeaders))
}
