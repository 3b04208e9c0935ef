package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/evolvent-systems/as2send/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "as2send.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeYAML(t, `
outboxDir: /var/as2/outbox
sentDir: /var/as2/sent
errorDir: /var/as2/error
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/as2/outbox", cfg.OutboxDir)
	assert.Equal(t, 60_000, cfg.ConnectTimeoutMS)
	assert.Equal(t, 60_000, cfg.ReadTimeoutMS)
	assert.Equal(t, "application/octet-stream", cfg.MimeType)
	assert.Equal(t, 2, cfg.RetryCount)
	assert.Equal(t, "log", cfg.OnSentMoveFailure)
	assert.Equal(t, 5, cfg.PollIntervalSeconds)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeYAML(t, `
outboxDir: /var/as2/outbox
sentDir: /var/as2/sent
errorDir: /var/as2/error
retryCount: 5
onSentMoveFailure: fail
pollIntervalSeconds: 30
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.RetryCount)
	assert.Equal(t, "fail", cfg.OnSentMoveFailure)
	assert.Equal(t, 30, cfg.PollIntervalSeconds)
}

func TestLoad_MissingRequiredDir(t *testing.T) {
	path := writeYAML(t, `
sentDir: /var/as2/sent
errorDir: /var/as2/error
`)
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadPartnerships(t *testing.T) {
	path := writeYAML(t, `
partnerships:
  acme:
    senderAs2Id: us
    receiverAs2Id: acme
    url: https://acme.example.com/as2
    signingAlgorithm: sha256
    senderCertAlias: our-signing-cert
    mdnMode: sync
`)
	partnerships, err := config.LoadPartnerships(path)
	require.NoError(t, err)
	require.Contains(t, partnerships, "acme")

	p := partnerships["acme"]
	assert.Equal(t, "us", p.SenderAS2ID)
	assert.Equal(t, "acme", p.ReceiverAS2ID)
	assert.Equal(t, "sha256", p.SigningAlgorithm)
}

func TestLoadPartnerships_DefaultsMdnModeToNone(t *testing.T) {
	path := writeYAML(t, `
partnerships:
  plain:
    senderAs2Id: us
    receiverAs2Id: plain
    url: https://plain.example.com/as2
`)
	partnerships, err := config.LoadPartnerships(path)
	require.NoError(t, err)
	assert.Equal(t, "none", string(partnerships["plain"].MdnMode))
}

func TestLoadPartnerships_InvalidPartnershipRejected(t *testing.T) {
	path := writeYAML(t, `
partnerships:
  broken:
    senderAs2Id: us
    receiverAs2Id: broken
    url: https://broken.example.com/as2
    signingAlgorithm: sha256
`)
	_, err := config.LoadPartnerships(path)
	assert.Error(t, err)
}
