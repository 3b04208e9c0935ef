package audit_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/evolvent-systems/as2send/internal/audit"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLog(t *testing.T) *audit.Log {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.db")
	log, err := audit.Open(path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })
	return log
}

func TestLog_RecordAndGet(t *testing.T) {
	log := openTestLog(t)

	entry := &audit.Entry{
		MessageID:     "<1@example.com>",
		SenderAS2ID:   "us",
		ReceiverAS2ID: "them",
		URL:           "https://partner.example.com/as2",
		Direction:     audit.DirectionOutbound,
		Status:        "sent",
		HTTPStatus:    200,
		MIC:           "abc==, sha256",
		CreatedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, log.Record(entry))

	got, err := log.Get(entry.MessageID)
	require.NoError(t, err)
	assert.Equal(t, entry.MessageID, got.MessageID)
	assert.Equal(t, entry.Status, got.Status)
	assert.Equal(t, entry.HTTPStatus, got.HTTPStatus)
	assert.Equal(t, entry.MIC, got.MIC)
	assert.True(t, entry.CreatedAt.Equal(got.CreatedAt))
}

func TestLog_Record_UpsertsOnRetry(t *testing.T) {
	log := openTestLog(t)

	id := "<retry@example.com>"
	require.NoError(t, log.Record(&audit.Entry{
		MessageID: id, SenderAS2ID: "us", ReceiverAS2ID: "them", URL: "https://x",
		Direction: audit.DirectionOutbound, Status: "failed", ErrorMessage: "timeout",
		CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, log.Record(&audit.Entry{
		MessageID: id, SenderAS2ID: "us", ReceiverAS2ID: "them", URL: "https://x",
		Direction: audit.DirectionOutbound, Status: "sent", HTTPStatus: 200,
		CreatedAt: time.Now().UTC(),
	}))

	got, err := log.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "sent", got.Status)
	assert.Equal(t, 200, got.HTTPStatus)
	assert.Empty(t, got.ErrorMessage)
}

func TestLog_Get_Missing(t *testing.T) {
	log := openTestLog(t)
	_, err := log.Get("<nope@example.com>")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestLog_Recent_OrdersMostRecentFirst(t *testing.T) {
	log := openTestLog(t)

	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, log.Record(&audit.Entry{
		MessageID: "<old@example.com>", SenderAS2ID: "us", ReceiverAS2ID: "them",
		URL: "https://x", Direction: audit.DirectionOutbound, Status: "sent", CreatedAt: older,
	}))
	require.NoError(t, log.Record(&audit.Entry{
		MessageID: "<new@example.com>", SenderAS2ID: "us", ReceiverAS2ID: "them",
		URL: "https://x", Direction: audit.DirectionOutbound, Status: "sent", CreatedAt: newer,
	}))

	entries, err := log.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "<new@example.com>", entries[0].MessageID)
	assert.Equal(t, "<old@example.com>", entries[1].MessageID)
}
