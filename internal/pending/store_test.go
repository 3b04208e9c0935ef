package pending_test

import (
	"testing"

	"github.com/evolvent-systems/as2send/internal/as2model"
	"github.com/evolvent-systems/as2send/internal/pending"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGetDelete(t *testing.T) {
	store, err := pending.Open(t.TempDir())
	require.NoError(t, err)

	record := &as2model.PendingRecord{
		MessageID:   "<1234@example.com>",
		OriginalMIC: "abc123==, sha256",
		PendingFile: "/outbox/msg-1.bin",
	}
	require.NoError(t, store.Put(record))

	got, err := store.Get(record.MessageID)
	require.NoError(t, err)
	assert.Equal(t, record.MessageID, got.MessageID)
	assert.Equal(t, record.OriginalMIC, got.OriginalMIC)
	assert.Equal(t, record.PendingFile, got.PendingFile)

	require.NoError(t, store.Delete(record.MessageID))
	_, err = store.Get(record.MessageID)
	assert.ErrorIs(t, err, as2model.ErrPendingNotFound)
}

func TestStore_Get_Missing(t *testing.T) {
	store, err := pending.Open(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get("<nope@example.com>")
	assert.ErrorIs(t, err, as2model.ErrPendingNotFound)
}

func TestStore_Put_Overwrites(t *testing.T) {
	store, err := pending.Open(t.TempDir())
	require.NoError(t, err)

	id := "<same@example.com>"
	require.NoError(t, store.Put(&as2model.PendingRecord{MessageID: id, OriginalMIC: "first, sha1", PendingFile: "a"}))
	require.NoError(t, store.Put(&as2model.PendingRecord{MessageID: id, OriginalMIC: "second, sha256", PendingFile: "b"}))

	got, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "second, sha256", got.OriginalMIC)
	assert.Equal(t, "b", got.PendingFile)
}

func TestStore_List(t *testing.T) {
	store, err := pending.Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(&as2model.PendingRecord{MessageID: "<one@example.com>", OriginalMIC: "m1, sha1", PendingFile: "a"}))
	require.NoError(t, store.Put(&as2model.PendingRecord{MessageID: "<two@example.com>", OriginalMIC: "m2, sha1", PendingFile: "b"}))

	ids, err := store.List()
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}
