package as2model_test

import (
	"testing"

	"github.com/evolvent-systems/as2send/internal/as2model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPartnership() *as2model.Partnership {
	return &as2model.Partnership{
		SenderAS2ID:   "us",
		ReceiverAS2ID: "them",
		URL:           "https://partner.example.com/as2",
	}
}

func TestMessage_CheckRequired(t *testing.T) {
	t.Run("fully populated message passes", func(t *testing.T) {
		msg := as2model.NewMessage("<1@host>", as2model.NewPart("application/octet-stream", []byte("hi")), validPartnership())
		msg.ContentType = "application/octet-stream"
		msg.Subject = "test"
		msg.SenderEmail = "sender@example.com"

		require.NoError(t, msg.CheckRequired())
	})

	t.Run("missing partnership fails", func(t *testing.T) {
		msg := as2model.NewMessage("<1@host>", as2model.NewPart("application/octet-stream", []byte("hi")), nil)
		msg.ContentType = "application/octet-stream"
		msg.Subject = "test"
		msg.SenderEmail = "sender@example.com"

		var invalidParam *as2model.InvalidParameterError
		require.ErrorAs(t, msg.CheckRequired(), &invalidParam)
		assert.Equal(t, "partnership", invalidParam.Field)
	})

	t.Run("empty body fails", func(t *testing.T) {
		msg := as2model.NewMessage("<1@host>", as2model.NewPart("application/octet-stream", nil), validPartnership())
		msg.ContentType = "application/octet-stream"
		msg.Subject = "test"
		msg.SenderEmail = "sender@example.com"

		var invalidParam *as2model.InvalidParameterError
		require.ErrorAs(t, msg.CheckRequired(), &invalidParam)
		assert.Equal(t, "body", invalidParam.Field)
	})

	t.Run("missing subject fails", func(t *testing.T) {
		msg := as2model.NewMessage("<1@host>", as2model.NewPart("application/octet-stream", []byte("hi")), validPartnership())
		msg.ContentType = "application/octet-stream"
		msg.SenderEmail = "sender@example.com"

		var invalidParam *as2model.InvalidParameterError
		require.ErrorAs(t, msg.CheckRequired(), &invalidParam)
		assert.Equal(t, "subject", invalidParam.Field)
	})
}

func TestMessage_Attributes(t *testing.T) {
	msg := as2model.NewMessage("<1@host>", as2model.NewPart("application/octet-stream", []byte("hi")), validPartnership())
	assert.Equal(t, "", msg.Attribute(as2model.AttrStatus))

	msg.SetAttribute(as2model.AttrStatus, as2model.StatusPending)
	assert.Equal(t, as2model.StatusPending, msg.Attribute(as2model.AttrStatus))
}
