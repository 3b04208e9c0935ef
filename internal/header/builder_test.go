package header_test

import (
	"testing"

	"github.com/evolvent-systems/as2send/internal/as2model"
	"github.com/evolvent-systems/as2send/internal/header"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMessage() *as2model.Message {
	partnership := &as2model.Partnership{
		SenderAS2ID:   "US-AS2-ID",
		ReceiverAS2ID: "THEM-AS2-ID",
		URL:           "https://partner.example.com/as2",
	}
	msg := as2model.NewMessage("<1@host>", as2model.NewPart("application/octet-stream", []byte("hi")), partnership)
	msg.ContentType = "application/octet-stream"
	msg.Subject = "test transmission"
	msg.SenderEmail = "sender@example.com"
	return msg
}

func TestBuild_MandatoryHeaders(t *testing.T) {
	msg := newTestMessage()
	headers := header.Build(msg)

	require.Equal(t, "close", headers["Connection"])
	require.Equal(t, header.UserAgent, headers["User-Agent"])
	require.Equal(t, "1.0", headers["Mime-Version"])
	require.Equal(t, "1.1", headers["AS2-Version"])
	require.Equal(t, "<1@host>", headers["Message-ID"])
	require.Equal(t, "application/octet-stream", headers["Content-Type"])
	require.Equal(t, "https://partner.example.com/as2", headers["Recipient-Address"])
	require.Equal(t, "US-AS2-ID", headers["AS2-From"])
	require.Equal(t, "THEM-AS2-ID", headers["AS2-To"])
	require.Equal(t, "test transmission", headers["Subject"])
	require.Equal(t, "sender@example.com", headers["From"])
	require.Equal(t, "binary", headers["Content-Transfer-Encoding"])
	require.NotEmpty(t, headers["Date"])

	_, hasDispositionNotificationTo := headers["Disposition-Notification-To"]
	assert.False(t, hasDispositionNotificationTo)
}

func TestBuild_OptionalHeaders(t *testing.T) {
	msg := newTestMessage()
	msg.Partnership.DispositionNotificationTo = "mdn@example.com"
	msg.Partnership.MdnOptions = "signed-receipt-protocol=optional,pkcs7-signature"
	msg.Partnership.MdnMode = as2model.MdnAsync
	msg.Partnership.ReceiptDeliveryURL = "https://us.example.com/mdn-receiver"

	headers := header.Build(msg)

	assert.Equal(t, "mdn@example.com", headers["Disposition-Notification-To"])
	assert.Equal(t, "signed-receipt-protocol=optional,pkcs7-signature", headers["Disposition-Notification-Options"])
	assert.Equal(t, "https://us.example.com/mdn-receiver", headers["Receipt-Delivery-Option"])
}

func TestBuild_QuoteHeaderValues(t *testing.T) {
	msg := newTestMessage()
	msg.Partnership.QuoteHeaderValues = true

	headers := header.Build(msg)

	assert.Equal(t, `"US-AS2-ID"`, headers["AS2-From"])
}

func TestBuild_Idempotent(t *testing.T) {
	msg := newTestMessage()

	first := header.Build(msg)
	second := header.Build(msg)

	delete(first, "Date")
	delete(second, "Date")
	assert.Equal(t, first, second)
}
