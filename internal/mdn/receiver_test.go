package mdn

import (
	"io"
	"net/http"
	"net/textproto"
	"strings"
	"testing"

	"github.com/evolvent-systems/as2send/internal/as2crypto"
	"github.com/evolvent-systems/as2send/internal/as2model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityReader_PrependsHeaderBlockBeforeBody(t *testing.T) {
	headers := make(textproto.MIMEHeader)
	headers.Set("Content-Type", "multipart/report; report-type=disposition-notification; boundary=x")

	body := []byte("--x\r\ncontent\r\n--x--\r\n")
	out, err := readAll(entityReader(headers, body))
	require.NoError(t, err)

	assert.Contains(t, out, "Content-Type: multipart/report")
	idx := strings.Index(out, "\r\n\r\n")
	require.GreaterOrEqual(t, idx, 0, "must contain a blank-line separator between headers and body")
	assert.Equal(t, string(body), out[idx+4:])
}

func readAll(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	return string(data), err
}

// fakeProvider supplies only what Receive's non-signed branch exercises.
type fakeProvider struct {
	as2crypto.Provider
}

func TestReceiver_Receive_PlainMultipartReport_ParsesDispositionAndMIC(t *testing.T) {
	r := New(fakeProvider{}, nil, nil, nil, zerolog.Nop())

	const boundary = "abc123"
	body := "--" + boundary + "\r\n" +
		"Content-Type: text/plain\r\n\r\n" +
		"The message was processed normally.\r\n" +
		"--" + boundary + "\r\n" +
		"Content-Type: message/disposition-notification\r\n\r\n" +
		"Reporting-UA: partner\r\n" +
		"Disposition: automatic-action/MDN-sent-automatically; processed\r\n" +
		"Received-content-MIC: c2hhMjU2ZGlnZXN0, sha-256\r\n" +
		"\r\n" +
		"--" + boundary + "--\r\n"

	respHeader := http.Header{}
	respHeader.Set("Content-Type", "multipart/report; report-type=disposition-notification; boundary="+boundary)

	mdnResult, err := r.Receive(
		&as2model.Message{MessageID: "<1@host>"},
		respHeader,
		[]byte(body),
		as2model.MIC{},
	)
	require.NoError(t, err)
	require.NotNil(t, mdnResult)
	assert.Equal(t, "automatic-action/MDN-sent-automatically; processed", mdnResult.Disposition)
	require.NotNil(t, mdnResult.MIC)
	assert.Equal(t, "sha-256", mdnResult.MIC.Algorithm)
	assert.Equal(t, as2model.DispositionProcessed, mdnResult.Category())
}
