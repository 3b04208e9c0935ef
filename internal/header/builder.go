// Package header assembles the outbound AS2 HTTP header set per §4.3.
package header

import (
	"fmt"
	"strings"
	"time"

	"github.com/evolvent-systems/as2send/internal/as2model"
)

// UserAgent is the default User-Agent header value.
const UserAgent = "as2send/1.0"

// Build clones msg's current header map, then overwrites the mandatory AS2
// headers and conditionally sets the optional ones, quoting values per the
// partnership's QuoteHeaderValues flag; AS2-From and AS2-To are also quoted
// whenever they contain commas or spaces. Calling Build twice for the same
// (message, partnership) produces identical maps except for Date, which is
// taken from the clock: msg and its partnership are read-only here.
func Build(msg *as2model.Message) map[string]string {
	p := msg.Partnership
	h := make(map[string]string, len(msg.Headers)+16)
	for k, v := range msg.Headers {
		h[k] = v
	}

	quote := p.QuoteHeaderValues

	set := func(name, value string) {
		h[name] = quoteIfNeeded(value, quote)
	}
	setIdentifier := func(name, value string) {
		h[name] = quoteIfNeeded(value, quote || needsQuoting(value))
	}

	set("Connection", "close")
	set("User-Agent", UserAgent)
	set("Mime-Version", "1.0")
	set("AS2-Version", "1.1")
	set("Date", time.Now().UTC().Format(time.RFC1123))
	set("Message-ID", msg.MessageID)
	set("Content-Type", msg.ContentType)
	set("Recipient-Address", p.URL)
	setIdentifier("AS2-From", p.SenderAS2ID)
	setIdentifier("AS2-To", p.ReceiverAS2ID)
	set("Subject", msg.Subject)
	set("From", msg.SenderEmail)
	set("Content-Transfer-Encoding", p.EffectiveCTE())

	if p.DispositionNotificationTo != "" {
		set("Disposition-Notification-To", p.DispositionNotificationTo)
	}
	if p.MdnOptions != "" {
		set("Disposition-Notification-Options", p.MdnOptions)
	}
	if p.MdnMode == as2model.MdnAsync && p.ReceiptDeliveryURL != "" {
		set("Receipt-Delivery-Option", p.ReceiptDeliveryURL)
	}
	if disposition, ok := msg.Attributes[as2model.AttrSourceFilePath]; ok && disposition != "" {
		set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filenameOnly(disposition)))
	}

	return h
}

// quoteIfNeeded double-quotes value, escaping embedded quotes, when quote is
// true; otherwise it returns value unchanged.
func quoteIfNeeded(value string, quote bool) string {
	if quote {
		return `"` + strings.ReplaceAll(value, `"`, `\"`) + `"`
	}
	return value
}

// needsQuoting reports whether an AS2 identifier carries characters
// (commas, spaces) that would be ambiguous unquoted on the wire.
func needsQuoting(value string) bool {
	return strings.ContainsAny(value, ", ")
}

func filenameOnly(path string) string {
	idx := strings.LastIndexAny(path, `/\`)
	if idx == -1 {
		return path
	}
	return path[idx+1:]
}
