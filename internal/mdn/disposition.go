package mdn

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"strings"

	"github.com/evolvent-systems/as2send/internal/as2model"
)

// machineFields extracts the field:value pairs from a
// message/disposition-notification part's body per RFC 3798 §3: a small
// set of header-like fields, not a full MIME header block.
func machineFields(body []byte) map[string]string {
	fields := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(body))
	var currentKey string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if (line[0] == ' ' || line[0] == '\t') && currentKey != "" {
			fields[currentKey] += " " + strings.TrimSpace(line)
			continue
		}
		idx := strings.Index(line, ":")
		if idx == -1 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		fields[key] = value
		currentKey = key
	}
	return fields
}

// parseDisposition extracts the "disposition-type/...; ..." value from the
// Disposition field, e.g. "automatic-action/MDN-sent-automatically; processed".
func parseDisposition(fields map[string]string) string {
	return fields["disposition"]
}

// parseReceivedMIC parses the Received-content-MIC field,
// "base64string, algorithm-id", into an as2model.MIC.
func parseReceivedMIC(fields map[string]string) *as2model.MIC {
	raw, ok := fields["received-content-mic"]
	if !ok || raw == "" {
		return nil
	}
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return nil
	}
	digest, err := base64.StdEncoding.DecodeString(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil
	}
	return &as2model.MIC{Digest: digest, Algorithm: strings.TrimSpace(parts[1])}
}
