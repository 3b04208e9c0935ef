package transport

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Dumper is the optional tee of outgoing request and incoming response to
// disk, one file per message, per §2.
type Dumper interface {
	DumpRequest(messageID string, headers http.Header, body []byte) error
	DumpResponse(messageID string, headers http.Header, body []byte) error
}

// FileDumper writes request/response dumps under a configured directory,
// named after a filesystem-safe rendering of the message-id, matching the
// naming convention used for PendingStore records (§4.8) and this
// codebase's secure-file-permission handling for on-disk artifacts.
type FileDumper struct {
	Dir string
}

// NewFileDumper returns a FileDumper rooted at dir, creating it if needed.
func NewFileDumper(dir string) (*FileDumper, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("new file dumper: %w", err)
	}
	return &FileDumper{Dir: dir}, nil
}

func (d *FileDumper) DumpRequest(messageID string, headers http.Header, body []byte) error {
	return d.dump(messageID, ".req.dump", headers, body)
}

func (d *FileDumper) DumpResponse(messageID string, headers http.Header, body []byte) error {
	return d.dump(messageID, ".resp.dump", headers, body)
}

func (d *FileDumper) dump(messageID, suffix string, headers http.Header, body []byte) error {
	path := filepath.Join(d.Dir, SafeFilename(messageID)+suffix)

	var buf []byte
	for k, vs := range headers {
		for _, v := range vs {
			buf = append(buf, []byte(k+": "+v+"\r\n")...)
		}
	}
	buf = append(buf, []byte("\r\n")...)
	buf = append(buf, body...)

	if err := os.WriteFile(path, buf, 0600); err != nil {
		return fmt.Errorf("dump %s: %w", path, err)
	}
	return nil
}

// SafeFilename strips characters that are unsafe in filenames (angle
// brackets, slashes, colons, the usual RFC 5322 Message-ID decoration)
// from a message-id, for use in dump/pending file names.
func SafeFilename(messageID string) string {
	replacer := strings.NewReplacer(
		"<", "", ">", "", "/", "_", "\\", "_", ":", "_", "@", "_at_", " ", "_",
	)
	safe := replacer.Replace(messageID)
	if safe == "" {
		return "message"
	}
	return safe
}
