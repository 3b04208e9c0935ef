// Package pending implements PendingStore (§4.8): durable tracking of
// messages awaiting an asynchronous MDN, keyed on message-id.
package pending

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evolvent-systems/as2send/internal/as2model"
	"github.com/evolvent-systems/as2send/internal/transport"
)

// Store is a filesystem-backed PendingStore: one small text file per
// outstanding message, named after a filesystem-safe rendering of its
// message-id, written atomically via write-temp-then-rename.
type Store struct {
	dir string
}

// Open returns a Store rooted at dir, creating it if necessary.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("pending: open store: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(messageID string) string {
	return filepath.Join(s.dir, transport.SafeFilename(messageID)+".pending")
}

// Put records a PendingRecord, overwriting any existing record for the
// same message-id.
func (s *Store) Put(r *as2model.PendingRecord) error {
	content := r.OriginalMIC + "\n" + r.PendingFile + "\n"

	final := s.path(r.MessageID)
	tmp := final + ".tmp"

	if err := os.WriteFile(tmp, []byte(content), 0600); err != nil {
		return fmt.Errorf("pending: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("pending: rename %s: %w", tmp, err)
	}
	return nil
}

// Get retrieves the PendingRecord for messageID, returning
// as2model.ErrPendingNotFound if none exists.
func (s *Store) Get(messageID string) (*as2model.PendingRecord, error) {
	path := s.path(messageID)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, as2model.ErrPendingNotFound
		}
		return nil, fmt.Errorf("pending: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("pending: read %s: %w", path, err)
	}

	r := &as2model.PendingRecord{MessageID: messageID}
	if len(lines) > 0 {
		r.OriginalMIC = lines[0]
	}
	if len(lines) > 1 {
		r.PendingFile = lines[1]
	}
	return r, nil
}

// Delete removes the record for messageID. It is not an error if no
// record exists.
func (s *Store) Delete(messageID string) error {
	path := s.path(messageID)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("pending: delete %s: %w", path, err)
	}
	return nil
}

// List returns the message-ids of all currently pending records, derived
// from the on-disk file names (the inverse of transport.SafeFilename is
// not reconstructible in general, so callers that need the original
// message-id must have stored it themselves; List exists for diagnostics).
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("pending: list %s: %w", s.dir, err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".pending") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".pending"))
	}
	return ids, nil
}
