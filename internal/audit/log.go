// Package audit provides a queryable SQLite-backed record of send and
// receive attempts (message-id, partnership, outcome, MIC, disposition).
package audit

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/evolvent-systems/as2send/internal/sqlitedb"
	"github.com/rs/zerolog"
)

const schema = `
CREATE TABLE IF NOT EXISTS send_log (
	message_id     TEXT PRIMARY KEY,
	sender_as2_id  TEXT NOT NULL,
	receiver_as2_id TEXT NOT NULL,
	url            TEXT NOT NULL,
	direction      TEXT NOT NULL,
	status         TEXT NOT NULL,
	http_status    INTEGER,
	mic            TEXT,
	disposition    TEXT,
	error_message  TEXT,
	created_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_send_log_created_at ON send_log(created_at);
`

// Direction distinguishes outbound sends from MDN receipts. Record keeps
// one row per message-id, and updating an existing row does not change its
// direction.
type Direction string

const (
	DirectionOutbound Direction = "outbound"
	DirectionMdn      Direction = "mdn"
)

// Entry is one row of send/receive history.
type Entry struct {
	MessageID     string
	SenderAS2ID   string
	ReceiverAS2ID string
	URL           string
	Direction     Direction
	Status        string // as2model.StatusSent / StatusFailed / StatusPending
	HTTPStatus    int
	MIC           string
	Disposition   string
	ErrorMessage  string
	CreatedAt     time.Time
}

// Log is a SQLite-backed, queryable audit trail holding one row per
// message-id, overwritten by each later Record for that message-id.
type Log struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (creating if needed) the audit database at path.
func Open(path string, log zerolog.Logger) (*Log, error) {
	db, err := sqlitedb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audit: open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: migrate schema: %w", err)
	}
	return &Log{db: db, log: log}, nil
}

// Close releases the underlying database handle.
func (l *Log) Close() error {
	return l.db.Close()
}

// Record upserts an Entry, keyed on MessageID, so a retried send's final
// outcome overwrites its earlier attempts.
func (l *Log) Record(e *Entry) error {
	_, err := l.db.Exec(`
		INSERT INTO send_log (message_id, sender_as2_id, receiver_as2_id, url, direction, status, http_status, mic, disposition, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(message_id) DO UPDATE SET
			status = excluded.status,
			http_status = excluded.http_status,
			mic = excluded.mic,
			disposition = excluded.disposition,
			error_message = excluded.error_message,
			created_at = excluded.created_at
	`,
		e.MessageID, e.SenderAS2ID, e.ReceiverAS2ID, e.URL, string(e.Direction), e.Status,
		e.HTTPStatus, e.MIC, e.Disposition, e.ErrorMessage, e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("audit: record %s: %w", e.MessageID, err)
	}
	return nil
}

// Get returns the Entry for a message-id, or sql.ErrNoRows if none exists.
func (l *Log) Get(messageID string) (*Entry, error) {
	row := l.db.QueryRow(`
		SELECT message_id, sender_as2_id, receiver_as2_id, url, direction, status, http_status, mic, disposition, error_message, created_at
		FROM send_log WHERE message_id = ?
	`, messageID)
	return scanEntry(row)
}

// Recent returns up to limit entries, most recent first.
func (l *Log) Recent(limit int) ([]*Entry, error) {
	rows, err := l.db.Query(`
		SELECT message_id, sender_as2_id, receiver_as2_id, url, direction, status, http_status, mic, disposition, error_message, created_at
		FROM send_log ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: recent: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntryRows(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row *sql.Row) (*Entry, error) {
	return scanEntryGeneric(row)
}

func scanEntryRows(rows *sql.Rows) (*Entry, error) {
	return scanEntryGeneric(rows)
}

func scanEntryGeneric(s scanner) (*Entry, error) {
	var e Entry
	var direction, createdAt string
	var httpStatus sql.NullInt64
	var mic, disposition, errMsg sql.NullString

	if err := s.Scan(&e.MessageID, &e.SenderAS2ID, &e.ReceiverAS2ID, &e.URL, &direction, &e.Status, &httpStatus, &mic, &disposition, &errMsg, &createdAt); err != nil {
		return nil, fmt.Errorf("audit: scan: %w", err)
	}
	e.Direction = Direction(direction)
	e.HTTPStatus = int(httpStatus.Int64)
	e.MIC = mic.String
	e.Disposition = disposition.String
	e.ErrorMessage = errMsg.String
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		e.CreatedAt = t
	}
	return &e, nil
}
