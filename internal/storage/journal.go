// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/voxtable/internal/util"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// RECORD TYPES
// =============================================================================

// Outcome says what happened to an utterance.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeFailed  Outcome = "failed"
	OutcomeIgnored Outcome = "ignored"
)

// Session is one run of the session loop.
type Session struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time // zero while running
	Language  string
	Input     string

	Utterances int
	Applied    int
	Failed     int
}

// Utterance is one journaled utterance.
type Utterance struct {
	SessionID string
	Seq       int
	At        time.Time
	Text      string
	Kind      string
	Outcome   Outcome
	Message   string
}

// SavedTable is one table exported by save.
type SavedTable struct {
	SessionID string
	Name      string
	Path      string
	Format    string
	Records   [][]string
	SavedAt   time.Time
}

// SessionMeta is the listing view of a session.
type SessionMeta struct {
	Session
	Saved int
}

// =============================================================================
// JOURNAL
// =============================================================================

// Journal is the SQLite audit log of sessions.
type Journal struct {
	db   *sql.DB
	path string
}

// Open opens or creates the journal database at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(InitMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metadata: %w", err)
	}

	return &Journal{db: db, path: path}, nil
}

// Path returns the database file path.
func (j *Journal) Path() string { return j.path }

// Close closes the database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// SchemaVersion returns the version recorded in the metadata table.
func (j *Journal) SchemaVersion(ctx context.Context) (int, error) {
	var v string
	if err := j.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = 'schema_version'").Scan(&v); err != nil {
		return 0, err
	}
	var n int
	_, err := fmt.Sscanf(v, "%d", &n)
	return n, err
}

// =============================================================================
// WRITES
// =============================================================================

// StartSession records the start of a session.
func (j *Journal) StartSession(ctx context.Context, s Session) error {
	if s.ID == "" {
		return errors.New("session id is required")
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, language, input) VALUES (?, ?, ?, ?)`,
		s.ID, s.StartedAt.UnixMilli(), s.Language, s.Input)
	if err != nil {
		return fmt.Errorf("failed to record session start: %w", err)
	}
	return nil
}

// EndSession stores the final counters of a session.
func (j *Journal) EndSession(ctx context.Context, s Session) error {
	if s.EndedAt.IsZero() {
		s.EndedAt = time.Now()
	}
	res, err := j.db.ExecContext(ctx,
		`UPDATE sessions SET ended_at = ?, utterances = ?, applied = ?, failed = ? WHERE id = ?`,
		s.EndedAt.UnixMilli(), s.Utterances, s.Applied, s.Failed, s.ID)
	if err != nil {
		return fmt.Errorf("failed to record session end: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s: %w", s.ID, ErrSessionNotFound)
	}
	return nil
}

// RecordUtterance appends an utterance to its session.
func (j *Journal) RecordUtterance(ctx context.Context, u Utterance) error {
	if u.At.IsZero() {
		u.At = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO utterances (session_id, seq, at, text, kind, outcome, message) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.SessionID, u.Seq, u.At.UnixMilli(), u.Text, u.Kind, string(u.Outcome), u.Message)
	if err != nil {
		return fmt.Errorf("failed to record utterance: %w", err)
	}
	return nil
}

// RecordSave stores an exported table.
func (j *Journal) RecordSave(ctx context.Context, t SavedTable) error {
	if len(t.Records) == 0 {
		return errors.New("saved table has no header")
	}
	if t.SavedAt.IsZero() {
		t.SavedAt = time.Now()
	}
	data, err := json.Marshal(t.Records)
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	_, err = j.db.ExecContext(ctx,
		`INSERT INTO saved_tables (session_id, name, path, format, row_count, column_count, records, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.SessionID, t.Name, t.Path, t.Format, len(t.Records)-1, len(t.Records[0]), string(data), t.SavedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record save: %w", err)
	}
	return nil
}

// =============================================================================
// READS
// =============================================================================

// Sessions lists the most recent sessions, newest first. limit <= 0 lists all.
func (j *Journal) Sessions(ctx context.Context, limit int) ([]SessionMeta, error) {
	query := `
		SELECT s.id, s.started_at, s.ended_at, s.language, s.input,
		       s.utterances, s.applied, s.failed,
		       (SELECT COUNT(*) FROM saved_tables t WHERE t.session_id = s.id)
		FROM sessions s
		ORDER BY s.started_at DESC, s.id`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var metas []SessionMeta
	for rows.Next() {
		var m SessionMeta
		var started int64
		var ended sql.NullInt64
		if err := rows.Scan(&m.ID, &started, &ended, &m.Language, &m.Input,
			&m.Utterances, &m.Applied, &m.Failed, &m.Saved); err != nil {
			return nil, err
		}
		m.StartedAt = time.UnixMilli(started)
		if ended.Valid {
			m.EndedAt = time.UnixMilli(ended.Int64)
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// Utterances returns the utterances of a session in order.
func (j *Journal) Utterances(ctx context.Context, sessionID string) ([]Utterance, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT session_id, seq, at, text, kind, outcome, message
		 FROM utterances WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read utterances: %w", err)
	}
	defer rows.Close()

	var out []Utterance
	for rows.Next() {
		var u Utterance
		var at int64
		var outcome string
		if err := rows.Scan(&u.SessionID, &u.Seq, &at, &u.Text, &u.Kind, &outcome, &u.Message); err != nil {
			return nil, err
		}
		u.At = time.UnixMilli(at)
		u.Outcome = Outcome(outcome)
		out = append(out, u)
	}
	return out, rows.Err()
}

// SavedTables returns the tables saved during a session.
func (j *Journal) SavedTables(ctx context.Context, sessionID string) ([]SavedTable, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT session_id, name, path, format, records, saved_at
		 FROM saved_tables WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read saved tables: %w", err)
	}
	defer rows.Close()

	var out []SavedTable
	for rows.Next() {
		var t SavedTable
		var records string
		var at int64
		if err := rows.Scan(&t.SessionID, &t.Name, &t.Path, &t.Format, &records, &at); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(records), &t.Records); err != nil {
			return nil, fmt.Errorf("corrupt records for %s: %w", t.Name, err)
		}
		t.SavedAt = time.UnixMilli(at)
		out = append(out, t)
	}
	return out, rows.Err()
}

// FindSession resolves a full session id from a unique prefix.
func (j *Journal) FindSession(ctx context.Context, prefix string) (string, error) {
	if prefix == "" {
		return "", ErrSessionNotFound
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id FROM sessions WHERE substr(id, 1, ?) = ? LIMIT 2`, len(prefix), prefix)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("session %s: %w", prefix, ErrSessionNotFound)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("session prefix %s is ambiguous", prefix)
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrSessionNotFound is returned when a session doesn't exist.
// Use errors.Is(err, ErrSessionNotFound) to check for this error.
var ErrSessionNotFound = &JournalError{Message: "session not found"}

// JournalError represents a journal lookup error.
type JournalError struct {
	Message string
}

// Error implements the error interface.
func (e *JournalError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing journal errors.
func (e *JournalError) Is(target error) bool {
	t, ok := target.(*JournalError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// SESSION LIST FORMATTING
// =============================================================================

// FormatSessionList formats sessions for display in a table format.
func FormatSessionList(sessions []SessionMeta) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}

	var sb strings.Builder
	sb.WriteString("Sessions:\n")
	sb.WriteString("----------------------------------------------------------------\n")
	sb.WriteString(util.PadRight("ID", 10) + " " + util.PadRight("Started", 17) + " " +
		util.PadRight("Input", 8) + " " + util.PadRight("Heard", 6) + " " +
		util.PadRight("Applied", 8) + " Saved\n")
	sb.WriteString("----------------------------------------------------------------\n")

	for _, s := range sessions {
		id := s.ID
		if len(id) > 8 {
			id = id[:8]
		}
		sb.WriteString(util.PadRight(id, 10) + " " +
			util.PadRight(s.StartedAt.Format("2006-01-02 15:04"), 17) + " " +
			util.PadRight(s.Input, 8) + " " +
			util.PadRight(util.IntToString(s.Utterances), 6) + " " +
			util.PadRight(util.IntToString(s.Applied), 8) + " " +
			util.IntToString(s.Saved) + "\n")
	}
	return sb.String()
}
