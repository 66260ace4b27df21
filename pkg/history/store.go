package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/killallgit/sheetfreak/pkg/transcript"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Turn is one submitted command with every message it produced
type Turn struct {
	SheetID   string
	TurnID    string
	Messages  []transcript.Message
	CreatedAt time.Time
}

// Store keeps finished turns per spreadsheet in SQLite
type Store struct {
	db *sql.DB
}

// DSNForFile builds the DSN used for an on-disk database
func DSNForFile(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("history store: empty path")
	}
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path), nil
}

// OpenFile opens the database at path, creating its directory if needed
func OpenFile(path string) (*Store, error) {
	dsn, err := DSNForFile(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "history store: create directory")
	}
	return Open(dsn)
}

func Open(dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("history store: empty dsn")
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "history store: open")
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS turns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sheet_id TEXT NOT NULL,
			turn_id TEXT NOT NULL,
			created_at_ms INTEGER NOT NULL,
			updated_at_ms INTEGER NOT NULL,
			UNIQUE (sheet_id, turn_id)
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			turn_pk INTEGER NOT NULL,
			ordinal INTEGER NOT NULL,
			sender TEXT NOT NULL,
			text TEXT NOT NULL,
			PRIMARY KEY (turn_pk, ordinal),
			FOREIGN KEY (turn_pk) REFERENCES turns(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS turns_by_sheet ON turns(sheet_id, id);`,
	}
	for _, st := range stmts {
		if _, err := s.db.Exec(st); err != nil {
			return errors.Wrap(err, "history store: migrate")
		}
	}
	return nil
}

// SaveTurn stores t, replacing the messages of an earlier save of the same
// turn. The turn keeps its original position in the sheet's history.
func (s *Store) SaveTurn(ctx context.Context, t Turn) error {
	if strings.TrimSpace(t.SheetID) == "" {
		return errors.New("history store: empty sheet id")
	}
	if strings.TrimSpace(t.TurnID) == "" {
		return errors.New("history store: empty turn id")
	}
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	now := time.Now().UnixMilli()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "history store: begin")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO turns (sheet_id, turn_id, created_at_ms, updated_at_ms)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (sheet_id, turn_id) DO UPDATE SET updated_at_ms = excluded.updated_at_ms
	`, t.SheetID, t.TurnID, createdAt.UnixMilli(), now); err != nil {
		return errors.Wrap(err, "history store: upsert turn")
	}

	var turnPK int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM turns WHERE sheet_id = ? AND turn_id = ?`, t.SheetID, t.TurnID,
	).Scan(&turnPK); err != nil {
		return errors.Wrap(err, "history store: lookup turn")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE turn_pk = ?`, turnPK); err != nil {
		return errors.Wrap(err, "history store: clear turn messages")
	}
	for i, m := range t.Messages {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages (turn_pk, ordinal, sender, text) VALUES (?, ?, ?, ?)`,
			turnPK, i, string(m.Sender), m.Text,
		); err != nil {
			return errors.Wrapf(err, "history store: insert message %d", i)
		}
	}

	return errors.Wrap(tx.Commit(), "history store: commit")
}

// Load returns the sheet's transcript, oldest turn first
func (s *Store) Load(ctx context.Context, sheetID string) ([]transcript.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.sender, m.text
		FROM messages m
		JOIN turns t ON t.id = m.turn_pk
		WHERE t.sheet_id = ?
		ORDER BY t.id, m.ordinal
	`, sheetID)
	if err != nil {
		return nil, errors.Wrap(err, "history store: load")
	}
	defer func() { _ = rows.Close() }()

	var out []transcript.Message
	for rows.Next() {
		var sender, text string
		if err := rows.Scan(&sender, &text); err != nil {
			return nil, errors.Wrap(err, "history store: scan message")
		}
		out = append(out, transcript.Message{Text: text, Sender: transcript.Sender(sender)})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "history store: load")
	}
	return out, nil
}

// Clear deletes every turn stored for the sheet
func (s *Store) Clear(ctx context.Context, sheetID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM turns WHERE sheet_id = ?`, sheetID); err != nil {
		return errors.Wrap(err, "history store: clear")
	}
	return nil
}

// TurnCount returns how many turns are stored for the sheet
func (s *Store) TurnCount(ctx context.Context, sheetID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM turns WHERE sheet_id = ?`, sheetID).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, "history store: count turns")
	}
	return n, nil
}
