package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/samsaffron/jarvis/internal/config"
	"github.com/samsaffron/jarvis/internal/llm"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Schema for the sessions database.
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS turns (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    sequence INTEGER NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('user', 'assistant', 'system')),
    content TEXT NOT NULL,
    created_at TIMESTAMP,
    UNIQUE (session_id, sequence)
);

CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at DESC);
CREATE INDEX IF NOT EXISTS idx_turns_session_id ON turns(session_id, sequence);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL
);
`

// schemaVersion is the current schema version. Increment when the schema
// changes and add the upgrade to initSchema.
const schemaVersion = 1

// NewSQLiteStore creates a new SQLite-based session store.
func NewSQLiteStore(cfg config.SessionConfig) (*SQLiteStore, error) {
	dbPath, err := GetDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("get db path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// initSchema creates the schema on a fresh database. The common case, a
// current schema, costs a single SELECT.
func initSchema(db *sql.DB) error {
	var currentVersion int
	versionErr := db.QueryRow("SELECT version FROM schema_version").Scan(&currentVersion)
	if versionErr == nil && currentVersion >= schemaVersion {
		return nil
	}
	hasVersion := versionErr == nil
	if !hasVersion && !errors.Is(versionErr, sql.ErrNoRows) && !strings.Contains(versionErr.Error(), "no such table") {
		return fmt.Errorf("get current version: %w", versionErr)
	}

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create base schema: %w", err)
	}

	if !hasVersion {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("insert initial version: %w", err)
		}
		return nil
	}
	if _, err := db.Exec("UPDATE schema_version SET version = ?", schemaVersion); err != nil {
		return fmt.Errorf("update version to %d: %w", schemaVersion, err)
	}
	return nil
}

// Create inserts a new session.
func (s *SQLiteStore) Create(ctx context.Context, sess *Session) error {
	if sess.ID == "" {
		sess.ID = NewID()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}
	if sess.UpdatedAt.IsZero() {
		sess.UpdatedAt = sess.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		sess.ID, sess.Title, sess.CreatedAt, sess.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID. It returns nil, nil when no session matches.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, created_at, updated_at
		FROM sessions WHERE id = ?`, id)
	return scanSession(row)
}

// Latest returns the most recently updated session.
func (s *SQLiteStore) Latest(ctx context.Context) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, created_at, updated_at
		FROM sessions ORDER BY updated_at DESC, rowid DESC LIMIT 1`)
	return scanSession(row)
}

func scanSession(row *sql.Row) (*Session, error) {
	var sess Session
	err := row.Scan(&sess.ID, &sess.Title, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	return &sess, nil
}

// AddTurn appends a turn with the next sequence number for the session.
func (s *SQLiteStore) AddTurn(ctx context.Context, sessionID string, turn llm.Turn) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var seq int
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(sequence), -1) + 1 FROM turns WHERE session_id = ?",
		sessionID).Scan(&seq)
	if err != nil {
		return fmt.Errorf("get next sequence: %w", err)
	}

	var createdAt sql.NullTime
	if turn.HasTimestamp() {
		createdAt = sql.NullTime{Time: turn.Timestamp, Valid: true}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO turns (session_id, sequence, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		sessionID, seq, string(turn.Role), turn.Content, createdAt)
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}

	title := ""
	if turn.Role == llm.RoleUser {
		title = TitleFrom(turn.Content)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE sessions
		SET updated_at = ?, title = CASE WHEN title = '' THEN ? ELSE title END
		WHERE id = ?`,
		time.Now(), title, sessionID)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}

	return tx.Commit()
}

// Turns returns all turns of a session in insertion order.
func (s *SQLiteStore) Turns(ctx context.Context, sessionID string) ([]llm.Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, created_at
		FROM turns WHERE session_id = ?
		ORDER BY sequence ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var turns []llm.Turn
	for rows.Next() {
		var role, content string
		var createdAt sql.NullTime
		if err := rows.Scan(&role, &content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turn := llm.Turn{Role: llm.Role(role), Content: content}
		if createdAt.Valid {
			turn.Timestamp = createdAt.Time
		}
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}

// List returns sessions, most recently updated first.
func (s *SQLiteStore) List(ctx context.Context, opts ListOptions) ([]Summary, error) {
	query := `
		SELECT s.id, s.title, s.created_at, s.updated_at,
		       (SELECT COUNT(*) FROM turns WHERE session_id = s.id) AS turn_count
		FROM sessions s
		ORDER BY s.updated_at DESC, s.rowid DESC`
	args := []any{}
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.CreatedAt, &sum.UpdatedAt, &sum.TurnCount); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
