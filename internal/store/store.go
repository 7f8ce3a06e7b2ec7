// Package store provides the SQLite-backed local issue store.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB is the local issue store.
type DB struct {
	path string
	conn *sql.DB
	now  func() time.Time
}

// timeLayout is fixed-width so that stored timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const createRepositoriesTableSQL = `
CREATE TABLE IF NOT EXISTS repositories (
    project_id TEXT PRIMARY KEY,
    owner TEXT NOT NULL,
    name TEXT NOT NULL,
    full_name TEXT NOT NULL,
    token TEXT,
    html_url TEXT,
    active INTEGER NOT NULL DEFAULT 1,
    last_sync_at TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
`

// createIssuesTableSQL allows many NULL remote numbers per project but at most
// one local issue per (project, remote number).
const createIssuesTableSQL = `
CREATE TABLE IF NOT EXISTS issues (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    remote_id INTEGER,
    remote_node_id TEXT,
    remote_number INTEGER,
    remote_url TEXT,
    remote_html_url TEXT,
    repository_owner TEXT,
    repository_name TEXT,
    title TEXT NOT NULL,
    body TEXT,
    status TEXT NOT NULL,
    priority TEXT,
    severity TEXT,
    issue_type TEXT,
    assignee_id TEXT,
    assignee_name TEXT,
    assignee_avatar TEXT,
    reporter_id TEXT,
    reporter_name TEXT,
    reporter_avatar TEXT,
    closed_at TEXT,
    sync_status TEXT NOT NULL,
    sync_error TEXT,
    last_sync_at TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    UNIQUE(project_id, remote_number)
);
CREATE INDEX IF NOT EXISTS idx_issues_project ON issues(project_id);
`

const createLabelsTableSQL = `
CREATE TABLE IF NOT EXISTS issue_labels (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    issue_id TEXT NOT NULL,
    name TEXT NOT NULL,
    color TEXT NOT NULL,
    description TEXT,
    remote_id INTEGER,
    remote_node_id TEXT,
    UNIQUE(issue_id, name)
);
`

const createCommentsTableSQL = `
CREATE TABLE IF NOT EXISTS issue_comments (
    id TEXT PRIMARY KEY,
    issue_id TEXT NOT NULL,
    content TEXT NOT NULL,
    author_id TEXT,
    author_name TEXT,
    author_avatar TEXT,
    remote_id INTEGER,
    remote_node_id TEXT,
    remote_url TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    UNIQUE(issue_id, remote_id)
);
`

// Open creates or opens a SQLite database at the given path and initializes the schema.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer; one connection avoids
	// "database is locked" when several runs share the store.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	for name, stmt := range map[string]string{
		"repositories":   createRepositoriesTableSQL,
		"issues":         createIssuesTableSQL,
		"issue_labels":   createLabelsTableSQL,
		"issue_comments": createCommentsTableSQL,
	} {
		if _, err := conn.Exec(stmt); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create %s table: %w", name, err)
		}
	}

	return &DB{
		path: path,
		conn: conn,
		now:  time.Now,
	}, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
