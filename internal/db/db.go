// Package db opens the workspace-scoped SQLite store. Every workspace
// owns one database file under its .taskboard directory; the handle is
// created once at process start and shared.
package db

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const (
	workspaceDir = ".taskboard"
	dbFileName   = "taskboard.db"
)

// Connection pragmas. The API serves concurrent requests over a single
// file, so WAL plus a busy timeout keeps writers from failing fast with
// SQLITE_BUSY; foreign keys are off by default in SQLite and must be
// switched on per connection.
var pragmas = []string{
	"foreign_keys(1)",
	"busy_timeout(5000)",
	"journal_mode(wal)",
}

type Config struct {
	Workspace string
}

// EnsureWorkspace creates the workspace store directory if missing and
// returns its path.
func EnsureWorkspace(workspace string) (string, error) {
	dir := filepath.Join(workspace, workspaceDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// Open opens (creating if needed) the workspace database.
func Open(cfg Config) (*sql.DB, error) {
	if _, err := EnsureWorkspace(cfg.Workspace); err != nil {
		return nil, err
	}
	conn, err := sql.Open("sqlite", dsn(Path(cfg.Workspace)))
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// Path returns the database file path for the workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, workspaceDir, dbFileName)
}

func dsn(path string) string {
	var b strings.Builder
	b.WriteString("file:")
	b.WriteString(path)
	b.WriteString("?cache=shared")
	for _, p := range pragmas {
		b.WriteString("&_pragma=")
		b.WriteString(p)
	}
	return b.String()
}
