package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"taskboard/internal/alert"
	"taskboard/internal/db"
	"taskboard/internal/events"
	"taskboard/internal/logging"
	"taskboard/internal/migrate"
	"taskboard/internal/repo"
)

func newTestConfigurations(t *testing.T) (*Configurations, *sql.DB) {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	logger := logging.Discard()
	now := func() time.Time { return testNow }
	svc := &Configurations{
		Repo:   repo.NewConfigurationsRepo(conn, logger, alert.LogSink{Logger: logger}, now),
		Events: events.Writer{DB: conn, Now: now},
	}
	return svc, conn
}

func seedConfiguration(t *testing.T, conn *sql.DB, name, value string, hidden, editable bool) int64 {
	t.Helper()
	ts := testNow.UTC().Format(time.RFC3339Nano)
	res, err := conn.Exec(`INSERT INTO configurations(name,value,hidden,is_editable,created_at,updated_at) VALUES (?,?,?,?,?,?)`,
		name, value, hidden, editable, ts, ts)
	if err != nil {
		t.Fatalf("seed %s: %v", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("last insert id: %v", err)
	}
	return id
}

func TestGetConfigurationsHidesHiddenEntries(t *testing.T) {
	svc, conn := newTestConfigurations(t)
	seedConfiguration(t, conn, "visible.flag", "on", false, true)
	seedConfiguration(t, conn, "secret.flag", "off", true, false)

	items, err := svc.GetConfigurations(context.Background(), false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Name != "visible.flag" {
		t.Fatalf("got %+v", items)
	}

	withHidden, err := svc.GetConfigurations(context.Background(), true)
	if err != nil {
		t.Fatalf("list hidden: %v", err)
	}
	if len(withHidden) != 2 {
		t.Fatalf("got %d entries, want 2", len(withHidden))
	}
}

func TestUpdateConfigurationValue(t *testing.T) {
	svc, conn := newTestConfigurations(t)
	id := seedConfiguration(t, conn, "ui.theme", "light", false, true)

	updated, err := svc.UpdateConfigurationValue(context.Background(), id, "dark", "carol")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Value != "dark" {
		t.Fatalf("value = %q", updated.Value)
	}

	var evtType string
	if err := conn.QueryRow(`SELECT type FROM events ORDER BY id DESC LIMIT 1`).Scan(&evtType); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if evtType != "configuration.updated" {
		t.Fatalf("event = %s", evtType)
	}
}

func TestUpdateConfigurationValueNotEditable(t *testing.T) {
	svc, conn := newTestConfigurations(t)
	id := seedConfiguration(t, conn, "schema.version", "3", false, false)

	_, err := svc.UpdateConfigurationValue(context.Background(), id, "4", "carol")
	code, status := codeOf(t, err)
	if code != CodeConfigNotEditable || status != http.StatusForbidden {
		t.Fatalf("got %s/%d", code, status)
	}

	var value string
	if err := conn.QueryRow(`SELECT value FROM configurations WHERE id = ?`, id).Scan(&value); err != nil {
		t.Fatalf("read back: %v", err)
	}
	if value != "3" {
		t.Fatalf("value changed to %q", value)
	}
}

func TestUpdateConfigurationValueNotFound(t *testing.T) {
	svc, _ := newTestConfigurations(t)
	_, err := svc.UpdateConfigurationValue(context.Background(), 12345, "x", "carol")
	code, _ := codeOf(t, err)
	if code != CodeUnableGetConfig {
		t.Fatalf("code = %s", code)
	}
}
