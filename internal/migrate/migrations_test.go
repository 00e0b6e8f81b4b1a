package migrate

import (
	"testing"

	"taskboard/internal/db"
)

func TestMigrateIsIdempotent(t *testing.T) {
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	v, err := Version(conn)
	if err != nil {
		t.Fatalf("version before migrate: %v", err)
	}
	if v != 0 {
		t.Fatalf("fresh store version = %d, want 0", v)
	}

	if err := Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	first, err := Version(conn)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if first == 0 {
		t.Fatal("no migrations applied")
	}

	// A second run must be a no-op.
	if err := Migrate(conn); err != nil {
		t.Fatalf("re-migrate: %v", err)
	}
	again, err := Version(conn)
	if err != nil {
		t.Fatalf("version after re-migrate: %v", err)
	}
	if again != first {
		t.Fatalf("version moved from %d to %d on re-run", first, again)
	}

	for _, table := range []string{"tasks", "configurations", "events"} {
		var name string
		err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}
