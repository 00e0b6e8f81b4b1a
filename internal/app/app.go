// Package app wires the process: store, migrations, seed data and the
// service graph. Both the CLI and the tests boot through here.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"taskboard/internal/alert"
	"taskboard/internal/config"
	"taskboard/internal/db"
	"taskboard/internal/events"
	"taskboard/internal/logging"
	"taskboard/internal/migrate"
	"taskboard/internal/repo"
	"taskboard/internal/service"
)

// App is the assembled service graph over one open store handle.
type App struct {
	DB             *sql.DB
	Config         *config.Config
	Logger         *slog.Logger
	Alerts         alert.Sink
	Tasks          *service.Tasks
	Configurations *service.Configurations
	Events         events.Writer
}

// Options tweak construction; zero values mean production defaults.
type Options struct {
	Workspace string
	Config    *config.Config
	Logger    *slog.Logger
	Now       func() time.Time
}

// New opens the workspace store, applies migrations, seeds the default
// configurations and returns the wired services. The caller owns Close.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load(opts.Workspace)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	conn, err := db.Open(db.Config{Workspace: opts.Workspace})
	if err != nil {
		return nil, err
	}
	if err := migrate.Migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}
	if err := seedConfigurations(ctx, conn, now); err != nil {
		conn.Close()
		return nil, fmt.Errorf("seed configurations: %w", err)
	}

	alerts := alert.LogSink{Logger: logger}
	ev := events.Writer{DB: conn, Now: now}
	tasksRepo := repo.NewTasksRepo(conn, logger, alerts, now)
	configsRepo := repo.NewConfigurationsRepo(conn, logger, alerts, now)

	return &App{
		DB:             conn,
		Config:         cfg,
		Logger:         logger,
		Alerts:         alerts,
		Tasks:          &service.Tasks{Repo: tasksRepo, Events: ev},
		Configurations: &service.Configurations{Repo: configsRepo, Events: ev},
		Events:         ev,
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}

// seedConfigurations inserts the built-in configuration entries when they
// are missing. Existing rows are never touched, so operator edits survive
// restarts.
func seedConfigurations(ctx context.Context, conn *sql.DB, now func() time.Time) error {
	seeds := []struct {
		name       string
		value      string
		hidden     bool
		isEditable bool
	}{
		{"tasks.due_soon_days", "7", false, false},
		{"tasks.page_size_default", "10", false, true},
		{"ui.locale", "en-MY", false, true},
		{"maintenance.banner", "", false, true},
		{"internal.schema_owner", "taskboard", true, false},
	}
	ts := now().UTC().Format(time.RFC3339Nano)
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, s := range seeds {
		_, err := tx.ExecContext(ctx, `INSERT INTO configurations(name,value,hidden,is_editable,created_at,updated_at)
SELECT ?,?,?,?,?,?
WHERE NOT EXISTS (SELECT 1 FROM configurations WHERE name = ? AND deleted_at IS NULL)`,
			s.name, s.value, s.hidden, s.isEditable, ts, ts, s.name)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}
