package repo

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"taskboard/internal/alert"
	"taskboard/internal/domain"
)

// ConfigurationsRepo specializes the generic repository for the
// configurations table. Hidden entries are filtered at query time so
// the default listing never leaks them.
type ConfigurationsRepo struct {
	*Repository[domain.Configuration]
}

func NewConfigurationsRepo(db *sql.DB, logger *slog.Logger, alerts alert.Sink, now func() time.Time) *ConfigurationsRepo {
	r := &Repository[domain.Configuration]{
		DB: db,
		Table: Table[domain.Configuration]{
			Name:          "configurations",
			PK:            "id",
			Columns:       []string{"id", "name", "value", "hidden", "is_editable", "created_at", "updated_at", "deleted_at"},
			InsertColumns: []string{"name", "value", "hidden", "is_editable"},
			Scan:          scanConfiguration,
			Values: func(c domain.Configuration) []any {
				return []any{c.Name, c.Value, c.Hidden, c.IsEditable}
			},
		},
		Timestamps:       DefaultTimestamps(),
		SoftDeleteColumn: "deleted_at",
		Logger:           logger,
		Alerts:           alerts,
		Now:              now,
	}
	return &ConfigurationsRepo{Repository: r}
}

func scanConfiguration(s RowScanner) (domain.Configuration, error) {
	var c domain.Configuration
	var created, updated string
	var deleted sql.NullString
	if err := s.Scan(&c.ID, &c.Name, &c.Value, &c.Hidden, &c.IsEditable, &created, &updated, &deleted); err != nil {
		return c, err
	}
	var err error
	if c.CreatedAt, err = scanTime(created); err != nil {
		return c, err
	}
	if c.UpdatedAt, err = scanTime(updated); err != nil {
		return c, err
	}
	if c.DeletedAt, err = scanNullTime(deleted); err != nil {
		return c, err
	}
	return c, nil
}

// ListConfigurations returns live configurations ordered by name. Hidden
// entries are excluded unless includeHidden is set.
func (r *ConfigurationsRepo) ListConfigurations(ctx context.Context, includeHidden, strict bool) ([]domain.Configuration, error) {
	var where Cond
	if !includeHidden {
		where = Eq("hidden", false)
	}
	return r.FindMany(ctx, Query{
		Where:   where,
		OrderBy: []Order{{Column: "name"}},
		Strict:  strict,
	})
}

// GetConfigurationByID returns the live configuration with the given id.
func (r *ConfigurationsRepo) GetConfigurationByID(ctx context.Context, id int64, strict bool) (domain.Configuration, bool, error) {
	return r.FindFirst(ctx, Query{Where: Eq("id", id), Strict: strict})
}

// GetConfigurationByName looks a configuration up by its unique name.
func (r *ConfigurationsRepo) GetConfigurationByName(ctx context.Context, name string, strict bool) (domain.Configuration, bool, error) {
	return r.FindFirst(ctx, Query{Where: Eq("name", name), Strict: strict})
}
