package service

import (
	"context"
	"net/http"
	"strconv"

	"taskboard/internal/domain"
	"taskboard/internal/events"
	"taskboard/internal/repo"
)

// Configurations is the business layer over runtime configuration entries.
// Only the value of an editable entry can change; name, hidden and
// is_editable are fixed by the migrations that seeded them.
type Configurations struct {
	Repo   *repo.ConfigurationsRepo
	Events events.Writer
}

// GetConfigurations lists visible configurations. includeHidden is for
// operator tooling; the HTTP surface never sets it.
func (s *Configurations) GetConfigurations(ctx context.Context, includeHidden bool) ([]domain.Configuration, error) {
	configs, err := s.Repo.ListConfigurations(ctx, includeHidden, true)
	if err != nil {
		return nil, wrap(CodeUnableGetConfigs, http.StatusNotFound, err)
	}
	if configs == nil {
		configs = []domain.Configuration{}
	}
	return configs, nil
}

// GetConfigurationByID returns one configuration or UNABLE_GET_CONFIGURATION.
func (s *Configurations) GetConfigurationByID(ctx context.Context, id int64) (domain.Configuration, error) {
	cfg, ok, err := s.Repo.GetConfigurationByID(ctx, id, true)
	if err != nil {
		return domain.Configuration{}, wrap(CodeUnableGetConfig, http.StatusNotFound, err)
	}
	if !ok {
		return domain.Configuration{}, E(CodeUnableGetConfig, http.StatusNotFound)
	}
	return cfg, nil
}

// UpdateConfigurationValue changes the value of an editable configuration
// and audits the change. Non-editable entries are rejected before any
// write with CONFIGURATION_NOT_EDITABLE.
func (s *Configurations) UpdateConfigurationValue(ctx context.Context, id int64, value, actorID string) (domain.Configuration, error) {
	cfg, err := s.GetConfigurationByID(ctx, id)
	if err != nil {
		return domain.Configuration{}, err
	}
	if !cfg.IsEditable {
		return domain.Configuration{}, E(CodeConfigNotEditable, http.StatusForbidden)
	}
	tx, err := s.Repo.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Configuration{}, wrap(CodeUnableUpdateConfig, http.StatusNotFound, err)
	}
	defer tx.Rollback()
	updated, err := s.Repo.Update(ctx, repo.NewPatch().Set("value", value), repo.Query{
		Where: repo.And(repo.Eq("id", id), repo.IsNull("deleted_at")),
		Tx:    tx,
	})
	if err != nil {
		return domain.Configuration{}, wrap(CodeUnableUpdateConfig, http.StatusNotFound, err)
	}
	if len(updated) == 0 {
		return domain.Configuration{}, E(CodeUnableUpdateConfig, http.StatusNotFound)
	}
	if actorID == "" {
		actorID = "system"
	}
	err = s.Events.Append(ctx, tx, "configuration.updated", "configuration", strconv.FormatInt(id, 10), actorID, events.EventPayload{
		"name": updated[0].Name,
	})
	if err != nil {
		return domain.Configuration{}, wrap(CodeUnableUpdateConfig, http.StatusNotFound, err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Configuration{}, wrap(CodeUnableUpdateConfig, http.StatusNotFound, err)
	}
	return updated[0], nil
}
