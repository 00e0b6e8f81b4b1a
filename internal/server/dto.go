package server

import (
	"time"

	"taskboard/internal/domain"
	"taskboard/internal/repo"
)

// Request payloads

type CreateTaskRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty" format:"date-time"`
}

type UpdateTaskRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty" format:"date-time"`
}

type UpdateConfigurationRequest struct {
	Value string `json:"value"`
}

// Response payloads

type TaskResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty" format:"date-time"`
	Status      string  `json:"status" enum:"not_urgent,due_soon,overdue"`
	CreatedAt   string  `json:"created_at" format:"date-time"`
	UpdatedAt   string  `json:"updated_at" format:"date-time"`
}

type PaginationResponse struct {
	TotalCount  *int64 `json:"total_count"`
	TotalPages  *int   `json:"total_pages"`
	CurrentPage *int   `json:"current_page"`
	PageSize    *int   `json:"page_size"`
}

type TasksPageResponse struct {
	Collections []TaskResponse     `json:"collections"`
	Pagination  PaginationResponse `json:"pagination"`
}

// TaskEnvelope wraps single-task responses.
type TaskEnvelope struct {
	Task TaskResponse `json:"task"`
}

type ConfigurationResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Value      string `json:"value"`
	Hidden     bool   `json:"hidden"`
	IsEditable bool   `json:"is_editable"`
	CreatedAt  string `json:"created_at" format:"date-time"`
	UpdatedAt  string `json:"updated_at" format:"date-time"`
}

type EventResponse struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts" format:"date-time"`
	Type       string `json:"type"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty"`
	ActorID    string `json:"actor_id"`
	Payload    string `json:"payload_json"`
}

func taskResponse(t domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		DueDate:     formatOptionalTime(t.DueDate),
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func tasksPageResponse(page *repo.TaskPage) TasksPageResponse {
	items := make([]TaskResponse, 0, len(page.Collections))
	for _, t := range page.Collections {
		items = append(items, taskResponse(t))
	}
	return TasksPageResponse{
		Collections: items,
		Pagination: PaginationResponse{
			TotalCount:  page.Pagination.TotalCount,
			TotalPages:  page.Pagination.TotalPages,
			CurrentPage: page.Pagination.CurrentPage,
			PageSize:    page.Pagination.PageSize,
		},
	}
}

func configurationResponse(c domain.Configuration) ConfigurationResponse {
	return ConfigurationResponse{
		ID:         c.ID,
		Name:       c.Name,
		Value:      c.Value,
		Hidden:     c.Hidden,
		IsEditable: c.IsEditable,
		CreatedAt:  c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func mapConfigurations(items []domain.Configuration) []ConfigurationResponse {
	out := make([]ConfigurationResponse, 0, len(items))
	for _, c := range items {
		out = append(out, configurationResponse(c))
	}
	return out
}

func eventResponse(e domain.Event) EventResponse {
	return EventResponse{
		ID:         e.ID,
		TS:         e.TS,
		Type:       e.Type,
		EntityKind: e.EntityKind,
		EntityID:   e.EntityID,
		ActorID:    e.ActorID,
		Payload:    e.Payload,
	}
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func parseOptionalTime(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
