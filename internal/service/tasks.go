package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taskboard/internal/domain"
	"taskboard/internal/events"
	"taskboard/internal/repo"
)

// Tasks is the task business layer. Mutations run inside a transaction
// that also carries the audit event, so the record and its trail commit
// together.
type Tasks struct {
	Repo   *repo.TasksRepo
	Events events.Writer
}

// GetTasksParams mirror the listing query surface. Page is 1-indexed;
// GetAll disables paging entirely.
type GetTasksParams struct {
	Page     *int
	PageSize *int
	GetAll   bool
	Name     string
	Sort     string
	Strict   bool
}

// GetTasks lists tasks. In strict mode an absent collection raises
// UNABLE_GET_TASKS; otherwise the repository's defaults apply and the
// caller gets an empty page.
func (s *Tasks) GetTasks(ctx context.Context, p GetTasksParams) (*repo.TaskPage, error) {
	orderBy, err := repo.ParseTaskSort(p.Sort)
	if err != nil {
		return nil, wrap(CodeInvalidSortColumn, http.StatusBadRequest, err)
	}
	var limit, offset *int
	if !p.GetAll {
		limit = p.PageSize
		offset = repo.PageOffset(p.Page, p.PageSize)
	}
	page, err := s.Repo.ListTasks(ctx, repo.ListTasksParams{
		Name:      p.Name,
		Limit:     limit,
		Offset:    offset,
		OrderBy:   orderBy,
		WithCount: true,
		Strict:    p.Strict,
	})
	if err != nil {
		if errors.Is(err, repo.ErrInvalidSortColumn) {
			return nil, wrap(CodeInvalidSortColumn, http.StatusBadRequest, err)
		}
		return nil, wrap(CodeUnableGetTasks, http.StatusNotFound, err)
	}
	if page == nil || page.Collections == nil {
		if p.Strict {
			return nil, E(CodeUnableGetTasks, http.StatusNotFound)
		}
		empty := repo.TaskPage{Collections: []domain.Task{}}
		if page != nil {
			empty.Pagination = page.Pagination
		}
		page = &empty
	}
	return page, nil
}

// GetTaskByID returns one task or UNABLE_GET_TASK when it does not exist
// (or is soft-deleted).
func (s *Tasks) GetTaskByID(ctx context.Context, id int64) (domain.Task, error) {
	task, ok, err := s.Repo.GetTaskByID(ctx, id, true)
	if err != nil {
		return domain.Task{}, wrap(CodeUnableGetTask, http.StatusNotFound, err)
	}
	if !ok {
		return domain.Task{}, E(CodeUnableGetTask, http.StatusNotFound)
	}
	return task, nil
}

// CreateTaskParams carry the caller-supplied fields of a new task.
type CreateTaskParams struct {
	Name        string
	Description string
	DueDate     *time.Time
	ActorID     string
}

// CreateTask validates, inserts and audits a new task. A blank name is
// rejected before anything touches the store.
func (s *Tasks) CreateTask(ctx context.Context, p CreateTaskParams) (domain.Task, error) {
	if strings.TrimSpace(p.Name) == "" {
		return domain.Task{}, E(CodeMissingTaskName, http.StatusBadRequest)
	}
	tx, err := s.Repo.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, wrap(CodeUnableCreateTask, http.StatusNotFound, err)
	}
	defer tx.Rollback()
	task, ok, err := s.Repo.CreateOne(ctx, domain.Task{
		Name:        p.Name,
		Description: p.Description,
		DueDate:     p.DueDate,
	}, tx)
	if err != nil {
		return domain.Task{}, wrap(CodeUnableCreateTask, http.StatusNotFound, err)
	}
	if !ok {
		return domain.Task{}, E(CodeUnableCreateTask, http.StatusNotFound)
	}
	if err := s.audit(ctx, tx, "task.created", task, p.ActorID); err != nil {
		return domain.Task{}, wrap(CodeUnableCreateTask, http.StatusNotFound, err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, wrap(CodeUnableCreateTask, http.StatusNotFound, err)
	}
	return task, nil
}

// UpdateTaskParams are the optional fields of a task update. Nil means
// "leave unchanged"; there is no way to clear a field to null.
type UpdateTaskParams struct {
	Name        *string
	Description *string
	DueDate     *time.Time
	ActorID     string
}

// UpdateTaskByID patches the task and returns it as stored. Updating a
// missing or deleted task raises UNABLE_UPDATE_TASK. An empty patch only
// refreshes updated_at, matching the repository's forced stamping.
func (s *Tasks) UpdateTaskByID(ctx context.Context, id int64, p UpdateTaskParams) (domain.Task, error) {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return domain.Task{}, E(CodeMissingTaskName, http.StatusBadRequest)
	}
	patch := repo.NewPatch()
	if p.Name != nil {
		patch.Set("name", *p.Name)
	}
	if p.Description != nil {
		patch.Set("description", *p.Description)
	}
	if p.DueDate != nil {
		patch.Set("due_date", p.DueDate.UTC().Format(time.RFC3339Nano))
	}
	tx, err := s.Repo.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, wrap(CodeUnableUpdateTask, http.StatusNotFound, err)
	}
	defer tx.Rollback()
	updated, err := s.Repo.Update(ctx, patch, repo.Query{
		Where: repo.And(repo.Eq("id", id), repo.IsNull("deleted_at")),
		Tx:    tx,
	})
	if err != nil {
		return domain.Task{}, wrap(CodeUnableUpdateTask, http.StatusNotFound, err)
	}
	if len(updated) == 0 {
		return domain.Task{}, E(CodeUnableUpdateTask, http.StatusNotFound)
	}
	task := updated[0]
	if err := s.audit(ctx, tx, "task.updated", task, p.ActorID); err != nil {
		return domain.Task{}, wrap(CodeUnableUpdateTask, http.StatusNotFound, err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, wrap(CodeUnableUpdateTask, http.StatusNotFound, err)
	}
	return task, nil
}

// DeleteTaskByID soft-deletes the task; it disappears from every read but
// the row survives for audit. Deleting an already-deleted or unknown task
// raises UNABLE_DELETE_TASK.
func (s *Tasks) DeleteTaskByID(ctx context.Context, id int64, actorID string) (domain.Task, error) {
	tx, err := s.Repo.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, wrap(CodeUnableDeleteTask, http.StatusNotFound, err)
	}
	defer tx.Rollback()
	deleted, err := s.Repo.SoftDelete(ctx, repo.Query{Where: repo.Eq("id", id), Tx: tx})
	if err != nil {
		return domain.Task{}, wrap(CodeUnableDeleteTask, http.StatusNotFound, err)
	}
	if len(deleted) == 0 {
		return domain.Task{}, E(CodeUnableDeleteTask, http.StatusNotFound)
	}
	task := deleted[0]
	if err := s.audit(ctx, tx, "task.deleted", task, actorID); err != nil {
		return domain.Task{}, wrap(CodeUnableDeleteTask, http.StatusNotFound, err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, wrap(CodeUnableDeleteTask, http.StatusNotFound, err)
	}
	return task, nil
}

func (s *Tasks) audit(ctx context.Context, tx *sql.Tx, evtType string, task domain.Task, actorID string) error {
	if actorID == "" {
		actorID = "system"
	}
	return s.Events.Append(ctx, tx, evtType, "task", strconv.FormatInt(task.ID, 10), actorID, events.EventPayload{
		"name": task.Name,
	})
}
