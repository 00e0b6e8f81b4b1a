package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"taskboard/internal/service"
)

func registerTasks(api huma.API, svc *service.Tasks, loc string) {
	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks",
		Description: "Paginated task listing with optional name filter and sorting. get_all disables paging.",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		Page     int    `query:"page" minimum:"1"`
		PageSize int    `query:"page_size" minimum:"1"`
		GetAll   bool   `query:"get_all"`
		Name     string `query:"name"`
		Sort     string `query:"sort" example:"due_date_asc,created_at_desc"`
	}) (*struct {
		Body TasksPageResponse `json:"body"`
	}, error) {
		// huma rejects pointer query params; minimum:1 means a zero value
		// can only be "not provided".
		var pagePtr, pageSizePtr *int
		if input.Page != 0 {
			pagePtr = &input.Page
		}
		if input.PageSize != 0 {
			pageSizePtr = &input.PageSize
		}
		page, err := svc.GetTasks(ctx, service.GetTasksParams{
			Page:     pagePtr,
			PageSize: pageSizePtr,
			GetAll:   input.GetAll,
			Name:     input.Name,
			Sort:     input.Sort,
		})
		if err != nil {
			return nil, handleError(err, loc)
		}
		return &struct {
			Body TasksPageResponse `json:"body"`
		}{Body: tasksPageResponse(page)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get task",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID int64 `path:"id"`
	}) (*struct {
		Body TaskEnvelope `json:"body"`
	}, error) {
		task, err := svc.GetTaskByID(ctx, input.ID)
		if err != nil {
			return nil, handleError(err, loc)
		}
		return &struct {
			Body TaskEnvelope `json:"body"`
		}{Body: TaskEnvelope{Task: taskResponse(task)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/tasks/new",
		Summary:       "Create task",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		Body CreateTaskRequest `json:"body"`
	}) (*struct {
		Body TaskEnvelope `json:"body"`
	}, error) {
		dueDate, err := parseOptionalTime(input.Body.DueDate)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "due_date must be RFC 3339", nil)
		}
		desc := ""
		if input.Body.Description != nil {
			desc = *input.Body.Description
		}
		task, err := svc.CreateTask(ctx, service.CreateTaskParams{
			Name:        input.Body.Name,
			Description: desc,
			DueDate:     dueDate,
			ActorID:     actorIDFromContext(ctx),
		})
		if err != nil {
			return nil, handleError(err, loc)
		}
		return &struct {
			Body TaskEnvelope `json:"body"`
		}{Body: TaskEnvelope{Task: taskResponse(task)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPut,
		Path:        "/tasks/{id}",
		Summary:     "Update task",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   int64             `path:"id"`
		Body UpdateTaskRequest `json:"body"`
	}) (*struct {
		Body TaskEnvelope `json:"body"`
	}, error) {
		dueDate, err := parseOptionalTime(input.Body.DueDate)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "due_date must be RFC 3339", nil)
		}
		task, err := svc.UpdateTaskByID(ctx, input.ID, service.UpdateTaskParams{
			Name:        input.Body.Name,
			Description: input.Body.Description,
			DueDate:     dueDate,
			ActorID:     actorIDFromContext(ctx),
		})
		if err != nil {
			return nil, handleError(err, loc)
		}
		return &struct {
			Body TaskEnvelope `json:"body"`
		}{Body: TaskEnvelope{Task: taskResponse(task)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/tasks/{id}",
		Summary:     "Delete task",
		Description: "Soft delete; the task disappears from reads but the row is retained.",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID int64 `path:"id"`
	}) (*struct {
		Body TaskEnvelope `json:"body"`
	}, error) {
		task, err := svc.DeleteTaskByID(ctx, input.ID, actorIDFromContext(ctx))
		if err != nil {
			return nil, handleError(err, loc)
		}
		return &struct {
			Body TaskEnvelope `json:"body"`
		}{Body: TaskEnvelope{Task: taskResponse(task)}}, nil
	})
}
