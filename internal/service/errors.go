// Package service holds the business rules between the HTTP/CLI edges and
// the repositories. Failures surface as *Error values carrying a stable
// code; the transports translate those into their own envelopes.
package service

import (
	"errors"
	"net/http"
)

// Stable error codes. These are the machine-readable API contract;
// clients key translations and retries off them.
const (
	CodeInternal           = "INTERNAL_SERVER_ERROR"
	CodeUnableGetTasks     = "UNABLE_GET_TASKS"
	CodeUnableGetTask      = "UNABLE_GET_TASK"
	CodeUnableCreateTask   = "UNABLE_CREATE_TASK"
	CodeUnableUpdateTask   = "UNABLE_UPDATE_TASK"
	CodeUnableDeleteTask   = "UNABLE_DELETE_TASK"
	CodeMissingTaskName    = "MISSING_TASK_NAME"
	CodeUnableGetConfigs   = "UNABLE_GET_CONFIGURATIONS"
	CodeUnableGetConfig    = "UNABLE_GET_CONFIGURATION"
	CodeUnableUpdateConfig = "UNABLE_UPDATE_CONFIGURATION"
	CodeConfigNotEditable  = "CONFIGURATION_NOT_EDITABLE"
	CodeInvalidSortColumn  = "INVALID_SORT_COLUMN"
)

// Error is a domain failure with a stable code and an HTTP-ish status
// class. Err, when set, keeps the underlying cause for logs only.
type Error struct {
	Code   string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a coded error.
func E(code string, status int) *Error {
	return &Error{Code: code, Status: status}
}

// wrap attaches a cause to a coded error.
func wrap(code string, status int, err error) *Error {
	return &Error{Code: code, Status: status, Err: err}
}

// AsError extracts the coded error, defaulting anything else to the
// internal code so raw failures never cross the boundary.
func AsError(err error) *Error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return wrap(CodeInternal, http.StatusInternalServerError, err)
}
