package domain

import "time"

// TaskStatus is derived from due_date at read time and never persisted.
type TaskStatus string

const (
	StatusNotUrgent TaskStatus = "not_urgent"
	StatusDueSoon   TaskStatus = "due_soon"
	StatusOverdue   TaskStatus = "overdue"
)

// DueSoonWindow is the horizon within which an upcoming due date counts as due_soon.
const DueSoonWindow = 7 * 24 * time.Hour

// StatusFor derives the task status from a due date against a fixed "now".
// The due date boundary at now+DueSoonWindow is inclusive.
func StatusFor(dueDate *time.Time, now time.Time) TaskStatus {
	if dueDate == nil {
		return StatusNotUrgent
	}
	if dueDate.Before(now) {
		return StatusOverdue
	}
	if !dueDate.After(now.Add(DueSoonWindow)) {
		return StatusDueSoon
	}
	return StatusNotUrgent
}

type Task struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty" format:"date-time"`
	Status      TaskStatus `json:"status,omitempty" enum:"not_urgent,due_soon,overdue"`
	CreatedAt   time.Time  `json:"created_at" format:"date-time"`
	UpdatedAt   time.Time  `json:"updated_at" format:"date-time"`
	DeletedAt   *time.Time `json:"-"`
}

type Configuration struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Value      string     `json:"value"`
	Hidden     bool       `json:"hidden"`
	IsEditable bool       `json:"is_editable"`
	CreatedAt  time.Time  `json:"created_at" format:"date-time"`
	UpdatedAt  time.Time  `json:"updated_at" format:"date-time"`
	DeletedAt  *time.Time `json:"-"`
}

type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts" format:"date-time"`
	Type       string `json:"type"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty"`
	ActorID    string `json:"actor_id"`
	Payload    string `json:"payload_json"`
}
