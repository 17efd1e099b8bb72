package model

import "time"

// TaskStatus is the workflow state of a task. Any state may be set by
// an authorized mutator; no linear transition is enforced because
// status and priority are independent fields.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// TaskPriority is the urgency of a task, independent of its status.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a unit of work owned by exactly one user. Rows are returned
// to clients directly, hence the json tags.
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	CreatedAt   time.Time    `json:"createdAt"`
	UserID      string       `json:"userId"`
}

// TaskOwner is the minimal owner identity attached to admin listings.
type TaskOwner struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TaskWithOwner joins a task row with its owner for admin views.
type TaskWithOwner struct {
	Task
	Owner TaskOwner `json:"owner"`
}
