package domain

import "time"

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Task belongs to exactly one user, referenced by username.
type Task struct {
	ID          string
	Username    string
	TaskName    string
	Description string
	Status      TaskStatus
	Priority    string
	DueDate     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
