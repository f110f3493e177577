package dto

import "time"

// TaskRequest payload for task create/update. Field names follow the
// original client contract.
type TaskRequest struct {
	TaskName    string `json:"taskName"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
}

// TaskResponse projection of a task.
type TaskResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"userName"`
	TaskName    string    `json:"taskName"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	DueDate     string    `json:"dueDate"`
	CreatedAt   time.Time `json:"createdAt"`
}
