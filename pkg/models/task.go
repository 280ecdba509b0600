package models

import "time"

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusHold       TaskStatus = "hold"
	TaskStatusCompleted  TaskStatus = "completed"
)

type Task struct {
	ID              string     `json:"id"`
	ProjectID       string     `json:"project_id"`
	Title           string     `json:"title"`
	DurationMinutes int        `json:"duration_minutes"`
	Status          TaskStatus `json:"status"`
	StandardTaskID  *string    `json:"standard_task_id"`
	OrderKey        string     `json:"order_key"`
	Workstations    []string   `json:"workstations"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// ProjectName and StandardTaskName are helper fields for joined queries.
	ProjectName      string `json:"project_name,omitempty"`
	StandardTaskName string `json:"standard_task_name,omitempty"`
}

// Schedulable reports whether the task is a scheduling candidate.
func (t *Task) Schedulable() bool {
	switch t.Status {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusHold:
		return true
	}
	return false
}
