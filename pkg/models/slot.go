package models

import "time"

// ScheduleSlot is one contiguous time reservation for one task, one employee
// and one workstation. A single task may produce multiple slots when its
// duration spans breaks or day boundaries. WorkerIndex is a cyclic counter
// (0..9) used only for display grouping downstream.
type ScheduleSlot struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	Workstation string    `json:"workstation"`
	EmployeeID  string    `json:"employee_id"`
	Day         time.Time `json:"day"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	WorkerIndex int       `json:"worker_index"`

	// TaskTitle is a helper field for joined queries.
	TaskTitle string `json:"task_title,omitempty"`
}
