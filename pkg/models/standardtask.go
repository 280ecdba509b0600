package models

import "time"

// StandardTask is a reusable task-type identity ("skill category"). Employees
// are certified per standard task, and prerequisite links are expressed between
// standard tasks. IsTerminal flags the last manufacturing step of a project.
type StandardTask struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	OrderKey   string    `json:"order_key"`
	Team       string    `json:"team"`
	IsTerminal bool      `json:"is_terminal"`
	CreatedAt  time.Time `json:"created_at"`
}

type Employee struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Team      string    `json:"team"`
	CreatedAt time.Time `json:"created_at"`
}
