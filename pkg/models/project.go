package models

import "time"

type ProjectStatus string

const (
	ProjectStatusPlanned      ProjectStatus = "planned"
	ProjectStatusInProduction ProjectStatus = "in_production"
	ProjectStatusCompleted    ProjectStatus = "completed"
	ProjectStatusCancelled    ProjectStatus = "cancelled"
)

type Project struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Client           string        `json:"client"`
	Status           ProjectStatus `json:"status"`
	StartDate        time.Time     `json:"start_date"`
	InstallationDate time.Time     `json:"installation_date"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}
