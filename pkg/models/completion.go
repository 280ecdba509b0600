package models

import "time"

type CompletionStatus string

const (
	CompletionStatusPending CompletionStatus = "pending"
	CompletionStatusOnTrack CompletionStatus = "on_track"
	CompletionStatusAtRisk  CompletionStatus = "at_risk"
	CompletionStatusOverdue CompletionStatus = "overdue"
)

// ProjectCompletion reports whether a project's terminal manufacturing step is
// projected to finish before its installation date.
type ProjectCompletion struct {
	ProjectID        string           `json:"project_id"`
	InstallationDate time.Time        `json:"installation_date"`
	EstimatedEnd     *time.Time       `json:"estimated_end"`
	Status           CompletionStatus `json:"status"`
	DaysRemaining    int              `json:"days_remaining"`

	// ProjectName is a helper field for joined queries.
	ProjectName string `json:"project_name,omitempty"`
}
