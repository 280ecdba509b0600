package scheduler

import (
	"time"

	"github.com/matthiashuenaerts/prodplan/internal/calendar"
	"github.com/matthiashuenaerts/prodplan/pkg/models"
)

// atRiskDays is the minimum whole-day gap between the terminal step's finish
// and the installation date for a project to count as on track.
const atRiskDays = 3

// estimateCompletions classifies every ranked project against its
// installation date. A project whose terminal step was never committed in
// this run stays pending. DaysRemaining is always installation date minus
// today, independent of status.
func estimateCompletions(g *workGraph, rc *runContext, today time.Time) []*models.ProjectCompletion {
	out := make([]*models.ProjectCompletion, 0, len(g.projects))
	for _, p := range g.projects {
		c := &models.ProjectCompletion{
			ProjectID:        p.ID,
			ProjectName:      p.Name,
			InstallationDate: p.InstallationDate,
			Status:           models.CompletionStatusPending,
			DaysRemaining:    daysBetween(today, p.InstallationDate),
		}
		if g.terminal != nil {
			if end, ok := rc.finishOf(p.ID, g.terminal.ID); ok {
				finish := end
				c.EstimatedEnd = &finish
				gap := daysBetween(calendar.DayStart(end), p.InstallationDate)
				switch {
				case gap < 0:
					c.Status = models.CompletionStatusOverdue
				case gap < atRiskDays:
					c.Status = models.CompletionStatusAtRisk
				default:
					c.Status = models.CompletionStatusOnTrack
				}
			}
		}
		out = append(out, c)
	}
	return out
}

// daysBetween counts whole calendar days from a to b, negative when b
// precedes a.
func daysBetween(a, b time.Time) int {
	return int(calendar.DayStart(b).Sub(calendar.DayStart(a)).Hours() / 24)
}
