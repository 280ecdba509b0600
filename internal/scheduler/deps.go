package scheduler

import (
	"time"

	"github.com/matthiashuenaerts/prodplan/internal/calendar"
	"github.com/matthiashuenaerts/prodplan/internal/metrics"
	"github.com/matthiashuenaerts/prodplan/pkg/models"
)

// resolveHolds schedules a project's hold tasks once their prerequisites are
// satisfied. It sweeps the pending set repeatedly, attempting every task whose
// prerequisites have committed finish instants; the sweep cap guards against
// prerequisite cycles that would otherwise loop forever. Tasks still pending
// after the cap are left unscheduled with a warning.
func (e *Engine) resolveHolds(rc *runContext, cal *calendar.Resolver, g *workGraph, projectID string, holds []*models.Task, globalStart time.Time) {
	pending := holds
	for sweep := 0; sweep < e.cfg.MaxSweeps && len(pending) > 0; sweep++ {
		var next []*models.Task
		for _, t := range pending {
			ready, minStart := prereqStart(rc, g, t, globalStart)
			if !ready {
				next = append(next, t)
				continue
			}
			// Scheduled or warned either way; the task leaves the
			// pending set.
			e.scheduleTask(rc, cal, g, t, minStart)
		}
		pending = next
	}

	for _, t := range pending {
		rc.unscheduled = append(rc.unscheduled, t.ID)
		rc.warnf("task %s (%s): prerequisites unresolved after %d sweeps, left unscheduled", t.ID, t.Title, e.cfg.MaxSweeps)
		if e.Logf != nil {
			e.Logf("task %s (%s): prerequisites unresolved after %d sweeps, left unscheduled", t.ID, t.Title, e.cfg.MaxSweeps)
		}
		metrics.TasksSkipped.WithLabelValues("unresolved prerequisites").Inc()
	}
}

// prereqStart reports whether all prerequisites of the task are satisfied
// within its project, and if so the earliest instant the task may start. A
// prerequisite is satisfied when no schedulable instance of it exists in the
// project, or when its instance has a committed finish instant; in the latter
// case that instant pushes the start forward.
func prereqStart(rc *runContext, g *workGraph, t *models.Task, globalStart time.Time) (bool, time.Time) {
	minStart := globalStart
	if t.StandardTaskID == nil {
		return true, minStart
	}
	for _, req := range g.prereqs[*t.StandardTaskID] {
		if !g.hasInstance(t.ProjectID, req) {
			continue
		}
		end, ok := rc.finishOf(t.ProjectID, req)
		if !ok {
			return false, time.Time{}
		}
		if end.After(minStart) {
			minStart = end
		}
	}
	return true, minStart
}
