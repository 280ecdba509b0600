// Package scheduler implements the production-floor scheduling engine: the
// calendar-aware slot search, the employee-conflict arbitration and the
// bounded-sweep prerequisite resolution that together produce a time-ordered
// assignment plan for the most urgent projects.
package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/matthiashuenaerts/prodplan/internal/calendar"
	"github.com/matthiashuenaerts/prodplan/internal/metrics"
	"github.com/matthiashuenaerts/prodplan/pkg/models"
)

// Config tunes one scheduling run. Zero values fall back to the reference
// behavior: 15-minute search steps, a 365-day horizon, 10 dependency sweeps
// and the 20 most urgent projects.
type Config struct {
	StepMinutes  int
	HorizonDays  int
	MaxSweeps    int
	ProjectLimit int
	DefaultTeam  string
}

func (c Config) withDefaults() Config {
	if c.StepMinutes <= 0 {
		c.StepMinutes = 15
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = 365
	}
	if c.MaxSweeps <= 0 {
		c.MaxSweeps = 10
	}
	if c.ProjectLimit <= 0 {
		c.ProjectLimit = 20
	}
	if c.DefaultTeam == "" {
		c.DefaultTeam = "production"
	}
	return c
}

// Result is the output of one scheduling run.
type Result struct {
	From        time.Time                   `json:"from"`
	Projects    []*models.Project           `json:"projects"`
	Slots       []*models.ScheduleSlot      `json:"slots"`
	Completions []*models.ProjectCompletion `json:"completions"`
	Unscheduled []string                    `json:"unscheduled"` // task IDs left without a slot
	Warnings    []string                    `json:"warnings"`
}

// Engine runs one synchronous scheduling pass per Run call. All mutable state
// lives in a run-scoped context, so an Engine may be reused across runs as
// long as runs do not execute concurrently against the same calendar and
// employee data.
type Engine struct {
	src Source
	cfg Config

	// Logf, when set, receives warning lines as they are emitted.
	Logf func(format string, args ...any)
}

func New(src Source, cfg Config) *Engine {
	return &Engine{src: src, cfg: cfg.withDefaults()}
}

// Run schedules the pending tasks of the most urgent projects, starting no
// earlier than from. Tasks are attempted in project-urgency order, then
// in-project order; hold tasks wait for their prerequisites. Upstream fetch
// failures abort the run; unassignable tasks and unresolved prerequisite
// cycles only produce warnings.
func (e *Engine) Run(ctx context.Context, from time.Time) (*Result, error) {
	started := time.Now()
	from = from.UTC().Truncate(time.Minute)
	today := calendar.DayStart(from)

	g, cal, err := loadWorkGraph(ctx, e.src, e.cfg.ProjectLimit, today)
	if err != nil {
		return nil, err
	}

	rc := newRunContext()
	for _, p := range g.projects {
		var holds []*models.Task
		for _, t := range g.tasks[p.ID] {
			if t.Status == models.TaskStatusHold {
				holds = append(holds, t)
				continue
			}
			e.scheduleTask(rc, cal, g, t, from)
		}
		e.resolveHolds(rc, cal, g, p.ID, holds, from)
	}

	result := &Result{
		From:        from,
		Projects:    g.projects,
		Slots:       rc.slots,
		Completions: estimateCompletions(g, rc, today),
		Unscheduled: rc.unscheduled,
		Warnings:    rc.warnings,
	}

	metrics.SchedulingRuns.Inc()
	metrics.RunDuration.Observe(time.Since(started).Seconds())
	metrics.TasksScheduled.Add(float64(countScheduled(rc)))
	return result, nil
}

func countScheduled(rc *runContext) int {
	seen := make(map[string]struct{})
	for _, s := range rc.slots {
		seen[s.TaskID] = struct{}{}
	}
	return len(seen)
}

// scheduleTask finds the earliest feasible placement for the task at or after
// minStart and commits it. Returns false when the task cannot be placed; the
// run continues either way.
func (e *Engine) scheduleTask(rc *runContext, cal *calendar.Resolver, g *workGraph, t *models.Task, minStart time.Time) bool {
	if len(t.Workstations) == 0 {
		e.skip(rc, t, "no workstation candidates")
		return false
	}
	if t.StandardTaskID == nil {
		e.skip(rc, t, "no skill category")
		return false
	}
	if t.DurationMinutes <= 0 {
		e.skip(rc, t, "no duration")
		return false
	}
	candidates := g.eligible[*t.StandardTaskID]
	if len(candidates) == 0 {
		e.skip(rc, t, "no eligible employee")
		return false
	}

	team := g.team(t, e.cfg.DefaultTeam)
	step := time.Duration(e.cfg.StepMinutes) * time.Minute
	deadline := minStart.AddDate(0, 0, e.cfg.HorizonDays)

	cur, ok := cal.ClampToWork(team, minStart)
	for ok && cur.Before(deadline) {
		parts, pok := cal.Partition(team, cur, t.DurationMinutes)
		if !pok {
			break
		}
		spanStart := parts[0].Start
		spanEnd := parts[len(parts)-1].End
		for _, emp := range candidates {
			// The employee must be free for the whole multi-slot
			// span, not just the first slot.
			if !rc.free(emp, spanStart, spanEnd) {
				continue
			}
			e.commit(rc, t, emp, parts)
			return true
		}
		cur, ok = cal.ClampToWork(team, cur.Add(step))
	}

	e.skip(rc, t, "no free eligible employee within the search horizon")
	return false
}

func (e *Engine) commit(rc *runContext, t *models.Task, employeeID string, parts []models.Interval) {
	workstation := t.Workstations[0]
	idx := rc.nextWorkerIndex(workstation)
	for _, p := range parts {
		rc.slots = append(rc.slots, &models.ScheduleSlot{
			ID:          uuid.New().String(),
			TaskID:      t.ID,
			Workstation: workstation,
			EmployeeID:  employeeID,
			Day:         calendar.DayStart(p.Start),
			Start:       p.Start,
			End:         p.End,
			WorkerIndex: idx,
		})
	}
	spanEnd := parts[len(parts)-1].End
	rc.reserve(employeeID, parts[0].Start, spanEnd)
	if t.StandardTaskID != nil {
		rc.recordFinish(t.ProjectID, *t.StandardTaskID, spanEnd)
	}
}

func (e *Engine) skip(rc *runContext, t *models.Task, reason string) {
	rc.unscheduled = append(rc.unscheduled, t.ID)
	rc.warnf("task %s (%s): %s, left unscheduled", t.ID, t.Title, reason)
	if e.Logf != nil {
		e.Logf("task %s (%s): %s, left unscheduled", t.ID, t.Title, reason)
	}
	metrics.TasksSkipped.WithLabelValues(reason).Inc()
}
