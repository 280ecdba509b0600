package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/matthiashuenaerts/prodplan/internal/calendar"
	"github.com/matthiashuenaerts/prodplan/pkg/models"
)

// Source supplies the scheduler's inputs. Any error from a Source method
// aborts the whole run before a single slot is produced: the engine's
// correctness depends on having the complete calendar and eligibility picture
// before it starts reserving time.
type Source interface {
	// UrgentProjects returns planned/in-production projects whose
	// installation date is on or after today, ascending by installation
	// date, capped at limit.
	UrgentProjects(ctx context.Context, limit int, today time.Time) ([]*models.Project, error)
	// PendingTasks returns the todo/in_progress/hold tasks of the given
	// projects, with workstation candidates resolved.
	PendingTasks(ctx context.Context, projectIDs []string) ([]*models.Task, error)
	// StandardTasks returns all skill categories, including the terminal
	// manufacturing step flag.
	StandardTasks(ctx context.Context) ([]*models.StandardTask, error)
	// EmployeeSkills maps employee ID to the skill categories the employee
	// may perform.
	EmployeeSkills(ctx context.Context) (map[string][]string, error)
	// Prerequisites maps skill category ID to the categories that must
	// finish first within the same project.
	Prerequisites(ctx context.Context) (map[string][]string, error)
	WorkingHours(ctx context.Context) ([]models.WorkingHours, error)
	Holidays(ctx context.Context) ([]models.Holiday, error)
}

// workGraph is the loaded, indexed input of one scheduling run.
type workGraph struct {
	projects   []*models.Project
	tasks      map[string][]*models.Task // project ID -> tasks, in attempt order
	categories map[string]*models.StandardTask
	terminal   *models.StandardTask
	prereqs    map[string][]string
	eligible   map[string][]string            // category ID -> employee IDs, sorted
	present    map[string]map[string]struct{} // project ID -> category IDs with an instance
}

func loadWorkGraph(ctx context.Context, src Source, limit int, today time.Time) (*workGraph, *calendar.Resolver, error) {
	projects, err := src.UrgentProjects(ctx, limit, today)
	if err != nil {
		return nil, nil, fmt.Errorf("load projects: %w", err)
	}

	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	tasks, err := src.PendingTasks(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load tasks: %w", err)
	}

	cats, err := src.StandardTasks(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load standard tasks: %w", err)
	}
	skills, err := src.EmployeeSkills(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load employee skills: %w", err)
	}
	prereqs, err := src.Prerequisites(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load prerequisites: %w", err)
	}
	hours, err := src.WorkingHours(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load working hours: %w", err)
	}
	holidays, err := src.Holidays(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load holidays: %w", err)
	}

	g := &workGraph{
		projects:   projects,
		tasks:      make(map[string][]*models.Task),
		categories: make(map[string]*models.StandardTask),
		prereqs:    prereqs,
		eligible:   make(map[string][]string),
		present:    make(map[string]map[string]struct{}),
	}
	for _, c := range cats {
		g.categories[c.ID] = c
		if c.IsTerminal {
			g.terminal = c
		}
	}

	for emp, empCats := range skills {
		for _, cat := range empCats {
			g.eligible[cat] = append(g.eligible[cat], emp)
		}
	}
	// Deterministic arbitration: candidates are always tried in the same
	// order.
	for cat := range g.eligible {
		sort.Strings(g.eligible[cat])
	}

	for _, t := range tasks {
		if !t.Schedulable() {
			continue
		}
		g.tasks[t.ProjectID] = append(g.tasks[t.ProjectID], t)
		if t.StandardTaskID != nil {
			if g.present[t.ProjectID] == nil {
				g.present[t.ProjectID] = make(map[string]struct{})
			}
			g.present[t.ProjectID][*t.StandardTaskID] = struct{}{}
		}
	}
	for id := range g.tasks {
		g.sortTasks(g.tasks[id])
	}

	cal, err := calendar.NewResolver(hours, holidays, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("build calendar: %w", err)
	}
	return g, cal, nil
}

// sortTasks orders a project's tasks by ascending order key, tie-broken by the
// skill category's own order key, then task ID for stability.
func (g *workGraph) sortTasks(tasks []*models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.OrderKey != b.OrderKey {
			return a.OrderKey < b.OrderKey
		}
		ak, bk := g.categoryOrderKey(a), g.categoryOrderKey(b)
		if ak != bk {
			return ak < bk
		}
		return a.ID < b.ID
	})
}

func (g *workGraph) categoryOrderKey(t *models.Task) string {
	if t.StandardTaskID == nil {
		return ""
	}
	if c, ok := g.categories[*t.StandardTaskID]; ok {
		return c.OrderKey
	}
	return ""
}

// team returns the calendar team for a task via its skill category.
func (g *workGraph) team(t *models.Task, fallback string) string {
	if t.StandardTaskID != nil {
		if c, ok := g.categories[*t.StandardTaskID]; ok && c.Team != "" {
			return c.Team
		}
	}
	return fallback
}

// hasInstance reports whether the project has a schedulable task of the given
// category. Completed instances are absent from the pending set, so a finished
// prerequisite no longer blocks.
func (g *workGraph) hasInstance(projectID, categoryID string) bool {
	_, ok := g.present[projectID][categoryID]
	return ok
}
