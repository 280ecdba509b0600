package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/matthiashuenaerts/prodplan/pkg/models"
)

// mockSource is an in-memory Source for engine tests.
type mockSource struct {
	projects []*models.Project
	tasks    []*models.Task
	cats     []*models.StandardTask
	skills   map[string][]string
	prereqs  map[string][]string
	hours    []models.WorkingHours
	holidays []models.Holiday
	errs     map[string]error
}

func (m *mockSource) UrgentProjects(ctx context.Context, limit int, today time.Time) ([]*models.Project, error) {
	if err := m.errs["projects"]; err != nil {
		return nil, err
	}
	if len(m.projects) > limit {
		return m.projects[:limit], nil
	}
	return m.projects, nil
}

func (m *mockSource) PendingTasks(ctx context.Context, projectIDs []string) ([]*models.Task, error) {
	if err := m.errs["tasks"]; err != nil {
		return nil, err
	}
	want := make(map[string]bool)
	for _, id := range projectIDs {
		want[id] = true
	}
	var out []*models.Task
	for _, t := range m.tasks {
		if want[t.ProjectID] {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockSource) StandardTasks(ctx context.Context) ([]*models.StandardTask, error) {
	if err := m.errs["standard_tasks"]; err != nil {
		return nil, err
	}
	return m.cats, nil
}

func (m *mockSource) EmployeeSkills(ctx context.Context) (map[string][]string, error) {
	if err := m.errs["skills"]; err != nil {
		return nil, err
	}
	return m.skills, nil
}

func (m *mockSource) Prerequisites(ctx context.Context) (map[string][]string, error) {
	if err := m.errs["prereqs"]; err != nil {
		return nil, err
	}
	return m.prereqs, nil
}

func (m *mockSource) WorkingHours(ctx context.Context) ([]models.WorkingHours, error) {
	if err := m.errs["hours"]; err != nil {
		return nil, err
	}
	return m.hours, nil
}

func (m *mockSource) Holidays(ctx context.Context) ([]models.Holiday, error) {
	if err := m.errs["holidays"]; err != nil {
		return nil, err
	}
	return m.holidays, nil
}

func strPtr(s string) *string { return &s }

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

// productionHours returns Monday-Friday 08:00-17:00 with a 12:00-12:30 break.
func productionHours() []models.WorkingHours {
	var hours []models.WorkingHours
	for wd := 1; wd <= 5; wd++ {
		hours = append(hours, models.WorkingHours{
			Team:    "production",
			Weekday: wd,
			Start:   "08:00",
			End:     "17:00",
			Breaks:  []models.BreakWindow{{Start: "12:00", End: "12:30"}},
		})
	}
	return hours
}

func project(id string, install time.Time) *models.Project {
	return &models.Project{
		ID:               id,
		Name:             id,
		Status:           models.ProjectStatusInProduction,
		StartDate:        date(2026, time.February, 1, 0, 0),
		InstallationDate: install,
	}
}

func task(id, projectID, category, orderKey string, minutes int, status models.TaskStatus) *models.Task {
	t := &models.Task{
		ID:              id,
		ProjectID:       projectID,
		Title:           id,
		DurationMinutes: minutes,
		Status:          status,
		OrderKey:        orderKey,
		Workstations:    []string{"WS1"},
	}
	if category != "" {
		t.StandardTaskID = strPtr(category)
	}
	return t
}

func slotsForTask(res *Result, taskID string) []*models.ScheduleSlot {
	var out []*models.ScheduleSlot
	for _, s := range res.Slots {
		if s.TaskID == taskID {
			out = append(out, s)
		}
	}
	return out
}

func totalMinutes(slots []*models.ScheduleSlot) int {
	total := 0
	for _, s := range slots {
		total += int(s.End.Sub(s.Start).Minutes())
	}
	return total
}

func TestRunSchedulesSingleTask(t *testing.T) {
	src := &mockSource{
		projects: []*models.Project{project("P1", date(2026, time.March, 20, 0, 0))},
		tasks:    []*models.Task{task("T1", "P1", "C1", "010", 120, models.TaskStatusTodo)},
		cats:     []*models.StandardTask{{ID: "C1", Name: "cutting", OrderKey: "010", Team: "production"}},
		skills:   map[string][]string{"E1": {"C1"}},
		hours:    productionHours(),
	}

	eng := New(src, Config{})
	res, err := eng.Run(context.Background(), date(2026, time.March, 2, 6, 0))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	slots := slotsForTask(res, "T1")
	if len(slots) != 1 {
		t.Fatalf("Expected 1 slot, got %d", len(slots))
	}
	s := slots[0]
	if !s.Start.Equal(date(2026, time.March, 2, 8, 0)) || !s.End.Equal(date(2026, time.March, 2, 10, 0)) {
		t.Errorf("Expected slot 08:00-10:00, got %v-%v", s.Start, s.End)
	}
	if s.EmployeeID != "E1" {
		t.Errorf("Expected employee E1, got %s", s.EmployeeID)
	}
	if s.Workstation != "WS1" {
		t.Errorf("Expected workstation WS1, got %s", s.Workstation)
	}
	if !s.Day.Equal(date(2026, time.March, 2, 0, 0)) {
		t.Errorf("Expected day 2026-03-02, got %v", s.Day)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", res.Warnings)
	}
}

// A 480-minute task starting at the window open splits around the midday
// break into exactly two slots of 240 minutes.
func TestRunSplitsTaskAroundBreak(t *testing.T) {
	src := &mockSource{
		projects: []*models.Project{project("P1", date(2026, time.March, 20, 0, 0))},
		tasks:    []*models.Task{task("T1", "P1", "C1", "010", 480, models.TaskStatusTodo)},
		cats:     []*models.StandardTask{{ID: "C1", Name: "cutting", OrderKey: "010", Team: "production"}},
		skills:   map[string][]string{"E1": {"C1"}},
		hours:    productionHours(),
	}

	res, err := New(src, Config{}).Run(context.Background(), date(2026, time.March, 2, 8, 0))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	slots := slotsForTask(res, "T1")
	if len(slots) != 2 {
		t.Fatalf("Expected 2 slots, got %d", len(slots))
	}
	if !slots[0].Start.Equal(date(2026, time.March, 2, 8, 0)) || !slots[0].End.Equal(date(2026, time.March, 2, 12, 0)) {
		t.Errorf("Expected first slot 08:00-12:00, got %v-%v", slots[0].Start, slots[0].End)
	}
	if !slots[1].Start.Equal(date(2026, time.March, 2, 12, 30)) || !slots[1].End.Equal(date(2026, time.March, 2, 16, 30)) {
		t.Errorf("Expected second slot 12:30-16:30, got %v-%v", slots[1].Start, slots[1].End)
	}
	if got := totalMinutes(slots); got != 480 {
		t.Errorf("Expected 480 minutes total, got %d", got)
	}
	if slots[0].WorkerIndex != slots[1].WorkerIndex {
		t.Errorf("Expected both slots to share a worker index")
	}
}

// A 600-minute task starting Friday 15:00 takes 120 minutes that day and
// continues on the next working day, skipping the weekend.
func TestRunSpillsAcrossDays(t *testing.T) {
	src := &mockSource{
		projects: []*models.Project{project("P1", date(2026, time.March, 20, 0, 0))},
		tasks:    []*models.Task{task("T1", "P1", "C1", "010", 600, models.TaskStatusTodo)},
		cats:     []*models.StandardTask{{ID: "C1", Name: "cutting", OrderKey: "010", Team: "production"}},
		skills:   map[string][]string{"E1": {"C1"}},
		hours:    productionHours(),
	}

	res, err := New(src, Config{}).Run(context.Background(), date(2026, time.March, 6, 15, 0))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	slots := slotsForTask(res, "T1")
	if len(slots) != 3 {
		t.Fatalf("Expected 3 slots, got %d: %+v", len(slots), slots)
	}
	if !slots[0].Start.Equal(date(2026, time.March, 6, 15, 0)) || !slots[0].End.Equal(date(2026, time.March, 6, 17, 0)) {
		t.Errorf("Expected first slot Fri 15:00-17:00, got %v-%v", slots[0].Start, slots[0].End)
	}
	if !slots[1].Start.Equal(date(2026, time.March, 9, 8, 0)) {
		t.Errorf("Expected continuation Monday 08:00, got %v", slots[1].Start)
	}
	if got := totalMinutes(slots); got != 600 {
		t.Errorf("Expected 600 minutes total, got %d", got)
	}
}

// Two projects compete for the same sole eligible employee; the project with
// the earlier installation date receives the earlier slot, and the employee
// is never double-booked.
func TestRunPriorityAndNoDoubleBooking(t *testing.T) {
	src := &mockSource{
		projects: []*models.Project{
			project("P1", date(2026, time.March, 10, 0, 0)),
			project("P2", date(2026, time.March, 25, 0, 0)),
		},
		tasks: []*models.Task{
			task("T2", "P2", "C1", "010", 240, models.TaskStatusTodo),
			task("T1", "P1", "C1", "010", 240, models.TaskStatusTodo),
		},
		cats:   []*models.StandardTask{{ID: "C1", Name: "cutting", OrderKey: "010", Team: "production"}},
		skills: map[string][]string{"E1": {"C1"}},
		hours:  productionHours(),
	}

	res, err := New(src, Config{}).Run(context.Background(), date(2026, time.March, 2, 8, 0))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	s1 := slotsForTask(res, "T1")
	s2 := slotsForTask(res, "T2")
	if len(s1) == 0 || len(s2) == 0 {
		t.Fatalf("Expected both tasks scheduled, got %d and %d slots", len(s1), len(s2))
	}
	if !s1[0].Start.Before(s2[0].Start) {
		t.Errorf("Expected the more urgent project first: P1 at %v, P2 at %v", s1[0].Start, s2[0].Start)
	}

	for i, a := range res.Slots {
		for _, b := range res.Slots[i+1:] {
			if a.EmployeeID != b.EmployeeID {
				continue
			}
			if a.Start.Before(b.End) && b.Start.Before(a.End) {
				t.Errorf("Employee %s double-booked: %v-%v and %v-%v", a.EmployeeID, a.Start, a.End, b.Start, b.End)
			}
		}
	}
}

// A task whose skill category has zero eligible employees is skipped with a
// warning while the rest of the backlog schedules normally.
func TestRunSkipsUnassignableTask(t *testing.T) {
	src := &mockSource{
		projects: []*models.Project{project("P1", date(2026, time.March, 20, 0, 0))},
		tasks: []*models.Task{
			task("T1", "P1", "C1", "010", 120, models.TaskStatusTodo),
			task("T2", "P1", "C2", "020", 120, models.TaskStatusTodo),
		},
		cats: []*models.StandardTask{
			{ID: "C1", Name: "cutting", OrderKey: "010", Team: "production"},
			{ID: "C2", Name: "coating", OrderKey: "020", Team: "production"},
		},
		skills: map[string][]string{"E1": {"C1"}},
		hours:  productionHours(),
	}

	res, err := New(src, Config{}).Run(context.Background(), date(2026, time.March, 2, 8, 0))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(slotsForTask(res, "T1")) != 1 {
		t.Errorf("Expected T1 scheduled")
	}
	if len(slotsForTask(res, "T2")) != 0 {
		t.Errorf("Expected T2 unscheduled")
	}
	if len(res.Unscheduled) != 1 || res.Unscheduled[0] != "T2" {
		t.Errorf("Expected T2 in unscheduled list, got %v", res.Unscheduled)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "T2") && strings.Contains(w, "no eligible employee") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a warning naming T2, got %v", res.Warnings)
	}
}

func TestRunAbortsOnFetchFailure(t *testing.T) {
	src := &mockSource{
		projects: []*models.Project{project("P1", date(2026, time.March, 20, 0, 0))},
		hours:    productionHours(),
		errs:     map[string]error{"hours": errors.New("calendar source unavailable")},
	}

	res, err := New(src, Config{}).Run(context.Background(), date(2026, time.March, 2, 8, 0))
	if err == nil {
		t.Fatalf("Expected run to fail when the calendar fetch fails")
	}
	if res != nil {
		t.Errorf("Expected no partial result, got %+v", res)
	}
	if !strings.Contains(err.Error(), "calendar source unavailable") {
		t.Errorf("Expected wrapped source error, got %v", err)
	}
}

// Tasks within a project are attempted in ascending order-key order.
func TestRunRespectsOrderKeys(t *testing.T) {
	src := &mockSource{
		projects: []*models.Project{project("P1", date(2026, time.March, 20, 0, 0))},
		tasks: []*models.Task{
			task("T-late", "P1", "C1", "020", 60, models.TaskStatusTodo),
			task("T-early", "P1", "C1", "010", 60, models.TaskStatusTodo),
		},
		cats:   []*models.StandardTask{{ID: "C1", Name: "cutting", OrderKey: "010", Team: "production"}},
		skills: map[string][]string{"E1": {"C1"}},
		hours:  productionHours(),
	}

	res, err := New(src, Config{}).Run(context.Background(), date(2026, time.March, 2, 8, 0))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	early := slotsForTask(res, "T-early")
	late := slotsForTask(res, "T-late")
	if len(early) == 0 || len(late) == 0 {
		t.Fatalf("Expected both tasks scheduled")
	}
	if !early[0].Start.Before(late[0].Start) {
		t.Errorf("Expected order key 010 before 020, got %v and %v", early[0].Start, late[0].Start)
	}
}
