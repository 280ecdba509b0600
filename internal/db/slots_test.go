package db

import (
	"context"
	"testing"
	"time"

	"github.com/matthiashuenaerts/prodplan/pkg/models"
)

func testSlot(taskID string, day time.Time, startHour, endHour int) *models.ScheduleSlot {
	return &models.ScheduleSlot{
		TaskID:      taskID,
		Workstation: "WS-1",
		EmployeeID:  "emp-1",
		Day:         day,
		Start:       day.Add(time.Duration(startHour) * time.Hour),
		End:         day.Add(time.Duration(endHour) * time.Hour),
		WorkerIndex: 0,
	}
}

func TestReplaceSlotsIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	p := createTestProject(t, db, "Kitchen")
	task := &models.Task{ProjectID: p.ID, Title: "cutting", DurationMinutes: 240, OrderKey: "010"}
	if err := db.CreateTask(ctx, task); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	plan := []*models.ScheduleSlot{
		testSlot(task.ID, day, 8, 12),
		testSlot(task.ID, day, 13, 15),
	}
	if err := db.ReplaceSlots(ctx, plan); err != nil {
		t.Fatalf("Failed to write slots: %v", err)
	}

	// Re-committing the same plan must replace, not accumulate.
	again := []*models.ScheduleSlot{
		testSlot(task.ID, day, 8, 12),
		testSlot(task.ID, day, 13, 15),
	}
	if err := db.ReplaceSlots(ctx, again); err != nil {
		t.Fatalf("Failed to rewrite slots: %v", err)
	}

	stored, err := db.SlotsForDay(ctx, day)
	if err != nil {
		t.Fatalf("SlotsForDay: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("Expected 2 slots after rewrite, got %d", len(stored))
	}
	if stored[0].TaskTitle != "cutting" {
		t.Errorf("Expected task title joined in, got %q", stored[0].TaskTitle)
	}
	if !stored[0].Start.Equal(day.Add(8 * time.Hour)) {
		t.Errorf("Expected slots ordered by start, got %v", stored[0].Start)
	}
}

func TestReplaceSlotsKeepsOtherDays(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	p := createTestProject(t, db, "Kitchen")
	task := &models.Task{ProjectID: p.ID, Title: "cutting", DurationMinutes: 240, OrderKey: "010"}
	if err := db.CreateTask(ctx, task); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	monday := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)
	if err := db.ReplaceSlots(ctx, []*models.ScheduleSlot{
		testSlot(task.ID, monday, 8, 10),
		testSlot(task.ID, tuesday, 8, 10),
	}); err != nil {
		t.Fatalf("Failed to write slots: %v", err)
	}

	// A plan touching only Tuesday must leave Monday alone.
	if err := db.ReplaceSlots(ctx, []*models.ScheduleSlot{
		testSlot(task.ID, tuesday, 9, 11),
	}); err != nil {
		t.Fatalf("Failed to rewrite Tuesday: %v", err)
	}

	monSlots, err := db.SlotsForDay(ctx, monday)
	if err != nil {
		t.Fatalf("SlotsForDay: %v", err)
	}
	if len(monSlots) != 1 {
		t.Errorf("Expected Monday untouched, got %d slots", len(monSlots))
	}
	tueSlots, err := db.SlotsForDay(ctx, tuesday)
	if err != nil {
		t.Fatalf("SlotsForDay: %v", err)
	}
	if len(tueSlots) != 1 || !tueSlots[0].Start.Equal(tuesday.Add(9*time.Hour)) {
		t.Errorf("Expected Tuesday replaced, got %v", tueSlots)
	}
}

func TestReplaceCompletions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	p := createTestProject(t, db, "Kitchen")

	end := time.Date(2026, time.March, 5, 16, 30, 0, 0, time.UTC)
	rec := &models.ProjectCompletion{
		ProjectID:        p.ID,
		InstallationDate: p.InstallationDate,
		EstimatedEnd:     &end,
		Status:           models.CompletionStatusOnTrack,
		DaysRemaining:    18,
	}
	if err := db.ReplaceCompletions(ctx, []*models.ProjectCompletion{rec}); err != nil {
		t.Fatalf("Failed to write completion: %v", err)
	}

	rec.Status = models.CompletionStatusAtRisk
	rec.DaysRemaining = 2
	if err := db.ReplaceCompletions(ctx, []*models.ProjectCompletion{rec}); err != nil {
		t.Fatalf("Failed to upsert completion: %v", err)
	}

	recs, err := db.ListCompletions(ctx)
	if err != nil {
		t.Fatalf("ListCompletions: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("Expected 1 completion record, got %d", len(recs))
	}
	got := recs[0]
	if got.Status != models.CompletionStatusAtRisk || got.DaysRemaining != 2 {
		t.Errorf("Expected upserted values, got %+v", got)
	}
	if got.EstimatedEnd == nil || !got.EstimatedEnd.Equal(end) {
		t.Errorf("Expected estimated end %v, got %v", end, got.EstimatedEnd)
	}
	if got.ProjectName != "Kitchen" {
		t.Errorf("Expected project name joined in, got %q", got.ProjectName)
	}
}
