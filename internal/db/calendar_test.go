package db

import (
	"context"
	"testing"
	"time"

	"github.com/matthiashuenaerts/prodplan/pkg/models"
)

func TestWorkingHoursRoundtrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	wh := models.WorkingHours{
		Team:    "production",
		Weekday: 1,
		Start:   "08:00",
		End:     "17:00",
		Breaks: []models.BreakWindow{
			{Start: "15:00", End: "15:15"},
			{Start: "12:00", End: "12:30"},
		},
	}
	if err := db.SetWorkingHours(ctx, wh); err != nil {
		t.Fatalf("Failed to set working hours: %v", err)
	}

	hours, err := db.WorkingHours(ctx)
	if err != nil {
		t.Fatalf("WorkingHours: %v", err)
	}
	if len(hours) != 1 {
		t.Fatalf("Expected 1 definition, got %d", len(hours))
	}
	got := hours[0]
	if got.Team != "production" || got.Weekday != 1 || got.Start != "08:00" || got.End != "17:00" {
		t.Errorf("Roundtrip mismatch: %+v", got)
	}
	if len(got.Breaks) != 2 || got.Breaks[0].Start != "12:00" || got.Breaks[1].Start != "15:00" {
		t.Errorf("Expected breaks sorted by start, got %v", got.Breaks)
	}

	// Setting the same team/weekday again replaces the prior definition.
	wh.Start = "07:00"
	wh.Breaks = nil
	if err := db.SetWorkingHours(ctx, wh); err != nil {
		t.Fatalf("Failed to replace working hours: %v", err)
	}
	hours, _ = db.WorkingHours(ctx)
	if len(hours) != 1 || hours[0].Start != "07:00" || len(hours[0].Breaks) != 0 {
		t.Errorf("Expected replaced definition, got %+v", hours)
	}
}

func TestHolidays(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	day := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)

	if err := db.AddHoliday(ctx, "production", day); err != nil {
		t.Fatalf("Failed to add holiday: %v", err)
	}
	// Duplicate adds are ignored.
	if err := db.AddHoliday(ctx, "production", day); err != nil {
		t.Fatalf("Duplicate holiday add failed: %v", err)
	}

	holidays, err := db.Holidays(ctx)
	if err != nil {
		t.Fatalf("Holidays: %v", err)
	}
	if len(holidays) != 1 {
		t.Fatalf("Expected 1 holiday, got %d", len(holidays))
	}
	if holidays[0].Team != "production" || !holidays[0].Day.Equal(day) {
		t.Errorf("Holiday mismatch: %+v", holidays[0])
	}
}

func TestEmployeeSkills(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	std := &models.StandardTask{Name: "cutting", OrderKey: "010"}
	if err := db.CreateStandardTask(ctx, std); err != nil {
		t.Fatalf("Failed to create standard task: %v", err)
	}
	emp := &models.Employee{Name: "Maarten"}
	if err := db.CreateEmployee(ctx, emp); err != nil {
		t.Fatalf("Failed to create employee: %v", err)
	}
	if emp.Team != "production" {
		t.Errorf("Expected default team, got %q", emp.Team)
	}

	if err := db.AddEmployeeSkill(ctx, emp.ID, std.ID); err != nil {
		t.Fatalf("Failed to add skill: %v", err)
	}
	skills, err := db.EmployeeSkills(ctx)
	if err != nil {
		t.Fatalf("EmployeeSkills: %v", err)
	}
	if len(skills[emp.ID]) != 1 || skills[emp.ID][0] != std.ID {
		t.Errorf("Expected skill mapping, got %v", skills)
	}
}
