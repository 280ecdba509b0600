package db

import (
	"context"
	"testing"
	"time"

	"github.com/matthiashuenaerts/prodplan/pkg/models"
)

func createTestProject(t *testing.T, db *DB, name string) *models.Project {
	t.Helper()
	p := &models.Project{
		Name:             name,
		Status:           models.ProjectStatusInProduction,
		StartDate:        time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		InstallationDate: time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC),
	}
	if err := db.CreateProject(context.Background(), p); err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}
	return p
}

func TestTaskCRUD(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	p := createTestProject(t, db, "Kitchen")

	std := &models.StandardTask{Name: "cutting", OrderKey: "010", Team: "production"}
	if err := db.CreateStandardTask(ctx, std); err != nil {
		t.Fatalf("Failed to create standard task: %v", err)
	}

	task := &models.Task{
		ProjectID:       p.ID,
		Title:           "Kitchen: cutting",
		DurationMinutes: 240,
		StandardTaskID:  &std.ID,
		OrderKey:        "010",
		Workstations:    []string{"WS-2", "WS-1"},
	}
	if err := db.CreateTask(ctx, task); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	if task.ID == "" {
		t.Fatalf("Expected generated task ID")
	}
	if task.Status != models.TaskStatusTodo {
		t.Errorf("Expected default status todo, got %s", task.Status)
	}

	fetched, err := db.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to get task: %v", err)
	}
	if fetched == nil {
		t.Fatalf("Task not found")
	}
	if fetched.ProjectName != "Kitchen" {
		t.Errorf("Expected project name Kitchen, got %s", fetched.ProjectName)
	}
	if fetched.StandardTaskName != "cutting" {
		t.Errorf("Expected standard task name cutting, got %s", fetched.StandardTaskName)
	}
	if len(fetched.Workstations) != 2 || fetched.Workstations[0] != "WS-2" || fetched.Workstations[1] != "WS-1" {
		t.Errorf("Expected workstations in declared order, got %v", fetched.Workstations)
	}

	if err := db.UpdateTaskStatus(ctx, task.ID, models.TaskStatusCompleted); err != nil {
		t.Fatalf("Failed to update task status: %v", err)
	}
	fetched, _ = db.GetTask(ctx, task.ID)
	if fetched.Status != models.TaskStatusCompleted {
		t.Errorf("Expected completed, got %s", fetched.Status)
	}

	if err := db.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("Failed to delete task: %v", err)
	}
	fetched, err = db.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("Unexpected error after delete: %v", err)
	}
	if fetched != nil {
		t.Errorf("Expected task to be gone")
	}
	if err := db.DeleteTask(ctx, task.ID); err == nil {
		t.Errorf("Expected error deleting missing task")
	}
}

func TestPendingTasks(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	p1 := createTestProject(t, db, "Kitchen")
	p2 := createTestProject(t, db, "Wardrobe")

	mk := func(projectID, title, orderKey string, status models.TaskStatus) {
		t.Helper()
		task := &models.Task{
			ProjectID:       projectID,
			Title:           title,
			DurationMinutes: 60,
			Status:          status,
			OrderKey:        orderKey,
		}
		if err := db.CreateTask(ctx, task); err != nil {
			t.Fatalf("Failed to create %s: %v", title, err)
		}
	}

	mk(p1.ID, "cutting", "010", models.TaskStatusTodo)
	mk(p1.ID, "edging", "020", models.TaskStatusHold)
	mk(p1.ID, "assembly", "030", models.TaskStatusCompleted)
	mk(p2.ID, "cutting", "010", models.TaskStatusInProgress)

	pending, err := db.PendingTasks(ctx, []string{p1.ID})
	if err != nil {
		t.Fatalf("PendingTasks: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("Expected 2 pending tasks, got %d", len(pending))
	}
	if pending[0].Title != "cutting" || pending[1].Title != "edging" {
		t.Errorf("Expected order-key ordering, got [%s %s]", pending[0].Title, pending[1].Title)
	}

	pending, err = db.PendingTasks(ctx, []string{p1.ID, p2.ID})
	if err != nil {
		t.Fatalf("PendingTasks: %v", err)
	}
	if len(pending) != 3 {
		t.Errorf("Expected 3 pending tasks across projects, got %d", len(pending))
	}

	pending, err = db.PendingTasks(ctx, nil)
	if err != nil {
		t.Fatalf("PendingTasks with no projects: %v", err)
	}
	if pending != nil {
		t.Errorf("Expected nil for empty project list")
	}
}

func TestListTasksFilters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	p := createTestProject(t, db, "Office")

	for _, status := range []models.TaskStatus{models.TaskStatusTodo, models.TaskStatusHold, models.TaskStatusCompleted} {
		task := &models.Task{ProjectID: p.ID, Title: string(status), DurationMinutes: 30, Status: status, OrderKey: "010"}
		if err := db.CreateTask(ctx, task); err != nil {
			t.Fatalf("Failed to create task: %v", err)
		}
	}

	all, err := db.ListTasks(ctx, nil, nil)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 tasks, got %d", len(all))
	}

	hold := models.TaskStatusHold
	filtered, err := db.ListTasks(ctx, &hold, &p.ID)
	if err != nil {
		t.Fatalf("ListTasks filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Status != models.TaskStatusHold {
		t.Errorf("Expected one hold task, got %v", filtered)
	}
}
