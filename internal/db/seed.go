package db

import (
	"context"
	"fmt"
	"time"

	"github.com/matthiashuenaerts/prodplan/pkg/models"
)

// Seed populates an empty database with a small demo floor: one production
// team calendar, four employees, a five-step manufacturing flow and three
// projects with staggered installation dates. Handy for trying the planner
// without a host application feeding it.
func (db *DB) Seed(ctx context.Context, today time.Time) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for wd := 1; wd <= 5; wd++ {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO working_hours (team, weekday, start_time, end_time) VALUES ('production', ?, '08:00', '17:00')`, wd,
		); err != nil {
			return fmt.Errorf("failed to seed working hours: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO work_breaks (team, weekday, start_time, end_time) VALUES ('production', ?, '12:00', '12:30')`, wd,
		); err != nil {
			return fmt.Errorf("failed to seed breaks: %w", err)
		}
	}

	steps := []*models.StandardTask{
		{ID: "st-cutting", Name: "Cutting", OrderKey: "010", Team: "production"},
		{ID: "st-edging", Name: "Edge banding", OrderKey: "020", Team: "production"},
		{ID: "st-drilling", Name: "Drilling", OrderKey: "030", Team: "production"},
		{ID: "st-assembly", Name: "Assembly", OrderKey: "040", Team: "production"},
		{ID: "st-packing", Name: "Packing", OrderKey: "050", Team: "production", IsTerminal: true},
	}
	for _, st := range steps {
		if err := db.createStandardTask(ctx, tx, st); err != nil {
			return err
		}
	}
	prereqs := [][2]string{
		{"st-edging", "st-cutting"},
		{"st-drilling", "st-cutting"},
		{"st-assembly", "st-edging"},
		{"st-assembly", "st-drilling"},
		{"st-packing", "st-assembly"},
	}
	for _, pr := range prereqs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO standard_task_prerequisites (standard_task_id, requires_id) VALUES (?, ?)`, pr[0], pr[1],
		); err != nil {
			return fmt.Errorf("failed to seed prerequisite: %w", err)
		}
	}

	employees := []struct {
		e      models.Employee
		skills []string
	}{
		{models.Employee{ID: "emp-maarten", Name: "Maarten", Team: "production"}, []string{"st-cutting", "st-drilling"}},
		{models.Employee{ID: "emp-els", Name: "Els", Team: "production"}, []string{"st-edging", "st-assembly"}},
		{models.Employee{ID: "emp-jonas", Name: "Jonas", Team: "production"}, []string{"st-cutting", "st-edging", "st-drilling"}},
		{models.Employee{ID: "emp-sofie", Name: "Sofie", Team: "production"}, []string{"st-assembly", "st-packing"}},
	}
	for _, row := range employees {
		e := row.e
		if err := db.createEmployee(ctx, tx, &e); err != nil {
			return err
		}
		for _, skill := range row.skills {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO employee_skills (employee_id, standard_task_id) VALUES (?, ?)`, e.ID, skill,
			); err != nil {
				return fmt.Errorf("failed to seed skill: %w", err)
			}
		}
	}

	projects := []struct {
		p     models.Project
		ahead int // installation date offset in days
	}{
		{models.Project{ID: "prj-kitchen", Name: "Kitchen Verhoeven", Client: "Verhoeven", Status: models.ProjectStatusInProduction}, 14},
		{models.Project{ID: "prj-wardrobe", Name: "Wardrobe Claes", Client: "Claes", Status: models.ProjectStatusInProduction}, 21},
		{models.Project{ID: "prj-office", Name: "Office desks De Smet", Client: "De Smet", Status: models.ProjectStatusPlanned}, 30},
	}
	for _, row := range projects {
		p := row.p
		p.StartDate = today
		p.InstallationDate = today.AddDate(0, 0, row.ahead)
		if err := db.createProject(ctx, tx, &p); err != nil {
			return err
		}

		flow := []struct {
			step    string
			minutes int
			status  models.TaskStatus
		}{
			{"st-cutting", 240, models.TaskStatusTodo},
			{"st-edging", 180, models.TaskStatusHold},
			{"st-drilling", 120, models.TaskStatusHold},
			{"st-assembly", 360, models.TaskStatusHold},
			{"st-packing", 90, models.TaskStatusHold},
		}
		for i, f := range flow {
			step := f.step
			t := &models.Task{
				ProjectID:       p.ID,
				Title:           fmt.Sprintf("%s: %s", p.Name, step[3:]),
				DurationMinutes: f.minutes,
				Status:          f.status,
				StandardTaskID:  &step,
				OrderKey:        fmt.Sprintf("%03d", (i+1)*10),
				Workstations:    []string{fmt.Sprintf("WS-%d", i+1)},
			}
			if err := db.createTask(ctx, tx, t); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
