package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/matthiashuenaerts/prodplan/pkg/models"
)

// CreateEmployee inserts an employee. If e.ID is empty, a new UUID is
// generated.
func (db *DB) CreateEmployee(ctx context.Context, e *models.Employee) error {
	return db.createEmployee(ctx, db.DB, e)
}

func (db *DB) createEmployee(ctx context.Context, exec executor, e *models.Employee) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Team == "" {
		e.Team = "production"
	}

	query := `
		INSERT INTO employees (id, name, team)
		VALUES (?, ?, ?)
		RETURNING created_at
	`
	if err := exec.QueryRowContext(ctx, query, e.ID, e.Name, e.Team).Scan(&e.CreatedAt); err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return nil
}

// ListEmployees returns all employees, ascending by name.
func (db *DB) ListEmployees(ctx context.Context) ([]*models.Employee, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, team, created_at FROM employees ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var out []*models.Employee
	for rows.Next() {
		e := &models.Employee{}
		if err := rows.Scan(&e.ID, &e.Name, &e.Team, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

// AddEmployeeSkill certifies an employee for a skill category.
func (db *DB) AddEmployeeSkill(ctx context.Context, employeeID, standardTaskID string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO employee_skills (employee_id, standard_task_id) VALUES (?, ?)`,
		employeeID, standardTaskID,
	)
	if err != nil {
		return fmt.Errorf("failed to add employee skill: %w", err)
	}
	return nil
}

// EmployeeSkills maps each employee to the skill categories they may perform.
func (db *DB) EmployeeSkills(ctx context.Context) (map[string][]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT employee_id, standard_task_id FROM employee_skills ORDER BY employee_id, standard_task_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee skills: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var emp, cat string
		if err := rows.Scan(&emp, &cat); err != nil {
			return nil, fmt.Errorf("failed to scan employee skill: %w", err)
		}
		out[emp] = append(out[emp], cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}
