package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/matthiashuenaerts/prodplan/pkg/models"
)

// CreateTask inserts a new task and its workstation candidates. If t.ID is
// empty, a new UUID is generated.
func (db *DB) CreateTask(ctx context.Context, t *models.Task) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := db.createTask(ctx, tx, t); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (db *DB) createTask(ctx context.Context, exec executor, t *models.Task) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = models.TaskStatusTodo
	}

	query := `
		INSERT INTO tasks (id, project_id, title, duration_minutes, status, standard_task_id, order_key)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at, updated_at
	`
	err := exec.QueryRowContext(ctx, query,
		t.ID, t.ProjectID, t.Title, t.DurationMinutes, t.Status, t.StandardTaskID, t.OrderKey,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	for i, ws := range t.Workstations {
		_, err := exec.ExecContext(ctx,
			`INSERT INTO task_workstations (task_id, workstation, position) VALUES (?, ?, ?)`,
			t.ID, ws, i,
		)
		if err != nil {
			return fmt.Errorf("failed to add workstation %s: %w", ws, err)
		}
	}
	return nil
}

// GetTask retrieves a task by its ID.
func (db *DB) GetTask(ctx context.Context, id string) (*models.Task, error) {
	query := taskSelect + ` WHERE t.id = ?`
	tasks, err := db.queryTasks(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	return tasks[0], nil
}

// ListTasks returns tasks, optionally filtered by status or project.
func (db *DB) ListTasks(ctx context.Context, status *models.TaskStatus, projectID *string) ([]*models.Task, error) {
	query := taskSelect + ` WHERE 1=1`
	args := []any{}

	if status != nil {
		query += " AND t.status = ?"
		args = append(args, *status)
	}
	if projectID != nil {
		query += " AND t.project_id = ?"
		args = append(args, *projectID)
	}
	query += " ORDER BY t.project_id, t.order_key ASC"

	return db.queryTasks(ctx, query, args...)
}

// PendingTasks returns the schedulable (todo/in_progress/hold) tasks of the
// given projects.
func (db *DB) PendingTasks(ctx context.Context, projectIDs []string) ([]*models.Task, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(projectIDs))
	placeholders = placeholders[:len(placeholders)-1]
	query := taskSelect + `
		WHERE t.status IN ('todo', 'in_progress', 'hold')
		  AND t.project_id IN (` + placeholders + `)
		ORDER BY t.project_id, t.order_key ASC
	`
	args := make([]any, len(projectIDs))
	for i, id := range projectIDs {
		args[i] = id
	}
	return db.queryTasks(ctx, query, args...)
}

// UpdateTaskStatus updates a task's lifecycle status.
func (db *DB) UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) error {
	res, err := db.ExecContext(ctx, `UPDATE tasks SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("task not found: %s", id)
	}
	return nil
}

// DeleteTask deletes a task by its ID.
func (db *DB) DeleteTask(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("task not found: %s", id)
	}
	return nil
}

const taskSelect = `
	SELECT t.id, t.project_id, t.title, t.duration_minutes, t.status, t.standard_task_id, t.order_key,
	       t.created_at, t.updated_at,
	       p.name AS project_name,
	       COALESCE(st.name, '') AS standard_task_name
	FROM tasks t
	JOIN projects p ON t.project_id = p.id
	LEFT JOIN standard_tasks st ON t.standard_task_id = st.id
`

// queryTasks executes a task query and attaches each task's workstation
// candidates in declared order.
func (db *DB) queryTasks(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	byID := make(map[string]*models.Task)
	for rows.Next() {
		t := &models.Task{}
		var stdID sql.NullString
		err := rows.Scan(
			&t.ID, &t.ProjectID, &t.Title, &t.DurationMinutes, &t.Status, &stdID, &t.OrderKey,
			&t.CreatedAt, &t.UpdatedAt, &t.ProjectName, &t.StandardTaskName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if stdID.Valid {
			v := stdID.String
			t.StandardTaskID = &v
		}
		tasks = append(tasks, t)
		byID[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	if len(tasks) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	wsArgs := make([]any, len(ids))
	for i, id := range ids {
		wsArgs[i] = id
	}
	wsRows, err := db.QueryContext(ctx,
		`SELECT task_id, workstation FROM task_workstations WHERE task_id IN (`+placeholders+`) ORDER BY task_id, position`,
		wsArgs...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query workstations: %w", err)
	}
	defer wsRows.Close()

	for wsRows.Next() {
		var taskID, ws string
		if err := wsRows.Scan(&taskID, &ws); err != nil {
			return nil, fmt.Errorf("failed to scan workstation: %w", err)
		}
		if t, ok := byID[taskID]; ok {
			t.Workstations = append(t.Workstations, ws)
		}
	}
	if err := wsRows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return tasks, nil
}
