package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/matthiashuenaerts/prodplan/pkg/models"
)

// CreateStandardTask inserts a skill category. If st.ID is empty, a new UUID
// is generated.
func (db *DB) CreateStandardTask(ctx context.Context, st *models.StandardTask) error {
	return db.createStandardTask(ctx, db.DB, st)
}

func (db *DB) createStandardTask(ctx context.Context, exec executor, st *models.StandardTask) error {
	if st.ID == "" {
		st.ID = uuid.New().String()
	}
	if st.Team == "" {
		st.Team = "production"
	}
	terminal := 0
	if st.IsTerminal {
		terminal = 1
	}

	query := `
		INSERT INTO standard_tasks (id, name, order_key, team, is_terminal)
		VALUES (?, ?, ?, ?, ?)
		RETURNING created_at
	`
	err := exec.QueryRowContext(ctx, query, st.ID, st.Name, st.OrderKey, st.Team, terminal).Scan(&st.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create standard task: %w", err)
	}
	return nil
}

// GetStandardTaskByName retrieves a skill category by name.
func (db *DB) GetStandardTaskByName(ctx context.Context, name string) (*models.StandardTask, error) {
	query := `
		SELECT id, name, order_key, team, is_terminal, created_at
		FROM standard_tasks
		WHERE name = ?
	`
	st, err := scanStandardTask(db.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get standard task: %w", err)
	}
	return st, nil
}

// StandardTasks returns all skill categories, ascending by order key.
func (db *DB) StandardTasks(ctx context.Context) ([]*models.StandardTask, error) {
	query := `
		SELECT id, name, order_key, team, is_terminal, created_at
		FROM standard_tasks
		ORDER BY order_key ASC, name ASC
	`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list standard tasks: %w", err)
	}
	defer rows.Close()

	var out []*models.StandardTask
	for rows.Next() {
		st, err := scanStandardTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan standard task: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func scanStandardTask(row rowScanner) (*models.StandardTask, error) {
	st := &models.StandardTask{}
	var terminal int
	if err := row.Scan(&st.ID, &st.Name, &st.OrderKey, &st.Team, &terminal, &st.CreatedAt); err != nil {
		return nil, err
	}
	st.IsTerminal = terminal == 1
	return st, nil
}

// AddPrerequisite records that a skill category requires another to have
// finished first, evaluated per project.
func (db *DB) AddPrerequisite(ctx context.Context, standardTaskID, requiresID string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO standard_task_prerequisites (standard_task_id, requires_id) VALUES (?, ?)`,
		standardTaskID, requiresID,
	)
	if err != nil {
		return fmt.Errorf("failed to add prerequisite: %w", err)
	}
	return nil
}

// Prerequisites maps each skill category to the categories it requires.
func (db *DB) Prerequisites(ctx context.Context) (map[string][]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT standard_task_id, requires_id FROM standard_task_prerequisites ORDER BY standard_task_id, requires_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list prerequisites: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var id, requires string
		if err := rows.Scan(&id, &requires); err != nil {
			return nil, fmt.Errorf("failed to scan prerequisite: %w", err)
		}
		out[id] = append(out[id], requires)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}
