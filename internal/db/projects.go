package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matthiashuenaerts/prodplan/pkg/models"
)

// CreateProject inserts a new project. If p.ID is empty, a new UUID is
// generated.
func (db *DB) CreateProject(ctx context.Context, p *models.Project) error {
	return db.createProject(ctx, db.DB, p)
}

func (db *DB) createProject(ctx context.Context, exec executor, p *models.Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = models.ProjectStatusPlanned
	}

	query := `
		INSERT INTO projects (id, name, client, status, start_date, installation_date)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING created_at, updated_at
	`
	err := exec.QueryRowContext(ctx, query,
		p.ID, p.Name, p.Client, p.Status, formatDay(p.StartDate), formatDay(p.InstallationDate),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetProject retrieves a project by its ID.
func (db *DB) GetProject(ctx context.Context, id string) (*models.Project, error) {
	query := `
		SELECT id, name, client, status, start_date, installation_date, created_at, updated_at
		FROM projects
		WHERE id = ?
	`
	p, err := scanProject(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// ListProjects returns all projects, ascending by installation date.
func (db *DB) ListProjects(ctx context.Context) ([]*models.Project, error) {
	query := `
		SELECT id, name, client, status, start_date, installation_date, created_at, updated_at
		FROM projects
		ORDER BY installation_date ASC, name ASC
	`
	return db.queryProjects(ctx, query)
}

// UrgentProjects returns the limit most urgent planned/in-production projects:
// installation date on or after today, ascending by installation date. This
// ordering is the master priority for all downstream scheduling.
func (db *DB) UrgentProjects(ctx context.Context, limit int, today time.Time) ([]*models.Project, error) {
	query := `
		SELECT id, name, client, status, start_date, installation_date, created_at, updated_at
		FROM projects
		WHERE status IN ('planned', 'in_production')
		  AND installation_date >= ?
		ORDER BY installation_date ASC
		LIMIT ?
	`
	return db.queryProjects(ctx, query, formatDay(today), limit)
}

// UpdateProjectStatus moves a project through its lifecycle.
func (db *DB) UpdateProjectStatus(ctx context.Context, id string, status models.ProjectStatus) error {
	res, err := db.ExecContext(ctx, `UPDATE projects SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("project not found: %s", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	p := &models.Project{}
	var startDate, installDate string
	err := row.Scan(&p.ID, &p.Name, &p.Client, &p.Status, &startDate, &installDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if p.StartDate, err = parseDay(startDate); err != nil {
		return nil, err
	}
	if p.InstallationDate, err = parseDay(installDate); err != nil {
		return nil, err
	}
	return p, nil
}

func (db *DB) queryProjects(ctx context.Context, query string, args ...any) ([]*models.Project, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return projects, nil
}
