package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/matthiashuenaerts/prodplan/pkg/models"
)

// ReplaceCompletions upserts the completion records of the ranked projects.
func (db *DB) ReplaceCompletions(ctx context.Context, recs []*models.ProjectCompletion) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range recs {
		var end any
		if c.EstimatedEnd != nil {
			end = formatInstant(*c.EstimatedEnd)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO project_completions (project_id, installation_date, estimated_end, status, days_remaining)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(project_id) DO UPDATE SET
				installation_date = excluded.installation_date,
				estimated_end = excluded.estimated_end,
				status = excluded.status,
				days_remaining = excluded.days_remaining`,
			c.ProjectID, formatDay(c.InstallationDate), end, c.Status, c.DaysRemaining,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert completion for %s: %w", c.ProjectID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	db.triggerChange(ctx)
	return nil
}

// ListCompletions returns the stored completion records, most urgent first.
func (db *DB) ListCompletions(ctx context.Context) ([]*models.ProjectCompletion, error) {
	query := `
		SELECT c.project_id, c.installation_date, c.estimated_end, c.status, c.days_remaining,
		       p.name AS project_name
		FROM project_completions c
		JOIN projects p ON c.project_id = p.id
		ORDER BY c.installation_date ASC
	`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	defer rows.Close()

	var out []*models.ProjectCompletion
	for rows.Next() {
		c := &models.ProjectCompletion{}
		var install string
		var end sql.NullString
		if err := rows.Scan(&c.ProjectID, &install, &end, &c.Status, &c.DaysRemaining, &c.ProjectName); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		if c.InstallationDate, err = parseDay(install); err != nil {
			return nil, err
		}
		if end.Valid {
			t, err := parseInstant(end.String)
			if err != nil {
				return nil, err
			}
			c.EstimatedEnd = &t
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}
