package db

import (
	"context"
	"fmt"
	"time"

	"github.com/matthiashuenaerts/prodplan/pkg/models"
)

// SetWorkingHours replaces a team's working hours and breaks for one weekday.
func (db *DB) SetWorkingHours(ctx context.Context, wh models.WorkingHours) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM working_hours WHERE team = ? AND weekday = ?`, wh.Team, wh.Weekday,
	); err != nil {
		return fmt.Errorf("failed to clear working hours: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO working_hours (team, weekday, start_time, end_time) VALUES (?, ?, ?, ?)`,
		wh.Team, wh.Weekday, wh.Start, wh.End,
	); err != nil {
		return fmt.Errorf("failed to set working hours: %w", err)
	}
	for _, b := range wh.Breaks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO work_breaks (team, weekday, start_time, end_time) VALUES (?, ?, ?, ?)`,
			wh.Team, wh.Weekday, b.Start, b.End,
		); err != nil {
			return fmt.Errorf("failed to add break: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// WorkingHours returns every team's weekday definitions with breaks attached,
// breaks sorted ascending by start.
func (db *DB) WorkingHours(ctx context.Context) ([]models.WorkingHours, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT team, weekday, start_time, end_time FROM working_hours ORDER BY team, weekday`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list working hours: %w", err)
	}
	defer rows.Close()

	var hours []models.WorkingHours
	index := make(map[string]int)
	for rows.Next() {
		var wh models.WorkingHours
		if err := rows.Scan(&wh.Team, &wh.Weekday, &wh.Start, &wh.End); err != nil {
			return nil, fmt.Errorf("failed to scan working hours: %w", err)
		}
		index[fmt.Sprintf("%s/%d", wh.Team, wh.Weekday)] = len(hours)
		hours = append(hours, wh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	breakRows, err := db.QueryContext(ctx,
		`SELECT team, weekday, start_time, end_time FROM work_breaks ORDER BY team, weekday, start_time`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list breaks: %w", err)
	}
	defer breakRows.Close()

	for breakRows.Next() {
		var team, start, end string
		var weekday int
		if err := breakRows.Scan(&team, &weekday, &start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan break: %w", err)
		}
		if i, ok := index[fmt.Sprintf("%s/%d", team, weekday)]; ok {
			hours[i].Breaks = append(hours[i].Breaks, models.BreakWindow{Start: start, End: end})
		}
	}
	if err := breakRows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return hours, nil
}

// AddHoliday marks a date as non-working for a team.
func (db *DB) AddHoliday(ctx context.Context, team string, day time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO holidays (team, day) VALUES (?, ?)`, team, formatDay(day),
	)
	if err != nil {
		return fmt.Errorf("failed to add holiday: %w", err)
	}
	return nil
}

// Holidays returns every team's non-working dates.
func (db *DB) Holidays(ctx context.Context) ([]models.Holiday, error) {
	rows, err := db.QueryContext(ctx, `SELECT team, day FROM holidays ORDER BY team, day`)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var out []models.Holiday
	for rows.Next() {
		var team, day string
		if err := rows.Scan(&team, &day); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		d, err := parseDay(day)
		if err != nil {
			return nil, err
		}
		out = append(out, models.Holiday{Team: team, Day: d})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}
