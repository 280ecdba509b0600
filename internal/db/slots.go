package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matthiashuenaerts/prodplan/internal/metrics"
	"github.com/matthiashuenaerts/prodplan/pkg/models"
)

// ReplaceSlots persists a plan with delete-then-insert semantics per affected
// day: any prior slots on a day the new plan touches are removed first, so
// re-running the engine with identical inputs leaves an identical slot set.
func (db *DB) ReplaceSlots(ctx context.Context, slots []*models.ScheduleSlot) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	days := make(map[string]struct{})
	for _, s := range slots {
		days[formatDay(s.Day)] = struct{}{}
	}
	for day := range days {
		if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_slots WHERE day = ?`, day); err != nil {
			return fmt.Errorf("failed to clear slots for %s: %w", day, err)
		}
	}

	for _, s := range slots {
		if s.ID == "" {
			s.ID = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO schedule_slots (id, task_id, workstation, employee_id, day, start_at, end_at, worker_index)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.TaskID, s.Workstation, s.EmployeeID,
			formatDay(s.Day), formatInstant(s.Start), formatInstant(s.End), s.WorkerIndex,
		)
		if err != nil {
			return fmt.Errorf("failed to insert slot for task %s: %w", s.TaskID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.SlotsWritten.Add(float64(len(slots)))
	db.triggerChange(ctx)
	return nil
}

// SlotsForDay returns the committed slots of one calendar date, ascending by
// start.
func (db *DB) SlotsForDay(ctx context.Context, day time.Time) ([]*models.ScheduleSlot, error) {
	return db.querySlots(ctx, slotSelect+` WHERE s.day = ? ORDER BY s.start_at ASC`, formatDay(day))
}

// ListSlots returns all committed slots, ascending by start.
func (db *DB) ListSlots(ctx context.Context) ([]*models.ScheduleSlot, error) {
	return db.querySlots(ctx, slotSelect+` ORDER BY s.start_at ASC, s.id ASC`)
}

const slotSelect = `
	SELECT s.id, s.task_id, s.workstation, s.employee_id, s.day, s.start_at, s.end_at, s.worker_index,
	       t.title AS task_title
	FROM schedule_slots s
	JOIN tasks t ON s.task_id = t.id
`

func (db *DB) querySlots(ctx context.Context, query string, args ...any) ([]*models.ScheduleSlot, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer rows.Close()

	var slots []*models.ScheduleSlot
	for rows.Next() {
		s := &models.ScheduleSlot{}
		var day, start, end string
		err := rows.Scan(&s.ID, &s.TaskID, &s.Workstation, &s.EmployeeID, &day, &start, &end, &s.WorkerIndex, &s.TaskTitle)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		if s.Day, err = parseDay(day); err != nil {
			return nil, err
		}
		if s.Start, err = parseInstant(start); err != nil {
			return nil, err
		}
		if s.End, err = parseInstant(end); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return slots, nil
}
