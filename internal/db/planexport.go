package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matthiashuenaerts/prodplan/pkg/models"
)

// EnableAutoExport sets up a hook that exports the current plan to the given
// path after every successful plan write. Export failures are best-effort and
// never fail the originating write.
func (db *DB) EnableAutoExport(path string) {
	db.SetOnChange(func(ctx context.Context) {
		_ = db.ExportPlan(ctx, path)
	})
}

type planLine struct {
	Type       string                    `json:"type"`
	Slot       *models.ScheduleSlot      `json:"slot,omitempty"`
	Completion *models.ProjectCompletion `json:"completion,omitempty"`
}

// ExportPlan writes the committed slots and completion records as JSONL,
// atomically via a temporary file, so the host application can pick the plan
// up as a file artifact.
func (db *DB) ExportPlan(ctx context.Context, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	slots, err := db.ListSlots(ctx)
	if err != nil {
		return err
	}
	completions, err := db.ListCompletions(ctx)
	if err != nil {
		return err
	}

	tempFile, err := os.CreateTemp(dir, "plan-*.jsonl")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempFile.Name())
		}
	}()

	enc := json.NewEncoder(tempFile)
	for _, s := range slots {
		if err := enc.Encode(planLine{Type: "slot", Slot: s}); err != nil {
			return fmt.Errorf("failed to write slot line: %w", err)
		}
	}
	for _, c := range completions {
		if err := enc.Encode(planLine{Type: "completion", Completion: c}); err != nil {
			return fmt.Errorf("failed to write completion line: %w", err)
		}
	}

	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	filename := tempFile.Name()
	tempFile = nil // Prevent defer from removing it

	if err := os.Rename(filename, path); err != nil {
		os.Remove(filename)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
