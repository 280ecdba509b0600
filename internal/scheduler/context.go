package scheduler

import (
	"fmt"
	"time"

	"github.com/matthiashuenaerts/prodplan/pkg/models"
)

// workerIndexModulo bounds the display-only round-robin worker counter.
const workerIndexModulo = 10

// runContext holds all mutable state of one scheduling run: employee time
// reservations, committed finish instants per project and category, the
// produced slots and the warnings. It is created fresh per run so repeated
// runs cannot interfere with each other.
type runContext struct {
	blocks    map[string][]models.Interval // employee ID -> reserved spans
	finishes  map[string]time.Time         // project|category -> latest committed end
	workerIdx map[string]int               // workstation -> next display index

	slots       []*models.ScheduleSlot
	warnings    []string
	unscheduled []string
}

func newRunContext() *runContext {
	return &runContext{
		blocks:    make(map[string][]models.Interval),
		finishes:  make(map[string]time.Time),
		workerIdx: make(map[string]int),
	}
}

// free reports whether the employee has no reservation overlapping
// [start, end).
func (rc *runContext) free(employeeID string, start, end time.Time) bool {
	span := models.Interval{Start: start, End: end}
	for _, b := range rc.blocks[employeeID] {
		if b.Overlaps(span) {
			return false
		}
	}
	return true
}

// reserve blocks the employee for the full span. The caller must have checked
// free first.
func (rc *runContext) reserve(employeeID string, start, end time.Time) {
	rc.blocks[employeeID] = append(rc.blocks[employeeID], models.Interval{Start: start, End: end})
}

// nextWorkerIndex advances the per-workstation display counter.
func (rc *runContext) nextWorkerIndex(workstation string) int {
	idx := rc.workerIdx[workstation]
	rc.workerIdx[workstation] = (idx + 1) % workerIndexModulo
	return idx
}

func finishKey(projectID, categoryID string) string {
	return projectID + "|" + categoryID
}

// recordFinish keeps the latest committed end per project and category, so a
// dependent task gates on the last instance to finish.
func (rc *runContext) recordFinish(projectID, categoryID string, end time.Time) {
	key := finishKey(projectID, categoryID)
	if cur, ok := rc.finishes[key]; !ok || end.After(cur) {
		rc.finishes[key] = end
	}
}

func (rc *runContext) finishOf(projectID, categoryID string) (time.Time, bool) {
	end, ok := rc.finishes[finishKey(projectID, categoryID)]
	return end, ok
}

func (rc *runContext) warnf(format string, args ...any) {
	rc.warnings = append(rc.warnings, fmt.Sprintf(format, args...))
}
