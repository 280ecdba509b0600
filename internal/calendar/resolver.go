// Package calendar resolves per-team business calendars (working hours,
// breaks, holidays) into concrete workable time windows.
package calendar

import (
	"fmt"
	"sort"
	"time"

	"github.com/matthiashuenaerts/prodplan/pkg/models"
)

// DefaultHorizonDays bounds every forward scan so a calendar with no working
// days left cannot loop forever.
const DefaultHorizonDays = 365

// DayWindow is one working day's bounds with its break intervals, resolved to
// concrete instants. Breaks are sorted ascending and fully contained in
// [Start, End).
type DayWindow struct {
	Start  time.Time
	End    time.Time
	Breaks []models.Interval
}

type breakSpan struct {
	start, end int // minutes from midnight
}

type dayHours struct {
	start, end int
	breaks     []breakSpan
}

// Resolver answers "is this instant workable" and "what are today's work
// window and breaks" for a set of teams. It is read-only after construction
// and safe to share across scheduling passes.
type Resolver struct {
	hours    map[string]map[time.Weekday]dayHours
	holidays map[string]map[string]struct{}
	horizon  int
}

// NewResolver builds a resolver from working-hour rows and holiday dates.
// horizonDays bounds forward scans; values <= 0 fall back to
// DefaultHorizonDays.
func NewResolver(hours []models.WorkingHours, holidays []models.Holiday, horizonDays int) (*Resolver, error) {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	r := &Resolver{
		hours:    make(map[string]map[time.Weekday]dayHours),
		holidays: make(map[string]map[string]struct{}),
		horizon:  horizonDays,
	}

	for _, wh := range hours {
		if wh.Weekday < 0 || wh.Weekday > 6 {
			return nil, fmt.Errorf("working hours for team %s: invalid weekday %d", wh.Team, wh.Weekday)
		}
		start, err := parseClock(wh.Start)
		if err != nil {
			return nil, fmt.Errorf("working hours for team %s weekday %d: %w", wh.Team, wh.Weekday, err)
		}
		end, err := parseClock(wh.End)
		if err != nil {
			return nil, fmt.Errorf("working hours for team %s weekday %d: %w", wh.Team, wh.Weekday, err)
		}
		if end <= start {
			return nil, fmt.Errorf("working hours for team %s weekday %d: end %s not after start %s", wh.Team, wh.Weekday, wh.End, wh.Start)
		}

		dh := dayHours{start: start, end: end}
		for _, b := range wh.Breaks {
			bs, err := parseClock(b.Start)
			if err != nil {
				return nil, fmt.Errorf("break for team %s weekday %d: %w", wh.Team, wh.Weekday, err)
			}
			be, err := parseClock(b.End)
			if err != nil {
				return nil, fmt.Errorf("break for team %s weekday %d: %w", wh.Team, wh.Weekday, err)
			}
			dh.breaks = append(dh.breaks, breakSpan{start: bs, end: be})
		}
		sort.Slice(dh.breaks, func(i, j int) bool { return dh.breaks[i].start < dh.breaks[j].start })

		if r.hours[wh.Team] == nil {
			r.hours[wh.Team] = make(map[time.Weekday]dayHours)
		}
		r.hours[wh.Team][time.Weekday(wh.Weekday)] = dh
	}

	for _, h := range holidays {
		if r.holidays[h.Team] == nil {
			r.holidays[h.Team] = make(map[string]struct{})
		}
		r.holidays[h.Team][h.Day.UTC().Format("2006-01-02")] = struct{}{}
	}

	return r, nil
}

// IsWorkingDay reports whether the date of t is workable for the team: the
// weekday has working hours and the date is not a holiday.
func (r *Resolver) IsWorkingDay(team string, t time.Time) bool {
	hours, ok := r.hours[team]
	if !ok {
		return false
	}
	if _, ok := hours[t.UTC().Weekday()]; !ok {
		return false
	}
	if days, ok := r.holidays[team]; ok {
		if _, holiday := days[t.UTC().Format("2006-01-02")]; holiday {
			return false
		}
	}
	return true
}

// WorkWindow returns the team's work window for the date of t, or nil if the
// date is non-working.
func (r *Resolver) WorkWindow(team string, t time.Time) *DayWindow {
	if !r.IsWorkingDay(team, t) {
		return nil
	}
	dh := r.hours[team][t.UTC().Weekday()]
	day := DayStart(t)
	w := &DayWindow{
		Start: day.Add(time.Duration(dh.start) * time.Minute),
		End:   day.Add(time.Duration(dh.end) * time.Minute),
	}
	for _, b := range dh.breaks {
		w.Breaks = append(w.Breaks, models.Interval{
			Start: day.Add(time.Duration(b.start) * time.Minute),
			End:   day.Add(time.Duration(b.end) * time.Minute),
		})
	}
	return w
}

// ClampToWork advances t to the nearest workable instant at or after t:
// forward to the window start if the day has not begun, past any break
// containing t, or to the next working day's start. The second return is
// false when no workable instant exists within the horizon.
func (r *Resolver) ClampToWork(team string, t time.Time) (time.Time, bool) {
	cur := t
	for i := 0; i <= r.horizon; i++ {
		if w := r.WorkWindow(team, cur); w != nil {
			p := cur
			if p.Before(w.Start) {
				p = w.Start
			}
			if p.Before(w.End) {
				// Breaks are sorted, so one forward pass handles a
				// break ending exactly where the next begins.
				for _, b := range w.Breaks {
					if !p.Before(b.Start) && p.Before(b.End) {
						p = b.End
					}
				}
				if p.Before(w.End) {
					return p, true
				}
			}
		}
		cur = DayStart(cur).AddDate(0, 0, 1)
	}
	return time.Time{}, false
}

// Partition splits a duration into contiguous work slots starting at the
// first workable instant at or after start. Each slot runs up to the next
// break or end-of-day; the remainder continues after the break or on the next
// working day. The union of the returned intervals equals the requested
// duration exactly. Returns false when the duration cannot be placed within
// the horizon.
func (r *Resolver) Partition(team string, start time.Time, minutes int) ([]models.Interval, bool) {
	if minutes <= 0 {
		return nil, false
	}
	p, ok := r.ClampToWork(team, start)
	if !ok {
		return nil, false
	}

	remaining := time.Duration(minutes) * time.Minute
	var parts []models.Interval
	for remaining > 0 {
		w := r.WorkWindow(team, p)
		if w == nil {
			return nil, false
		}
		boundary := w.End
		for _, b := range w.Breaks {
			if b.Start.After(p) && b.Start.Before(boundary) {
				boundary = b.Start
				break
			}
		}
		take := boundary.Sub(p)
		if remaining < take {
			take = remaining
		}
		parts = append(parts, models.Interval{Start: p, End: p.Add(take)})
		remaining -= take
		p = p.Add(take)
		if remaining > 0 {
			if p, ok = r.ClampToWork(team, p); !ok {
				return nil, false
			}
		}
	}
	return parts, true
}

// DayStart truncates t to midnight UTC.
func DayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return h*60 + m, nil
}
