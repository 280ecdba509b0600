package models

import "time"

// WorkingHours describes one weekday of a team's business calendar.
// Weekday follows time.Weekday numbering (0 = Sunday). A weekday with no
// WorkingHours row is non-working for that team.
type WorkingHours struct {
	Team    string        `json:"team"`
	Weekday int           `json:"weekday"`
	Start   string        `json:"start"` // "HH:MM"
	End     string        `json:"end"`   // "HH:MM"
	Breaks  []BreakWindow `json:"breaks"`
}

// BreakWindow is a break interval within a working day, fully contained in
// the day's start/end bounds.
type BreakWindow struct {
	Start string `json:"start"` // "HH:MM"
	End   string `json:"end"`   // "HH:MM"
}

// Holiday marks a calendar date as non-working for a team regardless of
// its working hours.
type Holiday struct {
	Team string    `json:"team"`
	Day  time.Time `json:"day"`
}

// Interval is a half-open [Start, End) time range.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start.Before(o.End) && o.Start.Before(iv.End)
}

func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}
