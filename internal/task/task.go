package task

import (
	"strings"
	"time"
)

// DateLayout is the textual form of every date field.
const DateLayout = "2006-01-02"

// Priority is the urgency bucket derived from the due date.
type Priority int

const (
	PriorityHigh Priority = iota + 1
	PriorityMedium
	PriorityLow
)

// String returns the English name used in logs and JSON documents.
func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	default:
		return "Unknown"
	}
}

// ParsePriority parses an English or Japanese priority name.
// It reports false for anything else.
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "高":
		return PriorityHigh, true
	case "medium", "中":
		return PriorityMedium, true
	case "low", "低":
		return PriorityLow, true
	}
	return 0, false
}

// Task is a single to-do item.
//
// Priority and overdue status are derived; read them through Priority and
// Overdue after calling Recompute for the day of interest.
type Task struct {
	Title       string
	Description string
	DueDate     time.Time
	CreatedDate time.Time
	// UpdatedDate is the zero time when the source record carried none.
	UpdatedDate time.Time
	Done        bool

	priority Priority
	overdue  bool
}

// New builds a task and derives its priority against the current day.
func New(title, description string, done bool, due, created, updated time.Time) Task {
	return NewAt(title, description, done, due, created, updated, Today(time.Now()))
}

// NewAt builds a task and derives its priority against the given day.
func NewAt(title, description string, done bool, due, created, updated, today time.Time) Task {
	t := Task{
		Title:       title,
		Description: description,
		DueDate:     Day(due),
		CreatedDate: Day(created),
		Done:        done,
	}
	if !updated.IsZero() {
		t.UpdatedDate = Day(updated)
	}
	t.Recompute(today)
	return t
}

// Recompute re-derives priority and overdue status for the given day.
// Callers that change DueDate must call it before reading the derived fields.
func (t *Task) Recompute(today time.Time) {
	t.priority, t.overdue = Derive(t.DueDate, today)
}

// Priority returns the derived priority as of the last Recompute.
func (t Task) Priority() Priority {
	return t.priority
}

// Overdue reports whether the task was past due as of the last Recompute.
func (t Task) Overdue() bool {
	return t.overdue
}

// HasUpdatedDate reports whether the task carries an updated date.
func (t Task) HasUpdatedDate() bool {
	return !t.UpdatedDate.IsZero()
}

// Derive maps a due date to its priority and overdue flag as seen from today.
func Derive(due, today time.Time) (Priority, bool) {
	days := DaysBetween(today, due)
	switch {
	case days < 0:
		return PriorityHigh, true
	case days <= 1:
		return PriorityHigh, false
	case days <= 7:
		return PriorityMedium, false
	default:
		return PriorityLow, false
	}
}

// DaysBetween returns the number of whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// Day truncates t to its calendar day, expressed as midnight UTC.
// The calendar day is read in t's own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the calendar day of now in the local time zone.
func Today(now time.Time) time.Time {
	return Day(now.Local())
}

// FormatDate renders a date field, or the empty string for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD date. field names the value in the error.
func ParseDate(field, value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, &ValidationError{Field: field}
	}
	d, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, &DateFormatError{Field: field, Value: value, Err: err}
	}
	return d, nil
}

// parseOptionalDate is ParseDate that reads an empty value as absent.
func parseOptionalDate(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	return ParseDate(field, value)
}

// parseBool follows the lenient reading of the task file: only a
// case-insensitive "true" is true.
func parseBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}
