package task

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RecordFields is the number of fields in a task file record.
const RecordFields = 8

const recordSep = ","

// String renders the display line with the default labels.
func (t Task) String() string {
	return t.Display(Japanese)
}

// Display renders a one-line human-readable summary. Nothing is escaped;
// the result is for presentation only.
func (t Task) Display(l Labels) string {
	mark := " "
	if t.Done {
		mark = l.DoneMark
	}
	overdue := ""
	if t.overdue {
		overdue = ", " + l.OverdueMark + l.Overdue
	}
	return fmt.Sprintf("[%s] %s (%s: %s, %s: %s, %s: %s, %s: %s%s)",
		mark,
		t.Title,
		l.Description, t.Description,
		l.Created, FormatDate(t.CreatedDate),
		l.Due, FormatDate(t.DueDate),
		l.Priority, l.PriorityName(t.priority),
		overdue)
}

// Record encodes the task as a task file line. Field values are written
// verbatim, so a comma or line break inside the title or description
// produces a line that no longer parses. CheckText rejects such values
// before they reach a task.
func (t Task) Record(l Labels) string {
	return strings.Join([]string{
		t.Title,
		t.Description,
		strconv.FormatBool(t.Done),
		FormatDate(t.DueDate),
		FormatDate(t.CreatedDate),
		FormatDate(t.UpdatedDate),
		l.PriorityName(t.priority),
		strconv.FormatBool(t.overdue),
	}, recordSep)
}

// CheckText returns a *ValidationError if value contains the record
// delimiter or a line break.
func CheckText(field, value string) error {
	if i := strings.IndexAny(value, recordSep+"\r\n"); i >= 0 {
		return &ValidationError{Field: field, Err: fmt.Errorf("must not contain %q", value[i])}
	}
	return nil
}

// ParseRecord decodes a task file line and derives priority against the
// current day.
func ParseRecord(line string) (Task, error) {
	return ParseRecordAt(line, Today(time.Now()))
}

// ParseRecordAt decodes a task file line and derives priority against today.
// The stored priority and overdue fields are ignored. Double quotes are
// dropped before splitting, which is how spreadsheet exports of the file
// are read back.
func ParseRecordAt(line string, today time.Time) (Task, error) {
	line = strings.ReplaceAll(strings.TrimSpace(line), `"`, "")
	fields := strings.Split(line, recordSep)
	if len(fields) != RecordFields {
		return Task{}, &RecordFormatError{Format: "record", Expected: RecordFields, Actual: len(fields)}
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	title := fields[0]
	if title == "" {
		return Task{}, &ValidationError{Field: "title"}
	}
	due, err := ParseDate("dueDate", fields[3])
	if err != nil {
		return Task{}, err
	}
	created, err := ParseDate("createdDate", fields[4])
	if err != nil {
		return Task{}, err
	}
	updated, err := parseOptionalDate("updatedDate", fields[5])
	if err != nil {
		return Task{}, err
	}

	return NewAt(title, fields[1], parseBool(fields[2]), due, created, updated, today), nil
}
