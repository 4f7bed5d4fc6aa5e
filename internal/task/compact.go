package task

import (
	"strconv"
	"strings"
	"time"
)

const compactSep = "|"

const (
	compactFieldsLegacy = 5
	compactFields       = 6
)

// Compact encodes the task as a pipe-delimited line:
// title|description|due|done|created|updated.
//
// Earlier writers stopped after the created date while their reader
// expected the updated date as well; the updated date is now always
// written (empty when absent).
func (t Task) Compact() string {
	return strings.Join([]string{
		t.Title,
		t.Description,
		FormatDate(t.DueDate),
		strconv.FormatBool(t.Done),
		FormatDate(t.CreatedDate),
		FormatDate(t.UpdatedDate),
	}, compactSep)
}

// ParseCompact decodes a pipe-delimited line against the current day.
func ParseCompact(line string) (Task, error) {
	return ParseCompactAt(line, Today(time.Now()))
}

// ParseCompactAt decodes a pipe-delimited line. Both the 6-field form and
// the 5-field legacy form (no updated date) are accepted.
func ParseCompactAt(line string, today time.Time) (Task, error) {
	parts := strings.Split(strings.TrimRight(line, "\r\n"), compactSep)
	if len(parts) != compactFields && len(parts) != compactFieldsLegacy {
		return Task{}, &RecordFormatError{Format: "compact", Expected: compactFields, Actual: len(parts)}
	}
	if strings.TrimSpace(parts[0]) == "" {
		return Task{}, &ValidationError{Field: "title"}
	}

	due, err := ParseDate("dueDate", parts[2])
	if err != nil {
		return Task{}, err
	}
	created, err := ParseDate("createdDate", parts[4])
	if err != nil {
		return Task{}, err
	}
	var updated time.Time
	if len(parts) == compactFields {
		if updated, err = parseOptionalDate("updatedDate", parts[5]); err != nil {
			return Task{}, err
		}
	}

	return NewAt(parts[0], parts[1], parseBool(parts[3]), due, created, updated, today), nil
}
