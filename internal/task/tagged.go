package task

import (
	"fmt"
	"strings"
	"time"
)

// Tagged encodes the task as a single-line object of key/value pairs:
//
//	{"title":"a","description":"b","dueDate":"2025-01-09","isDone":false,"createdDate":"2025-01-01","updatedDate":"2025-01-01"}
//
// Backslashes and double quotes inside title and description are escaped.
// updatedDate is left out when the task has none.
func (t Task) Tagged() string {
	var b strings.Builder
	fmt.Fprintf(&b, `{"title":"%s","description":"%s","dueDate":"%s","isDone":%t,"createdDate":"%s"`,
		escapeTagged(t.Title),
		escapeTagged(t.Description),
		FormatDate(t.DueDate),
		t.Done,
		FormatDate(t.CreatedDate))
	if t.HasUpdatedDate() {
		fmt.Fprintf(&b, `,"updatedDate":"%s"`, FormatDate(t.UpdatedDate))
	}
	b.WriteByte('}')
	return b.String()
}

// ParseTagged decodes a tagged line against the current day.
func ParseTagged(text string) (Task, error) {
	return ParseTaggedAt(text, Today(time.Now()))
}

// ParseTaggedAt decodes a tagged line. The reader is deliberately simple:
// it drops the enclosing braces and unescaped quotes, splits pairs on commas
// and keys on the first colon. A value that contains a comma is therefore
// not read back intact. A missing updatedDate is read as absent.
func ParseTaggedAt(text string, today time.Time) (Task, error) {
	body := strings.TrimSpace(text)
	body = strings.TrimPrefix(body, "{")
	body = strings.TrimSuffix(body, "}")
	body = dropUnescapedQuotes(body)

	values := make(map[string]string)
	for _, pair := range strings.Split(body, ",") {
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) != 2 {
			continue
		}
		values[strings.TrimSpace(kv[0])] = unescapeTagged(strings.TrimSpace(kv[1]))
	}

	title := values["title"]
	if title == "" {
		return Task{}, &ValidationError{Field: "title"}
	}
	due, err := ParseDate("dueDate", values["dueDate"])
	if err != nil {
		return Task{}, err
	}
	created, err := ParseDate("createdDate", values["createdDate"])
	if err != nil {
		return Task{}, err
	}
	updated, err := parseOptionalDate("updatedDate", values["updatedDate"])
	if err != nil {
		return Task{}, err
	}

	return NewAt(title, values["description"], parseBool(values["isDone"]), due, created, updated, today), nil
}

func escapeTagged(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func unescapeTagged(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// dropUnescapedQuotes removes structural double quotes and keeps escape
// sequences intact for unescapeTagged.
func dropUnescapedQuotes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			b.WriteByte(s[i])
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
		case '"':
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
