// Package document reads, writes and validates the JSON task document.
//
// The document is the lossless interchange form of a task list:
//
//	{
//	  "schema_version": 1,
//	  "exported_at": "2025-01-01T09:00:00Z",
//	  "tasks": [
//	    {
//	      "title": "Buy milk",
//	      "description": "2%",
//	      "due_date": "2025-01-09",
//	      "created_date": "2025-01-01",
//	      "updated_date": "2025-01-01",
//	      "done": false,
//	      "priority": "Low",
//	      "overdue": false
//	    }
//	  ]
//	}
//
// Converting an entry to a task applies the task file's text rules: titles
// and descriptions must not contain commas or line breaks. priority and
// overdue are informational; readers re-derive them.
package document

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/nibzard/taskdesk/internal/task"
)

// SchemaVersion is the only document version this package writes and reads.
const SchemaVersion = 1

//go:embed schema.json
var schemaJSON string

// Schema returns the JSON Schema (draft 2020-12) of the document.
func Schema() string {
	return schemaJSON
}

// Entry is one task in the document.
type Entry struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	CreatedDate string `json:"created_date"`
	UpdatedDate string `json:"updated_date,omitempty"`
	Done        bool   `json:"done"`
	Priority    string `json:"priority,omitempty"`
	Overdue     bool   `json:"overdue"`
}

// File is the document root.
type File struct {
	SchemaVersion int        `json:"schema_version"`
	ExportedAt    *time.Time `json:"exported_at,omitempty"`
	Tasks         []Entry    `json:"tasks"`
}

// FromTasks builds a document from tasks whose derived fields are current.
func FromTasks(tasks []task.Task, now time.Time) *File {
	at := now.UTC().Truncate(time.Second)
	f := &File{
		SchemaVersion: SchemaVersion,
		ExportedAt:    &at,
		Tasks:         make([]Entry, 0, len(tasks)),
	}
	for _, t := range tasks {
		f.Tasks = append(f.Tasks, Entry{
			Title:       t.Title,
			Description: t.Description,
			DueDate:     task.FormatDate(t.DueDate),
			CreatedDate: task.FormatDate(t.CreatedDate),
			UpdatedDate: task.FormatDate(t.UpdatedDate),
			Done:        t.Done,
			Priority:    t.Priority().String(),
			Overdue:     t.Overdue(),
		})
	}
	return f
}

// Task converts the entry, deriving priority for today.
func (e Entry) Task(today time.Time) (task.Task, error) {
	if strings.TrimSpace(e.Title) == "" {
		return task.Task{}, &task.ValidationError{Field: "title"}
	}
	if err := task.CheckText("title", e.Title); err != nil {
		return task.Task{}, err
	}
	if err := task.CheckText("description", e.Description); err != nil {
		return task.Task{}, err
	}
	due, err := task.ParseDate("due_date", e.DueDate)
	if err != nil {
		return task.Task{}, err
	}
	created, err := task.ParseDate("created_date", e.CreatedDate)
	if err != nil {
		return task.Task{}, err
	}
	var updated time.Time
	if e.UpdatedDate != "" {
		if updated, err = task.ParseDate("updated_date", e.UpdatedDate); err != nil {
			return task.Task{}, err
		}
	}
	return task.NewAt(e.Title, e.Description, e.Done, due, created, updated, today), nil
}

// TaskList converts every entry. The first invalid entry fails the conversion.
func (f *File) TaskList(today time.Time) ([]task.Task, error) {
	tasks := make([]task.Task, 0, len(f.Tasks))
	for i, e := range f.Tasks {
		t, err := e.Task(today)
		if err != nil {
			return nil, fmt.Errorf("tasks[%d]: %w", i, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Load reads and parses a document from path.
func Load(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read task document: %w", err)
	}
	defer fh.Close()
	return Decode(fh)
}

// Decode parses a document from r.
func Decode(r io.Reader) (*File, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("parse task document: %w", err)
	}
	return &f, nil
}

// Encode writes the document with 2-space indentation and a trailing newline.
func (f *File) Encode(w io.Writer) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal task document: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// Save writes the document to path.
func (f *File) Save(path string) error {
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write task document: %w", err)
	}
	if err := f.Encode(fh); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}
