package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/taskdesk/internal/task"
)

const schemaURL = "taskdesk://schema/tasks.json"

// ValidationError is one violation at a dotted document path
// such as tasks[0].due_date.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationResult holds every violation found in a document.
type ValidationResult struct {
	Valid      bool
	Errors     []error
	Warnings   []string
	UsedSchema bool // false when the embedded schema failed to compile
}

// Err joins the violations, or returns nil for a valid document.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return errors.Join(r.Errors...)
}

// Validate checks the document against the embedded schema. If the schema
// cannot be compiled it falls back to structural checks and says so in
// Warnings.
func (f *File) Validate() *ValidationResult {
	result := &ValidationResult{Valid: true}

	schema, err := compileSchema()
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("schema unavailable, using minimal checks: %v", err))
		f.validateMinimal(result)
		return result
	}
	result.UsedSchema = true

	data, err := json.Marshal(f)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{Err: fmt.Errorf("marshal for validation: %w", err)})
		return result
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{Err: fmt.Errorf("unmarshal for validation: %w", err)})
		return result
	}

	if err := schema.Validate(doc); err != nil {
		result.Valid = false
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			collectSchemaErrors(result, ve)
		} else {
			result.Errors = append(result.Errors, err)
		}
	}
	return result
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaURL)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: pointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

func (f *File) validateMinimal(result *ValidationResult) {
	fail := func(path string, err error) {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{Path: path, Err: err})
	}

	if f.SchemaVersion != SchemaVersion {
		fail("schema_version", fmt.Errorf("expected %d, got %d", SchemaVersion, f.SchemaVersion))
	}
	if f.Tasks == nil {
		fail("tasks", errors.New("missing required field"))
		return
	}
	for i, e := range f.Tasks {
		path := fmt.Sprintf("tasks[%d]", i)
		if e.Title == "" {
			fail(path+".title", errors.New("missing required field"))
		}
		for field, value := range map[string]string{
			"due_date":     e.DueDate,
			"created_date": e.CreatedDate,
		} {
			if _, err := time.Parse(task.DateLayout, value); err != nil {
				fail(path+"."+field, fmt.Errorf("invalid date %q", value))
			}
		}
		if e.Priority != "" {
			if _, ok := task.ParsePriority(e.Priority); !ok {
				fail(path+".priority", fmt.Errorf("invalid priority %q", e.Priority))
			}
		}
	}
}

// pointerToPath turns a JSON pointer like /tasks/0/title into tasks[0].title.
func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
