// Package store keeps the ordered task list and writes it through to a
// backend after every mutation.
//
// Tasks are kept in ascending due-date order; tasks with equal due dates
// keep their insertion order. Indices passed to Update, Delete, MarkDone
// and Get refer to that order.
//
// A Store is not safe for concurrent use.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskdesk/internal/document"
	"github.com/nibzard/taskdesk/internal/task"
)

// DefaultDataFile is the task file used when none is configured.
const DefaultDataFile = "Data/sample.csv"

// Clock returns the current time. Tests inject fixed clocks.
type Clock func() time.Time

// Op names the operation that produced an Event.
type Op string

const (
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpDone   Op = "done"
	OpImport Op = "import"
	OpReload Op = "reload"
)

// Event describes a completed mutation or reload.
type Event struct {
	Op       Op
	Index    int // affected row, -1 for whole-list operations
	Count    int // tasks in the store after the operation
	Location string
}

// Options configures a Store.
type Options struct {
	// Backend persists the task file. Defaults to a CSVFile at DefaultDataFile.
	Backend Backend
	// Labels selects the header written to the backend. Defaults to task.Japanese.
	Labels task.Labels
	// Clock defaults to time.Now.
	Clock Clock
	// Logger defaults to a logger that discards everything.
	Logger *log.Logger
	// Hook, if set, is called after every successful persist and reload.
	Hook func(Event)
}

// Store is the in-memory task list backed by persistent storage.
type Store struct {
	backend     Backend
	labels      task.Labels
	clock       Clock
	logger      *log.Logger
	tasks       []task.Task
	subscribers []func(Event)
}

// New returns an empty store. Call Load to read the backend.
func New(opts Options) *Store {
	s := &Store{
		backend: opts.Backend,
		labels:  opts.Labels,
		clock:   opts.Clock,
		logger:  opts.Logger,
	}
	if s.backend == nil {
		s.backend = NewCSVFile(DefaultDataFile)
	}
	if s.labels.Lang == "" {
		s.labels = task.Japanese
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if opts.Hook != nil {
		s.subscribers = append(s.subscribers, opts.Hook)
	}
	return s
}

// Location names the backing storage.
func (s *Store) Location() string {
	return s.backend.Location()
}

// Labels returns the label set the store writes with.
func (s *Store) Labels() task.Labels {
	return s.labels
}

// Today returns the store clock's calendar day.
func (s *Store) Today() time.Time {
	return task.Today(s.clock())
}

// Load replaces the in-memory list with the backend contents. An absent
// file loads as an empty list. The first line is the header and is skipped.
// The first malformed record aborts the load with a *LineError and leaves
// the list unchanged.
func (s *Store) Load() error {
	lines, err := s.backend.Read()
	if err != nil {
		return &IOError{Op: "read", Location: s.backend.Location(), Err: err}
	}

	today := s.Today()
	var tasks []task.Task
	for i, line := range lines {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		t, err := task.ParseRecordAt(line, today)
		if err != nil {
			return &LineError{Line: i + 1, Err: err}
		}
		tasks = append(tasks, t)
	}

	sortByDue(tasks)
	s.tasks = tasks
	s.logger.Debug("tasks loaded", "location", s.backend.Location(), "count", len(tasks))
	return nil
}

// Reload re-reads the backend and notifies subscribers.
func (s *Store) Reload() error {
	if err := s.Load(); err != nil {
		return err
	}
	s.notify(Event{Op: OpReload, Index: -1, Count: len(s.tasks), Location: s.backend.Location()})
	return nil
}

// Save sorts the list and writes the header and one record per task.
// On failure the in-memory list is kept and an *IOError is returned.
func (s *Store) Save() error {
	sortByDue(s.tasks)
	today := s.Today()
	records := make([]string, len(s.tasks))
	for i := range s.tasks {
		s.tasks[i].Recompute(today)
		records[i] = s.tasks[i].Record(s.labels)
	}
	if err := s.backend.Write(s.labels.Header, records); err != nil {
		s.logger.Error("persist failed", "location", s.backend.Location(), "err", err)
		return &IOError{Op: "write", Location: s.backend.Location(), Err: err}
	}
	return nil
}

// Tasks returns a copy of the ordered list with priority and overdue
// status derived for the current day.
func (s *Store) Tasks() []task.Task {
	today := s.Today()
	out := slices.Clone(s.tasks)
	for i := range out {
		out[i].Recompute(today)
	}
	return out
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Get returns the task at index with derived fields for the current day.
func (s *Store) Get(index int) (task.Task, error) {
	if err := s.checkIndex(index); err != nil {
		return task.Task{}, err
	}
	t := s.tasks[index]
	t.Recompute(s.Today())
	return t, nil
}

// Add validates the inputs, appends a pending task created today and
// persists. It returns the index of the new task after sorting.
func (s *Store) Add(title, description, dueDate string) (int, error) {
	title, description, due, err := validateInput(title, description, dueDate)
	if err != nil {
		return -1, err
	}

	today := s.Today()
	s.tasks = append(s.tasks, task.NewAt(title, description, false, due, today, today, today))
	sortByDue(s.tasks)

	// Stable sort keeps the new task after every task due the same day.
	index := -1
	for _, t := range s.tasks {
		if !t.DueDate.After(due) {
			index++
		}
	}

	s.logger.Debug("task added", "index", index, "count", len(s.tasks))
	return index, s.commit(OpAdd, index)
}

// Update replaces title, description and due date of the task at index,
// stamps its updated date and re-derives priority in one step. It returns
// the index of the task after sorting.
func (s *Store) Update(index int, title, description, dueDate string) (int, error) {
	if err := s.checkIndex(index); err != nil {
		return -1, err
	}
	title, description, due, err := validateInput(title, description, dueDate)
	if err != nil {
		return -1, err
	}

	today := s.Today()
	t := &s.tasks[index]
	t.Title = title
	t.Description = description
	t.DueDate = due
	t.UpdatedDate = today
	t.Recompute(today)
	moved := s.resort(index)

	s.logger.Debug("task updated", "index", moved, "from", index)
	return moved, s.commit(OpUpdate, moved)
}

// Delete removes the task at index.
func (s *Store) Delete(index int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.tasks = slices.Delete(s.tasks, index, index+1)
	s.logger.Debug("task deleted", "index", index, "count", len(s.tasks))
	return s.commit(OpDelete, index)
}

// MarkDone completes the task at index. The updated date is left alone;
// only Update stamps it. MarkDone returns false without touching the task
// if it is already done.
func (s *Store) MarkDone(index int) (bool, error) {
	if err := s.checkIndex(index); err != nil {
		return false, err
	}
	t := &s.tasks[index]
	if t.Done {
		return false, nil
	}
	t.Done = true
	s.logger.Debug("task done", "index", index)
	return true, s.commit(OpDone, index)
}

// ImportResult reports the outcome of an import.
type ImportResult struct {
	Added  int
	Failed []*LineError
}

// Err joins the per-line failures, or returns nil if every line imported.
func (r ImportResult) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Import appends every parseable record of lines. The first line is a
// header and is skipped. Unparseable lines are reported in the result and do
// not stop the import. The store persists once if anything was added; the
// returned error is the persist error only.
func (s *Store) Import(lines []string) (ImportResult, error) {
	var (
		result ImportResult
		added  []task.Task
	)
	today := s.Today()
	for i, line := range lines {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		t, err := task.ParseRecordAt(line, today)
		if err != nil {
			result.Failed = append(result.Failed, &LineError{Line: i + 1, Err: err})
			continue
		}
		added = append(added, t)
	}
	return s.merge(added, result)
}

// ImportFile imports a task file or, for a .json path, a task document.
// A document that fails schema validation is rejected as a whole.
func (s *Store) ImportFile(path string) (ImportResult, error) {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return ImportResult{}, &IOError{Op: "read", Location: path, Err: err}
		}
		return s.Import(SplitLines(string(data)))
	}

	doc, err := document.Load(path)
	if err != nil {
		return ImportResult{}, err
	}
	if v := doc.Validate(); !v.Valid {
		return ImportResult{}, fmt.Errorf("invalid task document %s: %w", path, v.Err())
	}

	var (
		result ImportResult
		added  []task.Task
	)
	today := s.Today()
	for i, e := range doc.Tasks {
		t, err := e.Task(today)
		if err != nil {
			result.Failed = append(result.Failed, &LineError{Line: i + 1, Err: err})
			continue
		}
		added = append(added, t)
	}
	return s.merge(added, result)
}

func (s *Store) merge(added []task.Task, result ImportResult) (ImportResult, error) {
	result.Added = len(added)
	s.logger.Debug("import parsed", "added", result.Added, "failed", len(result.Failed))
	if len(added) == 0 {
		return result, nil
	}
	s.tasks = append(s.tasks, added...)
	return result, s.commit(OpImport, -1)
}

// Subscribe registers fn to be called after every successful mutation and
// reload.
func (s *Store) Subscribe(fn func(Event)) {
	s.subscribers = append(s.subscribers, fn)
}

// Close releases the backend if it holds resources.
func (s *Store) Close() error {
	if c, ok := s.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Store) commit(op Op, index int) error {
	if err := s.Save(); err != nil {
		return err
	}
	s.notify(Event{Op: op, Index: index, Count: len(s.tasks), Location: s.backend.Location()})
	return nil
}

func (s *Store) notify(ev Event) {
	for _, fn := range s.subscribers {
		fn(ev)
	}
}

func (s *Store) checkIndex(index int) error {
	if index < 0 || index >= len(s.tasks) {
		return &IndexError{Index: index, Len: len(s.tasks)}
	}
	return nil
}

func validateInput(title, description, dueDate string) (string, string, time.Time, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", "", time.Time{}, &task.ValidationError{Field: "title"}
	}
	description = strings.TrimSpace(description)
	if err := task.CheckText("title", title); err != nil {
		return "", "", time.Time{}, err
	}
	if err := task.CheckText("description", description); err != nil {
		return "", "", time.Time{}, err
	}
	due, err := task.ParseDate("dueDate", dueDate)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return title, description, due, nil
}

// resort sorts the list and returns the new position of the task that was
// at index.
func (s *Store) resort(index int) int {
	order := make([]int, len(s.tasks))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return s.tasks[a].DueDate.Compare(s.tasks[b].DueDate)
	})

	moved := -1
	sorted := make([]task.Task, len(s.tasks))
	for pos, i := range order {
		sorted[pos] = s.tasks[i]
		if i == index {
			moved = pos
		}
	}
	s.tasks = sorted
	return moved
}

func sortByDue(tasks []task.Task) {
	slices.SortStableFunc(tasks, func(a, b task.Task) int {
		return a.DueDate.Compare(b.DueDate)
	})
}
