// Package ui provides the terminal task editor.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/taskdesk/internal/store"
	"github.com/nibzard/taskdesk/internal/task"
)

// Store is the part of *store.Store the editor drives. Every call returns
// either success or a structured error that is shown in the status line.
type Store interface {
	Tasks() []task.Task
	Labels() task.Labels
	Location() string
	Today() time.Time
	Add(title, description, dueDate string) (int, error)
	Update(index int, title, description, dueDate string) (int, error)
	Delete(index int) error
	MarkDone(index int) (bool, error)
	ImportFile(path string) (store.ImportResult, error)
	Reload() error
}

// RefreshInterval is how often the editor re-reads the task list so that
// priorities and overdue flags follow the calendar.
const RefreshInterval = time.Minute

// Run starts the editor on st and blocks until the user quits or ctx ends.
func Run(ctx context.Context, st Store) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	program := tea.NewProgram(newModel(st), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
	modeConfirmDelete
	modeImport
)

const (
	fieldTitle = iota
	fieldDescription
	fieldDue
	fieldCount
)

type model struct {
	store    Store
	labels   task.Labels
	tasks    []task.Task
	cursor   int
	mode     mode
	editing  int
	fields   []textinput.Model
	focus    int
	path     textinput.Model
	status   string
	statusOK bool
	width    int // terminal size, zero until the first WindowSizeMsg
	height   int
	offset   int // first table row shown
	interval time.Duration
}

type tickMsg time.Time

func newModel(st Store) *model {
	labels := st.Labels()
	fields := make([]textinput.Model, fieldCount)
	for i := range fields {
		ti := textinput.New()
		ti.CharLimit = 256
		ti.Width = 40
		fields[i] = ti
	}
	fields[fieldTitle].Placeholder = columnName(labels, 1)
	fields[fieldDescription].Placeholder = columnName(labels, 2)
	fields[fieldDue].Placeholder = task.DateLayout
	fields[fieldDue].CharLimit = len(task.DateLayout)

	path := textinput.New()
	path.Placeholder = "tasks.csv"
	path.CharLimit = 1024
	path.Width = 60

	m := &model{
		store:    st,
		labels:   labels,
		fields:   fields,
		path:     path,
		editing:  -1,
		interval: RefreshInterval,
	}
	m.refresh()
	return m
}

func (m *model) Init() tea.Cmd {
	return tickCmd(m.interval)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	m.scroll()
	return next, cmd
}

func (m *model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAdd, modeEdit:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		case modeImport:
			return m.updateImport(msg)
		default:
			return m.updateList(msg)
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		for i := range m.fields {
			m.fields[i].Width = clampWidth(msg.Width-16, 40)
		}
		m.path.Width = clampWidth(msg.Width-4, 60)
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.interval)
	}
	return m, nil
}

func (m *model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "j", "down":
		m.move(1)
	case "k", "up":
		m.move(-1)
	case "r", "f5":
		if err := m.store.Reload(); err != nil {
			m.fail(err)
		} else {
			m.succeed(fmt.Sprintf("Reloaded %d tasks from %s", len(m.store.Tasks()), m.store.Location()))
		}
		m.refresh()
	case "a":
		return m, m.openForm(modeAdd, -1)
	case "e", "enter":
		if len(m.tasks) == 0 {
			return m, nil
		}
		return m, m.openForm(modeEdit, m.cursor)
	case "d":
		if len(m.tasks) == 0 {
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.status = fmt.Sprintf("Delete %q? y/n", m.tasks[m.cursor].Title)
		m.statusOK = true
	case "x":
		if len(m.tasks) == 0 {
			return m, nil
		}
		done, err := m.store.MarkDone(m.cursor)
		switch {
		case err != nil:
			m.fail(err)
		case !done:
			m.succeed("Already done")
		default:
			m.succeed("Marked done")
		}
		m.refresh()
	case "i":
		m.mode = modeImport
		m.path.SetValue("")
		m.status = "Import: enter a file path and press Enter"
		m.statusOK = true
		return m, m.path.Focus()
	}
	return m, nil
}

func (m *model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeForm()
		m.succeed("Cancelled")
		return m, nil
	case "tab", "down":
		return m, m.focusField((m.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return m, m.focusField((m.focus + fieldCount - 1) % fieldCount)
	case "enter":
		m.submitForm()
		return m, nil
	}
	var cmd tea.Cmd
	m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
	return m, cmd
}

func (m *model) submitForm() {
	title := m.fields[fieldTitle].Value()
	description := m.fields[fieldDescription].Value()
	due := m.fields[fieldDue].Value()

	var (
		index int
		err   error
		done  = "Added task"
	)
	if m.mode == modeEdit {
		index, err = m.store.Update(m.editing, title, description, due)
		done = "Updated task"
	} else {
		index, err = m.store.Add(title, description, due)
	}
	// A failed write leaves the change in memory, so the form must not be
	// submitted twice.
	if err != nil && !errors.Is(err, store.ErrIO) {
		m.fail(err)
		return
	}
	m.closeForm()
	m.refresh()
	m.cursor = clampCursor(index, len(m.tasks))
	if err != nil {
		m.fail(fmt.Errorf("task kept but not saved: %w", err))
		return
	}
	m.succeed(done)
}

func (m *model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = modeList
		if err := m.store.Delete(m.cursor); err != nil {
			m.fail(err)
		} else {
			m.succeed("Deleted task")
		}
		m.refresh()
	case "n", "N", "esc":
		m.mode = modeList
		m.succeed("Cancelled")
	}
	return m, nil
}

func (m *model) updateImport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.path.Blur()
		m.succeed("Cancelled")
		return m, nil
	case "enter":
		path := strings.TrimSpace(m.path.Value())
		if path == "" {
			m.fail(errors.New("import path is empty"))
			return m, nil
		}
		m.mode = modeList
		m.path.Blur()
		result, err := m.store.ImportFile(path)
		m.refresh()
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.reportImport(result)
		return m, nil
	}
	var cmd tea.Cmd
	m.path, cmd = m.path.Update(msg)
	return m, cmd
}

func (m *model) reportImport(result store.ImportResult) {
	msg := fmt.Sprintf("Imported %d tasks", result.Added)
	if len(result.Failed) == 0 {
		m.succeed(msg)
		return
	}
	msg += fmt.Sprintf(", %d failed (%v)", len(result.Failed), result.Failed[0])
	if result.Added == 0 {
		m.status = msg
		m.statusOK = false
		return
	}
	m.succeed(msg)
}

func (m *model) openForm(md mode, index int) tea.Cmd {
	m.mode = md
	m.editing = index
	if md == modeEdit {
		t := m.tasks[index]
		m.fields[fieldTitle].SetValue(t.Title)
		m.fields[fieldDescription].SetValue(t.Description)
		m.fields[fieldDue].SetValue(task.FormatDate(t.DueDate))
		m.status = fmt.Sprintf("Edit task %d: Tab moves between fields, Enter saves, Esc cancels", index+1)
	} else {
		m.fields[fieldTitle].SetValue("")
		m.fields[fieldDescription].SetValue("")
		m.fields[fieldDue].SetValue(task.FormatDate(m.store.Today()))
		m.status = "Add task: Tab moves between fields, Enter saves, Esc cancels"
	}
	m.statusOK = true
	return m.focusField(fieldTitle)
}

func (m *model) closeForm() {
	m.mode = modeList
	m.editing = -1
	for i := range m.fields {
		m.fields[i].Blur()
	}
}

func (m *model) focusField(i int) tea.Cmd {
	m.focus = i
	for j := range m.fields {
		if j != i {
			m.fields[j].Blur()
		}
	}
	return m.fields[i].Focus()
}

func (m *model) refresh() {
	m.tasks = m.store.Tasks()
	m.cursor = clampCursor(m.cursor, len(m.tasks))
}

func (m *model) move(delta int) {
	m.cursor = clampCursor(m.cursor+delta, len(m.tasks))
}

// visibleRows is the number of table rows that fit the terminal. Before the
// first WindowSizeMsg every row is shown.
func (m *model) visibleRows() int {
	if m.height <= 0 {
		return len(m.tasks)
	}
	return max(m.height-reservedLines, minVisibleRows)
}

// scroll moves the table window so that it contains the cursor.
func (m *model) scroll() {
	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	m.offset = max(0, min(m.offset, len(m.tasks)-rows))
}

func (m *model) fail(err error) {
	m.status = "Error: " + err.Error()
	m.statusOK = false
}

func (m *model) succeed(msg string) {
	m.status = msg
	m.statusOK = true
}

func clampWidth(w, limit int) int {
	return max(10, min(w, limit))
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
