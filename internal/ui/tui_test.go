package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/taskdesk/internal/store"
	"github.com/nibzard/taskdesk/internal/task"
)

const header = "title,description,done,due_date,created_date,updated_date,priority,overdue"

func newTestModel(t *testing.T, lines ...string) (*model, *store.Store) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.csv")
	if len(lines) > 0 {
		content := header + "\n" + strings.Join(lines, "\n") + "\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)
	st := store.New(store.Options{
		Backend: store.NewCSVFile(path),
		Labels:  task.English,
		Clock:   func() time.Time { return now },
	})
	if err := st.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return newModel(st), st
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(key(k))
	}
	return cmd
}

var sample = []string{
	"Pay rent,,false,2025-03-11,2025-03-01,,,",
	"Renew passport,forms,false,2025-04-30,2025-03-01,,,",
	"File taxes,,true,2025-03-05,2025-02-01,2025-03-04,,",
}

func TestNewModelLoadsSortedTasks(t *testing.T) {
	m, _ := newTestModel(t, sample...)
	if len(m.tasks) != 3 {
		t.Fatalf("tasks = %d, want 3", len(m.tasks))
	}
	if m.tasks[0].Title != "File taxes" || m.tasks[2].Title != "Renew passport" {
		t.Errorf("order = %q, %q, %q", m.tasks[0].Title, m.tasks[1].Title, m.tasks[2].Title)
	}
	if m.Init() == nil {
		t.Error("Init should schedule the refresh tick")
	}
}

func TestCursorMovement(t *testing.T) {
	m, _ := newTestModel(t, sample...)

	press(m, "j", "down", "j")
	if m.cursor != 2 {
		t.Errorf("cursor after moving past the end = %d, want 2", m.cursor)
	}
	press(m, "k", "up", "k", "k")
	if m.cursor != 0 {
		t.Errorf("cursor after moving past the start = %d, want 0", m.cursor)
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	for _, k := range []string{"q", "ctrl+c"} {
		cmd := press(m, k)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg", k)
		}
	}
}

func TestAddTask(t *testing.T) {
	m, st := newTestModel(t, sample...)

	press(m, "a")
	if m.mode != modeAdd {
		t.Fatalf("mode = %v, want add", m.mode)
	}
	if got := m.fields[fieldDue].Value(); got != "2025-03-10" {
		t.Errorf("due prefill = %q, want today", got)
	}

	press(m, "B", "u", "y")
	m.fields[fieldDescription].SetValue("2%")
	m.fields[fieldDue].SetValue("2025-03-20")
	press(m, "enter")

	if m.mode != modeList || !m.statusOK {
		t.Fatalf("mode = %v, status = %q", m.mode, m.status)
	}
	if st.Len() != 4 {
		t.Fatalf("store has %d tasks, want 4", st.Len())
	}
	if got := m.tasks[m.cursor]; got.Title != "Buy" || got.Description != "2%" {
		t.Errorf("cursor on %+v, want the new task", got)
	}
}

func TestAddTaskValidationError(t *testing.T) {
	m, st := newTestModel(t, sample...)

	press(m, "a")
	m.fields[fieldTitle].SetValue("Pay bills")
	m.fields[fieldDue].SetValue("2025/03/20")
	press(m, "enter")

	if m.mode != modeAdd {
		t.Errorf("form should stay open after an error, mode = %v", m.mode)
	}
	if m.statusOK || !strings.Contains(m.status, "dueDate") {
		t.Errorf("status = %q, want a due date error", m.status)
	}
	if st.Len() != 3 {
		t.Errorf("store has %d tasks, want 3", st.Len())
	}

	press(m, "esc")
	if m.mode != modeList {
		t.Errorf("esc should close the form, mode = %v", m.mode)
	}
}

func TestEditTask(t *testing.T) {
	m, st := newTestModel(t, sample...)

	press(m, "j", "e")
	if m.mode != modeEdit || m.editing != 1 {
		t.Fatalf("mode = %v editing = %d", m.mode, m.editing)
	}
	if m.fields[fieldTitle].Value() != "Pay rent" || m.fields[fieldDue].Value() != "2025-03-11" {
		t.Errorf("form not prefilled: %q %q", m.fields[fieldTitle].Value(), m.fields[fieldDue].Value())
	}

	press(m, "tab")
	if m.focus != fieldDescription {
		t.Errorf("focus = %d, want description", m.focus)
	}

	m.fields[fieldTitle].SetValue("Pay rent early")
	press(m, "enter")

	got, err := st.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Pay rent early" || !got.HasUpdatedDate() {
		t.Errorf("updated task = %+v", got)
	}
	if m.mode != modeList || m.tasks[m.cursor].Title != "Pay rent early" {
		t.Errorf("mode = %v cursor on %q", m.mode, m.tasks[m.cursor].Title)
	}
}

func TestEditFollowsMovedTask(t *testing.T) {
	m, _ := newTestModel(t,
		"Pay rent,march,false,2025-03-11,2025-03-01,,,",
		"Pay rent,april,false,2025-04-11,2025-03-01,,,",
		"Pay rent,may,false,2025-05-11,2025-03-01,,,",
	)

	press(m, "j", "j", "e")
	m.fields[fieldDue].SetValue("2025-03-20")
	press(m, "enter")

	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}
	if got := m.tasks[m.cursor]; got.Description != "may" {
		t.Errorf("cursor on %q, want the edited task", got.Description)
	}
}

// brokenDisk reads nothing and fails every write.
type brokenDisk struct{}

func (brokenDisk) Read() ([]string, error)      { return nil, nil }
func (brokenDisk) Write(string, []string) error { return errors.New("disk full") }
func (brokenDisk) Location() string             { return "broken" }

func TestAddKeptWhenSaveFails(t *testing.T) {
	st := store.New(store.Options{Backend: brokenDisk{}, Labels: task.English})
	m := newModel(st)

	press(m, "a", "B", "u", "y", "enter")
	if m.mode != modeList {
		t.Fatalf("mode = %v, want the form closed after a failed save", m.mode)
	}
	if m.statusOK || !strings.Contains(m.status, "kept but not saved") || !strings.Contains(m.status, "disk full") {
		t.Errorf("status = %q", m.status)
	}

	// Enter on the list opens the editor instead of adding the task again.
	press(m, "enter", "esc")
	if st.Len() != 1 || len(m.tasks) != 1 {
		t.Errorf("store has %d tasks, want 1", st.Len())
	}
}

func TestTableScrollsWithCursor(t *testing.T) {
	var lines []string
	for i := 1; i <= 20; i++ {
		lines = append(lines, fmt.Sprintf("Task %02d,,false,2025-04-%02d,2025-03-01,,,", i, i))
	}
	m, _ := newTestModel(t, lines...)
	m.Update(tea.WindowSizeMsg{Width: 200, Height: reservedLines + 5})

	out := m.View()
	if !strings.Contains(out, "Task 05") || strings.Contains(out, "Task 06") {
		t.Errorf("first page should show tasks 1-5:\n%s", out)
	}
	if !strings.Contains(out, "rows 1-5 of 20") {
		t.Errorf("missing scroll position:\n%s", out)
	}

	for i := 0; i < 9; i++ {
		press(m, "j")
	}
	out = m.View()
	if m.offset != 5 || !strings.Contains(out, "Task 10") || strings.Contains(out, "Task 05") {
		t.Errorf("offset = %d, view:\n%s", m.offset, out)
	}

	m.Update(tea.WindowSizeMsg{Width: 200, Height: 60})
	if out := m.View(); m.offset != 0 || strings.Contains(out, "rows ") {
		t.Errorf("tall window should show every row, offset = %d", m.offset)
	}
}

func TestTableClipsToWidth(t *testing.T) {
	m, _ := newTestModel(t, sample...)
	m.Update(tea.WindowSizeMsg{Width: 30, Height: 40})

	for _, line := range strings.Split(m.View(), "\n") {
		if strings.Contains(line, "Pay rent") && lipgloss.Width(line) > 30 {
			t.Errorf("row %q is %d cells wide, want at most 30", line, lipgloss.Width(line))
		}
	}
	if m.fields[fieldTitle].Width != 14 || m.path.Width != 26 {
		t.Errorf("input widths = %d, %d", m.fields[fieldTitle].Width, m.path.Width)
	}
}

func TestDeleteConfirmation(t *testing.T) {
	m, st := newTestModel(t, sample...)

	press(m, "d")
	if m.mode != modeConfirmDelete || !strings.Contains(m.status, "File taxes") {
		t.Fatalf("mode = %v status = %q", m.mode, m.status)
	}
	press(m, "n")
	if st.Len() != 3 || m.mode != modeList {
		t.Fatalf("n should cancel, len = %d", st.Len())
	}

	press(m, "j", "j", "d", "y")
	if st.Len() != 2 {
		t.Fatalf("store has %d tasks, want 2", st.Len())
	}
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want clamped to 1", m.cursor)
	}
}

func TestMarkDone(t *testing.T) {
	m, st := newTestModel(t, sample...)

	press(m, "x")
	if m.status != "Already done" {
		t.Errorf("status = %q, want already done", m.status)
	}

	press(m, "j", "x")
	got, _ := st.Get(1)
	if !got.Done || m.status != "Marked done" {
		t.Errorf("done = %v status = %q", got.Done, m.status)
	}
}

func TestActionsOnEmptyList(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "e", "d", "x")
	if m.mode != modeList || m.status != "" {
		t.Errorf("mode = %v status = %q", m.mode, m.status)
	}
}

func TestImport(t *testing.T) {
	m, st := newTestModel(t, sample...)
	src := filepath.Join(t.TempDir(), "more.csv")
	content := header + "\nWater plants,,false,2025-03-12,2025-03-01,,,\nbroken line\n"
	if err := os.WriteFile(src, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	press(m, "i")
	if m.mode != modeImport {
		t.Fatalf("mode = %v, want import", m.mode)
	}
	m.path.SetValue(src)
	press(m, "enter")

	if st.Len() != 4 {
		t.Errorf("store has %d tasks, want 4", st.Len())
	}
	if !strings.Contains(m.status, "Imported 1 tasks, 1 failed") || !strings.Contains(m.status, "line 3") {
		t.Errorf("status = %q", m.status)
	}
}

func TestImportMissingFile(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "i")
	m.path.SetValue(filepath.Join(t.TempDir(), "missing.csv"))
	press(m, "enter")
	if m.statusOK || !strings.HasPrefix(m.status, "Error:") {
		t.Errorf("status = %q", m.status)
	}
}

func TestReloadPicksUpExternalChanges(t *testing.T) {
	m, st := newTestModel(t, sample...)
	line := "Walk dog,,false,2025-03-15,2025-03-01,,,"
	content := header + "\n" + strings.Join(append(sample, line), "\n") + "\n"
	if err := os.WriteFile(st.Location(), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	press(m, "r")
	if len(m.tasks) != 4 || !strings.Contains(m.status, "Reloaded 4 tasks") {
		t.Errorf("tasks = %d status = %q", len(m.tasks), m.status)
	}
}

func TestTickRefreshes(t *testing.T) {
	m, st := newTestModel(t, sample...)
	if _, err := st.Add("Call mom", "", "2025-03-10"); err != nil {
		t.Fatal(err)
	}
	_, cmd := m.Update(tickMsg(time.Now()))
	if len(m.tasks) != 4 {
		t.Errorf("tasks = %d after tick, want 4", len(m.tasks))
	}
	if cmd == nil {
		t.Error("tick should reschedule itself")
	}
}

func TestView(t *testing.T) {
	m, _ := newTestModel(t, sample...)
	out := m.View()
	for _, want := range []string{"Title", "Updated", "Pay rent", "High", "✓", "2025-03-04", "q quit"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}

	press(m, "a")
	if out := m.View(); !strings.Contains(out, "esc cancel") {
		t.Errorf("form view missing help:\n%s", out)
	}
}

func TestTruncate(t *testing.T) {
	short := "short"
	if got := truncate(short); got != short {
		t.Errorf("truncate(%q) = %q", short, got)
	}
	long := strings.Repeat("x", 40)
	got := truncate(long)
	if !strings.HasSuffix(got, "…") || len([]rune(got)) != maxCellWidth {
		t.Errorf("truncate(long) = %q", got)
	}
}

func TestRowStyle(t *testing.T) {
	if rowStyle(false, false).GetBackground() == rowStyle(true, false).GetBackground() {
		t.Error("pending and done rows should differ")
	}
	if rowStyle(true, false).GetBackground() == rowStyle(true, true).GetBackground() {
		t.Error("cursor row should differ from plain row")
	}
}
