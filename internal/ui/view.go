package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/taskdesk/internal/task"
)

const maxCellWidth = 32

// reservedLines is the height of everything around the table rows in the
// tallest mode: title, header, form, status, scroll position and footer.
const (
	reservedLines  = 13
	minVisibleRows = 3
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	headStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	rowBase    = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000"))

	pendingRow       = rowBase.Background(lipgloss.Color("#FFFFE0"))
	pendingCursorRow = rowBase.Background(lipgloss.Color("#EEE8AA"))
	doneRow          = rowBase.Background(lipgloss.Color("#ADD8E6"))
	doneCursorRow    = rowBase.Background(lipgloss.Color("#87CEEB"))

	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2E8B57"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#CC0000")).Bold(true)
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

func (m *model) View() string {
	var b strings.Builder
	writeTitle(&b, m.store.Location(), len(m.tasks))
	m.writeTable(&b)

	switch m.mode {
	case modeAdd, modeEdit:
		m.writeForm(&b)
	case modeImport:
		b.WriteString("\n" + m.path.View() + "\n")
	}

	if m.status != "" {
		style := okStyle
		if !m.statusOK {
			style = errorStyle
		}
		b.WriteString("\n" + style.Render(m.status) + "\n")
	}
	writeFooter(&b, m.mode)
	return b.String()
}

func writeTitle(b *strings.Builder, location string, n int) {
	b.WriteString(titleStyle.Render("taskdesk") + fmt.Sprintf("  %s (%d)\n\n", location, n))
}

func (m *model) writeTable(b *strings.Builder) {
	rows := make([][]string, 0, len(m.tasks)+1)
	rows = append(rows, m.labels.Columns)
	for i, t := range m.tasks {
		rows = append(rows, cells(m.labels, i, t))
	}
	widths := columnWidths(rows)

	b.WriteString(headStyle.Render(m.clip(joinRow(rows[0], widths))) + "\n")
	if len(m.tasks) == 0 {
		b.WriteString(helpStyle.Render("  (no tasks)") + "\n")
		return
	}
	end := min(m.offset+m.visibleRows(), len(m.tasks))
	for i := m.offset; i < end; i++ {
		line := m.clip(joinRow(rows[i+1], widths))
		b.WriteString(rowStyle(m.tasks[i].Done, i == m.cursor).Render(line) + "\n")
	}
	if m.offset > 0 || end < len(m.tasks) {
		b.WriteString(helpStyle.Render(fmt.Sprintf("  rows %d-%d of %d", m.offset+1, end, len(m.tasks))) + "\n")
	}
}

// clip cuts line to the terminal width.
func (m *model) clip(line string) string {
	if m.width <= 0 || lipgloss.Width(line) <= m.width {
		return line
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

func (m *model) writeForm(b *strings.Builder) {
	b.WriteString("\n")
	for i, f := range m.fields {
		label := columnName(m.labels, i+1)
		if i == fieldDue {
			label = columnName(m.labels, 4)
		}
		fmt.Fprintf(b, "%-12s %s\n", label, f.View())
	}
}

func writeFooter(b *strings.Builder, md mode) {
	var help string
	switch md {
	case modeAdd, modeEdit:
		help = "tab next field | enter save | esc cancel"
	case modeConfirmDelete:
		help = "y delete | n cancel"
	case modeImport:
		help = "enter import | esc cancel"
	default:
		help = "a add | e edit | d delete | x done | i import | r reload | j/k move | q quit"
	}
	b.WriteString("\n" + helpStyle.Render(help) + "\n")
}

// cells renders one task in column order: No, title, description, done,
// due, priority, overdue, created, updated.
func cells(l task.Labels, i int, t task.Task) []string {
	done := ""
	if t.Done {
		done = l.DoneMark
	}
	overdue := ""
	if t.Overdue() {
		overdue = l.OverdueMark
	}
	return []string{
		strconv.Itoa(i + 1),
		truncate(t.Title),
		truncate(t.Description),
		done,
		task.FormatDate(t.DueDate),
		l.PriorityName(t.Priority()),
		overdue,
		task.FormatDate(t.CreatedDate),
		task.FormatDate(t.UpdatedDate),
	}
}

func rowStyle(done, selected bool) lipgloss.Style {
	switch {
	case done && selected:
		return doneCursorRow
	case done:
		return doneRow
	case selected:
		return pendingCursorRow
	default:
		return pendingRow
	}
}

func columnWidths(rows [][]string) []int {
	var widths []int
	for _, row := range rows {
		for i, c := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}
	return widths
}

func joinRow(row []string, widths []int) string {
	var b strings.Builder
	for i, c := range row {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(c)
		if i < len(widths) {
			b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(c)))
		}
	}
	return b.String()
}

func truncate(s string) string {
	if lipgloss.Width(s) <= maxCellWidth {
		return s
	}
	var b strings.Builder
	w := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if w+rw > maxCellWidth-1 {
			break
		}
		b.WriteRune(r)
		w += rw
	}
	return b.String() + "…"
}

func columnName(l task.Labels, i int) string {
	if i < len(l.Columns) {
		return l.Columns[i]
	}
	return ""
}
