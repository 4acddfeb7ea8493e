// Package output provides formatters for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"taskboard/internal/service"
)

// Formats accepted by Write.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Column widths of the table format.
const (
	titleWidth    = 32
	typeWidth     = 12
	dueWidth      = 12
	priorityWidth = 10
)

// Row is a task with its 1-based position in the full list.
type Row struct {
	Num  int
	Task service.Task
}

// taskView is the JSON/YAML shape of a task. Priority uses the display form.
type taskView struct {
	Num       int    `json:"num" yaml:"num"`
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Type      string `json:"type" yaml:"type"`
	DueDate   string `json:"dueDate" yaml:"dueDate"`
	Priority  string `json:"priority" yaml:"priority"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// Write renders rows in the named format.
func Write(w io.Writer, format string, rows []Row) error {
	switch format {
	case FormatTable, "":
		WriteTable(w, rows)
		return nil
	case FormatJSON:
		return WriteJSON(w, rows)
	case FormatYAML:
		return WriteYAML(w, rows)
	}
	return fmt.Errorf("unknown output format: %s", format)
}

// WriteTable writes a header and one line per task:
// "{N:>4}  {TITLE}  {TYPE}  {DUE}  {PRIORITY}  {open|done}".
// Completed rows are struck through when w is a capable terminal.
func WriteTable(w io.Writer, rows []Row) {
	r := lipgloss.NewRenderer(w)
	header := r.NewStyle().Bold(true)
	done := r.NewStyle().Strikethrough(true).Faint(true)

	fmt.Fprintln(w, header.Render(line("#", "TITLE", "TYPE", "DUE", "PRIORITY", "STATUS")))
	for _, row := range rows {
		t := row.Task
		status := "open"
		if t.Completed {
			status = "done"
		}
		text := line(fmt.Sprint(row.Num), normalizeTitle(t.Title), t.Type, t.DueDate, t.Priority.Display(), status)
		if t.Completed {
			text = done.Render(text)
		}
		fmt.Fprintln(w, text)
	}
}

// WriteJSON writes rows as an indented JSON array.
func WriteJSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(views(rows))
}

// WriteYAML writes rows as a YAML sequence.
func WriteYAML(w io.Writer, rows []Row) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(views(rows)); err != nil {
		return err
	}
	return enc.Close()
}

func views(rows []Row) []taskView {
	out := make([]taskView, 0, len(rows))
	for _, row := range rows {
		t := row.Task
		out = append(out, taskView{
			Num:       row.Num,
			ID:        t.ID,
			Title:     t.Title,
			Type:      t.Type,
			DueDate:   t.DueDate,
			Priority:  t.Priority.Display(),
			Completed: t.Completed,
		})
	}
	return out
}

func line(num, title, typ, due, priority, status string) string {
	return fmt.Sprintf("%4s  %s  %s  %s  %s  %s",
		num,
		cell(title, titleWidth),
		cell(typ, typeWidth),
		cell(due, dueWidth),
		cell(priority, priorityWidth),
		status,
	)
}

// cell truncates s to width display cells and pads it with spaces.
func cell(s string, width int) string {
	if lipgloss.Width(s) > width {
		runes := []rune(s)
		for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
			runes = runes[:len(runes)-1]
		}
		s = string(runes) + "…"
	}
	if pad := width - lipgloss.Width(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
