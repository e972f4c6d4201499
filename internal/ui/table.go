package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ideaspark/ideaspark/internal/store/schema"
)

// shortIDLen is how many characters of a task id are shown in tables.
const shortIDLen = 8

// ShortID abbreviates a task id for display.
func ShortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// RenderTasks draws tasks as a bordered table. Deleted tasks are struck
// through; status is colored.
func RenderTasks(tasks []*schema.Task) string {
	if len(tasks) == 0 {
		return MutedStyle.Render("No tasks found.")
	}

	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			ShortID(t.ID),
			t.Title,
			t.Category,
			string(t.Status),
			t.DueDate,
			t.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBorder))).
		Headers("ID", "TITLE", "CATEGORY", "STATUS", "DUE", "CREATED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < 0 || row >= len(tasks) {
				return cellStyle
			}
			t := tasks[row]
			if t.Deleted {
				return deletedStyle
			}
			if col == 3 {
				if t.Status == schema.StatusDone {
					return statusDoneStyle
				}
				return statusNewStyle
			}
			return cellStyle
		})

	return tbl.String()
}

// FormatTask renders a short multi-line summary of one task.
func FormatTask(t *schema.Task) string {
	var sb strings.Builder
	sb.WriteString(TitleStyle.Render(t.Title))
	if t.Deleted {
		sb.WriteString(" " + MutedStyle.Render("(trashed)"))
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  id:       %s\n", t.ID)
	fmt.Fprintf(&sb, "  category: %s\n", t.Category)
	fmt.Fprintf(&sb, "  status:   %s\n", t.Status)
	fmt.Fprintf(&sb, "  due:      %s\n", t.DueDate)
	if t.Description != "" {
		fmt.Fprintf(&sb, "  %s\n", MutedStyle.Render(t.Description))
	}
	return sb.String()
}
