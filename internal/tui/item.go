package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mfraser/taskdeck/internal/model"
)

var (
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))  // Green
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // Red
	starStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // Yellow

	prioHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	prioMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	prioLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

// taskItem implements list.Item for a task row.
type taskItem struct {
	task model.Task
}

func (i taskItem) FilterValue() string { return i.task.Title }

func (i taskItem) Title() string {
	var b strings.Builder
	if i.task.Completed {
		b.WriteString(doneStyle.Render("[x] "))
	} else {
		b.WriteString("[ ] ")
	}
	b.WriteString(i.task.Title)
	if i.task.Starred {
		b.WriteString(starStyle.Render(" ★"))
	}
	return b.String()
}

func (i taskItem) Description() string {
	parts := []string{formatPriority(i.task.Priority), i.task.Category}
	if i.task.DueDate != nil {
		due := i.task.DueDate.Format("2006-01-02")
		if i.task.Overdue(time.Now()) {
			due = overdueStyle.Render(due + " overdue")
		}
		parts = append(parts, "due "+due)
	}
	return strings.Join(parts, " • ")
}

func formatPriority(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return prioHigh.Render("● high")
	case model.PriorityLow:
		return prioLow.Render("● low")
	default:
		return prioMedium.Render("● medium")
	}
}

func statsLine(total, completed, overdue int) string {
	return fmt.Sprintf("%d tasks • %d done • %d overdue", total, completed, overdue)
}
