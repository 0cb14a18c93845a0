// Package tui provides the interactive terminal UI for taskdeck. All
// reads and mutations go through the task engine; the UI never touches
// storage or the network directly.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mfraser/taskdeck/internal/engine"
	"github.com/mfraser/taskdeck/internal/model"
	"github.com/mfraser/taskdeck/internal/views"
)

var (
	listTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Italic(true)

	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

var statusCycle = []views.Status{
	views.StatusAll, views.StatusActive, views.StatusCompleted, views.StatusStarred,
}

// App is the main TUI application model.
type App struct {
	engine    *engine.Engine
	list      list.Model
	input     textinput.Model
	statusIdx int
	adding    bool
	width     int
	height    int
	message   string
}

// New creates a new TUI application over the given engine.
func New(eng *engine.Engine) *App {
	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 80, 20)
	l.Title = "Tasks [all]"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = listTitleStyle

	ti := textinput.New()
	ti.Placeholder = "New task title"
	ti.CharLimit = 255
	ti.Width = 60

	return &App{
		engine: eng,
		list:   l,
		input:  ti,
	}
}

// Run starts the program and blocks until the user quits.
func (a *App) Run() error {
	_, err := tea.NewProgram(a, tea.WithAltScreen()).Run()
	return err
}

type tasksRefreshedMsg struct {
	tasks []model.Task
}

type errMsg struct {
	err error
}

// Init loads the collection.
func (a *App) Init() tea.Cmd {
	return a.reload(true)
}

// reload re-derives the visible list from the engine, optionally
// refreshing from the persistence layer first.
func (a *App) reload(load bool) tea.Cmd {
	eng := a.engine
	status := statusCycle[a.statusIdx]
	return func() tea.Msg {
		if load {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := eng.Load(ctx); err != nil {
				return errMsg{err}
			}
		}
		return tasksRefreshedMsg{tasks: views.FilterByStatus(eng.Tasks(), status)}
	}
}

// mutate runs an engine mutation and re-derives the list.
func (a *App) mutate(fn func(ctx context.Context) error) tea.Cmd {
	status := statusCycle[a.statusIdx]
	eng := a.engine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			return errMsg{err}
		}
		return tasksRefreshedMsg{tasks: views.FilterByStatus(eng.Tasks(), status)}
	}
}

func (a *App) selected() (model.Task, bool) {
	item, ok := a.list.SelectedItem().(taskItem)
	if !ok {
		return model.Task{}, false
	}
	return item.task, true
}

// Update handles messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.list.SetSize(msg.Width, msg.Height-3)
		return a, nil

	case tasksRefreshedMsg:
		a.message = ""
		items := make([]list.Item, len(msg.tasks))
		for i, t := range msg.tasks {
			items[i] = taskItem{task: t}
		}
		a.list.SetItems(items)
		return a, nil

	case errMsg:
		// Failed mutations leave the visible list untouched.
		a.message = errStyle.Render(msg.err.Error())
		return a, nil

	case tea.KeyMsg:
		if a.adding {
			return a.updateAdding(msg)
		}
		if a.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "a":
			a.adding = true
			a.input.SetValue("")
			a.input.Focus()
			return a, textinput.Blink
		case "f":
			a.statusIdx = (a.statusIdx + 1) % len(statusCycle)
			a.list.Title = fmt.Sprintf("Tasks [%s]", statusCycle[a.statusIdx])
			return a, a.reload(false)
		case "r":
			return a, a.reload(true)
		case " ", "enter":
			if task, ok := a.selected(); ok {
				return a, a.mutate(func(ctx context.Context) error {
					_, err := a.engine.ToggleComplete(ctx, task.ID)
					return err
				})
			}
		case "s":
			if task, ok := a.selected(); ok {
				return a, a.mutate(func(ctx context.Context) error {
					_, err := a.engine.ToggleStar(ctx, task.ID)
					return err
				})
			}
		case "p":
			if task, ok := a.selected(); ok {
				return a, a.mutate(func(ctx context.Context) error {
					_, err := a.engine.CyclePriority(ctx, task.ID)
					return err
				})
			}
		case "d":
			if task, ok := a.selected(); ok {
				return a, a.mutate(func(ctx context.Context) error {
					return a.engine.Delete(ctx, task.ID)
				})
			}
		}
	}

	var cmd tea.Cmd
	a.list, cmd = a.list.Update(msg)
	return a, cmd
}

func (a *App) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.adding = false
		a.input.Blur()
		return a, nil
	case "enter":
		title := a.input.Value()
		a.adding = false
		a.input.Blur()
		return a, a.mutate(func(ctx context.Context) error {
			_, err := a.engine.Create(ctx, engine.CreateRequest{Title: title})
			return err
		})
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// View renders the application.
func (a *App) View() string {
	stats := views.Count(a.engine.Tasks(), time.Now())
	footer := statsLine(stats.Total, stats.Completed, stats.Overdue)

	if a.adding {
		return a.list.View() + "\n" + a.input.View() + "\n" + helpStyle.Render("enter: add • esc: cancel")
	}

	help := helpStyle.Render("a: add • space: done • s: star • p: priority • d: delete • f: filter • /: search • q: quit")
	if a.message != "" {
		footer = a.message
	}
	return a.list.View() + "\n" + footer + "\n" + help
}
