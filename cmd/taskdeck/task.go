package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mfraser/taskdeck/internal/engine"
	"github.com/mfraser/taskdeck/internal/model"
	"github.com/mfraser/taskdeck/internal/views"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var doneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Toggle task completion",
	Args:  cobra.ExactArgs(1),
	RunE:  runDone,
}

var starCmd = &cobra.Command{
	Use:   "star [task-id]",
	Short: "Toggle the star on a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runStar,
}

var priorityCmd = &cobra.Command{
	Use:   "priority [task-id] [level]",
	Short: "Set or cycle task priority",
	Long:  `Sets the task priority to the given level (low, medium, high). With no level, cycles to the next one.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runPriority,
}

var editCmd = &cobra.Command{
	Use:   "edit [task-id]",
	Short: "Edit task fields",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var rmCmd = &cobra.Command{
	Use:   "rm [task-id]",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task counts",
	RunE:  runStats,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all tasks as JSON",
	RunE:  runExport,
}

var (
	addDesc     string
	addPriority string
	addCategory string
	addDue      string

	listStatus   string
	listCategory string
	listSearch   string

	editTitle    string
	editDesc     string
	editPriority string
	editCategory string
	editDue      string
)

func init() {
	addCmd.Flags().StringVar(&addDesc, "desc", "", "Task description")
	addCmd.Flags().StringVar(&addPriority, "priority", "", "Priority (low, medium, high)")
	addCmd.Flags().StringVar(&addCategory, "category", "", "Category")
	addCmd.Flags().StringVar(&addDue, "due", "", "Due date (YYYY-MM-DD or RFC 3339)")

	listCmd.Flags().StringVar(&listStatus, "status", "all", "Filter by status (all, active, completed, starred)")
	listCmd.Flags().StringVar(&listCategory, "category", views.AllCategories, "Filter by category")
	listCmd.Flags().StringVar(&listSearch, "search", "", "Filter by title substring")

	editCmd.Flags().StringVar(&editTitle, "title", "", "New title")
	editCmd.Flags().StringVar(&editDesc, "desc", "", "New description")
	editCmd.Flags().StringVar(&editPriority, "priority", "", "New priority (low, medium, high)")
	editCmd.Flags().StringVar(&editCategory, "category", "", "New category")
	editCmd.Flags().StringVar(&editDue, "due", "", "New due date (YYYY-MM-DD or RFC 3339)")
}

// parseDue accepts a bare date or a full RFC 3339 timestamp.
func parseDue(value string) (*time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid due date %q (want YYYY-MM-DD or RFC 3339)", value)
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	s, err := openLoadedSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	req := engine.CreateRequest{
		Title:       args[0],
		Description: addDesc,
		Priority:    model.Priority(addPriority),
		Category:    addCategory,
	}
	if addDue != "" {
		due, err := parseDue(addDue)
		if err != nil {
			return err
		}
		req.DueDate = due
	}

	task, err := s.engine.Create(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("Created task: %s\n", task.ID)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	s, err := openLoadedSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	status := views.Status(listStatus)
	if !status.Valid() {
		return fmt.Errorf("invalid status %q (want all, active, completed or starred)", listStatus)
	}

	tasks := views.Query(s.engine.Tasks(), status, listCategory, listSearch)
	if len(tasks) == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	now := time.Now().UTC()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDONE\tTITLE\tPRIORITY\tCATEGORY\tDUE")
	for _, t := range tasks {
		done := " "
		if t.Completed {
			done = "x"
		}
		title := truncate(t.Title, 40)
		if t.Starred {
			title += " *"
		}
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
			if t.Overdue(now) {
				due += " (overdue)"
			}
		}
		fmt.Fprintf(w, "%s\t[%s]\t%s\t%s\t%s\t%s\n",
			truncateID(t.ID), done, title, t.Priority, t.Category, due)
	}
	w.Flush()
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	s, err := openLoadedSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := resolveID(s, args[0])
	if err != nil {
		return err
	}
	task, err := s.engine.Get(id)
	if err != nil {
		return err
	}

	fmt.Printf("ID:          %s\n", task.ID)
	fmt.Printf("Title:       %s\n", task.Title)
	if task.Description != "" {
		fmt.Printf("Description: %s\n", task.Description)
	}
	fmt.Printf("Completed:   %t\n", task.Completed)
	fmt.Printf("Priority:    %s\n", task.Priority)
	fmt.Printf("Category:    %s\n", task.Category)
	fmt.Printf("Starred:     %t\n", task.Starred)
	if task.DueDate != nil {
		fmt.Printf("Due:         %s\n", task.DueDate.Format(time.RFC3339))
	}
	fmt.Printf("Created:     %s\n", task.CreatedAt.Format(time.RFC3339))
	if task.CompletedAt != nil {
		fmt.Printf("Finished:    %s\n", task.CompletedAt.Format(time.RFC3339))
	}
	return nil
}

func runDone(cmd *cobra.Command, args []string) error {
	return mutateTask(args[0], func(ctx *taskContext) (model.Task, error) {
		return ctx.session.engine.ToggleComplete(ctx.ctx, ctx.id)
	}, func(t model.Task) string {
		if t.Completed {
			return fmt.Sprintf("Completed %q", t.Title)
		}
		return fmt.Sprintf("Reopened %q", t.Title)
	})
}

func runStar(cmd *cobra.Command, args []string) error {
	return mutateTask(args[0], func(ctx *taskContext) (model.Task, error) {
		return ctx.session.engine.ToggleStar(ctx.ctx, ctx.id)
	}, func(t model.Task) string {
		if t.Starred {
			return fmt.Sprintf("Starred %q", t.Title)
		}
		return fmt.Sprintf("Unstarred %q", t.Title)
	})
}

func runPriority(cmd *cobra.Command, args []string) error {
	return mutateTask(args[0], func(ctx *taskContext) (model.Task, error) {
		if len(args) == 2 {
			return ctx.session.engine.SetPriority(ctx.ctx, ctx.id, model.Priority(args[1]))
		}
		return ctx.session.engine.CyclePriority(ctx.ctx, ctx.id)
	}, func(t model.Task) string {
		return fmt.Sprintf("Priority of %q is now %s", t.Title, t.Priority)
	})
}

func runEdit(cmd *cobra.Command, args []string) error {
	var patch model.Patch
	if editTitle != "" {
		patch.Title = &editTitle
	}
	if editDesc != "" {
		patch.Description = &editDesc
	}
	if editPriority != "" {
		p := model.Priority(editPriority)
		patch.Priority = &p
	}
	if editCategory != "" {
		patch.Category = &editCategory
	}
	if editDue != "" {
		due, err := parseDue(editDue)
		if err != nil {
			return err
		}
		patch.DueDate = due
	}
	if patch == (model.Patch{}) {
		return fmt.Errorf("nothing to edit: pass at least one of --title, --desc, --priority, --category, --due")
	}

	return mutateTask(args[0], func(ctx *taskContext) (model.Task, error) {
		return ctx.session.engine.Update(ctx.ctx, ctx.id, patch)
	}, func(t model.Task) string {
		return fmt.Sprintf("Updated %q", t.Title)
	})
}

func runRemove(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	s, err := openLoadedSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := resolveID(s, args[0])
	if err != nil {
		return err
	}
	task, err := s.engine.Get(id)
	if err != nil {
		return err
	}
	if err := s.engine.Delete(ctx, id); err != nil {
		return err
	}

	fmt.Printf("Deleted %q\n", task.Title)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	s, err := openLoadedSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	stats := views.Count(s.engine.Tasks(), time.Now().UTC())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Total:\t%d\n", stats.Total)
	fmt.Fprintf(w, "Completed:\t%d\n", stats.Completed)
	fmt.Fprintf(w, "Pending:\t%d\n", stats.Pending)
	fmt.Fprintf(w, "Starred:\t%d\n", stats.Starred)
	fmt.Fprintf(w, "Overdue:\t%d\n", stats.Overdue)
	w.Flush()

	if cats := views.Categories(s.engine.Tasks()); len(cats) > 0 {
		fmt.Printf("Categories: %s\n", strings.Join(cats, ", "))
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	s, err := openLoadedSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(s.engine.Tasks())
}

// taskContext carries the pieces every single-task mutation needs.
type taskContext struct {
	ctx     context.Context
	session *session
	id      string
}

// mutateTask loads the collection, resolves the id argument and runs
// the mutation, printing the message built from the result.
func mutateTask(arg string, fn func(*taskContext) (model.Task, error), msg func(model.Task) string) error {
	ctx, cancel := commandContext()
	defer cancel()

	s, err := openLoadedSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := resolveID(s, arg)
	if err != nil {
		return err
	}

	task, err := fn(&taskContext{ctx: ctx, session: s, id: id})
	if err != nil {
		return err
	}

	fmt.Println(msg(task))
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
