package views

import (
	"reflect"
	"testing"
	"time"

	"github.com/mfraser/taskdeck/internal/model"
)

func sampleTasks(now time.Time) []model.Task {
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)
	done := now.Add(-time.Hour)
	return []model.Task{
		{ID: "4", Title: "Call dentist", Category: "Health", Starred: true, DueDate: &tomorrow},
		{ID: "3", Title: "Buy milk", Category: "Shopping", DueDate: &yesterday},
		{ID: "2", Title: "Write report", Category: "Work", Completed: true, CompletedAt: &done},
		{ID: "1", Title: "Buy stamps", Category: "Shopping", Starred: true, Completed: true, CompletedAt: &done},
	}
}

func ids(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestFilterByStatus(t *testing.T) {
	tasks := sampleTasks(time.Now().UTC())

	tests := []struct {
		status Status
		want   []string
	}{
		{StatusAll, []string{"4", "3", "2", "1"}},
		{StatusActive, []string{"4", "3"}},
		{StatusCompleted, []string{"2", "1"}},
		{StatusStarred, []string{"4", "1"}},
	}

	for _, tt := range tests {
		got := ids(FilterByStatus(tasks, tt.status))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("FilterByStatus(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestFilterByCategory(t *testing.T) {
	tasks := sampleTasks(time.Now().UTC())

	got := ids(FilterByCategory(tasks, "Shopping"))
	if !reflect.DeepEqual(got, []string{"3", "1"}) {
		t.Errorf("FilterByCategory(Shopping) = %v", got)
	}

	// "all" is the identity.
	if len(FilterByCategory(tasks, AllCategories)) != len(tasks) {
		t.Error("Expected 'all' to match every task")
	}

	// Matching is case-sensitive.
	if len(FilterByCategory(tasks, "shopping")) != 0 {
		t.Error("Category match must be case-sensitive")
	}
}

func TestSearch(t *testing.T) {
	tasks := sampleTasks(time.Now().UTC())

	got := ids(Search(tasks, "MILK"))
	if !reflect.DeepEqual(got, []string{"3"}) {
		t.Errorf("Search(MILK) = %v, want [3]", got)
	}

	got = ids(Search(tasks, "buy"))
	if !reflect.DeepEqual(got, []string{"3", "1"}) {
		t.Errorf("Search(buy) = %v, want [3 1]", got)
	}

	if len(Search(tasks, "")) != len(tasks) {
		t.Error("Empty term must be the identity")
	}
}

func TestQuery_OrderPreserving(t *testing.T) {
	tasks := sampleTasks(time.Now().UTC())

	got := ids(Query(tasks, StatusAll, "Shopping", "buy"))
	if !reflect.DeepEqual(got, []string{"3", "1"}) {
		t.Errorf("Query = %v, want [3 1]", got)
	}

	got = ids(Query(tasks, StatusCompleted, AllCategories, ""))
	if !reflect.DeepEqual(got, []string{"2", "1"}) {
		t.Errorf("Query = %v, want [2 1]", got)
	}
}

func TestQuery_DoesNotMutateInput(t *testing.T) {
	now := time.Now().UTC()
	tasks := sampleTasks(now)
	before := ids(tasks)

	Query(tasks, StatusActive, "Shopping", "milk")
	Count(tasks, now)

	if !reflect.DeepEqual(ids(tasks), before) {
		t.Error("Projections must not reorder or mutate the input")
	}
}

func TestCount(t *testing.T) {
	now := time.Now().UTC()
	stats := Count(sampleTasks(now), now)

	want := Stats{Total: 4, Completed: 2, Pending: 2, Starred: 2, Overdue: 1}
	if stats != want {
		t.Errorf("Count = %+v, want %+v", stats, want)
	}
}

func TestCount_OverdueScenario(t *testing.T) {
	now := time.Now().UTC()
	yesterday := now.Add(-24 * time.Hour)
	tasks := []model.Task{
		{Title: "Buy milk", DueDate: &yesterday},
	}

	stats := Count(tasks, now)
	want := Stats{Total: 1, Completed: 0, Pending: 1, Starred: 0, Overdue: 1}
	if stats != want {
		t.Errorf("Count = %+v, want %+v", stats, want)
	}
}

func TestCount_Consistency(t *testing.T) {
	now := time.Now().UTC()
	collections := [][]model.Task{
		nil,
		sampleTasks(now),
		sampleTasks(now)[:1],
		sampleTasks(now)[2:],
	}

	for i, tasks := range collections {
		stats := Count(tasks, now)
		if stats.Completed+stats.Pending != stats.Total {
			t.Errorf("collection %d: completed+pending != total: %+v", i, stats)
		}
		if stats.Overdue > stats.Pending {
			t.Errorf("collection %d: overdue exceeds pending: %+v", i, stats)
		}
	}
}

func TestCount_Deterministic(t *testing.T) {
	now := time.Now().UTC()
	tasks := sampleTasks(now)

	if Count(tasks, now) != Count(tasks, now) {
		t.Error("Count must be referentially transparent")
	}
}

func TestCategories(t *testing.T) {
	got := Categories(sampleTasks(time.Now().UTC()))
	want := []string{"Health", "Shopping", "Work"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Categories = %v, want %v", got, want)
	}
}
