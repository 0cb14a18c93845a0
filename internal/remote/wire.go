package remote

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mfraser/taskdeck/internal/model"
)

// wireID tolerates both string and numeric task ids on the wire; the
// internal model always uses the string form.
type wireID string

func (w *wireID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*w = wireID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("task id must be a string or number: %s", data)
	}
	*w = wireID(n.String())
	return nil
}

// wireTask is the backend's task record shape.
type wireTask struct {
	ID          wireID `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	DueDate     string `json:"due_date,omitempty"`
	Starred     bool   `json:"starred"`
	CreatedAt   string `json:"created_at"`
	CompletedAt string `json:"completed_at,omitempty"`
}

// wirePatch is a partial update; nil fields are omitted from the body.
type wirePatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Category    *string `json:"category,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Starred     *bool   `json:"starred,omitempty"`
}

// wireCreate is the POST /todos request body.
type wireCreate struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	Category    string  `json:"category"`
	DueDate     *string `json:"due_date,omitempty"`
}

// timestampLayouts covers the formats backends have been seen to emit:
// RFC 3339 with and without offset, and bare dates for due dates.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseWireTime(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// toModel converts a wire record to the internal task model.
func (w wireTask) toModel() (model.Task, error) {
	t := model.Task{
		ID:          string(w.ID),
		Title:       w.Title,
		Description: w.Description,
		Completed:   w.Completed,
		Priority:    model.Priority(w.Priority),
		Category:    w.Category,
		Starred:     w.Starred,
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if t.Category == "" {
		t.Category = model.DefaultCategory
	}

	if w.CreatedAt != "" {
		created, err := parseWireTime(w.CreatedAt)
		if err != nil {
			return model.Task{}, fmt.Errorf("task %s: created_at: %w", t.ID, err)
		}
		t.CreatedAt = created
	}
	if w.DueDate != "" {
		due, err := parseWireTime(w.DueDate)
		if err != nil {
			return model.Task{}, fmt.Errorf("task %s: due_date: %w", t.ID, err)
		}
		t.DueDate = &due
	}
	if w.CompletedAt != "" {
		done, err := parseWireTime(w.CompletedAt)
		if err != nil {
			return model.Task{}, fmt.Errorf("task %s: completed_at: %w", t.ID, err)
		}
		t.CompletedAt = &done
	}
	return t, nil
}

func patchToWire(p model.Patch) wirePatch {
	w := wirePatch{
		Title:       p.Title,
		Description: p.Description,
		Completed:   p.Completed,
		Category:    p.Category,
		Starred:     p.Starred,
	}
	if p.Priority != nil {
		prio := string(*p.Priority)
		w.Priority = &prio
	}
	if p.DueDate != nil {
		due := p.DueDate.UTC().Format(time.RFC3339)
		w.DueDate = &due
	}
	return w
}
