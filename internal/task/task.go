// Package task holds the vault's domain document: an ordered forest of
// tasks, each optionally nesting an ordered forest of subtasks to
// unbounded depth, plus the user's category set.
package task

import (
	"time"

	"github.com/google/uuid"
)

// Priority of a task.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Valid reports whether p is one of the four known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Field length caps, enforced by Sanitize.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
)

// Task is a single node in the forest. Subtasks is always present,
// possibly empty, never nil once the task has passed through Sanitize.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	Category    string     `json:"category"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Tags        []string   `json:"tags"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Subtasks    []Task     `json:"subtasks"`
}

// Document is the vault's primary payload: the serialized form is what
// gets encrypted at rest.
type Document struct {
	Tasks      []Task   `json:"tasks"`
	Categories []string `json:"categories"`
}

// DefaultCategories seeds a fresh vault's category set.
func DefaultCategories() []string {
	return []string{"Work", "Personal", "Shopping", "Health"}
}

// NewDocument returns the empty document written at vault creation.
func NewDocument() Document {
	return Document{Tasks: []Task{}, Categories: DefaultCategories()}
}

// NewID returns a fresh task id. Ids are never reused.
func NewID() string {
	return uuid.NewString()
}

// Patch is a partial update to a task. Nil fields are left untouched.
type Patch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	Category    *string    `json:"category,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Tags        *[]string  `json:"tags,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
}

// Apply merges the patch into a copy of t and stamps UpdatedAt.
func (p Patch) Apply(t Task, now time.Time) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
	if p.Tags != nil {
		t.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	t.UpdatedAt = now
	return t
}

// HasCategory reports whether c is in the document's category set.
func (d Document) HasCategory(c string) bool {
	for _, have := range d.Categories {
		if have == c {
			return true
		}
	}
	return false
}

// IDs returns every task id in the forest, nested subtasks included.
func (d Document) IDs() []string {
	var out []string
	var walk func(ts []Task)
	walk = func(ts []Task) {
		for _, t := range ts {
			out = append(out, t.ID)
			walk(t.Subtasks)
		}
	}
	walk(d.Tasks)
	return out
}
