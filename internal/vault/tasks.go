package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/EdoSag/Zero-Trust-Tasks/internal/task"
)

// Task and category CRUD. Every operation sanitizes its input before it
// touches the document, re-encrypts the whole document under a fresh IV,
// and persists before the in-memory forest advances.

// AddTask appends a new top-level task and returns it with its assigned id.
func (v *Vault) AddTask(ctx context.Context, t task.Task) (task.Task, error) {
	return v.addTask(ctx, nil, t)
}

// AddSubtask appends a new task under the parent addressed by parentPath
// (ancestor ids plus the parent's own id).
func (v *Vault) AddSubtask(ctx context.Context, parentPath []string, t task.Task) (task.Task, error) {
	if len(parentPath) == 0 {
		return task.Task{}, fmt.Errorf("%w: empty parent path", ErrInvalidInput)
	}
	return v.addTask(ctx, parentPath, t)
}

func (v *Vault) addTask(ctx context.Context, parentPath []string, t task.Task) (task.Task, error) {
	now := v.now().UTC()
	t.ID = task.NewID()
	t.Completed = false
	t.CreatedAt = now
	t.UpdatedAt = now
	t.Subtasks = nil
	t = task.Sanitize(t)

	_, err := v.mutate(ctx, func(doc task.Document) (task.Document, error) {
		if err := validateCategory(doc, t.Category); err != nil {
			return task.Document{}, err
		}
		forest, err := task.Insert(doc.Tasks, parentPath, t)
		if errors.Is(err, task.ErrNotFound) {
			return task.Document{}, ErrTaskNotFound
		}
		if err != nil {
			return task.Document{}, err
		}
		doc.Tasks = forest
		return doc, nil
	})
	if err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// UpdateTask patches the task addressed by path (ancestor ids plus its own
// id), refreshes its updatedAt, and returns the updated task.
func (v *Vault) UpdateTask(ctx context.Context, path []string, patch task.Patch) (task.Task, error) {
	var updated task.Task
	_, err := v.mutate(ctx, func(doc task.Document) (task.Document, error) {
		existing, err := task.Find(doc.Tasks, path)
		if errors.Is(err, task.ErrNotFound) {
			return task.Document{}, ErrTaskNotFound
		}
		if err != nil {
			return task.Document{}, err
		}
		next := task.Sanitize(patch.Apply(existing, v.now().UTC()))
		if err := validateCategory(doc, next.Category); err != nil {
			return task.Document{}, err
		}
		forest, err := task.Replace(doc.Tasks, path, next)
		if err != nil {
			return task.Document{}, err
		}
		updated = next
		doc.Tasks = forest
		return doc, nil
	})
	if err != nil {
		return task.Task{}, err
	}
	return updated, nil
}

// DeleteTask removes the task addressed by path and its entire subtree.
func (v *Vault) DeleteTask(ctx context.Context, path []string) error {
	_, err := v.mutate(ctx, func(doc task.Document) (task.Document, error) {
		forest, err := task.Remove(doc.Tasks, path)
		if errors.Is(err, task.ErrNotFound) {
			return task.Document{}, ErrTaskNotFound
		}
		if err != nil {
			return task.Document{}, err
		}
		doc.Tasks = forest
		return doc, nil
	})
	return err
}

// AddCategory inserts a category, preserving order and deduplicating.
func (v *Vault) AddCategory(ctx context.Context, name string) ([]string, error) {
	clean := task.SanitizeText(name)
	if clean == "" {
		return nil, fmt.Errorf("%w: empty category", ErrInvalidInput)
	}
	doc, err := v.mutate(ctx, func(doc task.Document) (task.Document, error) {
		if doc.HasCategory(clean) {
			return doc, nil
		}
		cats := make([]string, 0, len(doc.Categories)+1)
		cats = append(cats, doc.Categories...)
		doc.Categories = append(cats, clean)
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return doc.Categories, nil
}

// RemoveCategory drops a category from the set and blanks it on every task
// that referenced it, keeping the category invariant intact.
func (v *Vault) RemoveCategory(ctx context.Context, name string) ([]string, error) {
	doc, err := v.mutate(ctx, func(doc task.Document) (task.Document, error) {
		cats := make([]string, 0, len(doc.Categories))
		for _, c := range doc.Categories {
			if c != name {
				cats = append(cats, c)
			}
		}
		doc.Categories = cats
		doc.Tasks = task.ClearCategory(doc.Tasks, name)
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return doc.Categories, nil
}

func validateCategory(doc task.Document, category string) error {
	if category == "" || doc.HasCategory(category) {
		return nil
	}
	return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, category)
}
