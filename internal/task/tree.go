package task

import "errors"

// ErrNotFound means a task path did not resolve in the forest.
var ErrNotFound = errors.New("task: not found")

// A task is addressed by the ordered path of its ancestor ids followed by
// its own id. All mutations go through mapAt, which walks the forest along
// the path and rebuilds only the spine it touched, so the input forest is
// never modified in place.

// mapAt returns a copy of forest with fn applied to the task addressed by
// path. If fn reports keep=false the task (and its whole subtree) is
// dropped. Returns ErrNotFound if the path does not resolve.
func mapAt(forest []Task, path []string, fn func(Task) (Task, bool)) ([]Task, error) {
	if len(path) == 0 {
		return nil, ErrNotFound
	}
	out := make([]Task, 0, len(forest))
	found := false
	for _, t := range forest {
		if t.ID != path[0] {
			out = append(out, t)
			continue
		}
		found = true
		if len(path) == 1 {
			if next, keep := fn(t); keep {
				out = append(out, next)
			}
			continue
		}
		sub, err := mapAt(t.Subtasks, path[1:], fn)
		if err != nil {
			return nil, err
		}
		t.Subtasks = sub
		out = append(out, t)
	}
	if !found {
		return nil, ErrNotFound
	}
	return out, nil
}

// Find resolves a path to the task it addresses.
func Find(forest []Task, path []string) (Task, error) {
	if len(path) == 0 {
		return Task{}, ErrNotFound
	}
	for _, t := range forest {
		if t.ID != path[0] {
			continue
		}
		if len(path) == 1 {
			return t, nil
		}
		return Find(t.Subtasks, path[1:])
	}
	return Task{}, ErrNotFound
}

// Insert appends t under the parent addressed by parentPath, or at the top
// level when parentPath is empty.
func Insert(forest []Task, parentPath []string, t Task) ([]Task, error) {
	if len(parentPath) == 0 {
		out := make([]Task, 0, len(forest)+1)
		out = append(out, forest...)
		return append(out, t), nil
	}
	return mapAt(forest, parentPath, func(parent Task) (Task, bool) {
		subs := make([]Task, 0, len(parent.Subtasks)+1)
		subs = append(subs, parent.Subtasks...)
		parent.Subtasks = append(subs, t)
		return parent, true
	})
}

// Replace swaps the task addressed by path for next.
func Replace(forest []Task, path []string, next Task) ([]Task, error) {
	return mapAt(forest, path, func(Task) (Task, bool) {
		return next, true
	})
}

// Remove deletes the task addressed by path together with its entire
// subtree; siblings keep their order.
func Remove(forest []Task, path []string) ([]Task, error) {
	return mapAt(forest, path, func(Task) (Task, bool) {
		return Task{}, false
	})
}

// ClearCategory returns a copy of forest with every reference to the named
// category blanked, keeping the invariant that a task's category is either
// empty or a member of the current category set.
func ClearCategory(forest []Task, name string) []Task {
	out := make([]Task, 0, len(forest))
	for _, t := range forest {
		if t.Category == name {
			t.Category = ""
		}
		t.Subtasks = ClearCategory(t.Subtasks, name)
		out = append(out, t)
	}
	return out
}
