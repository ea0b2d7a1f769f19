// Package history implements undo/redo as a linear list of whole-definition
// snapshots. Operations are cheap and trees are editor-scale, so there is no
// command pattern — each entry is an independent deep copy plus the UI
// selection that accompanied it.
package history

import "github.com/flowsmith/flowsmith/pkg/models"

// Snapshot is one history entry.
type Snapshot struct {
	Definition     *models.Definition
	SelectedStepID string
}

// History is a bounded linear snapshot list. Pushing while undone truncates
// the redo tail, matching standard editor semantics.
type History struct {
	snapshots []Snapshot
	cursor    int // index of the current snapshot, -1 when empty
	limit     int
}

const defaultLimit = 100

// New returns a history bounded to limit entries; limit <= 0 uses the default.
func New(limit int) *History {
	if limit <= 0 {
		limit = defaultLimit
	}

	return &History{cursor: -1, limit: limit}
}

// Push records a new snapshot, discarding any redo entries beyond the cursor.
// The definition is deep-copied, so the caller may keep editing its tree.
func (h *History) Push(def *models.Definition, selectedStepID string) {
	h.snapshots = append(h.snapshots[:h.cursor+1], Snapshot{
		Definition:     def.Clone(),
		SelectedStepID: selectedStepID,
	})

	if len(h.snapshots) > h.limit {
		h.snapshots = h.snapshots[len(h.snapshots)-h.limit:]
	}

	h.cursor = len(h.snapshots) - 1
}

func (h *History) CanUndo() bool { return h.cursor > 0 }

func (h *History) CanRedo() bool { return h.cursor >= 0 && h.cursor < len(h.snapshots)-1 }

// Undo steps back and returns a copy of the now-current snapshot.
func (h *History) Undo() (Snapshot, bool) {
	if !h.CanUndo() {
		return Snapshot{}, false
	}

	h.cursor--

	return h.current(), true
}

// Redo steps forward and returns a copy of the now-current snapshot.
func (h *History) Redo() (Snapshot, bool) {
	if !h.CanRedo() {
		return Snapshot{}, false
	}

	h.cursor++

	return h.current(), true
}

// Current returns a copy of the current snapshot.
func (h *History) Current() (Snapshot, bool) {
	if h.cursor < 0 {
		return Snapshot{}, false
	}

	return h.current(), true
}

func (h *History) Len() int { return len(h.snapshots) }

func (h *History) current() Snapshot {
	entry := h.snapshots[h.cursor]

	return Snapshot{
		Definition:     entry.Definition.Clone(),
		SelectedStepID: entry.SelectedStepID,
	}
}
