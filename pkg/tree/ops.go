package tree

import (
	"encoding/json"

	"github.com/flowsmith/flowsmith/pkg/models"
)

// InsertMode says where InsertStepRelative places the new step relative to its
// target.
type InsertMode string

const (
	InsertBefore InsertMode = "before"
	InsertAfter  InsertMode = "after"
	InsertThen   InsertMode = "then"
	InsertElse   InsertMode = "else"
)

// UpdateStepByID replaces the first step matching id (in canonical order) with
// update(step). The updater receives a deep copy, so it may edit fields freely
// without touching prior snapshots; it must not change the step's id.
// Ancestors along the path are copied, siblings are shared. Returns the input
// sequence unchanged and false when the id is absent.
func UpdateStepByID(steps models.Steps, id string, update func(models.Step) models.Step) (models.Steps, bool) {
	for i, step := range steps {
		if step.StepID() == id {
			out := copySequence(steps)
			out[i] = update(models.CloneStep(step))

			return out, true
		}

		cond, ok := step.(*models.ConditionStep)
		if !ok {
			continue
		}

		if newThen, changed := UpdateStepByID(cond.Then, id, update); changed {
			return replaceBranches(steps, i, cond, newThen, cond.Else), true
		}

		if newElse, changed := UpdateStepByID(cond.Else, id, update); changed {
			return replaceBranches(steps, i, cond, cond.Then, newElse), true
		}
	}

	return steps, false
}

// RemoveStepByID deletes the step wherever it occurs. Deleting a condition
// step deletes its branches with it; there is no flatten semantics.
func RemoveStepByID(steps models.Steps, id string) (models.Steps, bool) {
	out, _, removed := ExtractStepByID(steps, id)

	return out, removed
}

// ExtractStepByID removes the step and also returns the removed subtree so the
// caller can reinsert it elsewhere; drag-style moves compose extract with
// InsertStepRelative. Only the first match in canonical order is extracted.
func ExtractStepByID(steps models.Steps, id string) (models.Steps, models.Step, bool) {
	for i, step := range steps {
		if step.StepID() == id {
			out := make(models.Steps, 0, len(steps)-1)
			out = append(out, steps[:i]...)
			out = append(out, steps[i+1:]...)

			return out, step, true
		}

		cond, ok := step.(*models.ConditionStep)
		if !ok {
			continue
		}

		if newThen, extracted, found := ExtractStepByID(cond.Then, id); found {
			return replaceBranches(steps, i, cond, newThen, cond.Else), extracted, true
		}

		if newElse, extracted, found := ExtractStepByID(cond.Else, id); found {
			return replaceBranches(steps, i, cond, cond.Then, newElse), extracted, true
		}
	}

	return steps, nil, false
}

// InsertStepRelative places newStep relative to the target step. Before/after
// splice into the sequence the target occupies; then/else require the target
// to be a condition step and append to the end of the named branch. A missing
// target (or a then/else mode against a non-condition step) is a no-op
// signalled by false — UI selection is allowed to race ahead of the tree.
func InsertStepRelative(steps models.Steps, targetID string, mode InsertMode, newStep models.Step) (models.Steps, bool) {
	switch mode {
	case InsertThen:
		return AppendStepToBranch(steps, targetID, models.BranchThen, newStep)
	case InsertElse:
		return AppendStepToBranch(steps, targetID, models.BranchElse, newStep)
	case InsertBefore, InsertAfter:
	default:
		return steps, false
	}

	for i, step := range steps {
		if step.StepID() == targetID {
			at := i
			if mode == InsertAfter {
				at = i + 1
			}

			return spliceAt(steps, at, newStep), true
		}

		cond, ok := step.(*models.ConditionStep)
		if !ok {
			continue
		}

		if newThen, inserted := InsertStepRelative(cond.Then, targetID, mode, newStep); inserted {
			return replaceBranches(steps, i, cond, newThen, cond.Else), true
		}

		if newElse, inserted := InsertStepRelative(cond.Else, targetID, mode, newStep); inserted {
			return replaceBranches(steps, i, cond, cond.Then, newElse), true
		}
	}

	return steps, false
}

// AppendStepToBranch appends step to the named branch of a specific condition,
// independent of any current selection.
func AppendStepToBranch(steps models.Steps, conditionID string, branch models.Branch, step models.Step) (models.Steps, bool) {
	for i, candidate := range steps {
		cond, ok := candidate.(*models.ConditionStep)
		if !ok {
			continue
		}

		if cond.ID == conditionID {
			newThen, newElse := cond.Then, cond.Else
			if branch == models.BranchElse {
				newElse = spliceAt(cond.Else, len(cond.Else), step)
			} else {
				newThen = spliceAt(cond.Then, len(cond.Then), step)
			}

			return replaceBranches(steps, i, cond, newThen, newElse), true
		}

		if newThen, appended := AppendStepToBranch(cond.Then, conditionID, branch, step); appended {
			return replaceBranches(steps, i, cond, newThen, cond.Else), true
		}

		if newElse, appended := AppendStepToBranch(cond.Else, conditionID, branch, step); appended {
			return replaceBranches(steps, i, cond, cond.Then, newElse), true
		}
	}

	return steps, false
}

// DuplicateStepByID deep-clones the subtree rooted at id, assigns fresh ids to
// every node of the clone, nested branches included, and inserts the clone
// immediately after the original in the same sequence. Returns the clone's
// root id so the caller can select it.
func DuplicateStepByID(steps models.Steps, id string, gen models.IDGenerator) (models.Steps, string, bool) {
	for i, step := range steps {
		if step.StepID() == id {
			clone := cloneWithFreshIDs(step, gen)

			return spliceAt(steps, i+1, clone), clone.StepID(), true
		}

		cond, ok := step.(*models.ConditionStep)
		if !ok {
			continue
		}

		if newThen, cloneID, found := DuplicateStepByID(cond.Then, id, gen); found {
			return replaceBranches(steps, i, cond, newThen, cond.Else), cloneID, true
		}

		if newElse, cloneID, found := DuplicateStepByID(cond.Else, id, gen); found {
			return replaceBranches(steps, i, cond, cond.Then, newElse), cloneID, true
		}
	}

	return steps, "", false
}

// cloneWithFreshIDs re-ids the whole subtree, parent before branches so a
// sequential generator produces ids in canonical order.
func cloneWithFreshIDs(step models.Step, gen models.IDGenerator) models.Step {
	clone := models.CloneStep(step)

	switch s := clone.(type) {
	case *models.LogStep:
		s.ID = gen.NewID()
	case *models.CreateRecordStep:
		s.ID = gen.NewID()
	case *models.ConditionStep:
		s.ID = gen.NewID()
		s.Then = reidSequence(s.Then, gen)
		s.Else = reidSequence(s.Else, gen)
	}

	return clone
}

func reidSequence(steps models.Steps, gen models.IDGenerator) models.Steps {
	out := make(models.Steps, 0, len(steps))
	for _, step := range steps {
		out = append(out, cloneWithFreshIDs(step, gen))
	}

	return out
}

func copySequence(steps models.Steps) models.Steps {
	out := make(models.Steps, len(steps))
	copy(out, steps)

	return out
}

func spliceAt(steps models.Steps, at int, step models.Step) models.Steps {
	out := make(models.Steps, 0, len(steps)+1)
	out = append(out, steps[:at]...)
	out = append(out, step)
	out = append(out, steps[at:]...)

	return out
}

// replaceBranches copies the sequence and swaps in a condition copy carrying
// the given branches; everything not on the path keeps its original pointer.
func replaceBranches(steps models.Steps, i int, cond *models.ConditionStep, then, els models.Steps) models.Steps {
	out := copySequence(steps)

	updated := *cond
	if cond.Value != nil {
		updated.Value = append(json.RawMessage(nil), cond.Value...)
	}

	updated.Then = then
	updated.Else = els
	out[i] = &updated

	return out
}
