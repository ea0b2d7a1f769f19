// Package tree implements the canonical traversal and the immutable
// transformation operations over a workflow's step forest. Every operation
// takes a sequence and returns a new sequence; inputs are never mutated, so
// undo history holding prior snapshots stays valid.
package tree

import "github.com/flowsmith/flowsmith/pkg/models"

// Walk visits every step in canonical order: each step in sequence order, and
// for a condition step its then branch followed by its else branch before the
// next sibling. Layout, lint ordering and token visibility all agree on step
// order because they all go through this traversal. Returning false from fn
// stops the walk.
func Walk(steps models.Steps, fn func(models.Step) bool) bool {
	for _, step := range steps {
		if !fn(step) {
			return false
		}

		if cond, ok := step.(*models.ConditionStep); ok {
			if !Walk(cond.Then, fn) {
				return false
			}

			if !Walk(cond.Else, fn) {
				return false
			}
		}
	}

	return true
}

// Flatten returns every step of the forest in canonical order.
func Flatten(steps models.Steps) []models.Step {
	var out []models.Step

	Walk(steps, func(step models.Step) bool {
		out = append(out, step)

		return true
	})

	return out
}

// FindStepByID returns the first step with the given id in canonical order.
func FindStepByID(steps models.Steps, id string) (models.Step, bool) {
	var found models.Step

	Walk(steps, func(step models.Step) bool {
		if step.StepID() == id {
			found = step

			return false
		}

		return true
	})

	if found == nil {
		return nil, false
	}

	return found, true
}

// StepContainsID reports whether id names the step itself or any descendant
// through either branch. Callers use it to refuse operations such as moving a
// condition into its own branch.
func StepContainsID(step models.Step, id string) bool {
	if step.StepID() == id {
		return true
	}

	if cond, ok := step.(*models.ConditionStep); ok {
		_, inThen := FindStepByID(cond.Then, id)
		_, inElse := FindStepByID(cond.Else, id)

		return inThen || inElse
	}

	return false
}

// DuplicateIDs returns every id that occurs more than once across the forest,
// in canonical order of first re-occurrence. A non-empty result means the
// injected id generator violated its contract.
func DuplicateIDs(steps models.Steps) []string {
	seen := make(map[string]int)

	var dups []string

	Walk(steps, func(step models.Step) bool {
		seen[step.StepID()]++
		if seen[step.StepID()] == 2 {
			dups = append(dups, step.StepID())
		}

		return true
	})

	return dups
}
