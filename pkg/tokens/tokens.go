// Package tokens enumerates the interpolation tokens legally referenceable
// from a given step. Only enumeration is in scope; rendering against a live
// payload is the runtime's job. Canonical visit order is a topological order
// by construction, so "before the selected step in visit order" enforces the
// forward-reference-only rule without a dependency graph. Tokens from a
// sibling branch are intentionally still offered: branch exclusivity is a
// runtime concern, not an authoring-time one.
package tokens

import (
	"fmt"

	"github.com/flowsmith/flowsmith/pkg/models"
	"github.com/flowsmith/flowsmith/pkg/tree"
)

// Run-identity tokens available to every step.
const (
	TokenRunID        = "{{run.id}}"
	TokenRunStartedAt = "{{run.startedAt}}"
)

// StepOutputToken is the token referencing an upstream step's output.
func StepOutputToken(stepID string) string {
	return fmt.Sprintf("{{steps.%s.output}}", stepID)
}

// Resolve returns the ordered, deduplicated token list visible from the
// selected step: the base set (run identity, trigger-derived tokens, the
// caller-supplied trigger payload field paths) plus one output token per step
// strictly before the selected step in canonical order. An empty or stale
// selection yields only the base set.
func Resolve(def *models.Definition, selectedStepID string, payloadFields []string) []string {
	out := baseTokens(def.Trigger, payloadFields)

	if selectedStepID == "" {
		return dedupe(out)
	}

	var upstream []string

	found := false

	tree.Walk(def.Steps, func(step models.Step) bool {
		if step.StepID() == selectedStepID {
			found = true

			return false
		}

		upstream = append(upstream, StepOutputToken(step.StepID()))

		return true
	})

	if found {
		out = append(out, upstream...)
	}

	return dedupe(out)
}

func baseTokens(trigger models.Trigger, payloadFields []string) []string {
	out := []string{
		TokenRunID,
		TokenRunStartedAt,
		"{{trigger.kind}}",
	}

	if trigger.EntityLogicalName != "" {
		out = append(out, "{{trigger.entity}}")
	}

	if trigger.ScheduleKey != "" {
		out = append(out, "{{trigger.scheduleKey}}")
	}

	for _, field := range payloadFields {
		out = append(out, fmt.Sprintf("{{trigger.payload.%s}}", field))
	}

	return out
}

func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))

	for _, token := range tokens {
		if _, ok := seen[token]; ok {
			continue
		}

		seen[token] = struct{}{}
		out = append(out, token)
	}

	return out
}
