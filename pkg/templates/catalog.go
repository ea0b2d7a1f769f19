// Package templates holds the static catalog of named trigger and step
// templates plus a ranked search over it. Every template is a pure factory:
// instantiating a step template goes through the injected id generator.
package templates

import (
	"encoding/json"

	"github.com/flowsmith/flowsmith/pkg/models"
)

// Kind separates trigger templates from step templates.
type Kind string

const (
	KindTrigger Kind = "trigger"
	KindStep    Kind = "step"
)

// Template is one catalog entry. Exactly one of NewStep/NewTrigger is set,
// matching Kind. Schema describes the template's configuration surface for
// editor palettes.
type Template struct {
	Name        string         `json:"name"`
	Label       string         `json:"label"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Kind        Kind           `json:"kind"`
	Synonyms    []string       `json:"synonyms,omitempty"`
	Schema      map[string]any `json:"schema,omitempty"`

	NewStep    func(models.IDGenerator) models.Step `json:"-"`
	NewTrigger func() models.Trigger                `json:"-"`
}

var catalog = []Template{
	{
		Name:        "log",
		Label:       "Log message",
		Description: "Write a message to the run log",
		Category:    "utility",
		Kind:        KindStep,
		Synonyms:    []string{"print", "debug", "trace", "write"},
		Schema: map[string]any{
			"type":       "object",
			"required":   []string{"message"},
			"properties": map[string]any{"message": map[string]any{"type": "string"}},
		},
		NewStep: func(gen models.IDGenerator) models.Step {
			return models.NewLogStep(gen, "")
		},
	},
	{
		Name:        "create-record",
		Label:       "Create record",
		Description: "Create a record of an entity with the given field values",
		Category:    "records",
		Kind:        KindStep,
		Synonyms:    []string{"insert", "new", "add", "row"},
		Schema: map[string]any{
			"type":     "object",
			"required": []string{"entityLogicalName", "data"},
			"properties": map[string]any{
				"entityLogicalName": map[string]any{"type": "string"},
				"data":              map[string]any{"type": "object"},
			},
		},
		NewStep: func(gen models.IDGenerator) models.Step {
			return models.NewCreateRecordStep(gen, "", json.RawMessage(`{}`))
		},
	},
	{
		Name:        "condition",
		Label:       "Condition",
		Description: "Branch on a field comparison",
		Category:    "logic",
		Kind:        KindStep,
		Synonyms:    []string{"if", "branch", "switch", "decision"},
		Schema: map[string]any{
			"type":     "object",
			"required": []string{"fieldPath", "operator"},
			"properties": map[string]any{
				"fieldPath": map[string]any{"type": "string"},
				"operator":  map[string]any{"type": "string", "enum": []any{"equals", "not_equals", "exists"}},
				"value":     map[string]any{},
			},
		},
		NewStep: func(gen models.IDGenerator) models.Step {
			return models.NewConditionStep(gen, "", models.OperatorEquals, nil)
		},
	},
	{
		Name:        "field-exists",
		Label:       "Field exists",
		Description: "Branch on whether a field is present",
		Category:    "logic",
		Kind:        KindStep,
		Synonyms:    []string{"present", "has", "defined"},
		NewStep: func(gen models.IDGenerator) models.Step {
			return models.NewConditionStep(gen, "", models.OperatorExists, nil)
		},
	},
	{
		Name:        "manual-trigger",
		Label:       "Manual",
		Description: "Start the workflow by hand",
		Category:    "trigger",
		Kind:        KindTrigger,
		Synonyms:    []string{"button", "on demand"},
		NewTrigger: func() models.Trigger {
			return models.Trigger{Kind: models.TriggerKindManual}
		},
	},
	{
		Name:        "record-created-trigger",
		Label:       "Record created",
		Description: "Start when a record of an entity is created",
		Category:    "trigger",
		Kind:        KindTrigger,
		Synonyms:    []string{"insert", "new record", "on create"},
		NewTrigger: func() models.Trigger {
			return models.Trigger{Kind: models.TriggerKindRecordCreated}
		},
	},
	{
		Name:        "record-updated-trigger",
		Label:       "Record updated",
		Description: "Start when a record of an entity is updated",
		Category:    "trigger",
		Kind:        KindTrigger,
		Synonyms:    []string{"change", "modify", "on update"},
		NewTrigger: func() models.Trigger {
			return models.Trigger{Kind: models.TriggerKindRecordUpdated}
		},
	},
	{
		Name:        "record-deleted-trigger",
		Label:       "Record deleted",
		Description: "Start when a record of an entity is deleted",
		Category:    "trigger",
		Kind:        KindTrigger,
		Synonyms:    []string{"remove", "on delete"},
		NewTrigger: func() models.Trigger {
			return models.Trigger{Kind: models.TriggerKindRecordDeleted}
		},
	},
	{
		Name:        "schedule-trigger",
		Label:       "Schedule",
		Description: "Start on a recurring schedule",
		Category:    "trigger",
		Kind:        KindTrigger,
		Synonyms:    []string{"cron", "timer", "recurring", "interval"},
		NewTrigger: func() models.Trigger {
			return models.Trigger{Kind: models.TriggerKindScheduleTick}
		},
	},
}

// Catalog returns a copy of every registered template.
func Catalog() []Template {
	out := make([]Template, len(catalog))
	copy(out, catalog)

	return out
}

// Find returns the template with the given name.
func Find(name string) (Template, bool) {
	for _, tmpl := range catalog {
		if tmpl.Name == name {
			return tmpl, true
		}
	}

	return Template{}, false
}
