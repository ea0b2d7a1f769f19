// Package lint statically validates a workflow definition and reports an
// ordered diagnostic list. Findings are always data, never errors: authoring
// an incomplete flow is an expected intermediate state, so linting never
// blocks a transformation — it only gates save/publish decisions made by the
// caller.
package lint

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/flowsmith/flowsmith/pkg/models"
	"github.com/flowsmith/flowsmith/pkg/tree"
)

// Level grades a diagnostic.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
)

// Diagnostic is one finding. ID is a stable rule code; StepID is empty for
// whole-definition findings so a consumer can jump focus to the offending
// node when there is one.
type Diagnostic struct {
	ID      string `json:"id"`
	StepID  string `json:"stepId,omitempty"`
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Rule codes. These are part of the diagnostic contract and must stay stable.
const (
	RuleWorkflowEmpty          = "workflow_empty"
	RuleTriggerEntityEmpty     = "trigger_entity_empty"
	RuleTriggerScheduleEmpty   = "trigger_schedule_empty"
	RuleTriggerScheduleInvalid = "trigger_schedule_invalid"
	RuleDuplicateStepID        = "duplicate_step_id"
	RuleLogMessageEmpty        = "log_message_empty"
	RuleRecordEntityEmpty      = "create_record_entity_empty"
	RuleRecordDataInvalid      = "create_record_data_invalid"
	RuleRecordDataSchema       = "create_record_data_schema"
	RuleConditionFieldEmpty    = "condition_field_path_empty"
	RuleConditionValueInvalid  = "condition_value_invalid"
	RuleConditionValueIgnored  = "condition_value_ignored"
	RuleConditionNoBranches    = "condition_branches_empty"
	RuleConditionBadOperator   = "condition_operator_unknown"
)

// Linter runs the rule set. The zero-value Linter is usable; an attached
// schema registry additionally checks create-record data against registered
// entity schemas.
type Linter struct {
	schemas *SchemaRegistry
}

func New() *Linter {
	return &Linter{}
}

func NewWithSchemas(schemas *SchemaRegistry) *Linter {
	return &Linter{schemas: schemas}
}

// Lint walks the whole definition in canonical visit order and returns its
// findings: definition-level rules first, then per-step rules. Running twice
// on the same tree yields the same list.
func (l *Linter) Lint(def *models.Definition) []Diagnostic {
	diags := make([]Diagnostic, 0)
	diags = append(diags, l.lintDefinition(def)...)

	tree.Walk(def.Steps, func(step models.Step) bool {
		diags = append(diags, l.lintStep(step)...)

		return true
	})

	return diags
}

// Lint runs the default rule set without a schema registry.
func Lint(def *models.Definition) []Diagnostic {
	return New().Lint(def)
}

// HasErrors reports whether any diagnostic is an error.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Level == LevelError {
			return true
		}
	}

	return false
}

func (l *Linter) lintDefinition(def *models.Definition) []Diagnostic {
	var diags []Diagnostic

	if len(def.Steps) == 0 {
		diags = append(diags, Diagnostic{
			ID:      RuleWorkflowEmpty,
			Level:   LevelError,
			Message: "workflow has no steps",
		})
	}

	diags = append(diags, lintTrigger(def.Trigger)...)

	for _, id := range tree.DuplicateIDs(def.Steps) {
		diags = append(diags, Diagnostic{
			ID:      RuleDuplicateStepID,
			StepID:  id,
			Level:   LevelError,
			Message: fmt.Sprintf("step id %q occurs more than once", id),
		})
	}

	return diags
}

func lintTrigger(trigger models.Trigger) []Diagnostic {
	var diags []Diagnostic

	if trigger.RequiresEntity() && strings.TrimSpace(trigger.EntityLogicalName) == "" {
		diags = append(diags, Diagnostic{
			ID:      RuleTriggerEntityEmpty,
			Level:   LevelError,
			Message: fmt.Sprintf("%s trigger requires an entity logical name", trigger.Kind),
		})
	}

	if trigger.RequiresScheduleKey() {
		key := strings.TrimSpace(trigger.ScheduleKey)
		if key == "" {
			diags = append(diags, Diagnostic{
				ID:      RuleTriggerScheduleEmpty,
				Level:   LevelError,
				Message: "schedule-tick trigger requires a schedule key",
			})
		} else if _, err := cron.ParseStandard(key); err != nil {
			diags = append(diags, Diagnostic{
				ID:      RuleTriggerScheduleInvalid,
				Level:   LevelWarning,
				Message: fmt.Sprintf("schedule key %q is not a valid cron expression", key),
			})
		}
	}

	return diags
}

func (l *Linter) lintStep(step models.Step) []Diagnostic {
	switch s := step.(type) {
	case *models.LogStep:
		return lintLogStep(s)
	case *models.CreateRecordStep:
		return l.lintCreateRecordStep(s)
	case *models.ConditionStep:
		return lintConditionStep(s)
	default:
		return nil
	}
}

func lintLogStep(step *models.LogStep) []Diagnostic {
	if strings.TrimSpace(step.Message) == "" {
		return []Diagnostic{{
			ID:      RuleLogMessageEmpty,
			StepID:  step.ID,
			Level:   LevelError,
			Message: "log message is empty",
		}}
	}

	return nil
}

func (l *Linter) lintCreateRecordStep(step *models.CreateRecordStep) []Diagnostic {
	var diags []Diagnostic

	if strings.TrimSpace(step.EntityLogicalName) == "" {
		diags = append(diags, Diagnostic{
			ID:      RuleRecordEntityEmpty,
			StepID:  step.ID,
			Level:   LevelError,
			Message: "entity logical name is empty",
		})
	}

	obj, err := decodeRecordData(step.Data)
	if err != nil {
		diags = append(diags, Diagnostic{
			ID:      RuleRecordDataInvalid,
			StepID:  step.ID,
			Level:   LevelError,
			Message: err.Error(),
		})

		return diags
	}

	if l.schemas != nil {
		for _, msg := range l.schemas.Check(step.EntityLogicalName, obj) {
			diags = append(diags, Diagnostic{
				ID:      RuleRecordDataSchema,
				StepID:  step.ID,
				Level:   LevelError,
				Message: msg,
			})
		}
	}

	return diags
}

// decodeRecordData accepts only a JSON object: the record payload is a set of
// field values, so arrays and scalars are authoring mistakes.
func decodeRecordData(raw json.RawMessage) (map[string]any, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, fmt.Errorf("record data is empty")
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("record data is not valid JSON")
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("record data must be a JSON object")
	}

	return obj, nil
}

func lintConditionStep(step *models.ConditionStep) []Diagnostic {
	var diags []Diagnostic

	if strings.TrimSpace(step.FieldPath) == "" {
		diags = append(diags, Diagnostic{
			ID:      RuleConditionFieldEmpty,
			StepID:  step.ID,
			Level:   LevelError,
			Message: "condition field path is empty",
		})
	}

	switch step.Operator {
	case models.OperatorEquals, models.OperatorNotEquals:
		if !json.Valid(step.Value) {
			diags = append(diags, Diagnostic{
				ID:      RuleConditionValueInvalid,
				StepID:  step.ID,
				Level:   LevelError,
				Message: "condition value is not valid JSON",
			})
		}
	case models.OperatorExists:
		if len(strings.TrimSpace(string(step.Value))) > 0 {
			diags = append(diags, Diagnostic{
				ID:      RuleConditionValueIgnored,
				StepID:  step.ID,
				Level:   LevelWarning,
				Message: "condition value is ignored when the operator is exists",
			})
		}
	default:
		diags = append(diags, Diagnostic{
			ID:      RuleConditionBadOperator,
			StepID:  step.ID,
			Level:   LevelError,
			Message: fmt.Sprintf("unknown condition operator %q", step.Operator),
		})
	}

	if len(step.Then) == 0 && len(step.Else) == 0 {
		diags = append(diags, Diagnostic{
			ID:      RuleConditionNoBranches,
			StepID:  step.ID,
			Level:   LevelError,
			Message: "condition has empty then and else branches",
		})
	}

	return diags
}
