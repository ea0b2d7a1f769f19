package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowsmith/flowsmith/pkg/models"
)

func fixture() *models.Definition {
	return &models.Definition{
		Trigger: models.Trigger{Kind: models.TriggerKindRecordCreated, EntityLogicalName: "contact"},
		Steps: models.Steps{
			&models.LogStep{ID: "log-1", Message: "start"},
			&models.ConditionStep{
				ID:        "cond-1",
				FieldPath: "status",
				Operator:  models.OperatorExists,
				Then:      models.Steps{&models.LogStep{ID: "log-2"}},
				Else:      models.Steps{&models.LogStep{ID: "log-3"}},
			},
			&models.LogStep{ID: "log-4"},
		},
	}
}

func TestResolve_NoSelectionYieldsBaseSet(t *testing.T) {
	got := Resolve(fixture(), "", nil)

	assert.Equal(t, []string{
		TokenRunID,
		TokenRunStartedAt,
		"{{trigger.kind}}",
		"{{trigger.entity}}",
	}, got)
}

func TestResolve_StaleSelectionYieldsBaseSet(t *testing.T) {
	assert.Equal(t, Resolve(fixture(), "", nil), Resolve(fixture(), "deleted-step", nil))
}

func TestResolve_FirstStepSeesNoOutputs(t *testing.T) {
	got := Resolve(fixture(), "log-1", nil)

	for _, token := range got {
		assert.NotContains(t, token, "steps.")
	}
}

func TestResolve_StrictlyBeforeInVisitOrder(t *testing.T) {
	got := Resolve(fixture(), "log-4", nil)

	require.Len(t, got, 8)
	assert.Equal(t, []string{
		StepOutputToken("log-1"),
		StepOutputToken("cond-1"),
		StepOutputToken("log-2"),
		StepOutputToken("log-3"),
	}, got[4:])
	assert.NotContains(t, got, StepOutputToken("log-4"))
}

func TestResolve_SiblingBranchIsOffered(t *testing.T) {
	// Visibility over-approximates: the then branch precedes the else branch
	// in visit order, so else-branch steps may reference then-branch outputs
	// even though only one branch runs.
	got := Resolve(fixture(), "log-3", nil)

	assert.Contains(t, got, StepOutputToken("log-2"))
	assert.NotContains(t, got, StepOutputToken("log-3"))
	assert.NotContains(t, got, StepOutputToken("log-4"))
}

func TestResolve_ScheduleTrigger(t *testing.T) {
	def := &models.Definition{
		Trigger: models.Trigger{Kind: models.TriggerKindScheduleTick, ScheduleKey: "0 9 * * 1"},
		Steps:   models.Steps{&models.LogStep{ID: "log-1"}},
	}

	got := Resolve(def, "", nil)
	assert.Contains(t, got, "{{trigger.scheduleKey}}")
	assert.NotContains(t, got, "{{trigger.entity}}")
}

func TestResolve_PayloadFields(t *testing.T) {
	got := Resolve(fixture(), "", []string{"email", "name"})

	assert.Contains(t, got, "{{trigger.payload.email}}")
	assert.Contains(t, got, "{{trigger.payload.name}}")
}

func TestResolve_DedupesPreservingOrder(t *testing.T) {
	got := Resolve(fixture(), "", []string{"email", "email", "name"})

	count := 0

	for _, token := range got {
		if token == "{{trigger.payload.email}}" {
			count++
		}
	}

	assert.Equal(t, 1, count)
	assert.Equal(t, "{{trigger.payload.name}}", got[len(got)-1])
}

func TestStepOutputToken(t *testing.T) {
	assert.Equal(t, "{{steps.log-1.output}}", StepOutputToken("log-1"))
}
