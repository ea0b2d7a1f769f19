// Package models defines the core domain models for branching workflow definitions.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// StepType discriminates the step union on the wire.
type StepType string

const (
	StepTypeLog          StepType = "log"
	StepTypeCreateRecord StepType = "create-record"
	StepTypeCondition    StepType = "condition"
)

// Branch names one of a condition step's two child sequences.
type Branch string

const (
	BranchThen Branch = "then"
	BranchElse Branch = "else"
)

// ConditionOperator is the comparison applied by a condition step.
type ConditionOperator string

const (
	OperatorEquals    ConditionOperator = "equals"
	OperatorNotEquals ConditionOperator = "not_equals"
	OperatorExists    ConditionOperator = "exists"
)

var (
	ErrMissingStepType = errors.New("step has no type")
	ErrUnknownStepType = errors.New("unknown step type")
)

// Step is one unit of a workflow definition. The id is assigned at creation
// time and never recomputed on edit; it is the only durable identity a step has.
type Step interface {
	StepID() string
	StepType() StepType
}

// LogStep writes a message when executed by the runtime.
type LogStep struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (s *LogStep) StepID() string     { return s.ID }
func (s *LogStep) StepType() StepType { return StepTypeLog }

// CreateRecordStep creates a record of the named entity. Data is the authored
// record payload, carried as an embedded JSON value on the wire.
type CreateRecordStep struct {
	ID                string          `json:"id"`
	EntityLogicalName string          `json:"entityLogicalName"`
	Data              json.RawMessage `json:"data,omitempty"`
}

func (s *CreateRecordStep) StepID() string     { return s.ID }
func (s *CreateRecordStep) StepType() StepType { return StepTypeCreateRecord }

// ConditionStep branches into exactly two named sequences. Value is ignored
// when the operator is "exists". Branches are never nil once decoded; an empty
// sequence is the representation of "no steps here".
type ConditionStep struct {
	ID        string            `json:"id"`
	FieldPath string            `json:"fieldPath"`
	Operator  ConditionOperator `json:"operator"`
	Value     json.RawMessage   `json:"value,omitempty"`
	ThenLabel string            `json:"thenLabel"`
	ElseLabel string            `json:"elseLabel"`
	Then      Steps             `json:"thenSteps"`
	Else      Steps             `json:"elseSteps"`
}

func (s *ConditionStep) StepID() string     { return s.ID }
func (s *ConditionStep) StepType() StepType { return StepTypeCondition }

// BranchSteps returns the named branch sequence.
func (s *ConditionStep) BranchSteps(branch Branch) Steps {
	if branch == BranchElse {
		return s.Else
	}

	return s.Then
}

// Steps is an ordered step sequence. Order is the array index; there is no
// separate priority field.
type Steps []Step

// MarshalJSON emits an empty array for a nil sequence so that condition
// branches are never absent on the wire.
func (s Steps) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}

	return json.Marshal([]Step(s))
}

func (s *Steps) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = Steps{}

		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode step sequence: %w", err)
	}

	out := make(Steps, 0, len(raw))

	for i, item := range raw {
		step, err := UnmarshalStep(item)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}

		out = append(out, step)
	}

	*s = out

	return nil
}

type stepEnvelope struct {
	Type StepType `json:"type"`
}

// UnmarshalStep decodes a single step, dispatching on the "type" discriminator.
// A missing or unknown discriminator is a structural error: a corrupted
// definition is unrecoverable and must fail loudly at the trust boundary.
func UnmarshalStep(data []byte) (Step, error) {
	var envelope stepEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode step envelope: %w", err)
	}

	switch envelope.Type {
	case StepTypeLog:
		var step LogStep
		if err := json.Unmarshal(data, &step); err != nil {
			return nil, fmt.Errorf("failed to decode log step: %w", err)
		}

		return &step, nil
	case StepTypeCreateRecord:
		var step CreateRecordStep
		if err := json.Unmarshal(data, &step); err != nil {
			return nil, fmt.Errorf("failed to decode create-record step: %w", err)
		}

		return &step, nil
	case StepTypeCondition:
		var step conditionStepAlias
		if err := json.Unmarshal(data, &step); err != nil {
			return nil, fmt.Errorf("failed to decode condition step: %w", err)
		}

		decoded := ConditionStep(step)
		if decoded.Then == nil {
			decoded.Then = Steps{}
		}

		if decoded.Else == nil {
			decoded.Else = Steps{}
		}

		return &decoded, nil
	case "":
		return nil, ErrMissingStepType
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStepType, envelope.Type)
	}
}

// Aliases break the MarshalJSON/UnmarshalJSON recursion on the concrete types.
type (
	logStepAlias          LogStep
	createRecordStepAlias CreateRecordStep
	conditionStepAlias    ConditionStep
)

func (s *LogStep) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type StepType `json:"type"`
		*logStepAlias
	}{StepTypeLog, (*logStepAlias)(s)})
}

func (s *CreateRecordStep) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type StepType `json:"type"`
		*createRecordStepAlias
	}{StepTypeCreateRecord, (*createRecordStepAlias)(s)})
}

func (s *ConditionStep) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type StepType `json:"type"`
		*conditionStepAlias
	}{StepTypeCondition, (*conditionStepAlias)(s)})
}

// CloneStep returns a deep copy of the step, ids included. Use
// tree.DuplicateStepByID when the copy needs a fresh identity.
func CloneStep(step Step) Step {
	switch s := step.(type) {
	case *LogStep:
		clone := *s

		return &clone
	case *CreateRecordStep:
		clone := *s
		clone.Data = cloneRaw(s.Data)

		return &clone
	case *ConditionStep:
		clone := *s
		clone.Value = cloneRaw(s.Value)
		clone.Then = CloneSteps(s.Then)
		clone.Else = CloneSteps(s.Else)

		return &clone
	default:
		panic(fmt.Sprintf("models: unhandled step type %T", step))
	}
}

// CloneSteps deep-copies a sequence, preserving ids and order.
func CloneSteps(steps Steps) Steps {
	out := make(Steps, 0, len(steps))
	for _, step := range steps {
		out = append(out, CloneStep(step))
	}

	return out
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}

	return append(json.RawMessage(nil), raw...)
}
