package models

import "encoding/json"

// Explicit-kind step constructors. Every construction path goes through the
// injected id generator; no hidden global counter.

func NewLogStep(gen IDGenerator, message string) *LogStep {
	return &LogStep{ID: gen.NewID(), Message: message}
}

func NewCreateRecordStep(gen IDGenerator, entityLogicalName string, data json.RawMessage) *CreateRecordStep {
	return &CreateRecordStep{
		ID:                gen.NewID(),
		EntityLogicalName: entityLogicalName,
		Data:              cloneRaw(data),
	}
}

func NewConditionStep(gen IDGenerator, fieldPath string, operator ConditionOperator, value json.RawMessage) *ConditionStep {
	return &ConditionStep{
		ID:        gen.NewID(),
		FieldPath: fieldPath,
		Operator:  operator,
		Value:     cloneRaw(value),
		ThenLabel: "Then",
		ElseLabel: "Else",
		Then:      Steps{},
		Else:      Steps{},
	}
}
