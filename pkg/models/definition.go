package models

import (
	"encoding/json"
	"fmt"
)

// Definition is a complete workflow definition: a trigger plus the root step
// sequence. Only condition steps introduce further sequences, so the overall
// structure is a forest of ordered sequences, never a general graph.
type Definition struct {
	Trigger Trigger `json:"trigger"`
	Steps   Steps   `json:"steps"`
}

// NewDefinition returns an empty manual-trigger definition.
func NewDefinition() *Definition {
	return &Definition{
		Trigger: Trigger{Kind: TriggerKindManual},
		Steps:   Steps{},
	}
}

// Clone deep-copies the definition, ids included. Prior snapshots stay valid
// no matter what the caller does with the copy.
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}

	return &Definition{
		Trigger: d.Trigger,
		Steps:   CloneSteps(d.Steps),
	}
}

// UnmarshalDefinition decodes a definition from its wire form.
func UnmarshalDefinition(data []byte) (*Definition, error) {
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to decode workflow definition: %w", err)
	}

	if def.Steps == nil {
		def.Steps = Steps{}
	}

	return &def, nil
}
