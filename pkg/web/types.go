// Package web provides HTTP request and response types for the editor API.
package web

import (
	"encoding/json"

	"github.com/flowsmith/flowsmith/pkg/models"
)

// CreateWorkflowRequest represents the request body for creating a new workflow.
type CreateWorkflowRequest struct {
	Name        string          `json:"name"              validate:"required,min=3"`
	Description string          `json:"description"`
	Owner       string          `json:"owner"             validate:"required"`
	Trigger     *models.Trigger `json:"trigger,omitempty"`
}

// UpdateWorkflowRequest represents the request body for updating a workflow.
// All fields are optional to support partial updates; a definition replaces
// the step tree wholesale.
type UpdateWorkflowRequest struct {
	Name        *string            `json:"name,omitempty"        validate:"omitempty,min=3"`
	Description *string            `json:"description,omitempty"`
	Trigger     *models.Trigger    `json:"trigger,omitempty"`
	Definition  *models.Definition `json:"definition,omitempty"`
}

// InsertStepRequest instantiates a template relative to a target step. With
// no target the step is appended to the root sequence.
type InsertStepRequest struct {
	Template string `json:"template"           validate:"required"`
	TargetID string `json:"target_id,omitempty"`
	Mode     string `json:"mode,omitempty"     validate:"omitempty,oneof=before after then else"`
}

// UpdateStepRequest carries a whole replacement step in wire form.
type UpdateStepRequest struct {
	Step json.RawMessage `json:"step" validate:"required"`
}

// MoveStepRequest relocates a step relative to a target.
type MoveStepRequest struct {
	TargetID string `json:"target_id" validate:"required"`
	Mode     string `json:"mode"      validate:"required,oneof=before after then else"`
}
