package models

import "time"

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusDraft       WorkflowStatus = "draft"       // Editable, not executable
	WorkflowStatusPublished   WorkflowStatus = "published"   // Immutable published snapshot
	WorkflowStatusUnpublished WorkflowStatus = "unpublished" // Historical, not executable
)

// Workflow is the persisted envelope around a definition. The definition
// itself is carried verbatim; durability is owned by the persistence layer.
type Workflow struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"                   validate:"required,min=3"`
	Description string         `json:"description"`
	Status      WorkflowStatus `json:"status"                 validate:"required,oneof=draft published unpublished"`
	Definition  *Definition    `json:"definition"             validate:"required"`
	Owner       string         `json:"owner"`
	PublishedID string         `json:"published_id,omitempty"` // Draft's pointer to its current published snapshot
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	DeletedAt   *time.Time     `json:"deleted_at,omitempty"`
}

// Clone deep-copies the workflow envelope and its definition.
func (w *Workflow) Clone() *Workflow {
	if w == nil {
		return nil
	}

	clone := *w
	clone.Definition = w.Definition.Clone()

	if w.PublishedAt != nil {
		t := *w.PublishedAt
		clone.PublishedAt = &t
	}

	if w.DeletedAt != nil {
		t := *w.DeletedAt
		clone.DeletedAt = &t
	}

	return &clone
}
