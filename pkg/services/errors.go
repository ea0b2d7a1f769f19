package services

import "errors"

var (
	// ErrStepNotFound indicates the targeted step id is not in the definition.
	ErrStepNotFound = errors.New("step not found")

	// ErrTemplateNotFound indicates an unknown template name.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrInvalidMove indicates a move that would place a step inside its own
	// subtree.
	ErrInvalidMove = errors.New("cannot move a step into its own branch")

	// ErrWorkflowInvalid indicates the lint gate refused a publish.
	ErrWorkflowInvalid = errors.New("workflow has validation errors")

	// ErrNotDraft indicates an operation that only applies to draft workflows.
	ErrNotDraft = errors.New("workflow is not a draft")
)

func IsStepNotFound(err error) bool     { return errors.Is(err, ErrStepNotFound) }
func IsTemplateNotFound(err error) bool { return errors.Is(err, ErrTemplateNotFound) }
func IsInvalidMove(err error) bool      { return errors.Is(err, ErrInvalidMove) }
func IsWorkflowInvalid(err error) bool  { return errors.Is(err, ErrWorkflowInvalid) }
func IsNotDraft(err error) bool         { return errors.Is(err, ErrNotDraft) }
