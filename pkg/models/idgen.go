package models

import (
	"fmt"

	"github.com/google/uuid"
)

// IDGenerator supplies step ids. It is injected into every construction and
// duplication call so tests can use deterministic sequences; implementations
// must never repeat an id within an editing session.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator is the production id source.
type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator { return UUIDGenerator{} }

func (UUIDGenerator) NewID() string { return uuid.New().String() }

// SequentialIDGenerator produces "prefix-1", "prefix-2", … and exists for
// tests and deterministic tooling output.
type SequentialIDGenerator struct {
	prefix string
	next   int
}

func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	return &SequentialIDGenerator{prefix: prefix}
}

func (g *SequentialIDGenerator) NewID() string {
	g.next++

	return fmt.Sprintf("%s-%d", g.prefix, g.next)
}
