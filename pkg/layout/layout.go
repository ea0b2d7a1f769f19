// Package layout assigns a 2-D canvas position to every node of a definition.
// Placement is a single deterministic pass with row reservation: flows are
// shallow, so the same tree always yields the same layout, which keeps diffs
// and tests stable. There is no iterative relaxation.
package layout

import "github.com/flowsmith/flowsmith/pkg/models"

// TriggerNodeID is the synthetic node representing the trigger on the canvas.
const TriggerNodeID = "trigger"

// Position is a canvas coordinate in pixels.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Config holds the canvas geometry. Each zero field is replaced by its
// default independently, so a partial config keeps the fields it does set.
type Config struct {
	OriginY    int // y of row 0
	BaseOffset int // x of the root sequence's lane
	LaneWidth  int // x advance per nesting depth
	RowHeight  int // y advance per reserved row
}

func DefaultConfig() Config {
	return Config{
		OriginY:    40,
		BaseOffset: 260,
		LaneWidth:  220,
		RowHeight:  120,
	}
}

func (cfg Config) withDefaults() Config {
	defaults := DefaultConfig()

	if cfg.OriginY == 0 {
		cfg.OriginY = defaults.OriginY
	}

	if cfg.BaseOffset == 0 {
		cfg.BaseOffset = defaults.BaseOffset
	}

	if cfg.LaneWidth == 0 {
		cfg.LaneWidth = defaults.LaneWidth
	}

	if cfg.RowHeight == 0 {
		cfg.RowHeight = defaults.RowHeight
	}

	return cfg
}

// Compute lays out the definition with the default geometry.
func Compute(def *models.Definition) map[string]Position {
	return ComputeWithConfig(def, DefaultConfig())
}

// ComputeWithConfig walks the step forest depth-first, reserving one global
// row per node. The trigger is pinned one lane left of the root sequence.
func ComputeWithConfig(def *models.Definition, cfg Config) map[string]Position {
	cfg = cfg.withDefaults()

	l := &layouter{
		cfg:       cfg,
		positions: make(map[string]Position),
	}
	l.positions[TriggerNodeID] = Position{X: cfg.BaseOffset - cfg.LaneWidth, Y: cfg.OriginY}
	l.sequence(def.Steps, 0)

	return l.positions
}

type layouter struct {
	cfg       Config
	positions map[string]Position
	nextRow   int // global next free row; rows are never reused
}

// sequence places each step on the next free row at the given depth. A
// condition reserves its own row first, so its branches always occupy rows
// below it: then branch first, else branch after, then the next sibling.
func (l *layouter) sequence(steps models.Steps, depth int) {
	for _, step := range steps {
		row := l.nextRow
		l.place(step, depth, row)
		l.nextRow = row + 1

		if cond, ok := step.(*models.ConditionStep); ok {
			l.sequence(cond.Then, depth+1)
			l.sequence(cond.Else, depth+1)
		}
	}
}

func (l *layouter) place(step models.Step, depth, row int) {
	l.positions[step.StepID()] = Position{
		X: l.cfg.BaseOffset + depth*l.cfg.LaneWidth,
		Y: l.cfg.OriginY + row*l.cfg.RowHeight,
	}
}
