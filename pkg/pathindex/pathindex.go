// Package pathindex computes the dot-delimited path of every step in a
// definition. The grammar is a wire contract: an external runtime reports
// per-node outcomes keyed by these same paths, so the format must stay
// bit-compatible — root steps are "0", "1", …; a condition's branches extend
// the parent path with a literal ".then" or ".else" segment followed by the
// child's index, e.g. "1.then.0". Paths are recomputed from tree shape on
// every change and are never persisted identity; only the step id is durable.
package pathindex

import (
	"strconv"
	"strings"

	"github.com/flowsmith/flowsmith/pkg/models"
)

// Index holds both directions of the path mapping, built in one traversal.
type Index struct {
	IDToPath   map[string]string
	PathToStep map[string]models.Step
}

// Build indexes the whole forest.
func Build(steps models.Steps) *Index {
	idx := &Index{
		IDToPath:   make(map[string]string),
		PathToStep: make(map[string]models.Step),
	}
	idx.indexSequence(steps, "")

	return idx
}

func (idx *Index) indexSequence(steps models.Steps, prefix string) {
	for i, step := range steps {
		path := prefix + strconv.Itoa(i)
		idx.IDToPath[step.StepID()] = path
		idx.PathToStep[path] = step

		if cond, ok := step.(*models.ConditionStep); ok {
			idx.indexSequence(cond.Then, path+".then.")
			idx.indexSequence(cond.Else, path+".else.")
		}
	}
}

// PathFor is a convenience for a single lookup.
func PathFor(steps models.Steps, id string) (string, bool) {
	path, ok := Build(steps).IDToPath[id]

	return path, ok
}

// Compare orders two paths consistently with canonical visit order: numeric
// segments compare as integers, "then" sorts before "else", and an ancestor
// sorts before its descendants. Plain string comparison would misorder both
// branch names and multi-digit indices.
func Compare(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")

	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] == bs[i] {
			continue
		}

		an, aNum := strconv.Atoi(as[i])
		bn, bNum := strconv.Atoi(bs[i])

		if aNum == nil && bNum == nil {
			if an < bn {
				return -1
			}

			return 1
		}

		ar, br := branchRank(as[i]), branchRank(bs[i])
		if ar != br {
			if ar < br {
				return -1
			}

			return 1
		}

		return strings.Compare(as[i], bs[i])
	}

	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	default:
		return 0
	}
}

func branchRank(segment string) int {
	switch segment {
	case string(models.BranchThen):
		return 0
	case string(models.BranchElse):
		return 1
	default:
		return 2
	}
}
