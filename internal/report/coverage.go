package report

import (
	"github.com/verustcode/rulemap/internal/ruletree"
)

// Coverage compares the child names seen during traversal with the children
// attached to flattened nodes.
//
// The comparison is by count only: Missing is the tail of the seen list past
// the attached count, not a set difference.
type Coverage struct {
	Seen     int
	Attached int
	Missing  []string
}

// ComputeCoverage builds the coverage diagnostic for a flattened tree
func ComputeCoverage(res ruletree.Result) Coverage {
	c := Coverage{
		Seen:     len(res.SeenChildren),
		Attached: res.AttachedChildren(),
	}
	if c.Seen > c.Attached {
		c.Missing = append([]string(nil), res.SeenChildren[c.Attached:]...)
	}
	return c
}

// Warning reports whether the banner should be shown
func (c Coverage) Warning() bool {
	return c.Seen > c.Attached
}

// Excess is the number of seen children beyond the attached count
func (c Coverage) Excess() int {
	if !c.Warning() {
		return 0
	}
	return c.Seen - c.Attached
}
