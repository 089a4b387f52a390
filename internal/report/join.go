package report

import (
	"github.com/verustcode/rulemap/internal/mapping"
	"github.com/verustcode/rulemap/internal/ruletree"
)

// Comparison pairs a declared behavior with its mapped equivalent
type Comparison struct {
	// Behavior is the source behavior name
	Behavior string
	// Payload is the full behavior declaration as indented JSON
	Payload    string
	Equivalent string
	Link       string
}

// JoinStats counts how a node's behaviors fared against the mapping table
type JoinStats struct {
	Mapped   int
	Unmapped int
	Unnamed  int
}

// Add accumulates another node's counts
func (s *JoinStats) Add(other JoinStats) {
	s.Mapped += other.Mapped
	s.Unmapped += other.Unmapped
	s.Unnamed += other.Unnamed
}

// Total is the number of behaviors seen
func (s JoinStats) Total() int {
	return s.Mapped + s.Unmapped + s.Unnamed
}

// Join returns a Comparison for every behavior of the node whose name is in
// the table, in declaration order. Unnamed and unmapped behaviors produce
// nothing; they are only counted.
func Join(node ruletree.Node, table mapping.Table) ([]Comparison, JoinStats) {
	var (
		out   []Comparison
		stats JoinStats
	)
	for _, b := range node.Behaviors {
		if !b.Named() {
			stats.Unnamed++
			continue
		}
		entry, ok := table.Lookup(b.Name)
		if !ok {
			stats.Unmapped++
			continue
		}
		stats.Mapped++
		out = append(out, Comparison{
			Behavior:   b.Name,
			Payload:    FormatJSON(b.Raw),
			Equivalent: entry.Equivalent,
			Link:       entry.Link,
		})
	}
	return out, stats
}
