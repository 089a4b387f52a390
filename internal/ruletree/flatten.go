package ruletree

// Node is one flattened rule node
type Node struct {
	Name      string
	Behaviors []Behavior
	Criteria  *Value
	// Children are the node's immediate children only; their own records
	// follow this one in the flattened sequence.
	Children []Element
	// Depth is the nesting level of the node: 0 for the root, +1 per children hop
	Depth int
}

// Result is the output of Flatten
type Result struct {
	// Nodes are the rule nodes in pre-order
	Nodes []Node
	// SeenChildren lists the name of every child encountered, in the same
	// pre-order. Used only for the coverage check.
	SeenChildren []string
}

// AttachedChildren sums the immediate children over all flattened nodes
func (r Result) AttachedChildren() int {
	total := 0
	for _, n := range r.Nodes {
		total += len(n.Children)
	}
	return total
}

func (r *Result) extend(other Result) {
	r.Nodes = append(r.Nodes, other.Nodes...)
	r.SeenChildren = append(r.SeenChildren, other.SeenChildren...)
}

// Flatten walks root depth-first and returns every rule node with its depth.
//
// A rule node's record comes first, then the subtree of each child in order
// (depth+1), then nodes found under its remaining keys (same depth). Values
// that are not rule nodes are searched at the depth of their enclosing node.
func Flatten(root Element, opts ...Option) (Result, error) {
	return newGuard(opts...).flatten(root, 0, 0)
}

func (g *guard) flatten(e Element, depth, level int) (Result, error) {
	var res Result
	if e == nil {
		return res, nil
	}
	if err := g.enter(e, level); err != nil {
		return res, err
	}
	defer g.leave(e)

	switch n := e.(type) {
	case *Container:
		res.Nodes = append(res.Nodes, Node{
			Name:      n.Name,
			Behaviors: n.Behaviors,
			Criteria:  n.Criteria,
			Children:  n.Children,
			Depth:     depth,
		})
		for _, child := range n.Children {
			res.SeenChildren = append(res.SeenChildren, ElementName(child))
			sub, err := g.flatten(child, depth+1, level+1)
			if err != nil {
				return Result{}, err
			}
			res.extend(sub)
		}
		for _, m := range n.Members {
			sub, err := g.flatten(m.Element, depth, level+1)
			if err != nil {
				return Result{}, err
			}
			res.extend(sub)
		}
	case *Opaque:
		for _, nested := range n.Nested {
			sub, err := g.flatten(nested, depth, level+1)
			if err != nil {
				return Result{}, err
			}
			res.extend(sub)
		}
	}
	return res, nil
}
