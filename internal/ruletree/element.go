package ruletree

import (
	"github.com/verustcode/rulemap/pkg/errors"
)

// Keys with meaning inside a rule node
const (
	KeyName      = "name"
	KeyBehaviors = "behaviors"
	KeyCriteria  = "criteria"
	KeyChildren  = "children"
)

// Placeholder is the name given to nodes that have no name key
const Placeholder = "N/A"

// DefaultMaxDepth bounds recursion over nested values
const DefaultMaxDepth = 1000

// Element is one classified piece of the export: either a *Container or an *Opaque.
type Element interface {
	element()
}

// Container is an object that carries a children key, i.e. a rule node.
type Container struct {
	Name      string
	Behaviors []Behavior
	// Criteria is the raw criteria value; an empty array when absent
	Criteria *Value
	// Children are the immediate child elements when children is an array
	Children []Element
	// Members holds every other key of the object in document order,
	// so rule nodes nested anywhere below this one are still discovered.
	Members []Member
	Raw     *Value
}

// Opaque is any value that is not a rule node. Nested holds the elements
// found directly inside it (object values or array items, in order).
type Opaque struct {
	Value  *Value
	Nested []Element
}

// Member is a keyed element inside a Container
type Member struct {
	Key     string
	Element Element
}

func (*Container) element() {}
func (*Opaque) element()    {}

// Behavior is one declared behavior. Name is set only when the payload is an
// object with a non-empty string name; everything else in Raw is opaque.
type Behavior struct {
	Name string
	Raw  *Value
}

// Named reports whether the behavior can take part in a mapping lookup
func (b Behavior) Named() bool {
	return b.Name != ""
}

// Option configures Parse and Flatten
type Option func(*guard)

// WithMaxDepth bounds the nesting depth accepted before giving up with E6002.
// Values <= 0 keep the default.
func WithMaxDepth(n int) Option {
	return func(g *guard) {
		if n > 0 {
			g.maxDepth = n
		}
	}
}

// guard protects recursive walks against cyclic or runaway structures.
// onPath holds the ancestors of the current position only, so shared
// (but acyclic) subtrees are accepted.
type guard struct {
	maxDepth int
	onPath   map[any]struct{}
}

func newGuard(opts ...Option) *guard {
	g := &guard{
		maxDepth: DefaultMaxDepth,
		onPath:   make(map[any]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *guard) enter(key any, level int) error {
	if level > g.maxDepth {
		return errors.New(errors.ErrCodeTreeDepth, "rule tree nesting exceeds maximum depth").
			WithDetails(map[string]int{"max_depth": g.maxDepth})
	}
	if _, seen := g.onPath[key]; seen {
		return errors.New(errors.ErrCodeTreeCycle, "rule tree contains a cycle")
	}
	g.onPath[key] = struct{}{}
	return nil
}

func (g *guard) leave(key any) {
	delete(g.onPath, key)
}

// Parse classifies a decoded value into Elements. This is the only place the
// shape of an object is inspected.
func Parse(v *Value, opts ...Option) (Element, error) {
	return newGuard(opts...).parse(v, 0)
}

func (g *guard) parse(v *Value, level int) (Element, error) {
	if v == nil {
		return &Opaque{Value: &Value{Kind: KindNull}}, nil
	}
	if err := g.enter(v, level); err != nil {
		return nil, err
	}
	defer g.leave(v)

	switch v.Kind {
	case KindObject:
		if children, ok := v.Get(KeyChildren); ok {
			return g.parseContainer(v, children, level)
		}
		o := &Opaque{Value: v, Nested: make([]Element, 0, len(v.Fields))}
		for _, f := range v.Fields {
			e, err := g.parse(f.Value, level+1)
			if err != nil {
				return nil, err
			}
			o.Nested = append(o.Nested, e)
		}
		return o, nil
	case KindArray:
		o := &Opaque{Value: v, Nested: make([]Element, 0, len(v.Items))}
		for _, item := range v.Items {
			e, err := g.parse(item, level+1)
			if err != nil {
				return nil, err
			}
			o.Nested = append(o.Nested, e)
		}
		return o, nil
	default:
		return &Opaque{Value: v}, nil
	}
}

func (g *guard) parseContainer(v, children *Value, level int) (*Container, error) {
	c := &Container{
		Name:      nameOf(v),
		Behaviors: behaviorsOf(v),
		Criteria:  &Value{Kind: KindArray},
		Raw:       v,
	}
	if criteria, ok := v.Get(KeyCriteria); ok {
		c.Criteria = criteria
	}

	if children.Kind == KindArray {
		c.Children = make([]Element, 0, len(children.Items))
		for _, item := range children.Items {
			e, err := g.parse(item, level+1)
			if err != nil {
				return nil, err
			}
			c.Children = append(c.Children, e)
		}
	}

	for _, f := range v.Fields {
		if f.Key == KeyChildren {
			// A non-array children value attaches nothing but is still searched.
			if children.Kind == KindArray {
				continue
			}
		}
		e, err := g.parse(f.Value, level+1)
		if err != nil {
			return nil, err
		}
		c.Members = append(c.Members, Member{Key: f.Key, Element: e})
	}
	return c, nil
}

// nameOf renders the name of an object: the string itself, the placeholder
// when the key is missing, or compact JSON for any other type.
func nameOf(v *Value) string {
	name, ok := v.Get(KeyName)
	if !ok {
		return Placeholder
	}
	if name.Kind == KindString {
		return name.Str
	}
	return name.Compact()
}

func behaviorsOf(v *Value) []Behavior {
	list, ok := v.Get(KeyBehaviors)
	if !ok || list.Kind != KindArray {
		return nil
	}
	behaviors := make([]Behavior, 0, len(list.Items))
	for _, item := range list.Items {
		b := Behavior{Raw: item}
		if name, ok := item.Get(KeyName); ok && name.Kind == KindString {
			b.Name = name.Str
		}
		behaviors = append(behaviors, b)
	}
	return behaviors
}

// ElementName is the name recorded for a child element: the container's
// name, the name of a plain object, or the placeholder for anything else.
func ElementName(e Element) string {
	switch n := e.(type) {
	case *Container:
		return n.Name
	case *Opaque:
		if n.Value != nil && n.Value.Kind == KindObject {
			return nameOf(n.Value)
		}
	}
	return Placeholder
}
