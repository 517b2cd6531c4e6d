package model

// NodeType names a variant of the tree node union
type NodeType string

const (
	NodeTypeMissing      NodeType = "missing"
	NodeTypeResource     NodeType = "resource"
	NodeTypeResourceList NodeType = "list"
	NodeTypeSentence     NodeType = "sentence"
	NodeTypeTriple       NodeType = "triple"
	NodeTypeIntersection NodeType = "intersection"
)

// Node is a closed tagged union. The unexported method keeps the variant set
// fixed to the types of this file, so type switches over it are exhaustive.
// Nodes are never mutated after construction.
type Node interface {
	NodeType() NodeType
	node()
}

// Missing is the placeholder for an unknown to be resolved
type Missing struct{}

func (Missing) NodeType() NodeType { return NodeTypeMissing }
func (Missing) node()              {}

// Resource is a resolved leaf. Label is the human-readable alternative and
// is always populated.
type Resource struct {
	Label string
	Value Value
}

// NewResource wraps v, using its string form as label
func NewResource(v Value) Resource {
	return Resource{Label: v.String(), Value: v}
}

// NewLabelledResource wraps v with an explicit label
func NewLabelledResource(label string, v Value) Resource {
	if label == "" {
		label = v.String()
	}
	return Resource{Label: label, Value: v}
}

func (Resource) NodeType() NodeType { return NodeTypeResource }
func (Resource) node()              {}

// EntityID returns the entity reference held by the resource, if any
func (r Resource) EntityID() (EntityID, bool) {
	id, ok := r.Value.(EntityID)
	return id, ok
}

// ResourceList is an ordered collection of Resource and ResourceList nodes.
// An empty list means "no answer".
type ResourceList struct {
	Items []Node
}

// NewResourceList copies items into a new list
func NewResourceList(items ...Node) ResourceList {
	list := make([]Node, len(items))
	copy(list, items)
	return ResourceList{Items: list}
}

func (ResourceList) NodeType() NodeType { return NodeTypeResourceList }
func (ResourceList) node()              {}

// Len returns the number of direct children
func (l ResourceList) Len() int { return len(l.Items) }

// IsEmpty reports whether the list holds no answer at all
func (l ResourceList) IsEmpty() bool { return len(l.Resources()) == 0 }

// Resources flattens nested lists into resources, preserving order and
// dropping duplicates.
func (l ResourceList) Resources() []Resource {
	var out []Resource
	seen := make(map[Value]bool)

	var walk func(items []Node)
	walk = func(items []Node) {
		for _, item := range items {
			switch n := item.(type) {
			case Resource:
				if n.Value == nil || seen[n.Value] {
					continue
				}
				seen[n.Value] = true
				out = append(out, n)
			case ResourceList:
				walk(n.Items)
			}
		}
	}

	walk(l.Items)
	return out
}

// Sentence is a raw free-text span awaiting resolution
type Sentence struct {
	Text string
}

func (Sentence) NodeType() NodeType { return NodeTypeSentence }
func (Sentence) node()              {}

// Triple is a subject-predicate-object pattern with at most one Missing position
type Triple struct {
	Subject   Node
	Predicate Node
	Object    Node
}

func (Triple) NodeType() NodeType { return NodeTypeTriple }
func (Triple) node()              {}

// MissingCount returns how many positions of the triple are Missing
func (t Triple) MissingCount() int {
	count := 0
	for _, n := range []Node{t.Subject, t.Predicate, t.Object} {
		if IsMissing(n) {
			count++
		}
	}
	return count
}

// Intersection holds sibling nodes whose resolved value sets are intersected
type Intersection struct {
	Operands []Node
}

func (Intersection) NodeType() NodeType { return NodeTypeIntersection }
func (Intersection) node()              {}

// IsMissing reports whether n is the Missing placeholder
func IsMissing(n Node) bool {
	_, ok := n.(Missing)
	return ok
}

// AsResources returns the resources of a Resource or ResourceList node.
// ok is false for every other variant.
func AsResources(n Node) ([]Resource, bool) {
	switch v := n.(type) {
	case Resource:
		return []Resource{v}, true
	case ResourceList:
		return v.Resources(), true
	default:
		return nil, false
	}
}
