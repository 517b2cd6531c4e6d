package simplify

import (
	"context"

	"github.com/ppiankov/wikitree/internal/errors"
	"github.com/ppiankov/wikitree/internal/model"
)

// IntersectionWithFilterSimplifier answers an intersection holding at
// least one queryable (?, property, value) triple. Operands that resolve
// to resources are intersected; missing-subject triples whose values
// cannot be queried are checked against each remaining candidate.
type IntersectionWithFilterSimplifier struct {
	dispatcher Dispatcher
	entities   EntityProvider
}

// NewIntersectionWithFilterSimplifier creates the simplifier. dispatcher
// simplifies the operands; it is usually the registry holding this
// simplifier.
func NewIntersectionWithFilterSimplifier(dispatcher Dispatcher, entities EntityProvider) *IntersectionWithFilterSimplifier {
	return &IntersectionWithFilterSimplifier{dispatcher: dispatcher, entities: entities}
}

func (s *IntersectionWithFilterSimplifier) CanSimplify(node model.Node) bool {
	in, ok := node.(model.Intersection)
	if !ok {
		return false
	}
	for _, operand := range in.Operands {
		if t, ok := isMissingSubjectTriple(operand); ok && isQueryable(t) {
			return true
		}
	}
	return false
}

// filter is a (property, values) condition a candidate must meet
type filter struct {
	properties []model.EntityID
	values     []model.Resource
}

func (f filter) matches(entity *model.Entity) bool {
	for _, p := range f.properties {
		for _, v := range f.values {
			if entity.HasValue(p.ID, v.Value) {
				return true
			}
		}
	}
	return false
}

func (s *IntersectionWithFilterSimplifier) Simplify(ctx context.Context, node model.Node) (model.Node, error) {
	if !s.CanSimplify(node) {
		return nil, errors.SimplificationFailedf("intersection simplifier cannot handle %s", node.NodeType())
	}
	in := node.(model.Intersection)

	var sets [][]model.Resource
	var filters []filter

	for _, operand := range in.Operands {
		if t, ok := isMissingSubjectTriple(operand); ok && !isQueryable(t) {
			properties, _ := propertyIDs(t.Predicate)
			values, _ := model.AsResources(t.Object)
			filters = append(filters, filter{properties: properties, values: values})
			continue
		}

		simplified, err := s.dispatcher.Simplify(ctx, operand)
		if err != nil {
			return nil, err
		}
		resources, ok := model.AsResources(simplified)
		if !ok {
			return nil, errors.SimplificationFailedf("intersection operand simplified to %s", simplified.NodeType())
		}
		sets = append(sets, resources)
	}

	candidates := intersect(sets)
	if len(filters) == 0 || len(candidates) == 0 {
		return resourceNodes(candidates), nil
	}

	kept, err := s.applyFilters(ctx, candidates, filters)
	if err != nil {
		return nil, err
	}
	return resourceNodes(kept), nil
}

// applyFilters keeps the entity candidates meeting every filter
func (s *IntersectionWithFilterSimplifier) applyFilters(ctx context.Context, candidates []model.Resource, filters []filter) ([]model.Resource, error) {
	var ids []string
	for _, c := range candidates {
		if id, ok := c.EntityID(); ok {
			ids = append(ids, id.ID)
		}
	}
	if err := s.entities.LoadEntities(ctx, ids); err != nil {
		return nil, err
	}

	var kept []model.Resource
	for _, c := range candidates {
		id, ok := c.EntityID()
		if !ok {
			continue
		}
		entity, err := s.entities.GetEntity(ctx, id.ID)
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		if matchesAll(entity, filters) {
			kept = append(kept, c)
		}
	}
	return kept, nil
}

func matchesAll(entity *model.Entity, filters []filter) bool {
	for _, f := range filters {
		if !f.matches(entity) {
			return false
		}
	}
	return true
}

// intersect keeps the resources present in every set, in the order of the
// first set
func intersect(sets [][]model.Resource) []model.Resource {
	if len(sets) == 0 {
		return nil
	}

	out := sets[0]
	for _, set := range sets[1:] {
		present := make(map[model.Value]bool, len(set))
		for _, r := range set {
			present[r.Value] = true
		}

		var next []model.Resource
		for _, r := range out {
			if present[r.Value] {
				next = append(next, r)
			}
		}
		out = next
	}
	return out
}

func resourceNodes(resources []model.Resource) model.ResourceList {
	items := make([]model.Node, 0, len(resources))
	for _, r := range resources {
		items = append(items, r)
	}
	return model.ResourceList{Items: items}
}
