package simplify

import (
	"context"

	"github.com/ppiankov/wikitree/internal/errors"
	"github.com/ppiankov/wikitree/internal/model"
)

// MissingObjectSimplifier answers (item, property, ?) from the item's
// statements
type MissingObjectSimplifier struct {
	entities EntityProvider
}

// NewMissingObjectSimplifier creates the simplifier
func NewMissingObjectSimplifier(entities EntityProvider) *MissingObjectSimplifier {
	return &MissingObjectSimplifier{entities: entities}
}

func (s *MissingObjectSimplifier) CanSimplify(node model.Node) bool {
	t, ok := node.(model.Triple)
	if !ok || !model.IsMissing(t.Object) {
		return false
	}
	if _, ok := itemIDs(t.Subject); !ok {
		return false
	}
	_, ok = propertyIDs(t.Predicate)
	return ok
}

// Simplify collects the values of the property on the subject items.
// A subject or predicate that resolved to nothing gives an empty list.
// A single subject and property with one value gives a bare Resource;
// several values give a ResourceList. Only unknown values give Missing;
// no statement or a "no value" statement fails.
func (s *MissingObjectSimplifier) Simplify(ctx context.Context, node model.Node) (model.Node, error) {
	if !s.CanSimplify(node) {
		return nil, errors.SimplificationFailedf("missing object simplifier cannot handle %s", node.NodeType())
	}
	t := node.(model.Triple)
	subjects, _ := itemIDs(t.Subject)
	properties, _ := propertyIDs(t.Predicate)
	if len(subjects) == 0 || len(properties) == 0 {
		return model.NewResourceList(), nil
	}

	raw := make([]string, 0, len(subjects))
	for _, id := range subjects {
		raw = append(raw, id.ID)
	}
	if err := s.entities.LoadEntities(ctx, raw); err != nil {
		return nil, err
	}

	var values []model.Node
	seen := make(map[model.Value]bool)
	someValue := false

	for _, subject := range subjects {
		entity, err := s.entities.GetEntity(ctx, subject.ID)
		if err != nil {
			if errors.IsNotFound(err) {
				return nil, errors.Mark(errors.Wrapf(err, "subject %s", subject.ID), errors.ErrSimplificationFailed)
			}
			return nil, err
		}

		for _, property := range properties {
			for _, st := range entity.StatementsFor(property.ID) {
				switch st.SnakType {
				case model.SnakValue:
					if st.Value != nil && !seen[st.Value] {
						seen[st.Value] = true
						values = append(values, model.NewResource(st.Value))
					}
				case model.SnakSomeValue:
					someValue = true
				}
			}
		}
	}

	switch {
	case len(values) == 1 && isBare(t):
		return values[0], nil
	case len(values) > 0:
		return model.ResourceList{Items: values}, nil
	case someValue:
		return model.Missing{}, nil
	default:
		return nil, errors.SimplificationFailedf("no value for %s on %s", nodeIDs(t.Predicate), nodeIDs(t.Subject))
	}
}

// isBare reports whether subject and predicate are single resources
func isBare(t model.Triple) bool {
	_, subjectOK := t.Subject.(model.Resource)
	_, predicateOK := t.Predicate.(model.Resource)
	return subjectOK && predicateOK
}

func nodeIDs(n model.Node) []string {
	resources, _ := model.AsResources(n)
	out := make([]string, 0, len(resources))
	for _, res := range resources {
		out = append(out, res.Value.String())
	}
	return out
}
