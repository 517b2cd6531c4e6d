package simplify

import (
	"context"

	"github.com/ppiankov/wikitree/internal/errors"
	"github.com/ppiankov/wikitree/internal/model"
	"github.com/ppiankov/wikitree/internal/query"
)

// MissingSubjectSimplifier answers (?, property, value) with a structured
// query per (property, value) pair
type MissingSubjectSimplifier struct {
	queries QueryService
}

// NewMissingSubjectSimplifier creates the simplifier
func NewMissingSubjectSimplifier(queries QueryService) *MissingSubjectSimplifier {
	return &MissingSubjectSimplifier{queries: queries}
}

func (s *MissingSubjectSimplifier) CanSimplify(node model.Node) bool {
	_, ok := isMissingSubjectTriple(node)
	return ok
}

// Simplify returns one inner ResourceList per pair that matched anything.
// No match at all gives an empty ResourceList.
func (s *MissingSubjectSimplifier) Simplify(ctx context.Context, node model.Node) (model.Node, error) {
	t, ok := isMissingSubjectTriple(node)
	if !ok {
		return nil, errors.SimplificationFailedf("missing subject simplifier cannot handle %s", node.NodeType())
	}

	properties, _ := propertyIDs(t.Predicate)
	values, _ := model.AsResources(t.Object)

	groups := []model.Node{}
	for _, property := range properties {
		for _, value := range values {
			q, err := query.Build(property, value.Value)
			if err != nil {
				return nil, errors.Mark(errors.Wrapf(err, "query for %s", property.ID), errors.ErrSimplificationFailed)
			}

			ids, err := s.queries.Query(ctx, q)
			if err != nil {
				return nil, errors.ResolutionFailed(err, "query subjects")
			}
			if len(ids) > 0 {
				groups = append(groups, resourceList(ids))
			}
		}
	}

	return model.ResourceList{Items: groups}, nil
}
