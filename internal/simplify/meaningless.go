package simplify

import (
	"context"
	"strings"

	"github.com/ppiankov/wikitree/internal/errors"
	"github.com/ppiankov/wikitree/internal/model"
)

// MeaninglessPredicateSimplifier rewrites (subject, "identity", ?) and
// similar filler predicates to the subject itself
type MeaninglessPredicateSimplifier struct {
	resolver     Resolver
	languageCode string
	predicates   map[string]bool
}

// NewMeaninglessPredicateSimplifier creates the simplifier for the given
// predicate words
func NewMeaninglessPredicateSimplifier(resolver Resolver, languageCode string, predicates []string) *MeaninglessPredicateSimplifier {
	set := make(map[string]bool, len(predicates))
	for _, p := range predicates {
		set[strings.ToLower(strings.TrimSpace(p))] = true
	}
	return &MeaninglessPredicateSimplifier{
		resolver:     resolver,
		languageCode: languageCode,
		predicates:   set,
	}
}

func (s *MeaninglessPredicateSimplifier) CanSimplify(node model.Node) bool {
	t, ok := node.(model.Triple)
	if !ok || model.IsMissing(t.Subject) || model.IsMissing(t.Predicate) || !model.IsMissing(t.Object) {
		return false
	}
	return s.isMeaningless(t.Predicate)
}

// isMeaningless reports whether every predicate resource is a filler word
func (s *MeaninglessPredicateSimplifier) isMeaningless(n model.Node) bool {
	resources, ok := model.AsResources(n)
	if !ok || len(resources) == 0 {
		return false
	}
	for _, res := range resources {
		str, isString := res.Value.(model.StringValue)
		if !isString || !s.predicates[strings.ToLower(strings.TrimSpace(str.Value))] {
			return false
		}
	}
	return true
}

// Simplify returns the subject. A subject still made of plain strings is
// resolved to items.
func (s *MeaninglessPredicateSimplifier) Simplify(ctx context.Context, node model.Node) (model.Node, error) {
	if !s.CanSimplify(node) {
		return nil, errors.SimplificationFailedf("meaningless predicate simplifier cannot handle %s", node.NodeType())
	}
	subject := node.(model.Triple).Subject

	resources, ok := model.AsResources(subject)
	if !ok || !allStrings(resources) {
		return subject, nil
	}

	var items []model.Node
	for _, res := range resources {
		ids, err := s.resolver.Resolve(ctx, res.Value.String(), model.EntityTypeItem, s.languageCode)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			items = append(items, model.NewLabelledResource(res.Label, id))
		}
	}
	return model.NewResourceList(items...), nil
}

func allStrings(resources []model.Resource) bool {
	if len(resources) == 0 {
		return false
	}
	for _, res := range resources {
		if _, ok := res.Value.(model.StringValue); !ok {
			return false
		}
	}
	return true
}
