package simplify

import (
	"context"

	"github.com/ppiankov/wikitree/internal/errors"
	"github.com/ppiankov/wikitree/internal/model"
)

// sentenceEntityTypes are searched in order for a free-text sentence
var sentenceEntityTypes = []model.EntityType{model.EntityTypeItem, model.EntityTypeProperty}

// SentenceSimplifier resolves a whole sentence as the name of an item or property
type SentenceSimplifier struct {
	resolver     Resolver
	languageCode string
}

// NewSentenceSimplifier creates a sentence simplifier for one language
func NewSentenceSimplifier(resolver Resolver, languageCode string) *SentenceSimplifier {
	return &SentenceSimplifier{resolver: resolver, languageCode: languageCode}
}

func (s *SentenceSimplifier) CanSimplify(node model.Node) bool {
	_, ok := node.(model.Sentence)
	return ok
}

// Simplify returns the matching entities, labelled with the sentence text.
// Items come before properties and each id appears once.
func (s *SentenceSimplifier) Simplify(ctx context.Context, node model.Node) (model.Node, error) {
	sentence, ok := node.(model.Sentence)
	if !ok {
		return nil, errors.SimplificationFailedf("sentence simplifier cannot handle %s", node.NodeType())
	}

	items := []model.Node{}
	seen := make(map[model.EntityID]bool)
	for _, entityType := range sentenceEntityTypes {
		ids, err := s.resolver.Resolve(ctx, sentence.Text, entityType, s.languageCode)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			items = append(items, model.NewLabelledResource(sentence.Text, id))
		}
	}
	return model.ResourceList{Items: items}, nil
}
