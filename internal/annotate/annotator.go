// Package annotate types the plain-string leaves of a parsed question tree
// before simplification: predicates become properties, subjects become
// items and objects are read according to the datatypes of the predicate's
// properties.
package annotate

import (
	"context"
	"strings"

	"github.com/ppiankov/wikitree/internal/errors"
	"github.com/ppiankov/wikitree/internal/logger"
	"github.com/ppiankov/wikitree/internal/model"
	"go.uber.org/zap"
)

// Resolver resolves mentions to entities
type Resolver interface {
	Resolve(ctx context.Context, mention string, entityType model.EntityType, languageCode string) ([]model.EntityID, error)
}

// EntityProvider returns full entity records
type EntityProvider interface {
	GetEntity(ctx context.Context, id string) (*model.Entity, error)
	LoadEntities(ctx context.Context, ids []string) error
}

// Annotator resolves plain-string leaves for one language
type Annotator struct {
	resolver     Resolver
	entities     EntityProvider
	languageCode string
	meaningless  map[string]bool
	logger       *zap.SugaredLogger
}

// New creates an annotator. Predicates listed in meaningless are left as
// plain strings.
func New(resolver Resolver, entities EntityProvider, languageCode string, meaningless []string) *Annotator {
	set := make(map[string]bool, len(meaningless))
	for _, p := range meaningless {
		set[strings.ToLower(strings.TrimSpace(p))] = true
	}
	return &Annotator{
		resolver:     resolver,
		entities:     entities,
		languageCode: languageCode,
		meaningless:  set,
		logger:       logger.ComponentLogger("annotate"),
	}
}

// Annotate returns a copy of the tree with typed leaves
func (a *Annotator) Annotate(ctx context.Context, node model.Node) (model.Node, error) {
	switch n := node.(type) {
	case model.Triple:
		return a.annotateTriple(ctx, n)
	case model.Intersection:
		operands := make([]model.Node, 0, len(n.Operands))
		for _, operand := range n.Operands {
			annotated, err := a.Annotate(ctx, operand)
			if err != nil {
				return nil, err
			}
			operands = append(operands, annotated)
		}
		return model.Intersection{Operands: operands}, nil
	default:
		return node, nil
	}
}

func (a *Annotator) annotateTriple(ctx context.Context, t model.Triple) (model.Node, error) {
	var err error
	for _, child := range []*model.Node{&t.Subject, &t.Predicate, &t.Object} {
		switch (*child).(type) {
		case model.Triple, model.Intersection:
			if *child, err = a.Annotate(ctx, *child); err != nil {
				return nil, err
			}
		}
	}

	if texts, ok := plainStrings(t.Predicate); ok && !a.isMeaningless(texts) {
		if t.Predicate, err = a.resolveAll(ctx, texts, model.EntityTypeProperty); err != nil {
			return nil, err
		}
	}

	if texts, ok := plainStrings(t.Subject); ok {
		if t.Subject, err = a.resolveAll(ctx, texts, model.EntityTypeItem); err != nil {
			return nil, err
		}
	}

	if texts, ok := plainStrings(t.Object); ok {
		if t.Object, err = a.annotateObject(ctx, texts, t.Predicate); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (a *Annotator) isMeaningless(texts []string) bool {
	for _, text := range texts {
		if !a.meaningless[strings.ToLower(strings.TrimSpace(text))] {
			return false
		}
	}
	return true
}

// resolveAll resolves every text and returns the matches labelled with
// the text they came from
func (a *Annotator) resolveAll(ctx context.Context, texts []string, entityType model.EntityType) (model.ResourceList, error) {
	var items []model.Node
	for _, text := range texts {
		ids, err := a.resolver.Resolve(ctx, text, entityType, a.languageCode)
		if err != nil {
			return model.ResourceList{}, err
		}
		for _, id := range ids {
			items = append(items, model.NewLabelledResource(text, id))
		}
	}
	return model.NewResourceList(items...), nil
}

// annotateObject reads the object texts under each datatype of the
// predicate's properties. Without resolved properties the object is read
// as items.
func (a *Annotator) annotateObject(ctx context.Context, texts []string, predicate model.Node) (model.ResourceList, error) {
	datatypes, err := a.datatypes(ctx, predicate)
	if err != nil {
		return model.ResourceList{}, err
	}
	if len(datatypes) == 0 {
		return a.resolveAll(ctx, texts, model.EntityTypeItem)
	}

	var items []model.Node
	seen := make(map[model.Value]bool)
	add := func(label string, v model.Value) {
		if !seen[v] {
			seen[v] = true
			items = append(items, model.NewLabelledResource(label, v))
		}
	}

	for _, datatype := range datatypes {
		for _, text := range texts {
			switch datatype {
			case DatatypeItem, DatatypeProperty:
				entityType := model.EntityTypeItem
				if datatype == DatatypeProperty {
					entityType = model.EntityTypeProperty
				}
				ids, err := a.resolver.Resolve(ctx, text, entityType, a.languageCode)
				if err != nil {
					return model.ResourceList{}, err
				}
				for _, id := range ids {
					add(text, id)
				}
			case DatatypeString, DatatypeExternalID, DatatypeURL, DatatypeMedia, DatatypeMonolingual:
				add(text, model.StringValue{Value: text})
			case DatatypeQuantity:
				if q, err := ParseQuantity(text); err == nil {
					add(text, q)
				}
			case DatatypeTime:
				if tv, err := ParseTime(text); err == nil {
					add(text, tv)
				}
			case DatatypeCoordinate:
				if c, err := ParseCoordinate(text); err == nil {
					add(text, c)
				}
			default:
				a.logger.Debugw("Unsupported property datatype", "datatype", datatype)
			}
		}
	}

	return model.NewResourceList(items...), nil
}

// datatypes returns the distinct datatypes of the properties in predicate
func (a *Annotator) datatypes(ctx context.Context, predicate model.Node) ([]string, error) {
	resources, ok := model.AsResources(predicate)
	if !ok {
		return nil, nil
	}

	var ids []string
	for _, res := range resources {
		if id, ok := res.EntityID(); ok && id.IsProperty() {
			ids = append(ids, id.ID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if err := a.entities.LoadEntities(ctx, ids); err != nil {
		return nil, err
	}

	var out []string
	seen := make(map[string]bool)
	for _, id := range ids {
		entity, err := a.entities.GetEntity(ctx, id)
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		if entity.Datatype != "" && !seen[entity.Datatype] {
			seen[entity.Datatype] = true
			out = append(out, entity.Datatype)
		}
	}
	return out, nil
}

// plainStrings returns the texts of a Resource or ResourceList made only of
// string values
func plainStrings(n model.Node) ([]string, bool) {
	resources, ok := model.AsResources(n)
	if !ok || len(resources) == 0 {
		return nil, false
	}

	texts := make([]string, 0, len(resources))
	for _, res := range resources {
		s, isString := res.Value.(model.StringValue)
		if !isString {
			return nil, false
		}
		texts = append(texts, s.Value)
	}
	return texts, true
}
