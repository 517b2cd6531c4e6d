// Package simplify rewrites annotated question trees into answers. Each
// NodeSimplifier handles one tree shape; the Registry walks the tree and
// hands every node to the first simplifier that accepts it.
package simplify

import (
	"context"

	"github.com/ppiankov/wikitree/internal/logger"
	"github.com/ppiankov/wikitree/internal/metrics"
	"github.com/ppiankov/wikitree/internal/model"
	"github.com/ppiankov/wikitree/internal/query"
	"go.uber.org/zap"
)

// NodeSimplifier rewrites nodes of one shape. Simplify fails with
// ErrSimplificationFailed when called on a node CanSimplify rejects.
type NodeSimplifier interface {
	CanSimplify(node model.Node) bool
	Simplify(ctx context.Context, node model.Node) (model.Node, error)
}

// Resolver resolves mentions to entities
type Resolver interface {
	Resolve(ctx context.Context, mention string, entityType model.EntityType, languageCode string) ([]model.EntityID, error)
}

// EntityProvider returns full entity records
type EntityProvider interface {
	GetEntity(ctx context.Context, id string) (*model.Entity, error)
	LoadEntities(ctx context.Context, ids []string) error
}

// QueryService runs structured queries
type QueryService interface {
	Query(ctx context.Context, q query.Query) ([]model.EntityID, error)
}

// Dispatcher simplifies an arbitrary node
type Dispatcher interface {
	Simplify(ctx context.Context, node model.Node) (model.Node, error)
}

type registered struct {
	name       string
	simplifier NodeSimplifier
}

// Registry tries its simplifiers in registration order
type Registry struct {
	simplifiers []registered
	logger      *zap.SugaredLogger
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{logger: logger.ComponentLogger("simplify")}
}

// Register appends a simplifier; earlier registrations win
func (r *Registry) Register(name string, s NodeSimplifier) {
	r.simplifiers = append(r.simplifiers, registered{name: name, simplifier: s})
}

// CanSimplify reports whether any registered simplifier accepts the node
func (r *Registry) CanSimplify(node model.Node) bool {
	return r.find(node) != nil
}

// Simplify rewrites node. Composite children of a triple are simplified
// first; then the first applicable simplifier rewrites the node. A node no
// simplifier accepts is returned unchanged.
func (r *Registry) Simplify(ctx context.Context, node model.Node) (model.Node, error) {
	if triple, ok := node.(model.Triple); ok {
		simplified, err := r.simplifyChildren(ctx, triple)
		if err != nil {
			return nil, err
		}
		node = simplified
	}

	entry := r.find(node)
	if entry == nil {
		return node, nil
	}

	logger.FromContext(ctx, r.logger).Debugw("Simplifying node",
		logger.FieldSimplifier, entry.name,
		logger.FieldNodeType, node.NodeType(),
	)

	out, err := entry.simplifier.Simplify(ctx, node)
	metrics.RecordSimplification(entry.name, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Registry) find(node model.Node) *registered {
	for i := range r.simplifiers {
		if r.simplifiers[i].simplifier.CanSimplify(node) {
			return &r.simplifiers[i]
		}
	}
	return nil
}

func (r *Registry) simplifyChildren(ctx context.Context, t model.Triple) (model.Triple, error) {
	var err error
	if t.Subject, err = r.simplifyComposite(ctx, t.Subject); err != nil {
		return t, err
	}
	if t.Predicate, err = r.simplifyComposite(ctx, t.Predicate); err != nil {
		return t, err
	}
	if t.Object, err = r.simplifyComposite(ctx, t.Object); err != nil {
		return t, err
	}
	return t, nil
}

func (r *Registry) simplifyComposite(ctx context.Context, n model.Node) (model.Node, error) {
	switch n.(type) {
	case model.Sentence, model.Triple, model.Intersection:
		return r.Simplify(ctx, n)
	default:
		return n, nil
	}
}

// Dependencies are the external services the default simplifiers use
type Dependencies struct {
	Resolver Resolver
	Entities EntityProvider
	Queries  QueryService
}

// Options tune the default simplifiers
type Options struct {
	MeaninglessPredicates []string
}

// DefaultOptions returns the default simplifier options
func DefaultOptions() Options {
	return Options{MeaninglessPredicates: []string{"identity", "name", "definition"}}
}

// NewDefaultRegistry wires the standard simplifiers for one language in
// priority order. The intersection simplifier gets the registry itself to
// simplify its operands.
func NewDefaultRegistry(deps Dependencies, languageCode string, opts Options) *Registry {
	r := NewRegistry()
	r.Register("sentence", NewSentenceSimplifier(deps.Resolver, languageCode))
	r.Register("meaningless-predicate", NewMeaninglessPredicateSimplifier(deps.Resolver, languageCode, opts.MeaninglessPredicates))
	r.Register("missing-object", NewMissingObjectSimplifier(deps.Entities))
	r.Register("missing-subject", NewMissingSubjectSimplifier(deps.Queries))
	r.Register("intersection-with-filter", NewIntersectionWithFilterSimplifier(r, deps.Entities))
	return r
}
