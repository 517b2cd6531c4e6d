// Package pipeline answers module requests: it annotates the question
// tree, simplifies it and builds the responses with their measures.
package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/wikitree/internal/annotate"
	"github.com/ppiankov/wikitree/internal/cache"
	"github.com/ppiankov/wikitree/internal/errors"
	"github.com/ppiankov/wikitree/internal/logger"
	"github.com/ppiankov/wikitree/internal/metrics"
	"github.com/ppiankov/wikitree/internal/model"
	"github.com/ppiankov/wikitree/internal/resolve"
	"github.com/ppiankov/wikitree/internal/simplify"
	"github.com/ppiankov/wikitree/internal/wikibase"
	"github.com/ppiankov/wikitree/internal/worker"
	"go.uber.org/zap"
)

// ModuleName identifies wikitree in response traces
const ModuleName = "wikitree"

// Pipeline orchestrates annotation and simplification of requests
type Pipeline struct {
	deps     simplify.Dependencies
	opts     simplify.Options
	resolver *resolve.Resolver
	logger   *zap.SugaredLogger
}

// New creates a pipeline over the given services
func New(deps simplify.Dependencies, opts simplify.Options) *Pipeline {
	p := &Pipeline{
		deps:   deps,
		opts:   opts,
		logger: logger.ComponentLogger("pipeline"),
	}
	if r, ok := deps.Resolver.(*resolve.Resolver); ok {
		p.resolver = r
	}
	return p
}

// NewPipeline wires the Wikibase client, caches and resolver described by
// the configuration
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	client, err := wikibase.NewClient(cfg.API, cfg.Resolver.QueryLimit, limiter)
	if err != nil {
		return nil, errors.Wrap(err, "create wikibase client")
	}

	backend := cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.MemoryTTL, cfg.Cache.DiskTTL)
	entities := wikibase.NewEntityProvider(client, cache.NewEntityCache(backend))
	resolver := resolve.NewResolver(
		client,
		entities,
		cache.NewResolutionCache(backend),
		resolve.OptionsFromConfig(cfg.Resolver),
	)

	opts := simplify.DefaultOptions()
	if cfg.Resolver.MeaninglessPredicates != nil {
		opts.MeaninglessPredicates = cfg.Resolver.MeaninglessPredicates
	}

	return New(simplify.Dependencies{
		Resolver: resolver,
		Entities: entities,
		Queries:  client,
	}, opts), nil
}

// Resolver returns the entity resolver when the pipeline owns one
func (p *Pipeline) Resolver() *resolve.Resolver {
	return p.resolver
}

// Handle answers a request. An unanswerable tree yields no responses and
// no error; failures of the knowledge-base services are returned.
func (p *Pipeline) Handle(ctx context.Context, req Request) ([]Response, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	ctx = logger.WithRequestID(ctx, req.ID)
	log := logger.FromContext(ctx, p.logger).With(logger.FieldLanguage, req.Language)
	start := time.Now()

	answer, err := p.Simplify(ctx, req.Language, req.Tree)
	if err != nil {
		if errors.IsSimplificationFailed(err) {
			log.Debugw("Tree is unanswerable", logger.FieldError, err)
			metrics.RecordRequest("empty")
			return []Response{}, nil
		}
		log.Warnw("Request failed", logger.FieldError, err)
		metrics.RecordRequest("failed")
		return nil, err
	}

	measures := buildMeasures(answer, req.Measures)
	trace, err := appendTrace(req.Trace, answer, measures)
	if err != nil {
		return nil, err
	}

	outcome := "empty"
	if measures["relevance"] == 1 {
		outcome = "answered"
	}
	metrics.RecordRequest(outcome)
	log.Debugw("Request handled",
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
		"outcome", outcome,
	)

	return []Response{{
		Language: req.Language,
		Tree:     answer,
		Measures: measures,
		Trace:    trace,
	}}, nil
}

// Simplify annotates and simplifies one tree for a language.
// Entities are memoised for the duration of the call only.
func (p *Pipeline) Simplify(ctx context.Context, language string, tree model.Node) (model.Node, error) {
	ctx = wikibase.WithEntityMemo(ctx)

	annotator := annotate.New(p.deps.Resolver, p.deps.Entities, language, p.opts.MeaninglessPredicates)
	annotated, err := annotator.Annotate(ctx, tree)
	if err != nil {
		return nil, err
	}

	registry := simplify.NewDefaultRegistry(p.deps, language, p.opts)
	return registry.Simplify(ctx, annotated)
}

// buildMeasures halves the accuracy and marks resolved answers as relevant
func buildMeasures(answer model.Node, in map[string]float64) map[string]float64 {
	measures := make(map[string]float64, len(in)+1)
	for k, v := range in {
		measures[k] = v
	}

	if accuracy, ok := measures["accuracy"]; ok {
		measures["accuracy"] = accuracy / 2
	}

	switch a := answer.(type) {
	case model.Resource:
		measures["relevance"] = 1
	case model.ResourceList:
		if !a.IsEmpty() {
			measures["relevance"] = 1
		}
	}
	return measures
}

type traceItem struct {
	Module   string             `json:"module"`
	Tree     json.RawMessage    `json:"tree"`
	Measures map[string]float64 `json:"measures"`
}

func appendTrace(trace []json.RawMessage, answer model.Node, measures map[string]float64) ([]json.RawMessage, error) {
	tree, err := model.MarshalNode(answer)
	if err != nil {
		return nil, errors.Wrap(err, "encode trace tree")
	}
	item, err := json.Marshal(traceItem{Module: ModuleName, Tree: tree, Measures: measures})
	if err != nil {
		return nil, errors.Wrap(err, "encode trace")
	}

	out := make([]json.RawMessage, 0, len(trace)+1)
	out = append(out, trace...)
	return append(out, item), nil
}
