// Package resolve turns free-text mentions into knowledge-base entity
// references.
package resolve

import (
	"context"

	"github.com/ppiankov/wikitree/internal/errors"
	"github.com/ppiankov/wikitree/internal/logger"
	"github.com/ppiankov/wikitree/internal/metrics"
	"github.com/ppiankov/wikitree/internal/model"
	"go.uber.org/zap"
)

// Searcher queries the entity search index
type Searcher interface {
	SearchEntities(ctx context.Context, req model.SearchRequest) ([]model.SearchResult, error)
}

// EntityProvider returns full entity records
type EntityProvider interface {
	GetEntity(ctx context.Context, id string) (*model.Entity, error)
	// LoadEntities prefetches entities so later GetEntity calls are cheap
	LoadEntities(ctx context.Context, ids []string) error
}

// Cache stores resolutions keyed by (mention, entity type, language)
type Cache interface {
	Contains(mention, entityType, languageCode string) bool
	Fetch(mention, entityType, languageCode string) ([]model.EntityID, error)
	Save(mention, entityType, languageCode string, ids []model.EntityID) error
}

// Options tune the resolver
type Options struct {
	SearchLimit           int
	InstanceOfProperty    string
	DisambiguationClasses []string
}

// DefaultOptions returns the options used against Wikidata
func DefaultOptions() Options {
	return Options{
		SearchLimit:           50,
		InstanceOfProperty:    "P31",
		DisambiguationClasses: model.DefaultDisambiguationClasses,
	}
}

// OptionsFromConfig reads the resolver section of the configuration
func OptionsFromConfig(cfg model.ResolverConfig) Options {
	opts := DefaultOptions()
	if cfg.SearchLimit > 0 {
		opts.SearchLimit = cfg.SearchLimit
	}
	if cfg.InstanceOfProperty != "" {
		opts.InstanceOfProperty = cfg.InstanceOfProperty
	}
	if cfg.DisambiguationClasses != nil {
		opts.DisambiguationClasses = cfg.DisambiguationClasses
	}
	return opts
}

// Resolver resolves mentions with exact-then-fuzzy label matching and drops
// disambiguation-like candidates
type Resolver struct {
	searcher  Searcher
	entities  EntityProvider
	cache     Cache
	opts      Options
	blacklist map[model.EntityID]bool
	logger    *zap.SugaredLogger
}

// NewResolver creates a resolver. cache may be nil, in which case nothing
// is cached.
func NewResolver(searcher Searcher, entities EntityProvider, cache Cache, opts Options) *Resolver {
	blacklist := make(map[model.EntityID]bool, len(opts.DisambiguationClasses))
	for _, id := range opts.DisambiguationClasses {
		blacklist[model.NewEntityID(id)] = true
	}

	return &Resolver{
		searcher:  searcher,
		entities:  entities,
		cache:     cache,
		opts:      opts,
		blacklist: blacklist,
		logger:    logger.ComponentLogger("resolver"),
	}
}

// Resolve returns the entities of the given type the mention refers to.
// An empty mention resolves to nothing without any external call. A search
// failure is returned as ErrResolutionFailed and nothing is cached.
func (r *Resolver) Resolve(ctx context.Context, mention string, entityType model.EntityType, languageCode string) ([]model.EntityID, error) {
	if mention == "" {
		return []model.EntityID{}, nil
	}

	log := logger.FromContext(ctx, r.logger).With(
		logger.FieldMention, mention,
		logger.FieldEntityType, entityType,
		logger.FieldLanguage, languageCode,
	)

	if r.cache != nil && r.cache.Contains(mention, string(entityType), languageCode) {
		ids, err := r.cache.Fetch(mention, string(entityType), languageCode)
		if err == nil {
			metrics.RecordResolution(string(entityType), "cache_hit")
			log.Debugw("Resolution cache hit", logger.FieldCount, len(ids))
			return ids, nil
		}
		log.Warnw("Unreadable cached resolution, resolving again", logger.FieldError, err)
	}

	results, err := r.searcher.SearchEntities(ctx, model.SearchRequest{
		Search:     mention,
		Language:   languageCode,
		EntityType: entityType,
		Limit:      r.opts.SearchLimit,
	})
	if err != nil {
		metrics.RecordResolution(string(entityType), "failed")
		return nil, errors.ResolutionFailed(err, "search entities")
	}

	normalized := Normalize(mention, languageCode)
	ids := r.exactMatches(normalized, results, languageCode)
	if len(ids) == 0 {
		ids = r.fuzzyMatches(normalized, results, languageCode)
		log.Debugw("No exact match, used fuzzy matching", logger.FieldCount, len(ids))
	}

	if entityType == model.EntityTypeItem {
		ids = r.dropDisambiguations(ctx, log, ids)
	}

	if r.cache != nil {
		if err := r.cache.Save(mention, string(entityType), languageCode, ids); err != nil {
			log.Warnw("Failed to cache resolution", logger.FieldError, err)
		}
	}

	metrics.RecordResolution(string(entityType), "resolved")
	log.Debugw("Resolved mention", logger.FieldCount, len(ids))
	return ids, nil
}

func (r *Resolver) exactMatches(normalized string, results []model.SearchResult, languageCode string) []model.EntityID {
	return collect(results, func(term string) bool {
		return Normalize(term, languageCode) == normalized
	})
}

func (r *Resolver) fuzzyMatches(normalized string, results []model.SearchResult, languageCode string) []model.EntityID {
	return collect(results, func(term string) bool {
		return isFuzzyMatch(normalized, Normalize(term, languageCode))
	})
}

// collect keeps the results whose label or one of whose aliases matches,
// in search order and without duplicates
func collect(results []model.SearchResult, match func(term string) bool) []model.EntityID {
	ids := []model.EntityID{}
	seen := make(map[string]bool)

	for _, result := range results {
		if seen[result.ID] {
			continue
		}
		if matchesAny(result, match) {
			seen[result.ID] = true
			ids = append(ids, model.NewEntityID(result.ID))
		}
	}
	return ids
}

func matchesAny(result model.SearchResult, match func(term string) bool) bool {
	if result.Label != "" && match(result.Label) {
		return true
	}
	for _, alias := range result.Aliases {
		if match(alias) {
			return true
		}
	}
	return false
}

// dropDisambiguations removes items that are instances of a blacklisted
// class. An entity that cannot be fetched is kept.
func (r *Resolver) dropDisambiguations(ctx context.Context, log *zap.SugaredLogger, ids []model.EntityID) []model.EntityID {
	if len(ids) == 0 || len(r.blacklist) == 0 || r.entities == nil {
		return ids
	}

	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		if id.IsItem() {
			raw = append(raw, id.ID)
		}
	}
	if err := r.entities.LoadEntities(ctx, raw); err != nil {
		log.Debugw("Prefetching candidates failed", logger.FieldError, err)
	}

	kept := make([]model.EntityID, 0, len(ids))
	for _, id := range ids {
		if id.IsItem() && r.isDisambiguation(ctx, log, id) {
			metrics.RecordDisambiguationDrop()
			continue
		}
		kept = append(kept, id)
	}
	return kept
}

func (r *Resolver) isDisambiguation(ctx context.Context, log *zap.SugaredLogger, id model.EntityID) bool {
	entity, err := r.entities.GetEntity(ctx, id.ID)
	if err != nil {
		log.Debugw("Keeping candidate that could not be fetched",
			logger.FieldEntityID, id.ID,
			logger.FieldError, err,
		)
		return false
	}

	for _, st := range entity.StatementsFor(r.opts.InstanceOfProperty) {
		if st.SnakType != model.SnakValue {
			continue
		}
		if class, ok := st.Value.(model.EntityID); ok && r.blacklist[class] {
			log.Debugw("Dropping disambiguation-like candidate",
				logger.FieldEntityID, id.ID,
				"class", class.ID,
			)
			return true
		}
	}
	return false
}
