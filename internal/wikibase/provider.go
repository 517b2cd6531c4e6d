package wikibase

import (
	"context"
	"sync"

	"github.com/ppiankov/wikitree/internal/cache"
	"github.com/ppiankov/wikitree/internal/errors"
	"github.com/ppiankov/wikitree/internal/logger"
	"github.com/ppiankov/wikitree/internal/model"
	"go.uber.org/zap"
)

// EntityFetcher loads entity records in bulk
type EntityFetcher interface {
	GetEntities(ctx context.Context, ids []string) (map[string]*model.Entity, error)
}

// entityMemo holds the entities seen while answering one request. Unknown
// identifiers are stored as nil so they are asked for once per request.
type entityMemo struct {
	mu       sync.RWMutex
	entities map[string]*model.Entity
}

func newEntityMemo() *entityMemo {
	return &entityMemo{entities: make(map[string]*model.Entity)}
}

func (m *entityMemo) lookup(id string) (*model.Entity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entity, ok := m.entities[id]
	return entity, ok
}

func (m *entityMemo) remember(id string, entity *model.Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[id] = entity
}

type memoKey struct{}

// WithEntityMemo returns a context carrying a fresh entity memo. Entities
// loaded through an EntityProvider with this context stay available, and
// misses stay remembered, until the context is dropped.
func WithEntityMemo(ctx context.Context) context.Context {
	return context.WithValue(ctx, memoKey{}, newEntityMemo())
}

func memoFrom(ctx context.Context) (*entityMemo, bool) {
	memo, ok := ctx.Value(memoKey{}).(*entityMemo)
	return memo, ok
}

// EntityProvider serves entities from the request memo, then the entity
// cache, then the API. It keeps no state of its own: without a memo in the
// context every call goes to the cache.
type EntityProvider struct {
	fetcher EntityFetcher
	cache   *cache.EntityCache
	logger  *zap.SugaredLogger
}

// NewEntityProvider creates a provider. entityCache may be nil.
func NewEntityProvider(fetcher EntityFetcher, entityCache *cache.EntityCache) *EntityProvider {
	if entityCache == nil {
		entityCache = cache.NewEntityCache(nil)
	}
	return &EntityProvider{
		fetcher: fetcher,
		cache:   entityCache,
		logger:  logger.ComponentLogger("entities"),
	}
}

// GetEntity returns the entity or an ErrNotFound error
func (p *EntityProvider) GetEntity(ctx context.Context, id string) (*model.Entity, error) {
	id = model.NewEntityID(id).ID

	memo, ok := memoFrom(ctx)
	if !ok {
		memo = newEntityMemo()
	}
	if err := p.load(ctx, memo, []string{id}); err != nil {
		return nil, err
	}

	entity, _ := memo.lookup(id)
	if entity == nil {
		return nil, errors.Mark(errors.Newf("entity %s", id), errors.ErrNotFound)
	}
	return entity, nil
}

// LoadEntities makes the given entities available to GetEntity, fetching
// the ones neither memoised nor cached in batches
func (p *EntityProvider) LoadEntities(ctx context.Context, ids []string) error {
	memo, ok := memoFrom(ctx)
	if !ok {
		memo = newEntityMemo()
	}
	return p.load(ctx, memo, ids)
}

func (p *EntityProvider) load(ctx context.Context, memo *entityMemo, ids []string) error {
	var missing []string
	seen := make(map[string]bool)

	for _, raw := range ids {
		id := model.NewEntityID(raw).ID
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		if _, known := memo.lookup(id); known {
			continue
		}

		if p.cache.Contains(id) {
			entity, err := p.cache.Fetch(id)
			if err == nil {
				memo.remember(id, entity)
				continue
			}
			p.logger.Warnw("Unreadable cached entity", logger.FieldEntityID, id, logger.FieldError, err)
		}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return nil
	}

	fetched, err := p.fetcher.GetEntities(ctx, missing)
	if err != nil {
		return errors.ResolutionFailed(err, "load entities")
	}

	for _, id := range missing {
		entity := fetched[id]
		memo.remember(id, entity)
		if entity == nil {
			continue
		}
		if err := p.cache.Save(entity); err != nil {
			p.logger.Warnw("Failed to cache entity", logger.FieldEntityID, id, logger.FieldError, err)
		}
	}

	logger.FromContext(ctx, p.logger).Debugw("Loaded entities",
		logger.FieldCount, len(fetched),
		"requested", len(missing),
	)
	return nil
}
