package cache

import (
	"encoding/json"

	"github.com/ppiankov/wikitree/internal/errors"
	"github.com/ppiankov/wikitree/internal/model"
)

// EntityCache stores full entity records by identifier
type EntityCache struct {
	backend Cache
}

// NewEntityCache wraps a storage backend
func NewEntityCache(backend Cache) *EntityCache {
	if backend == nil {
		backend = Nop{}
	}
	return &EntityCache{backend: backend}
}

// Contains reports whether the entity is cached
func (c *EntityCache) Contains(id string) bool {
	_, ok := c.backend.Get(CacheKey("entity", id))
	return ok
}

// Fetch returns the cached entity
func (c *EntityCache) Fetch(id string) (*model.Entity, error) {
	data, ok := c.backend.Get(CacheKey("entity", id))
	if !ok {
		return nil, errors.Mark(errors.Newf("entity %s not cached", id), errors.ErrNotFound)
	}

	var entity model.Entity
	if err := json.Unmarshal(data, &entity); err != nil {
		return nil, errors.Wrapf(err, "decode cached entity %s", id)
	}
	return &entity, nil
}

// Save stores the entity under its identifier
func (c *EntityCache) Save(entity *model.Entity) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return errors.Wrapf(err, "encode entity %s", entity.ID)
	}
	return c.backend.Set(CacheKey("entity", entity.ID), data, 0)
}
