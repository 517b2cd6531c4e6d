package cache

import (
	"encoding/json"

	"github.com/ppiankov/wikitree/internal/errors"
	"github.com/ppiankov/wikitree/internal/model"
)

// ResolutionCache stores entity resolutions keyed by
// (mention, entity type, language). It never expires entries on its own;
// the backend's settings decide their lifetime.
type ResolutionCache struct {
	backend Cache
}

// NewResolutionCache wraps a storage backend
func NewResolutionCache(backend Cache) *ResolutionCache {
	if backend == nil {
		backend = Nop{}
	}
	return &ResolutionCache{backend: backend}
}

func resolutionKey(mention, entityType, languageCode string) string {
	return CacheKey("resolve", mention, entityType, languageCode)
}

// Contains reports whether a resolution is cached for the key
func (c *ResolutionCache) Contains(mention, entityType, languageCode string) bool {
	_, ok := c.backend.Get(resolutionKey(mention, entityType, languageCode))
	return ok
}

// Fetch returns the cached resolution for the key
func (c *ResolutionCache) Fetch(mention, entityType, languageCode string) ([]model.EntityID, error) {
	data, ok := c.backend.Get(resolutionKey(mention, entityType, languageCode))
	if !ok {
		return nil, errors.Mark(errors.Newf("no cached resolution for %q", mention), errors.ErrNotFound)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, errors.Wrapf(err, "decode cached resolution for %q", mention)
	}

	out := make([]model.EntityID, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.NewEntityID(id))
	}
	return out, nil
}

// Save stores a resolution for the key; an empty resolution is cached too
func (c *ResolutionCache) Save(mention, entityType, languageCode string, ids []model.EntityID) error {
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.ID)
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return errors.Wrap(err, "encode resolution")
	}
	return c.backend.Set(resolutionKey(mention, entityType, languageCode), data, 0)
}
