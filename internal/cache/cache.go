package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache is the byte-level storage backend behind the typed caches
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey builds a storage key from the parts of a semantic key.
// Parts are joined with a separator that cannot occur in mention text
// before hashing, so ("a b", "c") and ("a", "b c") never collide.
func CacheKey(namespace string, parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "wikitree:v1:" + namespace + ":" + hex.EncodeToString(hash[:])
}

// Nop is a Cache that stores nothing. It backs the typed caches when
// caching is disabled.
type Nop struct{}

func (Nop) Get(string) ([]byte, bool)              { return nil, false }
func (Nop) Set(string, []byte, time.Duration) error { return nil }
func (Nop) Delete(string) error                     { return nil }
func (Nop) Clear() error                            { return nil }
