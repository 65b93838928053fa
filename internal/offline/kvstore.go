// Package offline provides the platform subsystems backing the portal's
// offline support: key-value persistence, named content caches, the
// service worker registration registry and the network status monitor.
package offline

import (
	"errors"

	gocache "github.com/patrickmn/go-cache"
)

// ErrKeyNotFound indicates the requested key is absent from the store.
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is simple string key/value persistence.
type KeyValueStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string)
}

// memoryKVStore implements KeyValueStore on go-cache with no expiration.
type memoryKVStore struct {
	c *gocache.Cache
}

// NewKeyValueStore creates an in-memory KeyValueStore.
func NewKeyValueStore() KeyValueStore {
	return &memoryKVStore{c: gocache.New(gocache.NoExpiration, 0)}
}

func (s *memoryKVStore) Get(key string) (string, error) {
	v, found := s.c.Get(key)
	if !found {
		return "", ErrKeyNotFound
	}
	str, ok := v.(string)
	if !ok {
		return "", ErrKeyNotFound
	}
	return str, nil
}

func (s *memoryKVStore) Set(key, value string) error {
	s.c.Set(key, value, gocache.NoExpiration)
	return nil
}

func (s *memoryKVStore) Delete(key string) {
	s.c.Delete(key)
}
