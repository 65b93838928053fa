package offline

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedResponse is a stored response entry keyed by URL.
type CachedResponse struct {
	URL         string    `json:"url"`
	Status      int       `json:"status"`
	ContentType string    `json:"contentType"`
	Body        []byte    `json:"body"`
	StoredAt    time.Time `json:"storedAt"`
}

// CacheStorage manages named caches of URL-addressed responses,
// mirroring the browser Cache API: open by name, put, match, delete.
type CacheStorage struct {
	caches map[string]*gocache.Cache
	mu     sync.RWMutex
}

// NewCacheStorage creates an empty CacheStorage.
func NewCacheStorage() *CacheStorage {
	return &CacheStorage{caches: make(map[string]*gocache.Cache)}
}

// Open returns the named cache, creating it if absent.
func (cs *CacheStorage) Open(name string) *gocache.Cache {
	cs.mu.RLock()
	c, ok := cs.caches[name]
	cs.mu.RUnlock()
	if ok {
		return c
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if c, ok := cs.caches[name]; ok {
		return c
	}
	c = gocache.New(gocache.NoExpiration, 0)
	cs.caches[name] = c
	return c
}

// Put stores a response in the named cache under its URL.
func (cs *CacheStorage) Put(name string, resp *CachedResponse) {
	if resp.StoredAt.IsZero() {
		resp.StoredAt = time.Now()
	}
	cs.Open(name).Set(resp.URL, resp, gocache.NoExpiration)
}

// Match returns the stored response for url in the named cache, or nil.
func (cs *CacheStorage) Match(name, url string) *CachedResponse {
	cs.mu.RLock()
	c, ok := cs.caches[name]
	cs.mu.RUnlock()
	if !ok {
		return nil
	}
	v, found := c.Get(url)
	if !found {
		return nil
	}
	resp, ok := v.(*CachedResponse)
	if !ok {
		return nil
	}
	return resp
}

// DeleteCache removes the named cache and all its entries.
// Returns true if the cache existed.
func (cs *CacheStorage) DeleteCache(name string) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	_, ok := cs.caches[name]
	delete(cs.caches, name)
	return ok
}

// Names returns the names of all open caches.
func (cs *CacheStorage) Names() []string {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	names := make([]string, 0, len(cs.caches))
	for name := range cs.caches {
		names = append(names, name)
	}
	return names
}
