package darkroom

import (
	"sync"
	"time"
)

// listingCache is an in-memory TTL cache of the hot public listings: the
// default published-post list and the eager collections list. Every blog or
// gallery write invalidates it.
type listingCache struct {
	mu          sync.RWMutex
	posts       []BlogPost
	collections []Collection
	fetched     time.Time
	ttl         time.Duration
	store       *Store
}

func newListingCache(s *Store, ttl time.Duration) *listingCache {
	return &listingCache{store: s, ttl: ttl}
}

func (c *listingCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *listingCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.collections = nil
	c.mu.Unlock()
}

func (c *listingCache) load() error {
	if c.valid() {
		return nil
	}
	posts, err := c.store.ListPosts(PostFilter{})
	if err != nil {
		return err
	}
	collections, err := c.store.ListCollections()
	if err != nil {
		return err
	}
	if posts == nil {
		posts = []BlogPost{}
	}
	c.posts = posts
	c.collections = collections
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns the cached listings after ensuring they are fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *listingCache) ensureLoaded() ([]BlogPost, []Collection, error) {
	c.mu.RLock()
	if c.valid() {
		posts, collections := c.posts, c.collections
		c.mu.RUnlock()
		return posts, collections, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, err
	}
	return c.posts, c.collections, nil
}

// Posts returns the default published-post listing.
func (c *listingCache) Posts() ([]BlogPost, error) {
	posts, _, err := c.ensureLoaded()
	return posts, err
}

// Collections returns every collection with children attached.
func (c *listingCache) Collections() ([]Collection, error) {
	_, collections, err := c.ensureLoaded()
	return collections, err
}
