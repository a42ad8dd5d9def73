package restblog

import (
	"context"
	"sync"
	"time"
)

// PostCache is an in-memory read cache of all posts with a TTL. Writes go to
// the store directly and must be followed by Invalidate.
type PostCache struct {
	mu      sync.RWMutex
	posts   []BlogPost
	fetched time.Time
	ttl     time.Duration
	store   PostStore
}

// NewPostCache creates a PostCache backed by the given store.
func NewPostCache(s PostStore, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.mu.Unlock()
}

// ensureLoaded returns the cached posts after making sure they are fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) ensureLoaded(ctx context.Context) ([]BlogPost, error) {
	c.mu.RLock()
	if c.valid() {
		posts := c.posts
		c.mu.RUnlock()
		return posts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.posts, nil
	}
	posts, err := c.store.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	c.posts = posts
	c.fetched = time.Now()
	return c.posts, nil
}

// ListPosts returns every post in store order.
func (c *PostCache) ListPosts(ctx context.Context) ([]BlogPost, error) {
	return c.ensureLoaded(ctx)
}

// GetPost returns a single post by id from the cache.
func (c *PostCache) GetPost(ctx context.Context, id int64) (BlogPost, error) {
	posts, err := c.ensureLoaded(ctx)
	if err != nil {
		return BlogPost{}, err
	}
	for _, p := range posts {
		if p.ID == id {
			return p, nil
		}
	}
	return BlogPost{}, ErrNotFound
}
