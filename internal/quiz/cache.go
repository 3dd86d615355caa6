package quiz

import (
	"context"
	"sync"
	"time"

	"github.com/linguloop/backend/internal/models"
)

// cacheTTL is a performance bound, not a correctness one: correctness depends
// solely on invalidation-on-write.
const cacheTTL = 30 * time.Minute

// CacheEntry is the reshaped view of a session's question sets that dependent
// views render from.
type CacheEntry struct {
	ShareTokens map[models.Difficulty]string `json:"share_tokens"`
	Counts      map[models.Difficulty]int    `json:"counts"`
	FetchedAt   time.Time                    `json:"fetched_at"`
}

type cacheKey struct {
	groupID   string
	sessionID string
}

// Cache is the shared question-set cache keyed by (group, session). A fresh
// entry is returned without touching the store; a missing or invalidated
// entry forces a store fetch. Every successful generation must invalidate the
// matching entry before dependent views re-read, so a view never renders a
// stale, empty result after new tokens were minted.
type Cache struct {
	store QuestionStore
	ttl   time.Duration

	mu       sync.RWMutex
	entries  map[cacheKey]CacheEntry
	versions map[cacheKey]uint64
}

func NewCache(store QuestionStore) *Cache {
	return &Cache{
		store:    store,
		ttl:      cacheTTL,
		entries:  make(map[cacheKey]CacheEntry),
		versions: make(map[cacheKey]uint64),
	}
}

func (c *Cache) Get(ctx context.Context, groupID, sessionID string) (CacheEntry, error) {
	key := cacheKey{groupID: groupID, sessionID: sessionID}

	c.mu.RLock()
	entry, ok := c.entries[key]
	version := c.versions[key]
	c.mu.RUnlock()
	if ok && time.Since(entry.FetchedAt) < c.ttl {
		return entry, nil
	}

	sets, err := c.store.FetchSets(ctx, sessionID)
	if err != nil {
		return CacheEntry{}, err
	}

	entry = CacheEntry{
		ShareTokens: make(map[models.Difficulty]string),
		Counts:      make(map[models.Difficulty]int),
		FetchedAt:   time.Now(),
	}
	for diff, set := range sets {
		entry.ShareTokens[diff] = set.ShareToken
		entry.Counts[diff] = len(set.Questions)
	}

	// The store fetch is a suspension point: an Invalidate that landed while
	// it was in flight must win, or this entry would pin pre-invalidation
	// data. Populate only if the key's version is unchanged since the fetch
	// started; the entry is still returned to this caller either way.
	c.mu.Lock()
	if c.versions[key] == version {
		c.entries[key] = entry
	}
	c.mu.Unlock()

	return entry, nil
}

// Invalidate drops the entry for (group, session) and bumps its version so an
// in-flight read cannot repopulate the key with data fetched before the
// invalidation. The next read hits the store.
func (c *Cache) Invalidate(groupID, sessionID string) {
	key := cacheKey{groupID: groupID, sessionID: sessionID}
	c.mu.Lock()
	delete(c.entries, key)
	c.versions[key]++
	c.mu.Unlock()
}
