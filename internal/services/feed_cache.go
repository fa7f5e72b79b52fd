// Package services – feed cache stores
//
// A FeedCacheStore memoizes assembled feeds per (user, calendar day, scope).
// Entries never expire on their own: once the day advances, lookups use a
// new key and stop matching. Two implementations are provided: DBFeedCache,
// backed by the feed_cache_entries table, and MemoryFeedCache for single
// instance deployments and tests.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/tbourn/go-card-feed/internal/domain"
)

// CacheKey identifies one cached feed.
type CacheKey struct {
	// UserID is empty for the feed shared by all anonymous callers. Identity
	// never yields an empty user id, so no signed-in user can reach that
	// entry.
	UserID string
	Date   domain.Date
	// Scope separates feed variants of the same user and day: "" for the
	// plain feed, "mood:<id>" for a mood feed.
	Scope string
}

// ScopeFor returns the cache scope of a feed request.
func ScopeFor(moodID *uint) string {
	if moodID == nil {
		return ""
	}
	return fmt.Sprintf("mood:%d", *moodID)
}

// FeedCacheStore is the contract of a feed cache backend.
type FeedCacheStore interface {
	// Get returns the stored result for key; ok is false on a miss.
	Get(ctx context.Context, key CacheKey) (res *domain.FeedResult, ok bool, err error)
	// Put stores res under key, replacing any previous value.
	Put(ctx context.Context, key CacheKey, res *domain.FeedResult) error
	// DeleteUserDate removes every scope of userID for date.
	DeleteUserDate(ctx context.Context, userID string, date domain.Date) (int64, error)
	// DeleteDate removes every user's entries for date.
	DeleteDate(ctx context.Context, date domain.Date) (int64, error)
}

// FeedCacheRepo is the persistence contract behind DBFeedCache.
type FeedCacheRepo interface {
	GetFeedCache(ctx context.Context, db *gorm.DB, userID string, date domain.Date, scope string) (*domain.FeedCacheEntry, error)
	PutFeedCache(ctx context.Context, db *gorm.DB, userID string, date domain.Date, scope string, payload []byte) error
	DeleteFeedCacheForUser(ctx context.Context, db *gorm.DB, userID string, date domain.Date) (int64, error)
	DeleteFeedCacheForDate(ctx context.Context, db *gorm.DB, date domain.Date) (int64, error)
}

// DBFeedCache stores feeds as JSON rows, one per key.
type DBFeedCache struct {
	DB   *gorm.DB
	Repo FeedCacheRepo
}

// NewDBFeedCache returns a database-backed cache store.
func NewDBFeedCache(db *gorm.DB, r FeedCacheRepo) *DBFeedCache {
	return &DBFeedCache{DB: db, Repo: r}
}

func (c *DBFeedCache) Get(ctx context.Context, key CacheKey) (*domain.FeedResult, bool, error) {
	rec, err := c.Repo.GetFeedCache(ctx, c.DB, key.UserID, key.Date, key.Scope)
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	res, err := decodeFeed(rec.Payload)
	if err != nil {
		return nil, false, err
	}
	return res, true, nil
}

func (c *DBFeedCache) Put(ctx context.Context, key CacheKey, res *domain.FeedResult) error {
	b, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return c.Repo.PutFeedCache(ctx, c.DB, key.UserID, key.Date, key.Scope, b)
}

func (c *DBFeedCache) DeleteUserDate(ctx context.Context, userID string, date domain.Date) (int64, error) {
	return c.Repo.DeleteFeedCacheForUser(ctx, c.DB, userID, date)
}

func (c *DBFeedCache) DeleteDate(ctx context.Context, date domain.Date) (int64, error) {
	return c.Repo.DeleteFeedCacheForDate(ctx, c.DB, date)
}

// MemoryFeedCache keeps serialized feeds in a map. Values are stored as JSON
// so callers can never mutate a cached result through a returned pointer.
type MemoryFeedCache struct {
	mu      sync.RWMutex
	entries map[CacheKey][]byte
}

// NewMemoryFeedCache returns an empty in-process cache store.
func NewMemoryFeedCache() *MemoryFeedCache {
	return &MemoryFeedCache{entries: map[CacheKey][]byte{}}
}

func (m *MemoryFeedCache) Get(_ context.Context, key CacheKey) (*domain.FeedResult, bool, error) {
	m.mu.RLock()
	b, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	res, err := decodeFeed(b)
	if err != nil {
		return nil, false, err
	}
	return res, true, nil
}

func (m *MemoryFeedCache) Put(_ context.Context, key CacheKey, res *domain.FeedResult) error {
	b, err := json.Marshal(res)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[key] = b
	m.mu.Unlock()
	return nil
}

func (m *MemoryFeedCache) DeleteUserDate(_ context.Context, userID string, date domain.Date) (int64, error) {
	return m.deleteWhere(func(k CacheKey) bool { return k.UserID == userID && k.Date == date }), nil
}

func (m *MemoryFeedCache) DeleteDate(_ context.Context, date domain.Date) (int64, error) {
	return m.deleteWhere(func(k CacheKey) bool { return k.Date == date }), nil
}

// Len returns the number of cached entries.
func (m *MemoryFeedCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MemoryFeedCache) deleteWhere(match func(CacheKey) bool) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.entries {
		if match(k) {
			delete(m.entries, k)
			n++
		}
	}
	return n
}

func decodeFeed(b []byte) (*domain.FeedResult, error) {
	var res domain.FeedResult
	if err := json.Unmarshal(b, &res); err != nil {
		return nil, fmt.Errorf("decode cached feed: %w", err)
	}
	return &res, nil
}
