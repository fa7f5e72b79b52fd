// Package services – FeedCacheService
//
// FeedCacheService exposes the two invalidation operations of the daily feed
// cache. Both only touch entries dated today; older entries are already
// unreachable and are left to housekeeping.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Caller is the identity and privilege of a request.
type Caller struct {
	// UserID is empty for anonymous callers.
	UserID  string
	Tier    int
	IsAdmin bool
}

// Anonymous reports whether the caller is unidentified.
func (c Caller) Anonymous() bool { return c.UserID == "" }

// FeedCacheService invalidates cached feeds.
type FeedCacheService struct {
	Cache    FeedCacheStore
	Calendar Calendar
	Timeout  time.Duration
}

// NewFeedCacheService constructs a FeedCacheService.
func NewFeedCacheService(cache FeedCacheStore, cal Calendar) *FeedCacheService {
	return &FeedCacheService{Cache: cache, Calendar: cal, Timeout: DefaultStoreTimeout}
}

// ClearSelf removes the caller's cached feeds for today, every scope
// included. Other users' entries are untouched. Clearing an empty cache
// succeeds and reports zero rows.
func (s *FeedCacheService) ClearSelf(ctx context.Context, caller Caller) (int64, error) {
	if caller.Anonymous() {
		return 0, ErrUnauthorized
	}
	ctx, cancel := bounded(ctx, s.Timeout)
	defer cancel()

	n, err := s.Cache.DeleteUserDate(ctx, caller.UserID, s.Calendar.Today())
	if err != nil {
		return 0, transient("clear own feed cache", err)
	}
	cacheInvalidations.WithLabelValues("self").Inc()
	zerolog.Ctx(ctx).Debug().Str("user_id", caller.UserID).Int64("deleted", n).Msg("feed cache cleared")
	return n, nil
}

// ClearAll removes every user's cached feeds for today. The caller must be an
// admin. Entries dated other days are untouched.
func (s *FeedCacheService) ClearAll(ctx context.Context, caller Caller) (int64, error) {
	if caller.Anonymous() {
		return 0, ErrUnauthorized
	}
	if !caller.IsAdmin {
		return 0, ErrForbidden
	}
	ctx, cancel := bounded(ctx, s.Timeout)
	defer cancel()

	n, err := s.Cache.DeleteDate(ctx, s.Calendar.Today())
	if err != nil {
		return 0, transient("clear feed cache", err)
	}
	cacheInvalidations.WithLabelValues("all").Inc()
	zerolog.Ctx(ctx).Info().Str("admin_id", caller.UserID).Int64("deleted", n).Msg("feed cache cleared for all users")
	return n, nil
}
