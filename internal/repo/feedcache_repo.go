// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the per-day feed cache table: keyed
// reads, upserts, and the two invalidation scopes (one user's day, every
// user's day).
//
// Error semantics:
//   - GetFeedCache returns ErrNotFound on a miss.
//   - Other DB errors (connectivity, missing table, timeouts) propagate raw;
//     the service layer classifies them as transient.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-card-feed/internal/domain"
)

// feedCacheKey lists the columns of the unique cache key, in index order.
var feedCacheKey = []clause.Column{{Name: "user_id"}, {Name: "cache_date"}, {Name: "scope"}}

// GetFeedCache returns the entry for exactly (userID, date, scope) or ErrNotFound.
func GetFeedCache(ctx context.Context, db *gorm.DB, userID string, date domain.Date, scope string) (*domain.FeedCacheEntry, error) {
	var rec domain.FeedCacheEntry
	err := db.WithContext(ctx).
		Where("user_id = ? AND cache_date = ? AND scope = ?", userID, date, scope).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// PutFeedCache writes payload under (userID, date, scope). A second write for
// the same key replaces the payload; it is a single INSERT .. ON CONFLICT
// statement, so concurrent writers never leave a partial row.
func PutFeedCache(ctx context.Context, db *gorm.DB, userID string, date domain.Date, scope string, payload []byte) error {
	now := time.Now().UTC()
	rec := &domain.FeedCacheEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		CacheDate: date,
		Scope:     scope,
		Payload:   datatypes.JSON(payload),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   feedCacheKey,
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(rec).Error
}

// DeleteFeedCacheForUser removes every scope cached for userID on date and
// returns the number of rows removed.
func DeleteFeedCacheForUser(ctx context.Context, db *gorm.DB, userID string, date domain.Date) (int64, error) {
	res := db.WithContext(ctx).
		Where("user_id = ? AND cache_date = ?", userID, date).
		Delete(&domain.FeedCacheEntry{})
	return res.RowsAffected, res.Error
}

// DeleteFeedCacheForDate removes every user's entries for date. Other dates
// are untouched.
func DeleteFeedCacheForDate(ctx context.Context, db *gorm.DB, date domain.Date) (int64, error) {
	res := db.WithContext(ctx).
		Where("cache_date = ?", date).
		Delete(&domain.FeedCacheEntry{})
	return res.RowsAffected, res.Error
}

// PurgeFeedCacheBefore removes entries dated strictly before date. Those rows
// can no longer match a lookup, so this is housekeeping only.
func PurgeFeedCacheBefore(ctx context.Context, db *gorm.DB, date domain.Date) (int64, error) {
	res := db.WithContext(ctx).
		Where("cache_date < ?", date).
		Delete(&domain.FeedCacheEntry{})
	return res.RowsAffected, res.Error
}
