// Package services – content access
//
// This file declares the repository contracts the feed services depend on.
// Implementations persist nothing: every method is a read against the content
// store, filtered by the eligibility scope where it lists cards.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-card-feed/internal/domain"
	"github.com/tbourn/go-card-feed/internal/repo"
)

// DefaultStoreTimeout bounds every store and cache call when a service is
// constructed without an explicit timeout.
const DefaultStoreTimeout = 3 * time.Second

// CardRepo lists and fetches cards and their game metadata.
type CardRepo interface {
	// ListCards returns eligible cards matching q, newest first.
	ListCards(ctx context.Context, db *gorm.DB, q repo.CardQuery) ([]domain.Card, error)

	// ListCategoryLinkedCards returns eligible cards curated into a category.
	ListCategoryLinkedCards(ctx context.Context, db *gorm.DB, categoryID uint, q repo.CardQuery) ([]domain.Card, error)

	// ListMoodLinkedCards returns eligible cards linked to a mood in position order.
	ListMoodLinkedCards(ctx context.Context, db *gorm.DB, moodID uint, q repo.CardQuery) ([]domain.Card, error)

	// GetCard fetches a card by id regardless of eligibility.
	GetCard(ctx context.Context, db *gorm.DB, id uint) (*domain.Card, error)

	// ListGameMetadata returns metadata rows for the given card ids.
	ListGameMetadata(ctx context.Context, db *gorm.DB, cardIDs []uint) ([]domain.GameMetadata, error)
}

// CatalogRepo looks up categories, moods and membership profiles.
type CatalogRepo interface {
	GetCategoryBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Category, error)
	GetMood(ctx context.Context, db *gorm.DB, id uint) (*domain.Mood, error)
	GetProfile(ctx context.Context, db *gorm.DB, userID string) (*domain.MembershipProfile, error)
}

// ContentRepo is the full read contract of the content store.
type ContentRepo interface {
	CardRepo
	CatalogRepo
}

// isNotFound reports whether err is the store's not-found sentinel.
func isNotFound(err error) bool {
	return errors.Is(err, repo.ErrNotFound)
}

// bounded derives a context that expires after d (DefaultStoreTimeout when d <= 0).
func bounded(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultStoreTimeout
	}
	return context.WithTimeout(ctx, d)
}
