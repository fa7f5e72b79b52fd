// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides read queries over cards: type-set
// listings, category and mood curated listings, and single-card lookups.
//
// Every listing applies the Eligible scope so the database only returns cards
// a caller may see, and orders rows newest first with the id as tie-breaker
// so results are deterministic.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-card-feed/internal/domain"
)

// orderNewestFirst is the default card ordering.
const orderNewestFirst = "cards.created_at DESC, cards.id DESC"

// CardQuery narrows a card listing.
type CardQuery struct {
	// Types restricts the listing to these card types. Nil means any type;
	// an empty non-nil slice matches nothing.
	Types []domain.CardType
	// Tier is the caller's membership tier.
	Tier int
	// Today is the calendar day in the reference timezone.
	Today domain.Date
	// Limit caps the row count; <= 0 means unbounded.
	Limit int
	// Offset skips that many rows of the ordered listing. Only ListCards
	// honors it.
	Offset int
}

// Eligible is a GORM scope restricting cards to those visible at the given
// tier on the given day: active, tier-gated and published (NULL publish date
// counts as published).
func Eligible(tier int, today domain.Date) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Where("cards.active = ?", true).
			Where("cards.min_membership_tier <= ?", tier).
			Where("(cards.publish_date IS NULL OR cards.publish_date <= ?)", today)
	}
}

// ListCards returns eligible cards matching q, newest first.
func ListCards(ctx context.Context, db *gorm.DB, q CardQuery) ([]domain.Card, error) {
	out := []domain.Card{}
	if q.Types != nil && len(q.Types) == 0 {
		return out, nil
	}
	tx := db.WithContext(ctx).
		Model(&domain.Card{}).
		Scopes(Eligible(q.Tier, q.Today))
	if q.Types != nil {
		tx = tx.Where("cards.type IN ?", q.Types)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	err := tx.Order(orderNewestFirst).Find(&out).Error
	return out, err
}

// ListCategoryLinkedCards returns eligible cards explicitly linked to the
// category, newest first. q.Types and q.Limit are ignored: curated links are
// never capped.
func ListCategoryLinkedCards(ctx context.Context, db *gorm.DB, categoryID uint, q CardQuery) ([]domain.Card, error) {
	out := []domain.Card{}
	err := db.WithContext(ctx).
		Model(&domain.Card{}).
		Select("cards.*").
		Joins("JOIN card_category_links ccl ON ccl.card_id = cards.id").
		Where("ccl.category_id = ?", categoryID).
		Scopes(Eligible(q.Tier, q.Today)).
		Order(orderNewestFirst).
		Find(&out).Error
	return out, err
}

// ListMoodLinkedCards returns eligible cards linked to the mood in link
// position order (newest first among equal positions). q.Types is honored so
// a mood feed never leaks types the whole feed excludes.
func ListMoodLinkedCards(ctx context.Context, db *gorm.DB, moodID uint, q CardQuery) ([]domain.Card, error) {
	out := []domain.Card{}
	if q.Types != nil && len(q.Types) == 0 {
		return out, nil
	}
	tx := db.WithContext(ctx).
		Model(&domain.Card{}).
		Select("cards.*").
		Joins("JOIN card_mood_links cml ON cml.card_id = cards.id").
		Where("cml.mood_id = ?", moodID).
		Scopes(Eligible(q.Tier, q.Today))
	if q.Types != nil {
		tx = tx.Where("cards.type IN ?", q.Types)
	}
	err := tx.Order("cml.position ASC, " + orderNewestFirst).Find(&out).Error
	return out, err
}

// GetCard fetches a card by id regardless of eligibility. Returns ErrNotFound
// when it does not exist.
func GetCard(ctx context.Context, db *gorm.DB, id uint) (*domain.Card, error) {
	var c domain.Card
	if err := db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListGameMetadata returns the metadata rows for the given card ids. Cards
// without metadata are simply absent from the result.
func ListGameMetadata(ctx context.Context, db *gorm.DB, cardIDs []uint) ([]domain.GameMetadata, error) {
	out := []domain.GameMetadata{}
	if len(cardIDs) == 0 {
		return out, nil
	}
	err := db.WithContext(ctx).
		Where("card_id IN ?", cardIDs).
		Find(&out).Error
	return out, err
}
