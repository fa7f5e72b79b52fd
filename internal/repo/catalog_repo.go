// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides lookups for categories, moods and
// membership profiles.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-card-feed/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// GetCategoryBySlug fetches a category by slug, active or not. Returns
// ErrNotFound when missing.
func GetCategoryBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Category, error) {
	var c domain.Category
	err := db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetMood fetches a mood by id, active or not. Returns ErrNotFound when missing.
func GetMood(ctx context.Context, db *gorm.DB, id uint) (*domain.Mood, error) {
	var m domain.Mood
	if err := db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// GetProfile fetches the membership profile of userID. Returns ErrNotFound
// when the user has none.
func GetProfile(ctx context.Context, db *gorm.DB, userID string) (*domain.MembershipProfile, error) {
	var p domain.MembershipProfile
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}
