// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file seeds a small demo catalog so a fresh database
// serves a non-empty feed.
package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tbourn/go-card-feed/internal/domain"
)

// demoCard is a card to seed along with its optional game metadata.
type demoCard struct {
	typ   domain.CardType
	title string
	tier  int
	game  *domain.GameMetadata
	calm  int // position in the "calm" mood, 0 when unlinked
}

func strPtr(s string) *string { return &s }

var demoCards = []demoCard{
	{typ: domain.CardTypeGame, title: "Word Sprint", tier: 1, game: &domain.GameMetadata{
		HTML: "<div id=\"word-sprint\"></div>", Difficulty: "easy", Instructions: "Find as many words as you can.", MaxScore: 100,
	}},
	{typ: domain.CardTypeGame, title: "Star Catcher", tier: 1, game: &domain.GameMetadata{
		Difficulty: "medium", Instructions: "Move your phone to catch stars.", MaxScore: 250,
		IsARGame: true, ARType: strPtr("world_tracking"), ARConfig: datatypes.JSON(`{"anchors":3}`),
	}},
	{typ: domain.CardTypeGame, title: "Memory Grid", tier: 2, game: &domain.GameMetadata{
		HTML: "<div id=\"memory-grid\"></div>", Difficulty: "hard", MaxScore: 500,
	}},
	{typ: domain.CardTypeQuiz, title: "Capitals of Europe", tier: 1},
	{typ: domain.CardTypeRiddle, title: "What has keys but no locks?", tier: 1},
	{typ: domain.CardTypeFact, title: "Octopuses have three hearts", tier: 1},
	{typ: domain.CardTypeJoke, title: "Why did the scarecrow win an award?", tier: 1},
	{typ: domain.CardTypeMeme, title: "Monday mood", tier: 1},
	{typ: domain.CardTypeArticle, title: "Ten minutes of quiet", tier: 1, calm: 2},
	{typ: domain.CardTypeDevotional, title: "Morning reading", tier: 2},
	{typ: domain.CardTypeMotivational, title: "Start small", tier: 1},
	{typ: domain.CardTypeJournalPrompt, title: "What made you smile today?", tier: 1, calm: 1},
	{typ: domain.CardTypePrayer, title: "Evening prayer", tier: 3},
}

// Seed writes the demo catalog: one category per slug, the demo cards, a
// "calm" mood linked to two of them, and an admin profile. It is a no-op
// when any category already exists, so it is safe to run repeatedly.
func Seed(ctx context.Context, db *gorm.DB, slugs []string) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&domain.Category{}).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, slug := range slugs {
			cat := domain.Category{Slug: slug, Name: titleOf(slug), SortOrder: i, Active: true}
			if err := tx.Create(&cat).Error; err != nil {
				return err
			}
		}

		mood := domain.Mood{Slug: "calm", Name: "Calm", Active: true}
		if err := tx.Create(&mood).Error; err != nil {
			return err
		}

		base := time.Now().UTC()
		for i, dc := range demoCards {
			c := domain.Card{
				Type:              dc.typ,
				Title:             dc.title,
				Active:            true,
				MinMembershipTier: dc.tier,
				Content:           datatypes.JSON(`{}`),
				CreatedAt:         base.Add(-time.Duration(i) * time.Minute),
			}
			if err := tx.Create(&c).Error; err != nil {
				return err
			}
			if dc.game != nil {
				meta := *dc.game
				meta.CardID = c.ID
				if err := tx.Create(&meta).Error; err != nil {
					return err
				}
			}
			if dc.calm > 0 {
				link := domain.CardMoodLink{CardID: c.ID, MoodID: mood.ID, Position: dc.calm}
				if err := tx.Create(&link).Error; err != nil {
					return err
				}
			}
		}

		return tx.Create(&domain.MembershipProfile{UserID: "admin", MembershipTier: 3, IsAdmin: true}).Error
	})
	return err == nil, err
}

// titleOf turns "brain-boost" into "Brain Boost".
func titleOf(slug string) string {
	parts := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
