// Package domain defines the persistence models for cards, categories,
// games, memberships, moods and the per-day feed cache. These types are
// mapped with GORM and shared across the repository, service and HTTP layers.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// DefaultMembershipTier is the tier assumed for anonymous callers and for
// users without a membership profile.
const DefaultMembershipTier = 1

// Card is a unit of content in the daily stream.
//
// Fields:
//   - ID: numeric primary key.
//   - Type: content tag (game, quiz, article, ...); indexed for type-set queries.
//   - Active: inactive cards are never served.
//   - MinMembershipTier: lowest tier allowed to see the card (>= 1).
//   - PublishDate: first day the card is visible; nil means "as soon as active".
//   - Content: free-form JSON payload rendered by clients.
//   - CreatedAt: default feed ordering key (newest first).
type Card struct {
	ID                uint           `json:"id"                  gorm:"primaryKey"`
	Type              CardType       `json:"type"                gorm:"type:varchar(32);not null;index:idx_cards_type_created,priority:1"`
	Title             string         `json:"title"               gorm:"type:varchar(255);not null;default:''"`
	Active            bool           `json:"-"                   gorm:"not null;index"`
	MinMembershipTier int            `json:"min_membership_tier" gorm:"not null;default:1;check:min_membership_tier >= 1"`
	PublishDate       *Date          `json:"publish_date,omitempty"`
	Content           datatypes.JSON `json:"content,omitempty"`
	CreatedAt         time.Time      `json:"created_at"          gorm:"index:idx_cards_type_created,priority:2"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// TableName returns the database table name for Card.
func (Card) TableName() string { return "cards" }

// Category is a named grouping of cards. Which card types belong to a
// category is configuration (see package categories); individual cards can
// additionally be curated into a category with CardCategoryLink.
type Category struct {
	ID          uint      `json:"id"                    gorm:"primaryKey"`
	Slug        string    `json:"slug"                  gorm:"type:varchar(64);not null;uniqueIndex"`
	Name        string    `json:"name"                  gorm:"type:varchar(128);not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	Icon        string    `json:"icon,omitempty"        gorm:"type:varchar(64)"`
	Color       string    `json:"color,omitempty"       gorm:"type:varchar(16)"`
	SortOrder   int       `json:"sort_order"            gorm:"not null;default:0"`
	Active      bool      `json:"-"                     gorm:"not null"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// TableName returns the database table name for Category.
func (Category) TableName() string { return "categories" }

// CardCategoryLink curates a card into a category independently of the
// category's type mapping.
type CardCategoryLink struct {
	CardID     uint      `gorm:"primaryKey"`
	CategoryID uint      `gorm:"primaryKey;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`

	Card     Card     `gorm:"foreignKey:CardID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Category Category `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for CardCategoryLink.
func (CardCategoryLink) TableName() string { return "card_category_links" }

// MembershipProfile holds the gating attributes of a user. Profiles are
// owned by the membership system; the feed only reads them.
type MembershipProfile struct {
	UserID         string    `json:"user_id"         gorm:"type:varchar(64);primaryKey"`
	MembershipTier int       `json:"membership_tier" gorm:"not null;default:1"`
	IsAdmin        bool      `json:"is_admin"        gorm:"not null;default:false"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

// TableName returns the database table name for MembershipProfile.
func (MembershipProfile) TableName() string { return "membership_profiles" }

// GameMetadata carries the render data of a game card, keyed by card id.
// ARType and ARConfig are optional; see IsAR.
type GameMetadata struct {
	CardID       uint           `json:"card_id"             gorm:"primaryKey"`
	HTML         string         `json:"html,omitempty"      gorm:"type:text"`
	Difficulty   string         `json:"difficulty,omitempty" gorm:"type:varchar(32)"`
	Instructions string         `json:"instructions,omitempty" gorm:"type:text"`
	MaxScore     int            `json:"max_score"           gorm:"not null;default:0"`
	IsARGame     bool           `json:"is_ar_game"          gorm:"not null;default:false"`
	ARType       *string        `json:"ar_type,omitempty"   gorm:"type:varchar(64)"`
	ARConfig     datatypes.JSON `json:"ar_config,omitempty"`
	CreatedAt    time.Time      `json:"-"`
	UpdatedAt    time.Time      `json:"-"`

	Card Card `json:"-" gorm:"foreignKey:CardID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for GameMetadata.
func (GameMetadata) TableName() string { return "game_metadata" }

// IsAR reports whether the game is an AR game. All three of the AR flag, a
// non-empty AR type and a non-null AR configuration must be present; any
// missing field classifies the game as interactive. A nil receiver is not AR.
func (m *GameMetadata) IsAR() bool {
	if m == nil || !m.IsARGame {
		return false
	}
	if m.ARType == nil || *m.ARType == "" {
		return false
	}
	cfg := string(m.ARConfig)
	return cfg != "" && cfg != "null"
}

// Mood is an optional feed context. Cards linked to a mood are promoted to
// the head of a mood-scoped feed.
type Mood struct {
	ID        uint      `json:"id"   gorm:"primaryKey"`
	Slug      string    `json:"slug" gorm:"type:varchar(64);not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"type:varchar(128);not null"`
	Active    bool      `json:"-"    gorm:"not null"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName returns the database table name for Mood.
func (Mood) TableName() string { return "moods" }

// CardMoodLink attaches a card to a mood. Lower positions come first.
type CardMoodLink struct {
	CardID   uint `gorm:"primaryKey"`
	MoodID   uint `gorm:"primaryKey;index:idx_mood_links_position,priority:1"`
	Position int  `gorm:"not null;default:0;index:idx_mood_links_position,priority:2"`

	Card Card `gorm:"foreignKey:CardID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Mood Mood `gorm:"foreignKey:MoodID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for CardMoodLink.
func (CardMoodLink) TableName() string { return "card_mood_links" }

// FeedCacheEntry memoizes one assembled feed for (user, calendar day, scope).
// There is no TTL: once the day advances, lookups simply stop matching.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - UserID / CacheDate / Scope: compound cache key (unique).
//   - Payload: serialized FeedResult.
type FeedCacheEntry struct {
	ID        string         `gorm:"type:char(36);primaryKey"`
	UserID    string         `gorm:"type:varchar(64);not null;uniqueIndex:ux_feed_cache_key,priority:1"`
	CacheDate Date           `gorm:"not null;uniqueIndex:ux_feed_cache_key,priority:2;index"`
	Scope     string         `gorm:"type:varchar(64);not null;uniqueIndex:ux_feed_cache_key,priority:3"`
	Payload   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the database table name for FeedCacheEntry.
func (FeedCacheEntry) TableName() string { return "feed_cache_entries" }
