// Package handlers exposes the feed API over HTTP.
//
// Handlers are transport-thin: they parse input, resolve the caller through
// the profile service, call application services, and translate results into
// HTTP responses.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-card-feed/internal/domain"
	"github.com/tbourn/go-card-feed/internal/http/middleware"
	"github.com/tbourn/go-card-feed/internal/services"
)

//
// Service contracts (context-aware)
//

// FeedService assembles the caller's daily feed.
type FeedService interface {
	Assemble(ctx context.Context, req services.FeedRequest) (*domain.FeedResult, error)
}

// CategoryService resolves a category slug into its visible cards.
type CategoryService interface {
	Resolve(ctx context.Context, slug string, tier int, today domain.Date) (*domain.Category, []domain.FeedCard, error)
}

// FeedCacheService invalidates cached feeds for today.
type FeedCacheService interface {
	// ClearSelf removes the caller's own entries and reports how many rows went.
	ClearSelf(ctx context.Context, caller services.Caller) (int64, error)
	// ClearAll removes every user's entries; admin only.
	ClearAll(ctx context.Context, caller services.Caller) (int64, error)
}

// GameService serves game cards with their render metadata.
type GameService interface {
	Get(ctx context.Context, cardID uint, tier int, today domain.Date) (*domain.FeedCard, error)
	List(ctx context.Context, f services.GameFilter, tier int, today domain.Date) ([]domain.FeedCard, error)
}

// ProfileService maps a user id onto tier and admin privilege.
type ProfileService interface {
	Lookup(ctx context.Context, userID string) (services.Caller, error)
}

// Calendar yields the current calendar day in the feed's reference timezone.
type Calendar interface {
	Today() domain.Date
}

//
// Handler wiring
//

// Services bundles the collaborators of Handlers.
type Services struct {
	Feed       FeedService
	Categories CategoryService
	Cache      FeedCacheService
	Games      GameService
	Profiles   ProfileService
	Calendar   Calendar
}

// Handlers groups the feed, category, cache and games endpoints.
type Handlers struct {
	feed       FeedService
	categories CategoryService
	cache      FeedCacheService
	games      GameService
	profiles   ProfileService
	cal        Calendar
}

// New constructs and returns a Handlers instance bound to the given services.
func New(s Services) *Handlers {
	return &Handlers{
		feed:       s.Feed,
		categories: s.Categories,
		cache:      s.Cache,
		games:      s.Games,
		profiles:   s.Profiles,
		cal:        s.Calendar,
	}
}

// caller resolves the identity set by middleware.Identity into a Caller.
// Anonymous requests resolve to a Caller with an empty UserID.
func (h *Handlers) caller(c *gin.Context) (services.Caller, error) {
	return h.profiles.Lookup(c.Request.Context(), middleware.UserID(c))
}

// nonNil keeps empty lists serialized as [] rather than null.
func nonNil(cards []domain.FeedCard) []domain.FeedCard {
	if cards == nil {
		return []domain.FeedCard{}
	}
	return cards
}
