package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-card-feed/internal/domain"
	"github.com/tbourn/go-card-feed/internal/http/middleware"
	"github.com/tbourn/go-card-feed/internal/services"
	"github.com/tbourn/go-card-feed/internal/utils"
)

// Values of the X-Feed-Cache response header.
const (
	feedCacheHit  = "hit"
	feedCacheMiss = "miss"
)

// FeedResponse is the body of GET /feed.
type FeedResponse struct {
	Cards       []domain.FeedCard `json:"cards"`
	GeneratedAt time.Time         `json:"generated_at" example:"2025-06-01T07:30:00Z"`
}

// CategoryFeedResponse is the body of GET /feed/category/{slug}.
type CategoryFeedResponse struct {
	Category *domain.Category  `json:"category"`
	Cards    []domain.FeedCard `json:"cards"`
}

// GetFeed godoc
// @ID          getFeed
// @Summary     Daily feed
// @Description Returns the caller's feed for today. The first request of the day computes and caches it; later requests replay the cached result until the day changes or the cache is cleared.
// @Tags        Feed
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (set by the gateway)"  example(user123)
// @Param       mood_id    query   int     false "Promote cards linked to this mood"  minimum(1)
//
// @Success     200  {object} handlers.FeedResponse
// @Header      200  {string} X-Feed-Cache  "hit or miss"
// @Failure     400  {object} handlers.ErrorResponse "Malformed mood_id"
// @Failure     404  {object} handlers.ErrorResponse "Mood not found"
// @Failure     503  {object} handlers.ErrorResponse "Store unavailable"
// @Router      /feed [get]
func (h *Handlers) GetFeed(c *gin.Context) {
	moodID, err := utils.OptionalID(c.Query("mood_id"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "mood_id must be a positive integer")
		return
	}
	caller, err := h.caller(c)
	if err != nil {
		writeError(c, err)
		return
	}

	res, err := h.feed.Assemble(c.Request.Context(), services.FeedRequest{
		UserID: caller.UserID,
		Tier:   caller.Tier,
		MoodID: moodID,
		Today:  h.cal.Today(),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	if res.Cached {
		c.Header(middleware.HeaderFeedCache, feedCacheHit)
	} else {
		c.Header(middleware.HeaderFeedCache, feedCacheMiss)
	}
	ok(c, http.StatusOK, FeedResponse{Cards: nonNil(res.Cards), GeneratedAt: res.GeneratedAt})
}

// GetCategoryFeed godoc
// @ID          getCategoryFeed
// @Summary     Category feed
// @Description Returns the visible cards of a category: cards of the category's mapped types followed by cards curated into it.
// @Tags        Feed
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (set by the gateway)"  example(user123)
// @Param       slug       path    string  true  "Category slug"  example(arena)
//
// @Success     200  {object} handlers.CategoryFeedResponse
// @Failure     404  {object} handlers.ErrorResponse "Category not found"
// @Failure     503  {object} handlers.ErrorResponse "Store unavailable"
// @Router      /feed/category/{slug} [get]
func (h *Handlers) GetCategoryFeed(c *gin.Context) {
	caller, err := h.caller(c)
	if err != nil {
		writeError(c, err)
		return
	}

	cat, cards, err := h.categories.Resolve(c.Request.Context(), c.Param("slug"), caller.Tier, h.cal.Today())
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, CategoryFeedResponse{Category: cat, Cards: nonNil(cards)})
}
