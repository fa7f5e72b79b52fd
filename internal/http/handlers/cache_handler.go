package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CacheClearResponse is the body of both cache invalidation endpoints.
// Deleted is reported by the admin endpoint only.
type CacheClearResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"feed cache cleared"`
	Deleted *int64 `json:"deleted,omitempty" example:"42"`
}

// ClearOwnFeedCache godoc
// @ID          clearOwnFeedCache
// @Summary     Clear own feed cache
// @Description Drops the caller's cached feeds for today so the next GET /feed recomputes. Other users are unaffected.
// @Tags        Feed cache
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "User ID (set by the gateway)"  example(user123)
//
// @Success     200  {object} handlers.CacheClearResponse
// @Failure     401  {object} handlers.ErrorResponse "Anonymous caller"
// @Failure     503  {object} handlers.ErrorResponse "Cache unavailable"
// @Router      /feed/cache/clear [post]
func (h *Handlers) ClearOwnFeedCache(c *gin.Context) {
	caller, err := h.caller(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if _, err := h.cache.ClearSelf(c.Request.Context(), caller); err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, CacheClearResponse{Success: true, Message: "feed cache cleared"})
}

// ClearAllFeedCaches godoc
// @ID          clearAllFeedCaches
// @Summary     Clear every user's feed cache
// @Description Admin only. Drops all users' cached feeds for today. Entries of other days are untouched.
// @Tags        Feed cache
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Admin user ID (set by the gateway)"  example(admin)
//
// @Success     200  {object} handlers.CacheClearResponse
// @Failure     401  {object} handlers.ErrorResponse "Anonymous caller"
// @Failure     403  {object} handlers.ErrorResponse "Caller is not an admin"
// @Failure     503  {object} handlers.ErrorResponse "Cache unavailable"
// @Router      /feed/cache/clear [delete]
func (h *Handlers) ClearAllFeedCaches(c *gin.Context) {
	caller, err := h.caller(c)
	if err != nil {
		writeError(c, err)
		return
	}
	n, err := h.cache.ClearAll(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, CacheClearResponse{
		Success: true,
		Message: "feed cache cleared for all users",
		Deleted: &n,
	})
}
