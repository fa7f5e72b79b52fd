package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-card-feed/internal/domain"
	"github.com/tbourn/go-card-feed/internal/services"
	"github.com/tbourn/go-card-feed/internal/utils"
)

// GameResponse is the body of GET /games?card_id=ID.
type GameResponse struct {
	Game *domain.FeedCard `json:"game"`
}

// GamesResponse is the body of GET /games.
type GamesResponse struct {
	Games []domain.FeedCard `json:"games"`
}

// GetGames godoc
// @ID          getGames
// @Summary     Games
// @Description Lists visible game cards with their metadata, or returns one game when card_id is given. ar_only=true overrides type.
// @Tags        Games
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (set by the gateway)"  example(user123)
// @Param       type       query   string  false "Game kind"  Enums(all, html, ar) default(all)
// @Param       ar_only    query   bool    false "Only AR games"
// @Param       card_id    query   int     false "Return a single game"  minimum(1)
//
// @Success     200  {object} handlers.GamesResponse
// @Success     200  {object} handlers.GameResponse
// @Failure     400  {object} handlers.ErrorResponse "Malformed parameters"
// @Failure     404  {object} handlers.ErrorResponse "Game not found"
// @Failure     503  {object} handlers.ErrorResponse "Store unavailable"
// @Router      /games [get]
func (h *Handlers) GetGames(c *gin.Context) {
	kind, err := services.ParseGameKind(c.Query("type"))
	if err != nil {
		writeError(c, err)
		return
	}
	arOnly, err := utils.BoolDefault(c.Query("ar_only"), false)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "ar_only must be a boolean")
		return
	}
	cardID, err := utils.OptionalID(c.Query("card_id"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "card_id must be a positive integer")
		return
	}

	caller, err := h.caller(c)
	if err != nil {
		writeError(c, err)
		return
	}
	ctx, today := c.Request.Context(), h.cal.Today()

	if cardID != nil {
		g, err := h.games.Get(ctx, *cardID, caller.Tier, today)
		if err != nil {
			writeError(c, err)
			return
		}
		ok(c, http.StatusOK, GameResponse{Game: g})
		return
	}

	games, err := h.games.List(ctx, services.GameFilter{Kind: kind, AROnly: arOnly}, caller.Tier, today)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, GamesResponse{Games: nonNil(games)})
}
