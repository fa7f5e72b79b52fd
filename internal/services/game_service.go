// Package services – GameService
//
// GameService serves the games surface: a single game by card id, or the
// eligible games filtered by variant.
package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-card-feed/internal/domain"
	"github.com/tbourn/go-card-feed/internal/repo"
)

// DefaultGamesLimit caps the games listing.
const DefaultGamesLimit = 100

// GameFilter narrows the games listing. AROnly overrides Kind.
type GameFilter struct {
	Kind   GameKind
	AROnly bool
}

// GameService lists and fetches game cards.
type GameService struct {
	DB      *gorm.DB
	Repo    CardRepo
	Limit   int
	Timeout time.Duration
}

// NewGameService constructs a GameService with default limits.
func NewGameService(db *gorm.DB, r CardRepo) *GameService {
	return &GameService{DB: db, Repo: r, Limit: DefaultGamesLimit, Timeout: DefaultStoreTimeout}
}

// Get returns one classified game. ErrGameNotFound covers a missing card, a
// non-game card, a card the caller may not see, and a game without metadata.
func (s *GameService) Get(ctx context.Context, cardID uint, tier int, today domain.Date) (*domain.FeedCard, error) {
	ctx, cancel := bounded(ctx, s.Timeout)
	defer cancel()

	card, err := s.Repo.GetCard(ctx, s.DB, cardID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrGameNotFound
		}
		return nil, transient("load game", err)
	}
	if card.Type != domain.CardTypeGame || !IsEligible(*card, tier, today) {
		return nil, ErrGameNotFound
	}
	cards, err := annotate(ctx, s.DB, s.Repo, []domain.Card{*card})
	if err != nil {
		return nil, transient("load game metadata", err)
	}
	if len(cards) == 0 {
		return nil, ErrGameNotFound
	}
	return &cards[0], nil
}

// List returns up to Limit eligible games matching f, newest first. The
// variant filter is applied while paging, so older matching games fill the
// list when newer games are of another kind.
func (s *GameService) List(ctx context.Context, f GameFilter, tier int, today domain.Date) ([]domain.FeedCard, error) {
	kind := f.Kind
	if f.AROnly {
		kind = GameKindAR
	}

	ctx, cancel := bounded(ctx, s.Timeout)
	defer cancel()

	limit := s.Limit
	if limit <= 0 {
		limit = DefaultGamesLimit
	}
	q := repo.CardQuery{Types: []domain.CardType{domain.CardTypeGame}, Tier: tier, Today: today}
	games, err := fill(ctx, s.DB, s.Repo, q, []domain.FeedCard{}, limit, map[uint]struct{}{},
		func(g domain.FeedCard) bool { return kind.Matches(g.Variant) })
	if err != nil {
		return nil, transient("list games", err)
	}
	return games, nil
}
