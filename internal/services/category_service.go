// Package services – CategoryService
//
// CategoryService resolves a category slug into the cards a caller may see.
// The result merges two sources: cards whose type is mapped to the category
// (newest first, capped) and cards curated into it by explicit link
// (newest first, uncapped). The merge is append-only and keeps the first
// occurrence of every card id.
package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-card-feed/internal/categories"
	"github.com/tbourn/go-card-feed/internal/domain"
	"github.com/tbourn/go-card-feed/internal/repo"
)

// DefaultCategoryLimit caps the type-matched portion of a category feed.
const DefaultCategoryLimit = 50

// CategoryService resolves category feeds.
type CategoryService struct {
	DB      *gorm.DB
	Repo    ContentRepo
	Mapping *categories.Mapping

	// Limit caps the type-matched cards; links are never capped. Game cards
	// without metadata are skipped and do not count toward it.
	Limit int
	// Timeout bounds each store call.
	Timeout time.Duration
}

// NewCategoryService constructs a CategoryService with default limits.
func NewCategoryService(db *gorm.DB, r ContentRepo, m *categories.Mapping) *CategoryService {
	return &CategoryService{
		DB:      db,
		Repo:    r,
		Mapping: m,
		Limit:   DefaultCategoryLimit,
		Timeout: DefaultStoreTimeout,
	}
}

// Resolve returns the category and its eligible cards for a caller of the
// given tier on the given day. The slug is matched case-insensitively. An unknown or inactive slug yields
// ErrCategoryNotFound; a known category with nothing to show yields an empty
// list.
func (s *CategoryService) Resolve(ctx context.Context, slug string, tier int, today domain.Date) (*domain.Category, []domain.FeedCard, error) {
	slug = categories.NormalizeSlug(slug)
	ctx, span := otel.Tracer("services/CategoryService").Start(ctx, "Resolve",
		trace.WithAttributes(
			attribute.String("category.slug", slug),
			attribute.Int("member.tier", tier),
		),
	)
	defer span.End()

	ctx, cancel := bounded(ctx, s.Timeout)
	defer cancel()

	cat, err := s.Repo.GetCategoryBySlug(ctx, s.DB, slug)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrCategoryNotFound
		}
		return nil, nil, transient("load category", err)
	}
	if !cat.Active {
		return nil, nil, ErrCategoryNotFound
	}

	q := repo.CardQuery{Tier: tier, Today: today}
	seen := map[uint]struct{}{}

	cards := []domain.FeedCard{}
	if types := s.mappedTypes(cat.Slug); len(types) > 0 {
		q.Types = types
		cards, err = fill(ctx, s.DB, s.Repo, q, cards, s.limit(), seen, nil)
		if err != nil {
			return nil, nil, transient("list category cards", err)
		}
	}

	q.Types = nil
	linked, err := s.Repo.ListCategoryLinkedCards(ctx, s.DB, cat.ID, q)
	if err != nil {
		return nil, nil, transient("list linked cards", err)
	}
	more, err := annotate(ctx, s.DB, s.Repo, unseen(filterEligible(linked, tier, today), seen))
	if err != nil {
		return nil, nil, transient("load game metadata", err)
	}
	cards = append(cards, more...)
	span.SetAttributes(attribute.Int("feed.cards", len(cards)))
	return cat, cards, nil
}

func (s *CategoryService) mappedTypes(slug string) []domain.CardType {
	if s.Mapping == nil {
		return nil
	}
	return s.Mapping.TypesFor(slug)
}

func (s *CategoryService) limit() int {
	if s.Limit <= 0 {
		return DefaultCategoryLimit
	}
	return s.Limit
}

// unseen returns the cards whose id is not yet in seen, in order, and
// records them. It is how merged sources keep the first occurrence of a card.
func unseen(cards []domain.Card, seen map[uint]struct{}) []domain.Card {
	out := make([]domain.Card, 0, len(cards))
	for _, c := range cards {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}
