// Package services – Variant Classifier
//
// Classify derives the structural sub-kind of a card from its type and, for
// games, its metadata. annotate applies it to a card list, loading metadata in
// one batch and dropping game cards that cannot be rendered.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-card-feed/internal/domain"
	"github.com/tbourn/go-card-feed/internal/repo"
)

// Classify returns the variant of card. Non-game cards are standard. A game
// card is AR when meta satisfies the AR conjunction (see GameMetadata.IsAR)
// and interactive otherwise. A game card without metadata has no variant and
// ok is false.
func Classify(card domain.Card, meta *domain.GameMetadata) (v domain.Variant, ok bool) {
	if card.Type != domain.CardTypeGame {
		return domain.VariantStandard, true
	}
	if meta == nil {
		return "", false
	}
	if meta.IsAR() {
		return domain.VariantAR, true
	}
	return domain.VariantInteractive, true
}

// GameKind filters the games listing.
type GameKind string

const (
	GameKindAll  GameKind = "all"
	GameKindHTML GameKind = "html"
	GameKindAR   GameKind = "ar"
)

// ParseGameKind accepts "", "all", "html" and "ar" (case-insensitive).
// An empty value means all.
func ParseGameKind(s string) (GameKind, error) {
	switch k := GameKind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return GameKindAll, nil
	case GameKindAll, GameKindHTML, GameKindAR:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown game type %q", ErrInvalidInput, s)
	}
}

// Matches reports whether a game of variant v belongs to kind k.
func (k GameKind) Matches(v domain.Variant) bool {
	switch k {
	case GameKindHTML:
		return v == domain.VariantInteractive
	case GameKindAR:
		return v == domain.VariantAR
	default:
		return v == domain.VariantInteractive || v == domain.VariantAR
	}
}

// annotate classifies cards in order. Game metadata is fetched in one query;
// game cards without metadata are logged and omitted.
func annotate(ctx context.Context, db *gorm.DB, r CardRepo, cards []domain.Card) ([]domain.FeedCard, error) {
	var gameIDs []uint
	for _, c := range cards {
		if c.Type == domain.CardTypeGame {
			gameIDs = append(gameIDs, c.ID)
		}
	}

	metaByCard := map[uint]*domain.GameMetadata{}
	if len(gameIDs) > 0 {
		metas, err := r.ListGameMetadata(ctx, db, gameIDs)
		if err != nil {
			return nil, err
		}
		for i := range metas {
			metaByCard[metas[i].CardID] = &metas[i]
		}
	}

	out := make([]domain.FeedCard, 0, len(cards))
	for _, c := range cards {
		meta := metaByCard[c.ID]
		v, ok := Classify(c, meta)
		if !ok {
			zerolog.Ctx(ctx).Warn().
				Uint("card_id", c.ID).
				Msg("game card has no metadata; omitted")
			continue
		}
		out = append(out, domain.FeedCard{Card: c, Variant: v, Game: meta})
	}
	return out, nil
}

// fill pages through ListCards(q) and appends annotated cards to out until
// out holds limit cards or the listing runs dry. Ids already in seen are
// skipped and recorded; keep, when set, rejects cards after classification.
// Paging before the cap means dropped cards (orphan games, filtered
// variants) never shorten a page that more eligible rows could fill.
func fill(ctx context.Context, db *gorm.DB, r CardRepo, q repo.CardQuery, out []domain.FeedCard, limit int, seen map[uint]struct{}, keep func(domain.FeedCard) bool) ([]domain.FeedCard, error) {
	q.Limit, q.Offset = limit, 0
	for len(out) < limit {
		page, err := r.ListCards(ctx, db, q)
		if err != nil {
			return nil, err
		}
		cards, err := annotate(ctx, db, r, unseen(filterEligible(page, q.Tier, q.Today), seen))
		if err != nil {
			return nil, err
		}
		for _, fc := range cards {
			if keep != nil && !keep(fc) {
				continue
			}
			out = append(out, fc)
			if len(out) == limit {
				break
			}
		}
		if len(page) < q.Limit {
			break
		}
		q.Offset += len(page)
	}
	return out, nil
}
