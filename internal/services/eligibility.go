package services

import (
	"github.com/tbourn/go-card-feed/internal/domain"
)

// IsEligible reports whether card may be shown to a caller of the given tier
// on the given day. A card is eligible when it is active, its minimum tier
// does not exceed tier, and its publish date (if any) is not after today.
//
// For a fixed card and day, raising tier never makes the card ineligible.
func IsEligible(card domain.Card, tier int, today domain.Date) bool {
	if !card.Active {
		return false
	}
	if card.MinMembershipTier > tier {
		return false
	}
	if card.PublishDate != nil && card.PublishDate.After(today) {
		return false
	}
	return true
}

// filterEligible returns the eligible subset of cards in their original order.
func filterEligible(cards []domain.Card, tier int, today domain.Date) []domain.Card {
	out := cards[:0:0]
	for _, c := range cards {
		if IsEligible(c, tier, today) {
			out = append(out, c)
		}
	}
	return out
}
