package services

import (
	"testing"

	"github.com/tbourn/go-card-feed/internal/domain"
)

func TestIsEligible(t *testing.T) {
	today := domain.MustParseDate("2025-06-01")
	yesterday, tomorrow := today.AddDays(-1), today.AddDays(1)

	cases := []struct {
		name string
		card domain.Card
		tier int
		want bool
	}{
		{"active, no publish date", domain.Card{Active: true, MinMembershipTier: 1}, 1, true},
		{"inactive", domain.Card{Active: false, MinMembershipTier: 1}, 5, false},
		{"tier too low", domain.Card{Active: true, MinMembershipTier: 2}, 1, false},
		{"tier equal", domain.Card{Active: true, MinMembershipTier: 2}, 2, true},
		{"published yesterday", domain.Card{Active: true, MinMembershipTier: 1, PublishDate: &yesterday}, 1, true},
		{"published today", domain.Card{Active: true, MinMembershipTier: 1, PublishDate: &today}, 1, true},
		{"published tomorrow", domain.Card{Active: true, MinMembershipTier: 1, PublishDate: &tomorrow}, 9, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsEligible(tc.card, tc.tier, today); got != tc.want {
				t.Fatalf("IsEligible = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsEligible_MonotonicInTier(t *testing.T) {
	today := domain.MustParseDate("2025-06-01")
	tomorrow := today.AddDays(1)
	cards := []domain.Card{
		{Active: true, MinMembershipTier: 1},
		{Active: true, MinMembershipTier: 3},
		{Active: false, MinMembershipTier: 1},
		{Active: true, MinMembershipTier: 2, PublishDate: &tomorrow},
	}
	for _, c := range cards {
		seen := false
		for tier := 1; tier <= 5; tier++ {
			ok := IsEligible(c, tier, today)
			if seen && !ok {
				t.Fatalf("card %+v eligible below tier %d but not at it", c, tier)
			}
			seen = seen || ok
		}
	}
}

func TestFilterEligible_KeepsOrder(t *testing.T) {
	today := domain.MustParseDate("2025-06-01")
	in := []domain.Card{
		{ID: 3, Active: true, MinMembershipTier: 1},
		{ID: 2, Active: false, MinMembershipTier: 1},
		{ID: 1, Active: true, MinMembershipTier: 1},
	}
	out := filterEligible(in, 1, today)
	if len(out) != 2 || out[0].ID != 3 || out[1].ID != 1 {
		t.Fatalf("unexpected filter result: %+v", out)
	}
	if len(in) != 3 || in[1].ID != 2 {
		t.Fatal("input slice must not be modified")
	}
}
