package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/datatypes"

	"github.com/tbourn/go-card-feed/internal/domain"
)

func TestClassify(t *testing.T) {
	kind, empty := "marker", ""
	game := domain.Card{Type: domain.CardTypeGame}

	cases := []struct {
		name   string
		card   domain.Card
		meta   *domain.GameMetadata
		want   domain.Variant
		wantOK bool
	}{
		{"non-game is standard", domain.Card{Type: domain.CardTypeQuiz}, nil, domain.VariantStandard, true},
		{"game without metadata", game, nil, "", false},
		{"html game", game, &domain.GameMetadata{HTML: "<p/>"}, domain.VariantInteractive, true},
		{"full AR", game, &domain.GameMetadata{IsARGame: true, ARType: &kind, ARConfig: datatypes.JSON(`{}`)}, domain.VariantAR, true},
		{"AR flag missing", game, &domain.GameMetadata{ARType: &kind, ARConfig: datatypes.JSON(`{}`)}, domain.VariantInteractive, true},
		{"AR type missing", game, &domain.GameMetadata{IsARGame: true, ARConfig: datatypes.JSON(`{}`)}, domain.VariantInteractive, true},
		{"AR type empty", game, &domain.GameMetadata{IsARGame: true, ARType: &empty, ARConfig: datatypes.JSON(`{}`)}, domain.VariantInteractive, true},
		{"AR config missing", game, &domain.GameMetadata{IsARGame: true, ARType: &kind}, domain.VariantInteractive, true},
		{"AR config null", game, &domain.GameMetadata{IsARGame: true, ARType: &kind, ARConfig: datatypes.JSON(`null`)}, domain.VariantInteractive, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Classify(tc.card, tc.meta)
			if got != tc.want || ok != tc.wantOK {
				t.Fatalf("Classify = (%q, %v), want (%q, %v)", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestParseGameKind(t *testing.T) {
	for in, want := range map[string]GameKind{"": GameKindAll, "all": GameKindAll, "HTML": GameKindHTML, " ar ": GameKindAR} {
		got, err := ParseGameKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseGameKind(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseGameKind("vr"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGameKind_Matches(t *testing.T) {
	if !GameKindAll.Matches(domain.VariantAR) || !GameKindAll.Matches(domain.VariantInteractive) {
		t.Fatal("all must match both game variants")
	}
	if GameKindAll.Matches(domain.VariantStandard) {
		t.Fatal("all must not match standard cards")
	}
	if !GameKindHTML.Matches(domain.VariantInteractive) || GameKindHTML.Matches(domain.VariantAR) {
		t.Fatal("html must match interactive only")
	}
	if !GameKindAR.Matches(domain.VariantAR) || GameKindAR.Matches(domain.VariantInteractive) {
		t.Fatal("ar must match AR only")
	}
}

func TestAnnotate_DropsOrphanGames(t *testing.T) {
	db := newSvcDB(t)
	fx := newFixture(t, db)
	withMeta := fx.game(true)
	orphan := fx.card(domain.CardTypeGame)
	quiz := fx.card(domain.CardTypeQuiz)

	out, err := annotate(context.Background(), db, sqlRepo{}, []domain.Card{withMeta, orphan, quiz})
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if !sameIDs(ids(out), []uint{withMeta.ID, quiz.ID}) {
		t.Fatalf("ids = %v, want orphan dropped", ids(out))
	}
	if out[0].Variant != domain.VariantAR || out[0].Game == nil {
		t.Fatalf("AR game not annotated: %+v", out[0])
	}
	if out[1].Variant != domain.VariantStandard || out[1].Game != nil {
		t.Fatalf("quiz not annotated as standard: %+v", out[1])
	}
}
