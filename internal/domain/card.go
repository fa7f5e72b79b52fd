package domain

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// CardType is the content tag of a card. The set is open-ended: unknown tags
// are stored and served, Known only reports whether a tag is one of the
// built-in ones.
type CardType string

// Built-in card types.
const (
	CardTypeGame             CardType = "game"
	CardTypeQuiz             CardType = "quiz"
	CardTypeMeme             CardType = "meme"
	CardTypeShareCard        CardType = "share_card"
	CardTypeArticle          CardType = "article"
	CardTypeDevotional       CardType = "devotional"
	CardTypeThoughtProvoking CardType = "thought_provoking"
	CardTypeMotivational     CardType = "motivational"
	CardTypeVisual           CardType = "visual"
	CardTypeFact             CardType = "fact"
	CardTypeRiddle           CardType = "riddle"
	CardTypeJoke             CardType = "joke"
	CardTypeJournal          CardType = "journal"
	CardTypeJournalPrompt    CardType = "journal_prompt"
	CardTypePrayer           CardType = "prayer"
)

var knownCardTypes = map[CardType]struct{}{
	CardTypeGame: {}, CardTypeQuiz: {}, CardTypeMeme: {}, CardTypeShareCard: {},
	CardTypeArticle: {}, CardTypeDevotional: {}, CardTypeThoughtProvoking: {},
	CardTypeMotivational: {}, CardTypeVisual: {}, CardTypeFact: {},
	CardTypeRiddle: {}, CardTypeJoke: {}, CardTypeJournal: {},
	CardTypeJournalPrompt: {}, CardTypePrayer: {},
}

// NormalizeCardType trims and case-folds a raw tag ("  Share_Card " → "share_card").
// A Caser holds state, so one is built per call.
func NormalizeCardType(s string) CardType {
	return CardType(cases.Fold().String(strings.TrimSpace(s)))
}

// Known reports whether t is one of the built-in card types.
func (t CardType) Known() bool {
	_, ok := knownCardTypes[t]
	return ok
}

// Variant is the structural sub-kind of a card.
type Variant string

const (
	VariantStandard    Variant = "standard"
	VariantInteractive Variant = "interactive"
	VariantAR          Variant = "ar"
)

// FeedCard is a card as served to clients: the card itself, its variant, and
// for game cards the metadata needed to render it.
type FeedCard struct {
	Card
	Variant Variant       `json:"variant"`
	Game    *GameMetadata `json:"game,omitempty"`
}

// FeedResult is the ordered card list produced for one cache key.
type FeedResult struct {
	Cards       []FeedCard `json:"cards"`
	GeneratedAt time.Time  `json:"generated_at"`

	// Cached is set on the way out of the cache and is never persisted.
	Cached bool `json:"-"`
}
