package games

import "github.com/cashx/engine/internal/rng"

// Card represents a playing card with rank and suit. Immutable once drawn.
type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

// String returns a human-readable card representation like "♠A" or "♦2".
func (c Card) String() string {
	return c.Suit + c.Rank
}

// Suits in display order: ♠, ♥, ♦, ♣
var cardSuits = []string{"♠", "♥", "♦", "♣"}

// Ranks in order: A, 2-10, J, Q, K
var cardRanks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

const (
	// DefaultShoeDecks is the number of standard decks in a fresh shoe.
	DefaultShoeDecks = 6

	// ShoeLowWater is the remaining-card count below which the shoe must
	// be rebuilt before the next deal.
	ShoeLowWater = 20
)

// Shoe is a shuffled multi-deck working set of cards. Cards are dealt
// from the end. A Shoe is owned by exactly one blackjack session.
type Shoe struct {
	cards []Card
}

// NewShoe builds numDecks standard 52-card decks and applies a
// Fisher-Yates shuffle using src, yielding a uniform random permutation.
func NewShoe(numDecks int, src rng.Source) *Shoe {
	if numDecks <= 0 {
		numDecks = DefaultShoeDecks
	}
	cards := make([]Card, 0, numDecks*52)
	for d := 0; d < numDecks; d++ {
		for _, suit := range cardSuits {
			for _, rank := range cardRanks {
				cards = append(cards, Card{Rank: rank, Suit: suit})
			}
		}
	}
	rng.Shuffle(src, len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return &Shoe{cards: cards}
}

// StackedShoe builds an unshuffled shoe holding exactly the given
// cards, dealt from the end. Intended for deterministic replays and
// tests; live sessions always use NewShoe.
func StackedShoe(cards ...Card) *Shoe {
	return &Shoe{cards: append([]Card(nil), cards...)}
}

// Remaining reports how many cards are left in the shoe.
func (s *Shoe) Remaining() int {
	return len(s.cards)
}

// NeedsReshuffle reports whether the shoe has fallen below the low-water
// mark and must be replaced before the next deal.
func (s *Shoe) NeedsReshuffle() bool {
	return len(s.cards) < ShoeLowWater
}

// Draw removes and returns the top card. Drawing from an empty shoe is a
// bug in the caller's reshuffle policy, not a recoverable condition.
func (s *Shoe) Draw() Card {
	if len(s.cards) == 0 {
		panic("games: draw from exhausted shoe")
	}
	c := s.cards[len(s.cards)-1]
	s.cards = s.cards[:len(s.cards)-1]
	return c
}

// cardValue returns the blackjack point value of a card.
// 2-10: face value, J/Q/K: 10, A: 11 (soft).
func cardValue(rank string) int {
	switch rank {
	case "A":
		return 11
	case "J", "Q", "K", "10":
		return 10
	case "2":
		return 2
	case "3":
		return 3
	case "4":
		return 4
	case "5":
		return 5
	case "6":
		return 6
	case "7":
		return 7
	case "8":
		return 8
	case "9":
		return 9
	default:
		return 0
	}
}
