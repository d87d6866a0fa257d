package games

// DealerStandsOn is the fixed dealer stand threshold. The dealer draws
// while its hand value is strictly below this.
const DealerStandsOn = 17

// BlackjackPays is the bonus payout ratio for a natural (3:2).
const BlackjackPays = 1.5

// HandValue calculates the best blackjack hand value. Aces count 11
// first, then demote to 1 one at a time while the total busts.
func HandValue(cards []Card) int {
	total := 0
	aces := 0
	for _, c := range cards {
		total += cardValue(c.Rank)
		if c.Rank == "A" {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// IsNatural reports whether a hand is a two-card 21 dealt before any hit.
// A natural is a distinct terminal classification from a drawn 21.
func IsNatural(cards []Card) bool {
	return len(cards) == 2 && HandValue(cards) == 21
}

// IsBust reports whether a hand exceeds 21 after all ace demotion.
func IsBust(cards []Card) bool {
	return HandValue(cards) > 21
}

// DealerDraw applies the fixed dealer policy: draw from the shoe while
// the hand value is below DealerStandsOn. Returns the completed hand.
// The caller is responsible for the shoe's reshuffle policy.
func DealerDraw(hand []Card, shoe *Shoe) []Card {
	for HandValue(hand) < DealerStandsOn {
		hand = append(hand, shoe.Draw())
	}
	return hand
}
