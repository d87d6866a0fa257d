// Package missions tracks long-running player objectives across game
// rounds and pays out coin rewards when they are claimed.
package missions

// Kind determines how a mission's progress advances.
type Kind string

const (
	// KindPlayCount advances on every round of the mission's game.
	KindPlayCount Kind = "play_count"
	// KindWinCount advances on every won round of the mission's game.
	KindWinCount Kind = "win_count"
	// KindAnyCount advances on every round of any game.
	KindAnyCount Kind = "any_count"
	// KindBigWin completes on a single payout above BigWinThreshold.
	KindBigWin Kind = "big_win"
	// KindPlayAll advances once per distinct game played.
	KindPlayAll Kind = "play_all"
)

// BigWinThreshold is the single-round payout a big-win mission requires.
const BigWinThreshold = 5000

// Definition describes one mission.
type Definition struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Kind        Kind   `json:"kind"`
	Game        string `json:"game,omitempty"`
	Target      int    `json:"target"`
	Reward      int64  `json:"reward"`
	Icon        string `json:"icon"`
}

// Defaults returns the built-in mission set.
func Defaults() []Definition {
	return []Definition{
		{
			ID:          "crash_10",
			Title:       "Crash Pilot",
			Description: "Play 10 rounds of Crash",
			Kind:        KindPlayCount,
			Game:        "crash",
			Target:      10,
			Reward:      500,
			Icon:        "🚀",
		},
		{
			ID:          "plinko_5",
			Title:       "Plinko Master",
			Description: "Play 5 rounds of Plinko",
			Kind:        KindPlayCount,
			Game:        "plinko",
			Target:      5,
			Reward:      300,
			Icon:        "🔮",
		},
		{
			ID:          "blackjack_win_3",
			Title:       "Blackjack Ace",
			Description: "Win 3 rounds of Blackjack",
			Kind:        KindWinCount,
			Game:        "blackjack",
			Target:      3,
			Reward:      750,
			Icon:        "🃏",
		},
		{
			ID:          "roulette_10",
			Title:       "Roulette King",
			Description: "Play 10 rounds of Roulette",
			Kind:        KindPlayCount,
			Game:        "roulette",
			Target:      10,
			Reward:      500,
			Icon:        "🎡",
		},
		{
			ID:          "sugar_rush_5",
			Title:       "Sugar Addict",
			Description: "Play 5 rounds of Sugar Rush",
			Kind:        KindPlayCount,
			Game:        "sugarrush",
			Target:      5,
			Reward:      400,
			Icon:        "🍬",
		},
		{
			ID:          "big_win",
			Title:       "Big Winner",
			Description: "Win more than 5000 coins in a single round",
			Kind:        KindBigWin,
			Target:      1,
			Reward:      2000,
			Icon:        "💎",
		},
		{
			ID:          "play_all",
			Title:       "Explorer",
			Description: "Play each of the 5 games at least once",
			Kind:        KindPlayAll,
			Target:      5,
			Reward:      1000,
			Icon:        "🗺️",
		},
		{
			ID:          "total_50",
			Title:       "Dedicated Player",
			Description: "Play 50 rounds in total",
			Kind:        KindAnyCount,
			Target:      50,
			Reward:      3000,
			Icon:        "🏆",
		},
	}
}
