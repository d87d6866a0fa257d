package games

import (
	"math"

	"github.com/shopspring/decimal"
)

// GameStats is the house-edge bookkeeping for one game. HouseEdge and
// RTP always sum to 1; simulation tooling checks achieved return
// against the RTP recorded here.
type GameStats struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	HouseEdge float64 `json:"house_edge"`
	RTP       float64 `json:"rtp"`
}

var (
	// CrashStats drives the crash point distribution directly: draws
	// below HouseEdge bust instantly, the rest follow RTP/r.
	CrashStats = GameStats{ID: "crash", Name: "Crash", HouseEdge: 0.04, RTP: 0.96}

	// PlinkoStats is derived from the mid-risk table, which is the
	// default tier. The curated tables are authoritative; the binomial
	// walk only selects a slot.
	PlinkoStats = GameStats{ID: "plinko", Name: "Plinko", HouseEdge: 1 - plinkoMidRTP, RTP: plinkoMidRTP}

	// SugarRushStats matches the pay-table calibration.
	SugarRushStats = GameStats{ID: "sugarrush", Name: "Sugar Rush", HouseEdge: 0.038, RTP: 0.962}

	// RouletteStats is the exact single-zero edge: every bet pays as if
	// the wheel had 36 pockets while it has 37.
	RouletteStats = GameStats{ID: "roulette", Name: "Roulette", HouseEdge: 1.0 / 37.0, RTP: 36.0 / 37.0}

	// BlackjackStats assumes sound play against the fixed dealer
	// policy; the edge is structural, not distributional.
	BlackjackStats = GameStats{ID: "blackjack", Name: "Blackjack", HouseEdge: 0.005, RTP: 0.995}
)

// AllStats indexes every game's stats by ID.
var AllStats = map[string]GameStats{
	CrashStats.ID:     CrashStats,
	PlinkoStats.ID:    PlinkoStats,
	SugarRushStats.ID: SugarRushStats,
	RouletteStats.ID:  RouletteStats,
	BlackjackStats.ID: BlackjackStats,
}

var plinkoMidRTP = plinkoTableRTP(PlinkoMid)

// plinkoTableRTP is the expected multiplier of one ball: binomial slot
// weights over the fair left/right walk times the table entries.
func plinkoTableRTP(risk PlinkoRisk) float64 {
	table, err := PlinkoTable(risk)
	if err != nil {
		return 0
	}
	steps := len(table) - 1
	total := math.Pow(2, float64(steps))
	var rtp float64
	for slot, mult := range table {
		rtp += binomialCoeff(steps, slot) / total * mult
	}
	return rtp
}

func binomialCoeff(n, k int) float64 {
	if k > n-k {
		k = n - k
	}
	c := 1.0
	for i := 0; i < k; i++ {
		c = c * float64(n-i) / float64(i+1)
	}
	return c
}

// WinAmount converts a stake and multiplier into a coin payout. Coins
// are integral; fractional winnings round down so accumulated float
// error can never mint coins.
func WinAmount(stake int64, multiplier float64) int64 {
	if stake <= 0 || multiplier <= 0 {
		return 0
	}
	amount := decimal.NewFromInt(stake).Mul(decimal.NewFromFloat(multiplier))
	return amount.Floor().IntPart()
}
