package games

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cashx/engine/internal/rng"
)

// RoulettePockets is the European single-zero pocket count (0-36).
const RoulettePockets = 37

// Red pockets of the European wheel; 0 is green, the rest are black.
var rouletteRed = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true,
	12: true, 14: true, 16: true, 18: true, 19: true,
	21: true, 23: true, 25: true, 27: true, 30: true,
	32: true, 34: true, 36: true,
}

// Fixed payout ratios (winnings per unit staked, stake returned on top).
var roulettePayouts = map[string]int64{
	"straight": 35,
	"split":    17,
	"street":   11,
	"corner":   8,
	"line":     5,
	"dozen":    2,
	"column":   2,
	"red":      1, "black": 1,
	"odd": 1, "even": 1,
	"low": 1, "high": 1,
}

// SpinWheel draws a uniform pocket in [0, 36].
func SpinWheel(src rng.Source) int {
	return rng.Intn(src, RoulettePockets)
}

// PocketColor classifies a pocket: green for 0, else red or black per
// the fixed partition.
func PocketColor(n int) string {
	if n == 0 {
		return "green"
	}
	if rouletteRed[n] {
		return "red"
	}
	return "black"
}

// RouletteBets maps bet identifiers to staked amounts. Keys are unique,
// insertion order irrelevant. Recognized identifiers: "red", "black",
// "odd", "even", "low", "high", "dozen1".."dozen3", "col1".."col3",
// and "num_N" for straight bets on pocket N.
type RouletteBets map[string]int64

// Total returns the combined stake across all placed bets.
func (b RouletteBets) Total() int64 {
	var total int64
	for _, amount := range b {
		total += amount
	}
	return total
}

// Validate rejects unknown identifiers and non-positive stakes before
// any wager is accepted.
func (b RouletteBets) Validate() error {
	for id, amount := range b {
		if amount <= 0 {
			return fmt.Errorf("bet %q has non-positive stake %d", id, amount)
		}
		if !validBetID(id) {
			return fmt.Errorf("unknown bet identifier %q", id)
		}
	}
	return nil
}

func validBetID(id string) bool {
	switch id {
	case "red", "black", "odd", "even", "low", "high",
		"dozen1", "dozen2", "dozen3", "col1", "col2", "col3":
		return true
	}
	if n, ok := straightNumber(id); ok {
		return n >= 0 && n < RoulettePockets
	}
	return false
}

func straightNumber(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, "num_")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

// betWins evaluates one bet identifier's win predicate against a pocket.
func betWins(id string, pocket int) bool {
	switch id {
	case "red":
		return PocketColor(pocket) == "red"
	case "black":
		return PocketColor(pocket) == "black"
	case "odd":
		return pocket > 0 && pocket%2 == 1
	case "even":
		return pocket > 0 && pocket%2 == 0
	case "low":
		return pocket >= 1 && pocket <= 18
	case "high":
		return pocket >= 19 && pocket <= 36
	case "dozen1":
		return pocket >= 1 && pocket <= 12
	case "dozen2":
		return pocket >= 13 && pocket <= 24
	case "dozen3":
		return pocket >= 25 && pocket <= 36
	case "col1":
		return pocket > 0 && pocket%3 == 1
	case "col2":
		return pocket > 0 && pocket%3 == 2
	case "col3":
		return pocket > 0 && pocket%3 == 0
	}
	if n, ok := straightNumber(id); ok {
		return n == pocket
	}
	return false
}

func betPayout(id string) int64 {
	if _, ok := straightNumber(id); ok {
		return roulettePayouts["straight"]
	}
	switch id {
	case "dozen1", "dozen2", "dozen3":
		return roulettePayouts["dozen"]
	case "col1", "col2", "col3":
		return roulettePayouts["column"]
	}
	if p, ok := roulettePayouts[id]; ok {
		return p
	}
	return 1
}

// ResolveBets evaluates every placed bet against a single pocket draw
// and returns total winnings. A winning bet returns stake plus
// stake×payout; a losing bet returns nothing. Bets are independent.
func ResolveBets(bets RouletteBets, pocket int) int64 {
	var total int64
	for id, stake := range bets {
		if betWins(id, pocket) {
			total += stake + stake*betPayout(id)
		}
	}
	return total
}
