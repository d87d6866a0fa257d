package games

import (
	"fmt"
	"strings"

	"github.com/cashx/engine/internal/rng"
)

// PlinkoRows is the number of peg rows on the board. Row r carries r+3
// pegs; the geometry is fixed and only the slot count below matters for
// resolution.
const PlinkoRows = 12

// PlinkoRisk selects a multiplier table.
type PlinkoRisk string

const (
	PlinkoLow  PlinkoRisk = "low"
	PlinkoMid  PlinkoRisk = "mid"
	PlinkoHigh PlinkoRisk = "high"
)

// ParsePlinkoRisk normalizes a risk string.
func ParsePlinkoRisk(s string) (PlinkoRisk, error) {
	switch PlinkoRisk(strings.ToLower(strings.TrimSpace(s))) {
	case PlinkoLow:
		return PlinkoLow, nil
	case PlinkoMid:
		return PlinkoMid, nil
	case PlinkoHigh:
		return PlinkoHigh, nil
	default:
		return "", fmt.Errorf("invalid plinko risk: %q", s)
	}
}

// PlinkoDrop is the resolved outcome of one ball.
type PlinkoDrop struct {
	SlotIndex  int      `json:"slot_index"`
	Multiplier float64  `json:"multiplier"`
	Directions []string `json:"directions"`
}

// DropBall resolves a plinko ball for the given risk tier. The landing
// slot is sampled by a binomial walk: one fair left/right step per slot
// boundary, final displacement = number of right steps. The walk length
// is derived from the table so the slot index always lands in
// [0, len(table)-1]; the recorded directions let a presentation layer
// animate the descent without recomputing anything.
func DropBall(risk PlinkoRisk, src rng.Source) (PlinkoDrop, error) {
	table, err := PlinkoTable(risk)
	if err != nil {
		return PlinkoDrop{}, err
	}

	steps := len(table) - 1
	directions := make([]string, steps)
	slot := 0
	for i := 0; i < steps; i++ {
		if src.Float() >= 0.5 {
			slot++
			directions[i] = "right"
		} else {
			directions[i] = "left"
		}
	}

	return PlinkoDrop{
		SlotIndex:  slot,
		Multiplier: table[slot],
		Directions: directions,
	}, nil
}
