package games

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed plinko_tables.json
var plinkoTablesJSON []byte

var plinkoPayoutTables = loadPlinkoTables()

func loadPlinkoTables() map[PlinkoRisk][]float64 {
	raw := map[string][]float64{}
	if err := json.Unmarshal(plinkoTablesJSON, &raw); err != nil {
		panic(fmt.Sprintf("failed to parse plinko payout tables: %v", err))
	}

	result := make(map[PlinkoRisk][]float64, len(raw))
	for risk, multipliers := range raw {
		if _, err := ParsePlinkoRisk(risk); err != nil {
			panic(fmt.Sprintf("unknown risk key %q in plinko tables", risk))
		}
		if len(multipliers) < 3 || len(multipliers)%2 == 0 {
			panic(fmt.Sprintf("plinko table for risk %q must have an odd number of slots, got %d", risk, len(multipliers)))
		}
		// Tables must be symmetric around the center slot.
		for i := range multipliers {
			if multipliers[i] != multipliers[len(multipliers)-1-i] {
				panic(fmt.Sprintf("plinko table for risk %q is not symmetric at index %d", risk, i))
			}
		}
		copied := make([]float64, len(multipliers))
		copy(copied, multipliers)
		result[PlinkoRisk(risk)] = copied
	}

	return result
}

// PlinkoTable returns the multiplier table for a risk tier. The slice is
// shared; callers must not mutate it.
func PlinkoTable(risk PlinkoRisk) ([]float64, error) {
	table, ok := plinkoPayoutTables[risk]
	if !ok {
		return nil, fmt.Errorf("unknown plinko risk: %s", risk)
	}
	return table, nil
}
