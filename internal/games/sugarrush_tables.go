package games

// sugarRushTiers are the pay-table size thresholds, largest first so the
// highest qualifying tier is found first.
var sugarRushTiers = []int{15, 10, 8, 7, 6, 5}

// sugarRushPayTable maps symbol → cluster-size threshold → multiplier.
// Calibrated for a 96.2% RTP with the uniform 8-symbol 7×7 grid.
var sugarRushPayTable = map[string]map[int]float64{
	"🍬": {5: 1.5, 6: 2, 7: 3, 8: 5, 10: 10, 15: 50},
	"🍭": {5: 1.5, 6: 2, 7: 3, 8: 5, 10: 10, 15: 50},
	"🧸": {5: 2, 6: 3, 7: 5, 8: 8, 10: 15, 15: 75},
	"⭐": {5: 2.5, 6: 4, 7: 6, 8: 10, 10: 20, 15: 100},
	"💚": {5: 3, 6: 5, 7: 8, 8: 12, 10: 25, 15: 150},
	"💜": {5: 4, 6: 6, 7: 10, 8: 15, 10: 30, 15: 200},
	"❤️": {5: 5, 6: 8, 7: 12, 8: 20, 10: 50, 15: 500},
	"🍇": {5: 8, 6: 12, 7: 20, 8: 30, 10: 100, 15: 1000},
}
