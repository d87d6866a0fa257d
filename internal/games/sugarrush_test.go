package games

import (
	"testing"

	"github.com/cashx/engine/internal/rng"
)

// fillGrid builds a grid entirely of one symbol.
func fillGrid(symbol string) [][]string {
	grid := make([][]string, SugarRushRows)
	for r := range grid {
		grid[r] = make([]string, SugarRushCols)
		for c := range grid[r] {
			grid[r][c] = symbol
		}
	}
	return grid
}

func TestGenerateGridShape(t *testing.T) {
	src := rng.NewSeededSource("sugar", "grid", 1, 0)
	grid := GenerateGrid(SugarRushRows, SugarRushCols, src)

	if len(grid) != SugarRushRows {
		t.Fatalf("grid has %d rows, want %d", len(grid), SugarRushRows)
	}
	valid := make(map[string]bool, len(SugarRushSymbols))
	for _, s := range SugarRushSymbols {
		valid[s] = true
	}
	for r, row := range grid {
		if len(row) != SugarRushCols {
			t.Fatalf("row %d has %d cols, want %d", r, len(row), SugarRushCols)
		}
		for c, sym := range row {
			if !valid[sym] {
				t.Errorf("cell (%d,%d) holds unknown symbol %q", r, c, sym)
			}
		}
	}
}

func TestFindClustersSingleLine(t *testing.T) {
	// One straight 5-cell line of 🍬 on an otherwise 🍇 grid.
	grid := fillGrid("🍇")
	// Break up the 🍇 background so it cannot form its own cluster is
	// impossible on a full grid; instead alternate two fillers.
	for r := range grid {
		for c := range grid[r] {
			if (r+c)%2 == 0 {
				grid[r][c] = "🍭"
			}
		}
	}
	for c := 1; c <= 5; c++ {
		grid[3][c] = "🍬"
	}

	clusters := FindClusters(grid)
	if len(clusters) != 1 {
		t.Fatalf("found %d clusters, want exactly 1", len(clusters))
	}
	cl := clusters[0]
	if cl.Symbol != "🍬" {
		t.Errorf("cluster symbol %q, want 🍬", cl.Symbol)
	}
	if cl.Size != 5 {
		t.Errorf("cluster size %d, want 5", cl.Size)
	}
	if got := PriceCluster(cl); got != 1.5 {
		t.Errorf("tier-5 🍬 multiplier = %f, want 1.5", got)
	}
}

func TestFindClustersChecksAdjacencyNotDiagonals(t *testing.T) {
	grid := fillGrid("🍭")
	for r := range grid {
		for c := range grid[r] {
			if (r+c)%2 == 0 {
				grid[r][c] = "⭐"
			}
		}
	}
	// A checkerboard has no 4-adjacent same-symbol pairs at all.
	if clusters := FindClusters(grid); len(clusters) != 0 {
		t.Errorf("checkerboard grid yielded %d clusters, want 0", len(clusters))
	}
}

func TestFindClustersBelowMinimum(t *testing.T) {
	grid := fillGrid("🍇")
	for r := range grid {
		for c := range grid[r] {
			if (r+c)%2 == 0 {
				grid[r][c] = "🍭"
			}
		}
	}
	for c := 1; c <= 4; c++ {
		grid[2][c] = "🧸"
	}
	for _, cl := range FindClusters(grid) {
		if cl.Symbol == "🧸" {
			t.Errorf("4-cell region should not qualify, got cluster of size %d", cl.Size)
		}
	}
}

func TestPriceClusterTiers(t *testing.T) {
	tests := []struct {
		symbol string
		size   int
		want   float64
	}{
		{"🍬", 5, 1.5},
		{"🍬", 9, 5},    // tier 8 applies up to size 9
		{"🍬", 14, 10},  // tier 10
		{"🍬", 15, 50},  // top tier
		{"🍬", 49, 50},  // oversized clusters stay in the top tier
		{"🍇", 5, 8},
		{"🍇", 15, 1000},
		{"❤️", 7, 12},
	}
	for _, tt := range tests {
		cl := Cluster{Symbol: tt.symbol, Size: tt.size}
		if got := PriceCluster(cl); got != tt.want {
			t.Errorf("PriceCluster(%s size %d) = %f, want %f", tt.symbol, tt.size, got, tt.want)
		}
	}
}

func TestPriceClusterUnknownSymbol(t *testing.T) {
	if got := PriceCluster(Cluster{Symbol: "🎲", Size: 10}); got != 0 {
		t.Errorf("unknown symbol priced at %f, want 0", got)
	}
}

func TestTotalWinSumsIndependentClusters(t *testing.T) {
	clusters := []Cluster{
		{Symbol: "🍬", Size: 5}, // 1.5
		{Symbol: "🧸", Size: 6}, // 3
	}
	if got := TotalWin(clusters, 100); got != 450 {
		t.Errorf("TotalWin = %d, want 450", got)
	}
	if got := TotalWin(nil, 100); got != 0 {
		t.Errorf("TotalWin with no clusters = %d, want 0", got)
	}
}

func TestTotalWinFloors(t *testing.T) {
	clusters := []Cluster{{Symbol: "🍬", Size: 5}} // 1.5x
	if got := TotalWin(clusters, 33); got != 49 { // floor(33*1.5)=49
		t.Errorf("TotalWin(33 × 1.5) = %d, want 49", got)
	}
}
