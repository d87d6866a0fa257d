package games

import (
	"github.com/cashx/engine/internal/rng"
)

const (
	// SugarRushRows and SugarRushCols fix the symbol grid size.
	SugarRushRows = 7
	SugarRushCols = 7

	// MinClusterSize is the smallest connected region that pays.
	MinClusterSize = 5
)

// SugarRushSymbols is the uniform symbol set, cheapest first.
var SugarRushSymbols = []string{"🍬", "🍭", "🧸", "⭐", "💚", "💜", "❤️", "🍇"}

// Cell addresses one grid position.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Cluster is a connected same-symbol region of qualifying size. Derived
// from a grid each spin, never mutated.
type Cluster struct {
	Symbol string `json:"symbol"`
	Cells  []Cell `json:"cells"`
	Size   int    `json:"size"`
}

// GenerateGrid samples every cell independently and uniformly from the
// symbol set. The grid is replaced wholesale each spin.
func GenerateGrid(rows, cols int, src rng.Source) [][]string {
	grid := make([][]string, rows)
	for r := range grid {
		grid[r] = make([]string, cols)
		for c := range grid[r] {
			grid[r][c] = SugarRushSymbols[rng.Intn(src, len(SugarRushSymbols))]
		}
	}
	return grid
}

// FindClusters runs a connected-component search over same-symbol cells
// with 4-directional adjacency. Components of size >= MinClusterSize
// qualify; each cell belongs to at most one cluster.
func FindClusters(grid [][]string) []Cluster {
	rows := len(grid)
	if rows == 0 {
		return nil
	}
	cols := len(grid[0])

	visited := make([][]bool, rows)
	for r := range visited {
		visited[r] = make([]bool, cols)
	}

	var clusters []Cluster
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if visited[r][c] {
				continue
			}
			symbol := grid[r][c]
			var cells []Cell
			stack := []Cell{{r, c}}
			for len(stack) > 0 {
				cur := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if cur.Row < 0 || cur.Row >= rows || cur.Col < 0 || cur.Col >= cols {
					continue
				}
				if visited[cur.Row][cur.Col] || grid[cur.Row][cur.Col] != symbol {
					continue
				}
				visited[cur.Row][cur.Col] = true
				cells = append(cells, cur)
				stack = append(stack,
					Cell{cur.Row - 1, cur.Col},
					Cell{cur.Row + 1, cur.Col},
					Cell{cur.Row, cur.Col - 1},
					Cell{cur.Row, cur.Col + 1},
				)
			}
			if len(cells) >= MinClusterSize {
				clusters = append(clusters, Cluster{Symbol: symbol, Cells: cells, Size: len(cells)})
			}
		}
	}
	return clusters
}

// PriceCluster looks up the cluster's multiplier: the highest pay-table
// threshold satisfied by the cluster size wins, so oversized clusters
// land in the correct tier. Unknown symbols pay nothing.
func PriceCluster(cl Cluster) float64 {
	tiers, ok := sugarRushPayTable[cl.Symbol]
	if !ok {
		return 0
	}
	for _, tier := range sugarRushTiers {
		if cl.Size >= tier {
			return tiers[tier]
		}
	}
	return 0
}

// TotalWin prices every qualifying cluster in the grid and returns
// floor(bet × Σ multipliers). Independent clusters all pay.
func TotalWin(clusters []Cluster, bet int64) int64 {
	total := 0.0
	for _, cl := range clusters {
		total += PriceCluster(cl)
	}
	return WinAmount(bet, total)
}
