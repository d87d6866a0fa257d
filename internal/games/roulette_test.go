package games

import (
	"testing"

	"github.com/cashx/engine/internal/rng"
)

func TestSpinWheelRange(t *testing.T) {
	src := rng.NewSeededSource("roulette", "spin", 1, 0)
	seen := make(map[int]bool)
	for i := 0; i < 20000; i++ {
		n := SpinWheel(src)
		if n < 0 || n > 36 {
			t.Fatalf("pocket %d out of range [0,36]", n)
		}
		seen[n] = true
	}
	if len(seen) != 37 {
		t.Errorf("20000 spins hit %d distinct pockets, want all 37", len(seen))
	}
}

func TestPocketColor(t *testing.T) {
	tests := []struct {
		pocket int
		want   string
	}{
		{0, "green"},
		{1, "red"},
		{2, "black"},
		{17, "black"},
		{18, "red"},
		{19, "red"},
		{36, "red"},
		{35, "black"},
	}
	for _, tt := range tests {
		if got := PocketColor(tt.pocket); got != tt.want {
			t.Errorf("PocketColor(%d) = %s, want %s", tt.pocket, got, tt.want)
		}
	}
}

func TestResolveBetsEvenMoney(t *testing.T) {
	bets := RouletteBets{"red": 100}
	if got := ResolveBets(bets, 1); got != 200 {
		t.Errorf("100 on red vs pocket 1 = %d, want 200", got)
	}
	if got := ResolveBets(bets, 2); got != 0 {
		t.Errorf("100 on red vs pocket 2 = %d, want 0", got)
	}
	// Zero is green: outside bets all lose.
	for _, id := range []string{"red", "black", "odd", "even", "low", "high"} {
		if got := ResolveBets(RouletteBets{id: 50}, 0); got != 0 {
			t.Errorf("%s vs pocket 0 paid %d, want 0", id, got)
		}
	}
}

func TestResolveBetsStraight(t *testing.T) {
	bets := RouletteBets{"num_17": 10}
	if got := ResolveBets(bets, 17); got != 360 {
		t.Errorf("10 straight on 17 vs pocket 17 = %d, want 360", got)
	}
	if got := ResolveBets(bets, 16); got != 0 {
		t.Errorf("10 straight on 17 vs pocket 16 = %d, want 0", got)
	}
}

func TestResolveBetsDozensAndColumns(t *testing.T) {
	tests := []struct {
		id     string
		pocket int
		stake  int64
		want   int64
	}{
		{"dozen1", 12, 30, 90},
		{"dozen1", 13, 30, 0},
		{"dozen2", 24, 30, 90},
		{"dozen3", 25, 30, 90},
		{"col1", 1, 30, 90},  // 1,4,7,...
		{"col2", 5, 30, 90},  // 2,5,8,...
		{"col3", 36, 30, 90}, // 3,6,9,...
		{"col1", 0, 30, 0},
	}
	for _, tt := range tests {
		if got := ResolveBets(RouletteBets{tt.id: tt.stake}, tt.pocket); got != tt.want {
			t.Errorf("%s stake %d vs pocket %d = %d, want %d", tt.id, tt.stake, tt.pocket, got, tt.want)
		}
	}
}

func TestResolveBetsMultipleIndependent(t *testing.T) {
	bets := RouletteBets{
		"red":    100, // wins on 1
		"odd":    50,  // wins on 1
		"num_1":  10,  // wins on 1
		"dozen3": 40,  // loses on 1
	}
	want := int64(200 + 100 + 360)
	if got := ResolveBets(bets, 1); got != want {
		t.Errorf("multi-bet resolution = %d, want %d", got, want)
	}
}

func TestRouletteBetsValidate(t *testing.T) {
	if err := (RouletteBets{"red": 10, "num_0": 5, "num_36": 5}).Validate(); err != nil {
		t.Errorf("valid bets rejected: %v", err)
	}
	if err := (RouletteBets{"purple": 10}).Validate(); err == nil {
		t.Error("unknown bet identifier accepted")
	}
	if err := (RouletteBets{"num_37": 10}).Validate(); err == nil {
		t.Error("straight bet on pocket 37 accepted")
	}
	if err := (RouletteBets{"red": 0}).Validate(); err == nil {
		t.Error("zero stake accepted")
	}
	if err := (RouletteBets{"red": -5}).Validate(); err == nil {
		t.Error("negative stake accepted")
	}
}

func TestRouletteBetsTotal(t *testing.T) {
	bets := RouletteBets{"red": 100, "num_17": 25}
	if got := bets.Total(); got != 125 {
		t.Errorf("Total = %d, want 125", got)
	}
}

func TestRouletteEvenMoneyRTP(t *testing.T) {
	// An even-money bet wins 18/37 of the time, so long-run return per
	// unit staked is 36/37 ≈ 0.973, the configured roulette RTP.
	src := rng.NewSeededSource("roulette", "rtp", 11, 0)
	const n = 100000
	var staked, returned int64
	for i := 0; i < n; i++ {
		staked += 10
		returned += ResolveBets(RouletteBets{"red": 10}, SpinWheel(src))
	}
	rtp := float64(returned) / float64(staked)
	if rtp < RouletteStats.RTP-0.02 || rtp > RouletteStats.RTP+0.02 {
		t.Errorf("simulated even-money RTP = %f, want ≈%f", rtp, RouletteStats.RTP)
	}
}
