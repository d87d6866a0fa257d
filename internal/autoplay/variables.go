package autoplay

import (
	"github.com/dop251/goja"
)

// injectConstants sets read-only game constants on the JS runtime.
func injectConstants(vm *goja.Runtime) {
	// Blackjack action constants
	vm.Set("BLACKJACK_STAND", "stand")
	vm.Set("BLACKJACK_HIT", "hit")
	vm.Set("BLACKJACK_DOUBLE", "double")

	// Plinko risk constants
	vm.Set("RISK_LOW", "low")
	vm.Set("RISK_MID", "mid")
	vm.Set("RISK_HIGH", "high")
}

// injectVariables sets the strategy globals on the JS runtime.
// Read-only semantics are enforced in syncFromVM rather than at the JS
// property level.
func injectVariables(vm *goja.Runtime, vars *Variables) {
	// Core betting variables
	vm.Set("balance", vars.Balance)
	vm.Set("nextbet", vars.NextBet)
	vm.Set("basebet", vars.BaseBet)
	vm.Set("previousbet", vars.PreviousBet)
	vm.Set("win", vars.Win)
	vm.Set("running", vars.Running)

	// Statistics aliases
	vm.Set("bets", vars.Stats.Rounds)
	vm.Set("wins", vars.Stats.Wins)
	vm.Set("losses", vars.Stats.Losses)
	vm.Set("winstreak", vars.Stats.WinStreak)
	vm.Set("losestreak", vars.Stats.LoseStreak)
	vm.Set("currentstreak", vars.Stats.CurrentStreak)
	vm.Set("profit", vars.Stats.Profit)
	vm.Set("wagered", vars.Stats.Wagered)
	vm.Set("started_bal", vars.Stats.StartBalance)

	// Game selection
	vm.Set("game", vars.Game)

	// Crash
	vm.Set("cashout", vars.Cashout)

	// Plinko
	vm.Set("risk", vars.Risk)

	// Roulette
	vm.Set("chips", vars.Chips)

	// Blackjack decision context
	vm.Set("playervalue", vars.PlayerValue)
	vm.Set("dealercard", vars.DealerCard)

	// Last round result
	vm.Set("lastround", map[string]interface{}{
		"game":       vars.LastGame,
		"stake":      vars.PreviousBet,
		"payout":     vars.LastPayout,
		"multiplier": vars.LastMultiplier,
		"win":        vars.Win,
	})

	// Control
	vm.Set("stoponwin", vars.StopOnWin)
	vm.Set("sleeptime", vars.SleepTime)
}

// syncFromVM reads mutable variables back from the JS runtime into
// vars. Only variables that scripts are allowed to modify are synced.
func syncFromVM(vm *goja.Runtime, vars *Variables) {
	vars.NextBet = toInt64(vm.Get("nextbet"))
	vars.BaseBet = toInt64(vm.Get("basebet"))

	vars.Game = toString(vm.Get("game"))

	vars.Cashout = toFloat64(vm.Get("cashout"))
	vars.Risk = toString(vm.Get("risk"))
	vars.Chips = toInt64Map(vm.Get("chips"))

	vars.StopOnWin = toBool(vm.Get("stoponwin"))
	vars.SleepTime = toInt(vm.Get("sleeptime"))
}

// Variables holds the complete strategy variable state.
type Variables struct {
	// Core betting
	Balance     int64 `json:"balance"`
	NextBet     int64 `json:"nextbet"`
	BaseBet     int64 `json:"basebet"`
	PreviousBet int64 `json:"previousbet"`
	Win         bool  `json:"win"`
	Running     bool  `json:"running"`

	// Statistics (pointer, shared with runner)
	Stats *Statistics `json:"-"`

	// Game selection
	Game string `json:"game"`

	// Crash: auto cash-out target multiplier
	Cashout float64 `json:"cashout"`

	// Plinko
	Risk string `json:"risk"`

	// Roulette: bet id -> chip amount
	Chips map[string]int64 `json:"chips"`

	// Blackjack decision context, refreshed before each action() call
	PlayerValue int    `json:"playervalue"`
	DealerCard  string `json:"dealercard"`

	// Last round
	LastGame       string  `json:"lastgame"`
	LastPayout     int64   `json:"lastpayout"`
	LastMultiplier float64 `json:"lastmultiplier"`

	// Control
	StopOnWin bool `json:"stoponwin"`
	SleepTime int  `json:"sleeptime"`
}

// NewVariables creates a Variables with playable defaults.
func NewVariables(stats *Statistics) *Variables {
	return &Variables{
		Stats:   stats,
		Balance: stats.Balance,
		NextBet: 10,
		BaseBet: 10,
		Game:    "crash",
		Cashout: 2.0,
		Risk:    "low",
		Chips:   map[string]int64{"red": 10},
	}
}

// --- Conversion helpers ---

func toFloat64(v goja.Value) float64 {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return 0
	}
	return v.ToFloat()
}

func toInt64(v goja.Value) int64 {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return 0
	}
	return v.ToInteger()
}

func toInt(v goja.Value) int {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return 0
	}
	return int(v.ToInteger())
}

func toBool(v goja.Value) bool {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return false
	}
	return v.ToBoolean()
}

func toString(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	return v.String()
}

func toInt64Map(v goja.Value) map[string]int64 {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	obj := v.ToObject(nil)
	if obj == nil {
		return nil
	}
	result := make(map[string]int64)
	for _, key := range obj.Keys() {
		val := obj.Get(key)
		if val != nil && !goja.IsUndefined(val) {
			result[key] = val.ToInteger()
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func isUndefinedOrNull(v goja.Value) bool {
	return v == nil || goja.IsUndefined(v) || goja.IsNull(v)
}
