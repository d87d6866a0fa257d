package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cashx/engine/internal/games"
	"github.com/cashx/engine/internal/rng"
	"github.com/cashx/engine/internal/session"
)

// simWallet is an in-memory balance sink for simulation runs. It
// tracks total wagered and returned so achieved RTP falls out of the
// run without touching a database.
type simWallet struct {
	balance  int64
	wagered  decimal.Decimal
	returned decimal.Decimal
}

func newSimWallet() *simWallet {
	return &simWallet{balance: 1 << 40}
}

func (w *simWallet) Debit(amount int64) error {
	if amount <= 0 || amount > w.balance {
		return fmt.Errorf("debit %d exceeds balance %d", amount, w.balance)
	}
	w.balance -= amount
	w.wagered = w.wagered.Add(decimal.NewFromInt(amount))
	return nil
}

func (w *simWallet) Credit(amount int64) int64 {
	if amount > 0 {
		w.balance += amount
		w.returned = w.returned.Add(decimal.NewFromInt(amount))
	}
	return w.balance
}

func (w *simWallet) rtp() float64 {
	if w.wagered.IsZero() {
		return 0
	}
	f, _ := w.returned.Div(w.wagered).Float64()
	return f
}

type runner func(src rng.Source, rounds int, stake int64) (*simWallet, error)

func main() {
	var (
		rounds     = flag.Int("rounds", 10000, "rounds per game")
		stake      = flag.Int64("stake", 10, "stake per round")
		serverSeed = flag.String("server-seed", "simulate", "deterministic server seed")
		clientSeed = flag.String("client-seed", "simulate", "deterministic client seed")
		game       = flag.String("game", "", "run a single game (default: all)")
	)
	flag.Parse()

	runners := map[string]runner{
		games.CrashStats.ID:     runCrash,
		games.PlinkoStats.ID:    runPlinko,
		games.SugarRushStats.ID: runSugarRush,
		games.RouletteStats.ID:  runRoulette,
		games.BlackjackStats.ID: runBlackjack,
	}

	order := []string{
		games.CrashStats.ID,
		games.PlinkoStats.ID,
		games.SugarRushStats.ID,
		games.RouletteStats.ID,
		games.BlackjackStats.ID,
	}
	if *game != "" {
		if _, ok := runners[*game]; !ok {
			fmt.Fprintf(os.Stderr, "unknown game %q\n", *game)
			os.Exit(1)
		}
		order = []string{*game}
	}

	fmt.Printf("%-12s %8s %14s %14s %10s %10s\n", "game", "rounds", "wagered", "returned", "rtp", "target")
	for i, id := range order {
		src := rng.NewSeededSource(*serverSeed, *clientSeed, uint64(i+1), 0)
		w, err := runners[id](src, *rounds, *stake)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", id, err)
			os.Exit(1)
		}
		stats := games.AllStats[id]
		fmt.Printf("%-12s %8d %14s %14s %10.4f %10.4f\n",
			id, *rounds, w.wagered.String(), w.returned.String(), w.rtp(), stats.RTP)
	}
}

// runCrash cashes every round out at a fixed 2x target. The virtual
// clock jumps straight to the target so a run never waits wall time;
// rounds whose crash point is below the target settle as busts.
func runCrash(src rng.Source, rounds int, stake int64) (*simWallet, error) {
	w := newSimWallet()
	sess := session.NewCrashSession(src, w, nil, nil)

	const target = 2.0
	now := time.Now()
	sess.SetClock(func() time.Time { return now })

	for i := 0; i < rounds; i++ {
		if err := sess.Start(stake); err != nil {
			return nil, err
		}
		now = now.Add(games.CrashTimeToReach(target))
		if _, err := sess.CashOut(); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func runPlinko(src rng.Source, rounds int, stake int64) (*simWallet, error) {
	w := newSimWallet()
	sess := session.NewPlinkoSession(src, w, nil, nil)
	for i := 0; i < rounds; i++ {
		if _, err := sess.Drop(stake, games.PlinkoMid); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func runSugarRush(src rng.Source, rounds int, stake int64) (*simWallet, error) {
	w := newSimWallet()
	sess := session.NewSugarRushSession(src, w, nil, nil)
	for i := 0; i < rounds; i++ {
		if _, err := sess.Spin(stake); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func runRoulette(src rng.Source, rounds int, stake int64) (*simWallet, error) {
	w := newSimWallet()
	sess := session.NewRouletteSession(src, w, nil, nil)
	for i := 0; i < rounds; i++ {
		if err := sess.PlaceBet("red", stake); err != nil {
			return nil, err
		}
		if _, err := sess.Spin(); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// runBlackjack hits below 17 and stands otherwise, mirroring the
// dealer's own policy. Doubles and splits are out of scope for the
// baseline measurement.
func runBlackjack(src rng.Source, rounds int, stake int64) (*simWallet, error) {
	w := newSimWallet()
	sess := session.NewBlackjackSession(src, w, nil, nil)
	for i := 0; i < rounds; i++ {
		_, settled, err := sess.Deal(stake)
		if err != nil {
			return nil, err
		}
		for !settled {
			if games.HandValue(sess.PlayerHand()) < 17 {
				_, settled, err = sess.Hit()
				if err != nil {
					return nil, err
				}
				continue
			}
			if _, err = sess.Stand(); err != nil {
				return nil, err
			}
			settled = true
		}
	}
	return w, nil
}
