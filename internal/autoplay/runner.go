package autoplay

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// State represents the runner's lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateStopped State = "stopped"
	StateError   State = "error"
)

// RoundResult is the outcome of one round as seen by the strategy.
type RoundResult struct {
	Game       string  `json:"game"`
	Stake      int64   `json:"stake"`
	Payout     int64   `json:"payout"`
	Win        bool    `json:"win"`
	Multiplier float64 `json:"multiplier"`
}

// RoundPlacer plays one round using the current variable state.
// Implementations bridge to the game sessions.
type RoundPlacer interface {
	PlaceRound(ctx context.Context, vars *Variables) (*RoundResult, error)
}

// ActionDecider is asked for the next blackjack action mid-round.
// The runner's default decider calls the script's action() function.
type ActionDecider func(playerValue int, dealerCard string) (string, error)

// ActionPlacer extends RoundPlacer for games needing in-round
// decisions. The placer calls decide once per decision point.
type ActionPlacer interface {
	RoundPlacer
	SetDecider(decide ActionDecider)
}

// Snapshot is a serializable snapshot of the runner state.
type Snapshot struct {
	State          State       `json:"state"`
	Error          string      `json:"error,omitempty"`
	Stats          *Statistics `json:"stats"`
	CurrentGame    string      `json:"currentGame"`
	RoundsPerSecond float64    `json:"roundsPerSecond"`
}

// Runner orchestrates the strategy loop: place a round, fold the result
// into stats and variables, call dobet(), repeat.
type Runner struct {
	mu     sync.RWMutex
	state  State
	err    error
	cancel context.CancelFunc
	done   chan struct{}

	vm    *VM
	vars  *Variables
	stats *Statistics

	placer RoundPlacer

	maxRounds int
	startTime time.Time
}

// DefaultMaxRounds bounds a strategy run; a script that never calls
// stop() cannot spin forever.
const DefaultMaxRounds = 100000

// NewRunner creates a runner over the given placer.
func NewRunner(placer RoundPlacer) *Runner {
	return &Runner{
		state:     StateIdle,
		placer:    placer,
		maxRounds: DefaultMaxRounds,
	}
}

// SetMaxRounds overrides the round cap. Zero or negative restores the
// default.
func (r *Runner) SetMaxRounds(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n <= 0 {
		n = DefaultMaxRounds
	}
	r.maxRounds = n
}

// Start executes the script once to register dobet() (and optionally
// action()), then begins the round loop in the background.
func (r *Runner) Start(script string, startBalance int64) error {
	r.mu.Lock()
	if r.state == StateRunning {
		r.mu.Unlock()
		return fmt.Errorf("runner is already running")
	}

	r.stats = NewStatistics(startBalance)
	r.vars = NewVariables(r.stats)
	r.vm = NewVM()
	r.state = StateRunning
	r.err = nil
	r.startTime = time.Now()
	r.done = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.mu.Unlock()

	r.vm.SetVariables(r.vars)

	if err := r.vm.Execute(script); err != nil {
		r.setError(err)
		cancel()
		return err
	}

	// Pick up variables the script set at top level.
	r.vm.SyncVariables(r.vars)

	dobetVal := r.vm.runtime.Get("dobet")
	if isUndefinedOrNull(dobetVal) {
		err := fmt.Errorf("script must define a dobet() function")
		r.setError(err)
		cancel()
		return err
	}

	// The blackjack placer pulls decisions from the script's action().
	if ap, ok := r.placer.(ActionPlacer); ok && r.vm.HasActionFunc() {
		ap.SetDecider(r.scriptDecider)
	}

	r.vars.Running = true
	r.vm.SetVariables(r.vars)

	go r.roundLoop(ctx)

	return nil
}

// Stop cancels the round loop and waits for it to exit.
func (r *Runner) Stop() error {
	r.mu.Lock()
	if r.state != StateRunning {
		r.mu.Unlock()
		return fmt.Errorf("runner is not running")
	}
	cancel := r.cancel
	done := r.done
	r.mu.Unlock()

	cancel()
	<-done
	return nil
}

// Wait blocks until the round loop has exited.
func (r *Runner) Wait() {
	r.mu.RLock()
	done := r.done
	r.mu.RUnlock()
	if done != nil {
		<-done
	}
}

// GetState returns the current runner snapshot.
func (r *Runner) GetState() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot()
}

// GetLogs returns the script log buffer.
func (r *Runner) GetLogs() []LogEntry {
	if r.vm == nil {
		return nil
	}
	return r.vm.GetLogs()
}

func (r *Runner) scriptDecider(playerValue int, dealerCard string) (string, error) {
	r.mu.Lock()
	r.vars.PlayerValue = playerValue
	r.vars.DealerCard = dealerCard
	r.vm.SetVariables(r.vars)
	r.mu.Unlock()

	val, err := r.vm.CallAction()
	if err != nil {
		return "", err
	}
	if isUndefinedOrNull(val) {
		return "stand", nil
	}
	return val.String(), nil
}

func (r *Runner) roundLoop(ctx context.Context) {
	defer close(r.done)
	defer func() {
		if rec := recover(); rec != nil {
			r.setError(fmt.Errorf("strategy panic: %v", rec))
		}
	}()

	r.mu.RLock()
	maxRounds := r.maxRounds
	r.mu.RUnlock()

	for played := 0; ; played++ {
		if played >= maxRounds {
			r.finish(StateStopped)
			return
		}

		select {
		case <-ctx.Done():
			r.finish(StateStopped)
			return
		default:
		}

		if r.vm.IsStopRequested() {
			r.finish(StateStopped)
			return
		}

		r.mu.RLock()
		nextBet := r.vars.NextBet
		vars := r.vars
		r.mu.RUnlock()

		if nextBet <= 0 {
			r.setError(fmt.Errorf("nextbet must be > 0, got %d", nextBet))
			return
		}

		result, err := r.placer.PlaceRound(ctx, vars)
		if err != nil {
			if ctx.Err() != nil {
				r.finish(StateStopped)
				return
			}
			r.setError(fmt.Errorf("round failed: %w", err))
			return
		}

		r.mu.Lock()
		r.stats.RecordRound(*result)
		r.vars.Win = result.Win
		r.vars.PreviousBet = result.Stake
		r.vars.Balance = r.stats.Balance
		r.vars.LastGame = result.Game
		r.vars.LastPayout = result.Payout
		r.vars.LastMultiplier = result.Multiplier
		r.mu.Unlock()

		r.vm.SetVariables(r.vars)

		if err := r.vm.CallDobet(); err != nil {
			r.setError(err)
			return
		}

		r.vm.SyncVariables(r.vars)

		if r.vm.IsResetStatsRequested() {
			r.mu.Lock()
			r.stats.Reset()
			r.mu.Unlock()
			r.vm.SetVariables(r.vars)
		}

		if r.vm.IsStopRequested() {
			r.finish(StateStopped)
			return
		}

		r.mu.RLock()
		stopOnWin := r.vars.StopOnWin
		r.mu.RUnlock()
		if stopOnWin && result.Win {
			r.finish(StateStopped)
			return
		}

		sleepMs := r.vm.GetSleepTime()
		r.vm.ResetSleepTime()
		if sleepMs > 0 {
			select {
			case <-ctx.Done():
				r.finish(StateStopped)
				return
			case <-time.After(time.Duration(sleepMs) * time.Millisecond):
			}
		}
	}
}

func (r *Runner) finish(state State) {
	r.mu.Lock()
	if r.state == StateRunning {
		r.state = state
	}
	if r.vars != nil {
		r.vars.Running = false
	}
	r.mu.Unlock()
}

func (r *Runner) setError(err error) {
	r.mu.Lock()
	r.state = StateError
	r.err = err
	if r.vars != nil {
		r.vars.Running = false
	}
	r.mu.Unlock()
}

func (r *Runner) snapshot() Snapshot {
	snap := Snapshot{State: r.state}
	if r.err != nil {
		snap.Error = r.err.Error()
	}
	if r.stats != nil {
		statsCopy := *r.stats
		snap.Stats = &statsCopy
	}
	if r.vars != nil {
		snap.CurrentGame = r.vars.Game
	}
	if r.state == StateRunning && r.stats != nil && r.stats.Rounds > 0 {
		elapsed := time.Since(r.startTime).Seconds()
		if elapsed > 0 {
			snap.RoundsPerSecond = float64(r.stats.Rounds) / elapsed
		}
	}
	return snap
}
