package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/cashx/engine/internal/games"
	"github.com/cashx/engine/internal/rng"
)

// CrashDetail is the game-specific outcome payload for crash rounds.
type CrashDetail struct {
	CrashPoint float64 `json:"crash_point"`
	CashedOut  bool    `json:"cashed_out"`
	Multiplier float64 `json:"multiplier"`
}

// CrashSession orchestrates crash rounds. The crash point is drawn at
// round start; the running multiplier is purely a function of elapsed
// time, so resolution compares the requested cash-out time's implied
// multiplier against the point; client-reported multipliers are never
// consulted.
type CrashSession struct {
	hooks
	src rng.Source

	mu        sync.Mutex
	clock     func() time.Time
	state     State
	stake     int64
	point     float64
	startedAt time.Time
}

// NewCrashSession wires a crash orchestrator to its collaborators.
// recorder may be nil.
func NewCrashSession(src rng.Source, balance BalanceService, missions MissionTracker, recorder Recorder) *CrashSession {
	return &CrashSession{
		hooks: hooks{balance: balance, missions: missions, recorder: recorder, history: NewHistory(DefaultHistorySize)},
		src:   src,
		clock: time.Now,
		state: StateIdle,
	}
}

// SetClock replaces the wall clock. Simulation callers use this to
// resolve rounds at an exact elapsed time instead of waiting it out;
// a nil clock restores time.Now.
func (s *CrashSession) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if clock == nil {
		clock = time.Now
	}
	s.clock = clock
}

// State reports the current round state.
func (s *CrashSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns the session's recent outcomes.
func (s *CrashSession) History() []Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hooks.history.Recent()
}

// Start accepts a wager, debits it and draws the round's crash point.
// The returned point is for the server's own bookkeeping; presentation
// layers receive only the running multiplier.
func (s *CrashSession) Start(stake int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return fmt.Errorf("start while %s: %w", s.state, ErrIllegalTransition)
	}
	if err := validateStake(stake); err != nil {
		return err
	}
	if err := s.balance.Debit(stake); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWager, err)
	}

	s.stake = stake
	s.point = games.CrashPoint(s.src)
	s.startedAt = s.clock()
	s.state = StateAwaitingResolution
	return nil
}

// Multiplier returns the current displayed multiplier, capped at the
// crash point once the round has busted.
func (s *CrashSession) Multiplier() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingResolution {
		return 1.0
	}
	m := games.CrashMultiplierAt(s.clock().Sub(s.startedAt))
	if m > s.point {
		return s.point
	}
	return m
}

// CashOut resolves the round at the current server time. If the implied
// multiplier already reached the crash point the round busted first and
// the wager is lost; otherwise the player locks in the multiplier.
func (s *CrashSession) CashOut() (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingResolution {
		return Outcome{}, fmt.Errorf("cash out while %s: %w", s.state, ErrIllegalTransition)
	}
	elapsed := s.clock().Sub(s.startedAt)
	mult, busted := games.ResolveCashOut(s.point, elapsed)

	var payout int64
	if !busted {
		payout = games.WinAmount(s.stake, mult)
	}
	return s.finish(payout, CrashDetail{CrashPoint: s.point, CashedOut: !busted, Multiplier: mult}), nil
}

// Bust finalizes a round the player never cashed out of. It only
// succeeds once the elapsed time's implied multiplier has actually
// reached the crash point; an early call is an illegal transition, not
// a loss.
func (s *CrashSession) Bust() (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingResolution {
		return Outcome{}, fmt.Errorf("bust while %s: %w", s.state, ErrIllegalTransition)
	}
	elapsed := s.clock().Sub(s.startedAt)
	if games.CrashMultiplierAt(elapsed) < s.point {
		return Outcome{}, fmt.Errorf("round still running: %w", ErrIllegalTransition)
	}
	return s.finish(0, CrashDetail{CrashPoint: s.point, CashedOut: false, Multiplier: s.point}), nil
}

// finish settles the round. Caller holds s.mu.
func (s *CrashSession) finish(payout int64, detail CrashDetail) Outcome {
	o := s.settle(newOutcome(games.CrashStats.ID, s.stake, payout, detail))
	s.state = StateIdle
	s.stake = 0
	return o
}
