package session

import (
	"fmt"
	"sync"

	"github.com/cashx/engine/internal/games"
	"github.com/cashx/engine/internal/rng"
)

// PlinkoDetail is the game-specific outcome payload for plinko drops.
type PlinkoDetail struct {
	Risk       games.PlinkoRisk `json:"risk"`
	SlotIndex  int              `json:"slot_index"`
	Multiplier float64          `json:"multiplier"`
	Directions []string         `json:"directions"`
}

// PlinkoSession orchestrates single-shot plinko drops.
type PlinkoSession struct {
	hooks
	src rng.Source

	mu    sync.Mutex
	state State
}

// NewPlinkoSession wires a plinko orchestrator. recorder may be nil.
func NewPlinkoSession(src rng.Source, balance BalanceService, missions MissionTracker, recorder Recorder) *PlinkoSession {
	return &PlinkoSession{
		hooks: hooks{balance: balance, missions: missions, recorder: recorder, history: NewHistory(DefaultHistorySize)},
		src:   src,
		state: StateIdle,
	}
}

// State reports the current round state.
func (s *PlinkoSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns the session's recent outcomes.
func (s *PlinkoSession) History() []Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hooks.history.Recent()
}

// Drop accepts a wager, debits it, resolves a ball for the risk tier and
// settles the winnings in one step.
func (s *PlinkoSession) Drop(stake int64, risk games.PlinkoRisk) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return Outcome{}, fmt.Errorf("drop while %s: %w", s.state, ErrIllegalTransition)
	}
	if err := validateStake(stake); err != nil {
		return Outcome{}, err
	}
	// Validate the tier before any debit so a bad request never
	// touches the balance.
	if _, err := games.PlinkoTable(risk); err != nil {
		return Outcome{}, err
	}
	if err := s.balance.Debit(stake); err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrInvalidWager, err)
	}
	s.state = StateAwaitingResolution

	drop, err := games.DropBall(risk, s.src)
	if err != nil {
		// Unreachable after table validation; refund rather than strand
		// the debit if it ever happens.
		s.balance.Credit(stake)
		s.state = StateIdle
		return Outcome{}, err
	}

	payout := games.WinAmount(stake, drop.Multiplier)
	o := s.settle(newOutcome(games.PlinkoStats.ID, stake, payout, PlinkoDetail{
		Risk:       risk,
		SlotIndex:  drop.SlotIndex,
		Multiplier: drop.Multiplier,
		Directions: drop.Directions,
	}))
	s.state = StateIdle
	return o, nil
}
