package session

import (
	"fmt"
	"sync"

	"github.com/cashx/engine/internal/games"
	"github.com/cashx/engine/internal/rng"
)

// RouletteDetail is the game-specific outcome payload for wheel spins.
type RouletteDetail struct {
	Pocket int                 `json:"pocket"`
	Color  string              `json:"color"`
	Bets   games.RouletteBets  `json:"bets"`
}

// RouletteSession orchestrates roulette rounds. Bets accumulate while
// idle, each placement a pessimistic debit, and a single wheel draw
// resolves them all.
type RouletteSession struct {
	hooks
	src rng.Source

	mu    sync.Mutex
	state State
	bets  games.RouletteBets
}

// NewRouletteSession wires a roulette orchestrator. recorder may be nil.
func NewRouletteSession(src rng.Source, balance BalanceService, missions MissionTracker, recorder Recorder) *RouletteSession {
	return &RouletteSession{
		hooks: hooks{balance: balance, missions: missions, recorder: recorder, history: NewHistory(DefaultHistorySize)},
		src:   src,
		state: StateIdle,
		bets:  games.RouletteBets{},
	}
}

// State reports the current round state.
func (s *RouletteSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns the session's recent outcomes.
func (s *RouletteSession) History() []Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hooks.history.Recent()
}

// Bets returns a copy of the currently placed bets.
func (s *RouletteSession) Bets() games.RouletteBets {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(games.RouletteBets, len(s.bets))
	for id, amount := range s.bets {
		out[id] = amount
	}
	return out
}

// PlaceBet adds stake to a bet identifier, debiting immediately. Repeat
// placements on the same identifier accumulate. The total staked can
// never exceed the available balance because each increment is debited
// on acceptance.
func (s *RouletteSession) PlaceBet(id string, stake int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return fmt.Errorf("place bet while %s: %w", s.state, ErrIllegalTransition)
	}
	if err := validateStake(stake); err != nil {
		return err
	}
	placed := games.RouletteBets{id: stake}
	if err := placed.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWager, err)
	}
	if err := s.balance.Debit(stake); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWager, err)
	}
	s.bets[id] += stake
	return nil
}

// ClearBets refunds and removes every placed bet.
func (s *RouletteSession) ClearBets() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return fmt.Errorf("clear bets while %s: %w", s.state, ErrIllegalTransition)
	}
	if total := s.bets.Total(); total > 0 {
		s.balance.Credit(total)
	}
	s.bets = games.RouletteBets{}
	return nil
}

// Spin draws the wheel, resolves every placed bet against the single
// pocket and settles the total winnings. Bets are consumed.
func (s *RouletteSession) Spin() (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return Outcome{}, fmt.Errorf("spin while %s: %w", s.state, ErrIllegalTransition)
	}
	if len(s.bets) == 0 {
		return Outcome{}, fmt.Errorf("no bets placed: %w", ErrInvalidWager)
	}
	s.state = StateAwaitingResolution

	stake := s.bets.Total()
	pocket := games.SpinWheel(s.src)
	payout := games.ResolveBets(s.bets, pocket)

	o := s.settle(newOutcome(games.RouletteStats.ID, stake, payout, RouletteDetail{
		Pocket: pocket,
		Color:  games.PocketColor(pocket),
		Bets:   s.bets,
	}))
	s.bets = games.RouletteBets{}
	s.state = StateIdle
	return o, nil
}
