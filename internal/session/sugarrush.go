package session

import (
	"fmt"
	"sync"

	"github.com/cashx/engine/internal/games"
	"github.com/cashx/engine/internal/rng"
)

// SugarRushDetail is the game-specific outcome payload for spins.
type SugarRushDetail struct {
	Grid     [][]string      `json:"grid"`
	Clusters []games.Cluster `json:"clusters"`
}

// SugarRushSession orchestrates single-shot cluster-pay spins.
type SugarRushSession struct {
	hooks
	src rng.Source

	mu    sync.Mutex
	state State
}

// NewSugarRushSession wires a sugar rush orchestrator. recorder may be nil.
func NewSugarRushSession(src rng.Source, balance BalanceService, missions MissionTracker, recorder Recorder) *SugarRushSession {
	return &SugarRushSession{
		hooks: hooks{balance: balance, missions: missions, recorder: recorder, history: NewHistory(DefaultHistorySize)},
		src:   src,
		state: StateIdle,
	}
}

// State reports the current round state.
func (s *SugarRushSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns the session's recent outcomes.
func (s *SugarRushSession) History() []Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hooks.history.Recent()
}

// Spin accepts a wager, generates a fresh grid, prices every qualifying
// cluster and settles the total.
func (s *SugarRushSession) Spin(stake int64) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return Outcome{}, fmt.Errorf("spin while %s: %w", s.state, ErrIllegalTransition)
	}
	if err := validateStake(stake); err != nil {
		return Outcome{}, err
	}
	if err := s.balance.Debit(stake); err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrInvalidWager, err)
	}
	s.state = StateAwaitingResolution

	grid := games.GenerateGrid(games.SugarRushRows, games.SugarRushCols, s.src)
	clusters := games.FindClusters(grid)
	payout := games.TotalWin(clusters, stake)

	o := s.settle(newOutcome(games.SugarRushStats.ID, stake, payout, SugarRushDetail{
		Grid:     grid,
		Clusters: clusters,
	}))
	s.state = StateIdle
	return o, nil
}
