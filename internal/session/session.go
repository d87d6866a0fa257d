// Package session hosts the per-game round orchestrators: bet
// acceptance, outcome resolution and settlement bookkeeping. A session
// is confined to one player. Each orchestrator serializes its own
// methods with an internal mutex, so concurrent callers see a
// consistent state machine and at most one of two racing settlement
// attempts can succeed.
package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// State of a game session's round state machine.
type State string

const (
	// StateIdle accepts new bets.
	StateIdle State = "idle"
	// StateAwaitingResolution has a debited wager and an undrawn or
	// unresolved outcome.
	StateAwaitingResolution State = "awaiting_resolution"
	// StatePlayerActing is the blackjack-only phase between the deal
	// and resolution where hit/stand/double are legal.
	StatePlayerActing State = "player_acting"
)

var (
	// ErrInvalidWager rejects non-positive wagers and wagers exceeding
	// the available balance. No state is mutated on rejection.
	ErrInvalidWager = errors.New("invalid wager")

	// ErrIllegalTransition rejects actions the current state does not
	// permit. The round state is unchanged.
	ErrIllegalTransition = errors.New("illegal state transition")
)

// BalanceService is the external balance collaborator. Debit rejects
// amounts exceeding the available balance without mutating anything;
// Credit returns the new balance. Every settled round calls each
// exactly once per stake and payout (a zero payout still settles;
// crediting zero is a no-op the orchestrators skip).
type BalanceService interface {
	Debit(amount int64) error
	Credit(amount int64) int64
}

// MissionTracker receives a fire-and-forget notification after each
// resolution. The orchestrator never depends on its result.
type MissionTracker interface {
	RecordRound(gameID string, won bool, payout int64)
}

// Recorder persists settled outcomes durably. Optional; a nil recorder
// is skipped.
type Recorder interface {
	RecordOutcome(o Outcome) error
}

// Outcome is the immutable record of one settled round, sufficient for
// a presentation layer to render without recomputation.
type Outcome struct {
	ID      string    `json:"id"`
	GameID  string    `json:"game_id"`
	Stake   int64     `json:"stake"`
	Payout  int64     `json:"payout"`
	Profit  int64     `json:"profit"`
	Won     bool      `json:"won"`
	At      time.Time `json:"at"`
	Detail  any       `json:"detail,omitempty"`
}

func newOutcome(gameID string, stake, payout int64, detail any) Outcome {
	return Outcome{
		ID:     uuid.New().String(),
		GameID: gameID,
		Stake:  stake,
		Payout: payout,
		Profit: payout - stake,
		Won:    payout > stake,
		At:     time.Now().UTC(),
		Detail: detail,
	}
}

// hooks bundles the collaborators every per-game session shares.
type hooks struct {
	balance  BalanceService
	missions MissionTracker
	recorder Recorder
	history  *History
}

// settle credits the payout, notifies collaborators and appends the
// outcome to history. Debit-then-credit is the only allowed pattern;
// settle is the single credit site for each orchestrator.
func (h *hooks) settle(o Outcome) Outcome {
	if o.Payout > 0 {
		h.balance.Credit(o.Payout)
	}
	if h.missions != nil {
		h.missions.RecordRound(o.GameID, o.Won, o.Payout)
	}
	if h.recorder != nil {
		_ = h.recorder.RecordOutcome(o) // fire-and-forget
	}
	h.history.Push(o)
	return o
}

func validateStake(stake int64) error {
	if stake <= 0 {
		return ErrInvalidWager
	}
	return nil
}
