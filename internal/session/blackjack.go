package session

import (
	"fmt"
	"sync"

	"github.com/cashx/engine/internal/games"
	"github.com/cashx/engine/internal/rng"
)

// Blackjack round results.
const (
	ResultWin       = "win"
	ResultLose      = "lose"
	ResultPush      = "push"
	ResultBlackjack = "blackjack"
)

// BlackjackDetail is the game-specific outcome payload for blackjack
// rounds.
type BlackjackDetail struct {
	PlayerCards []games.Card `json:"player_cards"`
	DealerCards []games.Card `json:"dealer_cards"`
	PlayerValue int          `json:"player_value"`
	DealerValue int          `json:"dealer_value"`
	Result      string       `json:"result"`
	Doubled     bool         `json:"doubled"`
}

// BlackjackSession orchestrates blackjack rounds. The shoe is the only
// state that persists across rounds; it is rebuilt whenever it falls
// below the low-water mark before a card is drawn.
type BlackjackSession struct {
	hooks
	src rng.Source

	mu         sync.Mutex
	shoe       *games.Shoe
	state      State
	stake      int64
	doubled    bool
	playerHand []games.Card
	dealerHand []games.Card
}

// NewBlackjackSession wires a blackjack orchestrator with a fresh
// 6-deck shoe. recorder may be nil.
func NewBlackjackSession(src rng.Source, balance BalanceService, missions MissionTracker, recorder Recorder) *BlackjackSession {
	return &BlackjackSession{
		hooks: hooks{balance: balance, missions: missions, recorder: recorder, history: NewHistory(DefaultHistorySize)},
		src:   src,
		shoe:  games.NewShoe(games.DefaultShoeDecks, src),
		state: StateIdle,
	}
}

// State reports the current round state.
func (s *BlackjackSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns the session's recent outcomes.
func (s *BlackjackSession) History() []Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hooks.history.Recent()
}

// PlayerHand returns a copy of the player's current cards.
func (s *BlackjackSession) PlayerHand() []games.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyHand(s.playerHand)
}

// DealerHand returns a copy of the dealer's current cards.
func (s *BlackjackSession) DealerHand() []games.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyHand(s.dealerHand)
}

func copyHand(cards []games.Card) []games.Card {
	return append([]games.Card(nil), cards...)
}

// drawCard enforces the reshuffle policy before every deal so the shoe
// can never be drawn past exhaustion. Caller holds s.mu.
func (s *BlackjackSession) drawCard() games.Card {
	if s.shoe.NeedsReshuffle() {
		s.shoe = games.NewShoe(games.DefaultShoeDecks, s.src)
	}
	return s.shoe.Draw()
}

// Deal accepts a wager and deals the opening hands in standard order
// (player, dealer, player, dealer). A player natural resolves the round
// immediately: push against a dealer natural, otherwise 3:2.
func (s *BlackjackSession) Deal(stake int64) (Outcome, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return Outcome{}, false, fmt.Errorf("deal while %s: %w", s.state, ErrIllegalTransition)
	}
	if err := validateStake(stake); err != nil {
		return Outcome{}, false, err
	}
	if err := s.balance.Debit(stake); err != nil {
		return Outcome{}, false, fmt.Errorf("%w: %v", ErrInvalidWager, err)
	}

	s.stake = stake
	s.doubled = false
	p1 := s.drawCard()
	d1 := s.drawCard()
	p2 := s.drawCard()
	d2 := s.drawCard()
	s.playerHand = []games.Card{p1, p2}
	s.dealerHand = []games.Card{d1, d2}

	if games.IsNatural(s.playerHand) {
		if games.IsNatural(s.dealerHand) {
			return s.finish(ResultPush, s.stake), true, nil
		}
		payout := s.stake + games.WinAmount(s.stake, games.BlackjackPays)
		return s.finish(ResultBlackjack, payout), true, nil
	}

	s.state = StatePlayerActing
	return Outcome{}, false, nil
}

// Hit draws one card for the player. A bust resolves the round; a drawn
// 21 hands control to the dealer.
func (s *BlackjackSession) Hit() (Outcome, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlayerActing {
		return Outcome{}, false, fmt.Errorf("hit while %s: %w", s.state, ErrIllegalTransition)
	}
	s.playerHand = append(s.playerHand, s.drawCard())

	if games.IsBust(s.playerHand) {
		return s.finish(ResultLose, 0), true, nil
	}
	if games.HandValue(s.playerHand) == 21 {
		o := s.dealerResolve()
		return o, true, nil
	}
	return Outcome{}, false, nil
}

// Stand ends the player's turn; the dealer auto-plays to completion.
func (s *BlackjackSession) Stand() (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlayerActing {
		return Outcome{}, fmt.Errorf("stand while %s: %w", s.state, ErrIllegalTransition)
	}
	return s.dealerResolve(), nil
}

// Double doubles the wager on the opening two cards, draws exactly one
// card and ends the player's turn. The additional debit is rejected
// like any other over-balance wager, leaving the round unchanged.
func (s *BlackjackSession) Double() (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlayerActing {
		return Outcome{}, fmt.Errorf("double while %s: %w", s.state, ErrIllegalTransition)
	}
	if len(s.playerHand) != 2 {
		return Outcome{}, fmt.Errorf("double after hit: %w", ErrIllegalTransition)
	}
	if err := s.balance.Debit(s.stake); err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrInvalidWager, err)
	}
	s.doubled = true
	s.playerHand = append(s.playerHand, s.drawCard())

	if games.IsBust(s.playerHand) {
		return s.finish(ResultLose, 0), nil
	}
	return s.dealerResolve(), nil
}

// dealerResolve applies the fixed dealer policy and settles the round.
// Caller holds s.mu.
func (s *BlackjackSession) dealerResolve() Outcome {
	s.state = StateAwaitingResolution
	for games.HandValue(s.dealerHand) < games.DealerStandsOn {
		s.dealerHand = append(s.dealerHand, s.drawCard())
	}

	playerValue := games.HandValue(s.playerHand)
	dealerValue := games.HandValue(s.dealerHand)
	effective := s.effectiveStake()

	switch {
	case dealerValue > 21 || dealerValue < playerValue:
		return s.finish(ResultWin, effective*2)
	case dealerValue > playerValue:
		return s.finish(ResultLose, 0)
	default:
		return s.finish(ResultPush, effective)
	}
}

func (s *BlackjackSession) effectiveStake() int64 {
	if s.doubled {
		return s.stake * 2
	}
	return s.stake
}

// finish settles the round. Caller holds s.mu.
func (s *BlackjackSession) finish(result string, payout int64) Outcome {
	detail := BlackjackDetail{
		PlayerCards: copyHand(s.playerHand),
		DealerCards: copyHand(s.dealerHand),
		PlayerValue: games.HandValue(s.playerHand),
		DealerValue: games.HandValue(s.dealerHand),
		Result:      result,
		Doubled:     s.doubled,
	}
	o := s.settle(newOutcome(games.BlackjackStats.ID, s.effectiveStake(), payout, detail))

	s.state = StateIdle
	s.stake = 0
	s.doubled = false
	s.playerHand = nil
	s.dealerHand = nil
	return o
}
