package autoplay

import (
	"context"
	"fmt"
	"time"

	"github.com/cashx/engine/internal/games"
	"github.com/cashx/engine/internal/session"
)

// SessionPlacer plays rounds against the real game sessions. All five
// games run on the same wallet and mission tracker, so a strategy can
// switch games between rounds by reassigning the game variable.
type SessionPlacer struct {
	crash     *session.CrashSession
	plinko    *session.PlinkoSession
	sugarrush *session.SugarRushSession
	roulette  *session.RouletteSession
	blackjack *session.BlackjackSession

	decide ActionDecider
}

// NewSessionPlacer wires a placer over already-constructed sessions.
// The sessions are left untouched between rounds, so the same instances
// can keep serving interactive play.
func NewSessionPlacer(
	crash *session.CrashSession,
	plinko *session.PlinkoSession,
	sugarrush *session.SugarRushSession,
	roulette *session.RouletteSession,
	blackjack *session.BlackjackSession,
) *SessionPlacer {
	return &SessionPlacer{
		crash:     crash,
		plinko:    plinko,
		sugarrush: sugarrush,
		roulette:  roulette,
		blackjack: blackjack,
	}
}

// SetDecider installs the blackjack decision callback.
func (p *SessionPlacer) SetDecider(decide ActionDecider) {
	p.decide = decide
}

// PlaceRound plays one round of the currently selected game.
func (p *SessionPlacer) PlaceRound(ctx context.Context, vars *Variables) (*RoundResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch vars.Game {
	case "crash":
		return p.placeCrash(vars)
	case "plinko":
		return p.placePlinko(vars)
	case "sugarrush":
		return p.placeSugarRush(vars)
	case "roulette":
		return p.placeRoulette(vars)
	case "blackjack":
		return p.placeBlackjack(vars)
	default:
		return nil, fmt.Errorf("unknown game %q", vars.Game)
	}
}

func (p *SessionPlacer) placeCrash(vars *Variables) (*RoundResult, error) {
	target := vars.Cashout
	if target < 1.01 {
		target = 1.01
	}

	// Drive the round on a virtual clock so it resolves at the exact
	// cash-out instant instead of waiting it out. The wall clock is
	// restored before returning.
	start := time.Now()
	p.crash.SetClock(func() time.Time { return start })
	defer p.crash.SetClock(nil)

	if err := p.crash.Start(vars.NextBet); err != nil {
		return nil, err
	}

	// Jump to the cash-out instant. If the drawn point is below the
	// target the round busts there instead.
	resolveAt := start.Add(games.CrashTimeToReach(target))
	p.crash.SetClock(func() time.Time { return resolveAt })
	o, err := p.crash.CashOut()
	if err != nil {
		return nil, err
	}

	detail := o.Detail.(session.CrashDetail)
	return &RoundResult{
		Game:       o.GameID,
		Stake:      o.Stake,
		Payout:     o.Payout,
		Win:        o.Won,
		Multiplier: detail.Multiplier,
	}, nil
}

func (p *SessionPlacer) placePlinko(vars *Variables) (*RoundResult, error) {
	risk, err := games.ParsePlinkoRisk(vars.Risk)
	if err != nil {
		return nil, err
	}

	o, err := p.plinko.Drop(vars.NextBet, risk)
	if err != nil {
		return nil, err
	}

	detail := o.Detail.(session.PlinkoDetail)
	return &RoundResult{
		Game:       o.GameID,
		Stake:      o.Stake,
		Payout:     o.Payout,
		Win:        o.Won,
		Multiplier: detail.Multiplier,
	}, nil
}

func (p *SessionPlacer) placeSugarRush(vars *Variables) (*RoundResult, error) {
	o, err := p.sugarrush.Spin(vars.NextBet)
	if err != nil {
		return nil, err
	}

	var mult float64
	if o.Stake > 0 {
		mult = float64(o.Payout) / float64(o.Stake)
	}
	return &RoundResult{
		Game:       o.GameID,
		Stake:      o.Stake,
		Payout:     o.Payout,
		Win:        o.Won,
		Multiplier: mult,
	}, nil
}

func (p *SessionPlacer) placeRoulette(vars *Variables) (*RoundResult, error) {
	if len(vars.Chips) == 0 {
		return nil, fmt.Errorf("roulette strategy placed no chips")
	}

	for id, amount := range vars.Chips {
		if err := p.roulette.PlaceBet(id, amount); err != nil {
			// Roll back any chips already on the table.
			_ = p.roulette.ClearBets()
			return nil, err
		}
	}

	o, err := p.roulette.Spin()
	if err != nil {
		return nil, err
	}

	var mult float64
	if o.Stake > 0 {
		mult = float64(o.Payout) / float64(o.Stake)
	}
	return &RoundResult{
		Game:       o.GameID,
		Stake:      o.Stake,
		Payout:     o.Payout,
		Win:        o.Won,
		Multiplier: mult,
	}, nil
}

func (p *SessionPlacer) placeBlackjack(vars *Variables) (*RoundResult, error) {
	o, done, err := p.blackjack.Deal(vars.NextBet)
	if err != nil {
		return nil, err
	}

	for !done {
		action := "stand"
		if p.decide != nil {
			dealer := p.blackjack.DealerHand()
			upcard := ""
			if len(dealer) > 0 {
				upcard = dealer[0].Rank
			}
			action, err = p.decide(games.HandValue(p.blackjack.PlayerHand()), upcard)
			if err != nil {
				return nil, err
			}
		}

		switch action {
		case "hit":
			o, done, err = p.blackjack.Hit()
		case "double":
			o, err = p.blackjack.Double()
			done = true
		default:
			o, err = p.blackjack.Stand()
			done = true
		}
		if err != nil {
			return nil, err
		}
	}

	var mult float64
	if o.Stake > 0 {
		mult = float64(o.Payout) / float64(o.Stake)
	}
	return &RoundResult{
		Game:       o.GameID,
		Stake:      o.Stake,
		Payout:     o.Payout,
		Win:        o.Won,
		Multiplier: mult,
	}, nil
}
