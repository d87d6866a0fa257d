package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cashx/engine/internal/games"
	"github.com/cashx/engine/internal/session"
	"github.com/cashx/engine/internal/store"
)

// decodeJSON parses the request body into dst, writing a validation
// error and returning false on malformed input.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, "Invalid JSON format", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}
	return true
}

func (s *Server) outcomeResponse(o session.Outcome) OutcomeResponse {
	return OutcomeResponse{
		Outcome:       o,
		Balance:       s.wallet.Balance(),
		EngineVersion: EngineVersion,
	}
}

func (s *Server) logSettled(r *http.Request, o session.Outcome) {
	requestID := middleware.GetReqID(r.Context())
	s.auditLogger.LogRoundSettled(requestID, o.GameID, o.ID, o.Stake, o.Payout, o.Won)
}

// handleVersion reports build information.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, buildInfo())
}

// handleWallet reports the active profile's balance.
func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, WalletResponse{
		Balance:       s.wallet.Balance(),
		EngineVersion: EngineVersion,
	})
}

// handleHistory returns paginated settled rounds, optionally filtered
// by game.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	query := store.RoundsQuery{
		ProfileID: s.profileID,
		Game:      r.URL.Query().Get("game"),
	}
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			s.errorHandler.HandleValidationError(w, r, "page", "page must be a positive integer")
			return
		}
		query.Page = page
	}
	if perPageStr := r.URL.Query().Get("per_page"); perPageStr != "" {
		perPage, err := strconv.Atoi(perPageStr)
		if err != nil || perPage < 1 || perPage > 200 {
			s.errorHandler.HandleValidationError(w, r, "per_page", "per_page must be between 1 and 200")
			return
		}
		query.PerPage = perPage
	}

	list, err := s.db.ListRounds(query)
	if err != nil {
		s.errorHandler.HandleError(w, r, err, http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, HistoryResponse{
		Rounds:        *list,
		EngineVersion: EngineVersion,
	})
}

// handleRecentHistory returns the most recent settled rounds, newest
// first, matching the bounded window a lobby ticker renders.
func (s *Server) handleRecentHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 || n > 100 {
			s.errorHandler.HandleValidationError(w, r, "limit", "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	rounds, err := s.db.RecentRounds(s.profileID, r.URL.Query().Get("game"), limit)
	if err != nil {
		s.errorHandler.HandleError(w, r, err, http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"rounds":         rounds,
		"engine_version": EngineVersion,
	})
}

// handleMissions lists mission progress for the active profile.
func (s *Server) handleMissions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, MissionsResponse{
		Missions:      s.missions.Statuses(),
		EngineVersion: EngineVersion,
	})
}

// handleMissionClaim pays out a completed mission reward.
func (s *Server) handleMissionClaim(w http.ResponseWriter, r *http.Request) {
	missionID := chi.URLParam(r, "missionID")

	reward, err := s.missions.Claim(missionID)
	if err != nil {
		s.errorHandler.HandleRoundError(w, r, "missions", err)
		return
	}

	requestID := middleware.GetReqID(r.Context())
	s.auditLogger.LogAuditEvent(requestID, "mission_claim", missionID, "success", map[string]interface{}{
		"reward": reward,
	})

	s.writeJSON(w, http.StatusOK, ClaimResponse{
		MissionID:     missionID,
		Reward:        reward,
		Balance:       s.wallet.Balance(),
		EngineVersion: EngineVersion,
	})
}

// handleCrashStart debits the stake and opens a crash round.
func (s *Server) handleCrashStart(w http.ResponseWriter, r *http.Request) {
	var req StakeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if err := s.crash.Start(req.Stake); err != nil {
		s.errorHandler.HandleRoundError(w, r, "crash", err)
		return
	}

	s.writeJSON(w, http.StatusOK, RoundStateResponse{
		Game:       "crash",
		State:      string(s.crash.State()),
		Multiplier: s.crash.Multiplier(),
		Balance:    s.wallet.Balance(),
	})
}

// handleCrashMultiplier reports the running multiplier without
// settling; clients poll it to animate the curve.
func (s *Server) handleCrashMultiplier(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, RoundStateResponse{
		Game:       "crash",
		State:      string(s.crash.State()),
		Multiplier: s.crash.Multiplier(),
		Balance:    s.wallet.Balance(),
	})
}

// handleCrashCashOut settles the open round at the current multiplier.
// A cash-out after the crash point settles as a bust.
func (s *Server) handleCrashCashOut(w http.ResponseWriter, r *http.Request) {
	o, err := s.crash.CashOut()
	if err != nil {
		s.errorHandler.HandleRoundError(w, r, "crash", err)
		return
	}
	s.logSettled(r, o)
	s.writeJSON(w, http.StatusOK, s.outcomeResponse(o))
}

// handleCrashBust settles an open round the client has observed
// crashing; payout is always zero.
func (s *Server) handleCrashBust(w http.ResponseWriter, r *http.Request) {
	o, err := s.crash.Bust()
	if err != nil {
		s.errorHandler.HandleRoundError(w, r, "crash", err)
		return
	}
	s.logSettled(r, o)
	s.writeJSON(w, http.StatusOK, s.outcomeResponse(o))
}

// handlePlinkoDrop plays one plinko ball at the requested risk.
func (s *Server) handlePlinkoDrop(w http.ResponseWriter, r *http.Request) {
	var req StakeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	risk := req.Risk
	if risk == "" {
		risk = string(games.PlinkoMid)
	}
	parsed, err := games.ParsePlinkoRisk(risk)
	if err != nil {
		s.errorHandler.HandleValidationError(w, r, "risk", err.Error())
		return
	}

	o, err := s.plinko.Drop(req.Stake, parsed)
	if err != nil {
		s.errorHandler.HandleRoundError(w, r, "plinko", err)
		return
	}
	s.logSettled(r, o)
	s.writeJSON(w, http.StatusOK, s.outcomeResponse(o))
}

// handleSugarRushSpin plays one sugar rush grid spin.
func (s *Server) handleSugarRushSpin(w http.ResponseWriter, r *http.Request) {
	var req StakeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	o, err := s.sugarRush.Spin(req.Stake)
	if err != nil {
		s.errorHandler.HandleRoundError(w, r, "sugar_rush", err)
		return
	}
	s.logSettled(r, o)
	s.writeJSON(w, http.StatusOK, s.outcomeResponse(o))
}

// handleRouletteBets echoes the chips currently on the table.
func (s *Server) handleRouletteBets(w http.ResponseWriter, r *http.Request) {
	bets := s.roulette.Bets()
	s.writeJSON(w, http.StatusOK, RouletteBetsResponse{
		Bets:    bets,
		Total:   bets.Total(),
		Balance: s.wallet.Balance(),
	})
}

// handleRoulettePlaceBet debits and stages chips on one bet spot.
func (s *Server) handleRoulettePlaceBet(w http.ResponseWriter, r *http.Request) {
	var req RouletteBetRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.BetID == "" {
		s.errorHandler.HandleValidationError(w, r, "bet_id", "bet_id is required")
		return
	}

	if err := s.roulette.PlaceBet(req.BetID, req.Stake); err != nil {
		s.errorHandler.HandleRoundError(w, r, "roulette", err)
		return
	}

	bets := s.roulette.Bets()
	s.writeJSON(w, http.StatusOK, RouletteBetsResponse{
		Bets:    bets,
		Total:   bets.Total(),
		Balance: s.wallet.Balance(),
	})
}

// handleRouletteClearBets refunds every staged chip.
func (s *Server) handleRouletteClearBets(w http.ResponseWriter, r *http.Request) {
	if err := s.roulette.ClearBets(); err != nil {
		s.errorHandler.HandleRoundError(w, r, "roulette", err)
		return
	}
	s.writeJSON(w, http.StatusOK, RouletteBetsResponse{
		Bets:    map[string]int64{},
		Total:   0,
		Balance: s.wallet.Balance(),
	})
}

// handleRouletteSpin resolves every staged bet against one pocket.
func (s *Server) handleRouletteSpin(w http.ResponseWriter, r *http.Request) {
	o, err := s.roulette.Spin()
	if err != nil {
		s.errorHandler.HandleRoundError(w, r, "roulette", err)
		return
	}
	s.logSettled(r, o)
	s.writeJSON(w, http.StatusOK, s.outcomeResponse(o))
}

// handleBlackjackHand exposes the table between deal and resolution.
func (s *Server) handleBlackjackHand(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.blackjackState())
}

// handleBlackjackDeal debits the stake and deals the opening hands.
// Naturals settle immediately.
func (s *Server) handleBlackjackDeal(w http.ResponseWriter, r *http.Request) {
	var req StakeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	o, settled, err := s.blackjack.Deal(req.Stake)
	if err != nil {
		s.errorHandler.HandleRoundError(w, r, "blackjack", err)
		return
	}

	resp := BlackjackDealResponse{
		Settled:       settled,
		Balance:       s.wallet.Balance(),
		EngineVersion: EngineVersion,
	}
	player := s.blackjack.PlayerHand()
	resp.PlayerHand = cardStrings(player)
	resp.PlayerValue = games.HandValue(player)
	if dealer := s.blackjack.DealerHand(); len(dealer) > 0 {
		resp.DealerUp = dealer[0].String()
	}
	if settled {
		resp.Outcome = &o
		s.logSettled(r, o)
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleBlackjackHit draws one card; a bust settles the round.
func (s *Server) handleBlackjackHit(w http.ResponseWriter, r *http.Request) {
	o, settled, err := s.blackjack.Hit()
	if err != nil {
		s.errorHandler.HandleRoundError(w, r, "blackjack", err)
		return
	}
	if settled {
		s.logSettled(r, o)
		s.writeJSON(w, http.StatusOK, s.outcomeResponse(o))
		return
	}
	s.writeJSON(w, http.StatusOK, s.blackjackState())
}

// handleBlackjackStand hands the round to the dealer and settles.
func (s *Server) handleBlackjackStand(w http.ResponseWriter, r *http.Request) {
	o, err := s.blackjack.Stand()
	if err != nil {
		s.errorHandler.HandleRoundError(w, r, "blackjack", err)
		return
	}
	s.logSettled(r, o)
	s.writeJSON(w, http.StatusOK, s.outcomeResponse(o))
}

// handleBlackjackDouble doubles the stake, draws exactly one card and
// settles against the dealer.
func (s *Server) handleBlackjackDouble(w http.ResponseWriter, r *http.Request) {
	o, err := s.blackjack.Double()
	if err != nil {
		s.errorHandler.HandleRoundError(w, r, "blackjack", err)
		return
	}
	s.logSettled(r, o)
	s.writeJSON(w, http.StatusOK, s.outcomeResponse(o))
}

func (s *Server) blackjackState() BlackjackStateResponse {
	resp := BlackjackStateResponse{
		State:   string(s.blackjack.State()),
		Balance: s.wallet.Balance(),
	}
	player := s.blackjack.PlayerHand()
	resp.PlayerHand = cardStrings(player)
	resp.PlayerValue = games.HandValue(player)
	if dealer := s.blackjack.DealerHand(); len(dealer) > 0 {
		resp.DealerUp = dealer[0].String()
	}
	return resp
}

func cardStrings(cards []games.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
