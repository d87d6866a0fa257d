package api

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/cashx/engine/internal/autoplay"
)

// handleAutoplayStart compiles and launches a strategy script over the
// server's own game sessions. One runner at a time; starting while a
// run is in flight conflicts.
func (s *Server) handleAutoplayStart(w http.ResponseWriter, r *http.Request) {
	var req AutoplayStartRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Script == "" {
		s.errorHandler.HandleValidationError(w, r, "script", "script must not be empty")
		return
	}

	s.autoplayMu.Lock()
	defer s.autoplayMu.Unlock()

	if s.autoplay != nil && s.autoplay.GetState().State == autoplay.StateRunning {
		s.writeError(w, http.StatusConflict, ErrTypeIllegalTransition, "Autoplay is already running", nil)
		return
	}

	placer := autoplay.NewSessionPlacer(s.crash, s.plinko, s.sugarRush, s.roulette, s.blackjack)
	runner := autoplay.NewRunner(placer)
	if req.MaxRounds > 0 {
		runner.SetMaxRounds(req.MaxRounds)
	}

	if err := runner.Start(req.Script, s.wallet.Balance()); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, "Script rejected", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	s.autoplay = runner

	s.auditLogger.LogAuditEvent(middleware.GetReqID(r.Context()), "start", "autoplay", "accepted", map[string]interface{}{
		"script_bytes":  len(req.Script),
		"start_balance": s.wallet.Balance(),
	})
	s.writeJSON(w, http.StatusOK, s.autoplayState(runner))
}

// handleAutoplayStop cancels the in-flight run and waits for the round
// loop to drain.
func (s *Server) handleAutoplayStop(w http.ResponseWriter, r *http.Request) {
	s.autoplayMu.Lock()
	runner := s.autoplay
	s.autoplayMu.Unlock()

	if runner == nil {
		s.writeError(w, http.StatusConflict, ErrTypeIllegalTransition, "Autoplay is not running", nil)
		return
	}
	if err := runner.Stop(); err != nil {
		s.writeError(w, http.StatusConflict, ErrTypeIllegalTransition, "Autoplay is not running", nil)
		return
	}

	s.auditLogger.LogAuditEvent(middleware.GetReqID(r.Context()), "stop", "autoplay", "stopped", map[string]interface{}{
		"end_balance": s.wallet.Balance(),
	})
	s.writeJSON(w, http.StatusOK, s.autoplayState(runner))
}

// handleAutoplayState reports the latest runner snapshot, or an idle
// placeholder when no run has been started yet.
func (s *Server) handleAutoplayState(w http.ResponseWriter, r *http.Request) {
	s.autoplayMu.Lock()
	runner := s.autoplay
	s.autoplayMu.Unlock()

	if runner == nil {
		s.writeJSON(w, http.StatusOK, AutoplayStateResponse{
			Snapshot: autoplay.Snapshot{State: autoplay.StateIdle},
			Balance:  s.wallet.Balance(),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, s.autoplayState(runner))
}

func (s *Server) autoplayState(runner *autoplay.Runner) AutoplayStateResponse {
	return AutoplayStateResponse{
		Snapshot: runner.GetState(),
		Logs:     runner.GetLogs(),
		Balance:  s.wallet.Balance(),
	}
}
