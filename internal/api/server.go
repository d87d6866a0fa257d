package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cashx/engine/internal/autoplay"
	"github.com/cashx/engine/internal/missions"
	"github.com/cashx/engine/internal/rng"
	"github.com/cashx/engine/internal/session"
	"github.com/cashx/engine/internal/store"
	"github.com/cashx/engine/internal/wallet"
)

// Server handles HTTP requests for one active profile. Each game keeps
// its own session so an open blackjack hand never blocks a crash round.
type Server struct {
	db        store.DB
	profileID string
	wallet    *wallet.Wallet
	missions  *missions.Tracker

	crash     *session.CrashSession
	plinko    *session.PlinkoSession
	sugarRush *session.SugarRushSession
	roulette  *session.RouletteSession
	blackjack *session.BlackjackSession

	autoplayMu sync.Mutex
	autoplay   *autoplay.Runner

	errorHandler *ErrorHandler
	logger       *log.Logger
	auditLogger  *AuditLogger
	startTime    time.Time
}

// NewServer creates a new API server and wires the per-game sessions
// against the shared wallet, mission tracker and round store.
func NewServer(db store.DB, profileID string, w *wallet.Wallet, tracker *missions.Tracker, src rng.Source) *Server {
	logger := log.New(os.Stdout, "[API] ", log.LstdFlags|log.Lshortfile)
	errorHandler := NewErrorHandler(logger)
	auditLogger := NewAuditLogger()

	recorder := &roundRecorder{db: db, profileID: profileID}

	server := &Server{
		db:           db,
		profileID:    profileID,
		wallet:       w,
		missions:     tracker,
		crash:        session.NewCrashSession(src, w, tracker, recorder),
		plinko:       session.NewPlinkoSession(src, w, tracker, recorder),
		sugarRush:    session.NewSugarRushSession(src, w, tracker, recorder),
		roulette:     session.NewRouletteSession(src, w, tracker, recorder),
		blackjack:    session.NewBlackjackSession(src, w, tracker, recorder),
		errorHandler: errorHandler,
		logger:       logger,
		auditLogger:  auditLogger,
		startTime:    time.Now(),
	}

	auditLogger.LogSystemStartup("unknown", map[string]interface{}{
		"profile_id":       profileID,
		"games_available":  5,
		"database_enabled": server.db != nil,
	})

	return server
}

// Routes sets up the HTTP routes with proper middleware
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(s.errorHandler.RecoveryHandler) // Use our custom recovery handler
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsAllowAll)

	// Health and monitoring endpoints
	r.Get("/health", s.handleHealthCheck)
	r.Get("/health/ready", s.handleReadiness)
	r.Get("/health/live", s.handleLiveness)
	r.Get("/version", s.handleVersion)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/wallet", s.handleWallet)
		r.Get("/history", s.handleHistory)
		r.Get("/history/recent", s.handleRecentHistory)

		r.Get("/missions", s.handleMissions)
		r.Post("/missions/{missionID}/claim", s.handleMissionClaim)

		r.Route("/crash", func(r chi.Router) {
			r.Post("/start", s.handleCrashStart)
			r.Get("/multiplier", s.handleCrashMultiplier)
			r.Post("/cashout", s.handleCrashCashOut)
			r.Post("/bust", s.handleCrashBust)
		})

		r.Post("/plinko/drop", s.handlePlinkoDrop)
		r.Post("/sugarrush/spin", s.handleSugarRushSpin)

		r.Route("/roulette", func(r chi.Router) {
			r.Get("/bets", s.handleRouletteBets)
			r.Post("/bets", s.handleRoulettePlaceBet)
			r.Delete("/bets", s.handleRouletteClearBets)
			r.Post("/spin", s.handleRouletteSpin)
		})

		r.Route("/blackjack", func(r chi.Router) {
			r.Get("/hand", s.handleBlackjackHand)
			r.Post("/deal", s.handleBlackjackDeal)
			r.Post("/hit", s.handleBlackjackHit)
			r.Post("/stand", s.handleBlackjackStand)
			r.Post("/double", s.handleBlackjackDouble)
		})

		r.Route("/autoplay", func(r chi.Router) {
			r.Post("/start", s.handleAutoplayStart)
			r.Post("/stop", s.handleAutoplayStop)
			r.Get("/state", s.handleAutoplayState)
		})
	})

	return r
}

// logRequests emits one structured line per completed request. The
// wrapped writer captures the status and byte count chi saw.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Printf(
			"http request_id=%s method=%s path=%s status=%d bytes=%d duration=%v remote=%s",
			middleware.GetReqID(r.Context()),
			r.Method,
			r.URL.Path,
			ww.Status(),
			ww.BytesWritten(),
			time.Since(start),
			r.RemoteAddr,
		)
	})
}

// corsAllowAll opens the API to browser clients on any origin. The
// server binds to loopback, so this only reaches local frontends.
func corsAllowAll(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		h.Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response with proper headers
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// writeError writes a structured error response
func (s *Server) writeError(w http.ResponseWriter, status int, errType, message string, context map[string]interface{}) {
	errorResponse := EngineError{
		Type:    errType,
		Message: message,
		Context: context,
	}
	s.writeJSON(w, status, errorResponse)
}

// roundRecorder persists settled outcomes for the history endpoint.
// Detail payloads are stored as JSON so each game keeps its own shape.
type roundRecorder struct {
	db        store.DB
	profileID string
}

func (rr *roundRecorder) RecordOutcome(o session.Outcome) error {
	var details string
	if o.Detail != nil {
		if raw, err := json.Marshal(o.Detail); err == nil {
			details = string(raw)
		}
	}
	return rr.db.SaveRound(&store.Round{
		ID:          o.ID,
		ProfileID:   rr.profileID,
		Game:        o.GameID,
		Stake:       o.Stake,
		Payout:      o.Payout,
		Profit:      o.Profit,
		Won:         o.Won,
		DetailsJSON: details,
		CreatedAt:   o.At,
	})
}
