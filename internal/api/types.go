package api

import (
	"github.com/cashx/engine/internal/autoplay"
	"github.com/cashx/engine/internal/missions"
	"github.com/cashx/engine/internal/session"
	"github.com/cashx/engine/internal/store"
)

// EngineError represents a structured error response with context
type EngineError struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty"`
}

// Error implements the error interface
func (e EngineError) Error() string {
	return e.Message
}

// Error types with proper categorization
const (
	// Input validation errors
	ErrTypeInvalidWager = "invalid_wager"
	ErrTypeInvalidBet   = "invalid_bet"
	ErrTypeValidation   = "validation_error"

	// Round state errors
	ErrTypeIllegalTransition = "illegal_transition"
	ErrTypeGameNotFound      = "game_not_found"

	// Mission errors
	ErrTypeMissionNotClaimable = "mission_not_claimable"

	// System errors
	ErrTypeTimeout  = "timeout"
	ErrTypeInternal = "internal_error"
)

// ErrorCategory represents error categories for monitoring
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryRound      ErrorCategory = "round"
	CategorySystem     ErrorCategory = "system"
	CategoryTimeout    ErrorCategory = "timeout"
)

// GetErrorCategory returns the category for an error type
func GetErrorCategory(errType string) ErrorCategory {
	switch errType {
	case ErrTypeInvalidWager, ErrTypeInvalidBet, ErrTypeValidation:
		return CategoryValidation
	case ErrTypeIllegalTransition, ErrTypeGameNotFound, ErrTypeMissionNotClaimable:
		return CategoryRound
	case ErrTypeTimeout:
		return CategoryTimeout
	default:
		return CategorySystem
	}
}

// VersionInfo contains engine version information
type VersionInfo struct {
	Product       string `json:"product"`
	EngineVersion string `json:"engine_version"`
	GitCommit     string `json:"git_commit,omitempty"`
	BuildTime     string `json:"build_time,omitempty"`
}

// StakeRequest carries a bare wager amount. Crash start, plinko drop,
// sugar rush spin and blackjack deal all use it; plinko adds a risk.
type StakeRequest struct {
	Stake int64  `json:"stake"`
	Risk  string `json:"risk,omitempty"`
}

// RouletteBetRequest places chips on a single bet spot.
type RouletteBetRequest struct {
	BetID string `json:"bet_id"`
	Stake int64  `json:"stake"`
}

// OutcomeResponse wraps a settled round with the balance after credit.
type OutcomeResponse struct {
	Outcome       session.Outcome `json:"outcome"`
	Balance       int64           `json:"balance"`
	EngineVersion string          `json:"engine_version"`
}

// RoundStateResponse reports an in-flight round without settling it.
type RoundStateResponse struct {
	Game       string  `json:"game"`
	State      string  `json:"state"`
	Multiplier float64 `json:"multiplier,omitempty"`
	Balance    int64   `json:"balance"`
}

// BlackjackStateResponse exposes the table between deal and resolution.
// The dealer hole card stays hidden while the player is acting.
type BlackjackStateResponse struct {
	State       string   `json:"state"`
	PlayerHand  []string `json:"player_hand"`
	PlayerValue int      `json:"player_value"`
	DealerUp    string   `json:"dealer_up,omitempty"`
	Balance     int64    `json:"balance"`
}

// BlackjackDealResponse is the deal result; Outcome is set only when
// a natural settles the round immediately.
type BlackjackDealResponse struct {
	Settled       bool             `json:"settled"`
	Outcome       *session.Outcome `json:"outcome,omitempty"`
	PlayerHand    []string         `json:"player_hand"`
	PlayerValue   int              `json:"player_value"`
	DealerUp      string           `json:"dealer_up,omitempty"`
	Balance       int64            `json:"balance"`
	EngineVersion string           `json:"engine_version"`
}

// WalletResponse reports the coin balance.
type WalletResponse struct {
	Balance       int64  `json:"balance"`
	EngineVersion string `json:"engine_version"`
}

// HistoryResponse is the paginated round history.
type HistoryResponse struct {
	Rounds        store.RoundsList `json:"rounds"`
	EngineVersion string           `json:"engine_version"`
}

// MissionsResponse lists mission progress for the active profile.
type MissionsResponse struct {
	Missions      []missions.Status `json:"missions"`
	EngineVersion string            `json:"engine_version"`
}

// ClaimResponse is the result of a successful mission claim.
type ClaimResponse struct {
	MissionID     string `json:"mission_id"`
	Reward        int64  `json:"reward"`
	Balance       int64  `json:"balance"`
	EngineVersion string `json:"engine_version"`
}

// RouletteBetsResponse echoes the chips currently on the table.
type RouletteBetsResponse struct {
	Bets    map[string]int64 `json:"bets"`
	Total   int64            `json:"total"`
	Balance int64            `json:"balance"`
}

// AutoplayStartRequest carries the strategy script to run. MaxRounds
// optionally tightens the runner's round cap.
type AutoplayStartRequest struct {
	Script    string `json:"script"`
	MaxRounds int    `json:"max_rounds,omitempty"`
}

// AutoplayStateResponse reports the runner snapshot, the script's log
// buffer and the live wallet balance.
type AutoplayStateResponse struct {
	autoplay.Snapshot
	Logs    []autoplay.LogEntry `json:"logs,omitempty"`
	Balance int64               `json:"balance"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status        string `json:"status"`
	EngineVersion string `json:"engine_version"`
	Timestamp     string `json:"timestamp"`
}
