package store

import (
	"time"
)

// DB represents the persistence interface
type DB interface {
	Close() error
	Migrate() error
	GetProfile(id string) (*Profile, error)
	CreateProfile(name string) (*Profile, error)
	UpdateBalance(profileID string, balance int64) error
	SaveRound(round *Round) error
	ListRounds(query RoundsQuery) (*RoundsList, error)
	RecentRounds(profileID, game string, limit int) ([]Round, error)
	UpsertMission(progress *MissionProgress) error
	ListMissions(profileID string) ([]MissionProgress, error)
}

// RoundsQuery represents query parameters for listing rounds
type RoundsQuery struct {
	ProfileID string `json:"profileId"`
	Game      string `json:"game,omitempty"`
	Page      int    `json:"page"`
	PerPage   int    `json:"perPage"`
}

// RoundsList represents paginated rounds response
type RoundsList struct {
	Rounds     []Round `json:"rounds"`
	TotalCount int     `json:"totalCount"`
	Page       int     `json:"page"`
	PerPage    int     `json:"perPage"`
	TotalPages int     `json:"totalPages"`
}

// Profile represents a player profile with its coin balance
type Profile struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Balance   int64     `json:"balance" db:"balance"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Round represents a single settled game round
type Round struct {
	ID          string    `json:"id" db:"id"`
	ProfileID   string    `json:"profile_id" db:"profile_id"`
	Game        string    `json:"game" db:"game"`
	Stake       int64     `json:"stake" db:"stake"`
	Payout      int64     `json:"payout" db:"payout"`
	Profit      int64     `json:"profit" db:"profit"`
	Won         bool      `json:"won" db:"won"`
	DetailsJSON string    `json:"details" db:"details"` // JSON string
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// MissionProgress represents a profile's progress on one mission
type MissionProgress struct {
	ProfileID   string     `json:"profile_id" db:"profile_id"`
	MissionID   string     `json:"mission_id" db:"mission_id"`
	Progress    int        `json:"progress" db:"progress"`
	Completed   bool       `json:"completed" db:"completed"`
	RewardPaid  bool       `json:"reward_paid" db:"reward_paid"`
	MetaJSON    string     `json:"meta,omitempty" db:"meta"` // JSON string
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}
