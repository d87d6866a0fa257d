package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// InitialBalance is the coin balance granted to a freshly created profile.
const InitialBalance = 1000

// SQLiteDB implements the DB interface using SQLite
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB creates a new SQLite database connection
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate runs database migrations
func (s *SQLiteDB) Migrate() error {
	baseMigrations := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			balance INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS rounds (
			id TEXT PRIMARY KEY,
			profile_id TEXT NOT NULL,
			game TEXT NOT NULL,
			stake INTEGER NOT NULL,
			payout INTEGER NOT NULL,
			profit INTEGER NOT NULL,
			won INTEGER NOT NULL DEFAULT 0,
			details TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (profile_id) REFERENCES profiles(id)
		)`,
		`CREATE TABLE IF NOT EXISTS missions (
			profile_id TEXT NOT NULL,
			mission_id TEXT NOT NULL,
			progress INTEGER NOT NULL DEFAULT 0,
			completed INTEGER NOT NULL DEFAULT 0,
			reward_paid INTEGER NOT NULL DEFAULT 0,
			meta TEXT,
			completed_at DATETIME,
			PRIMARY KEY (profile_id, mission_id),
			FOREIGN KEY (profile_id) REFERENCES profiles(id)
		)`,
	}

	for _, migration := range baseMigrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("base migration failed: %w", err)
		}
	}

	indexMigrations := []string{
		`CREATE INDEX IF NOT EXISTS idx_rounds_profile ON rounds(profile_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_game ON rounds(profile_id, game, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_missions_profile ON missions(profile_id)`,
	}

	for _, migration := range indexMigrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("index migration failed: %w", err)
		}
	}

	return nil
}

// GetProfile retrieves a profile by ID
func (s *SQLiteDB) GetProfile(id string) (*Profile, error) {
	query := `SELECT id, name, balance, created_at, updated_at FROM profiles WHERE id = ?`

	var p Profile
	err := s.db.QueryRow(query, id).Scan(&p.ID, &p.Name, &p.Balance, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// CreateProfile creates a profile seeded with the initial balance
func (s *SQLiteDB) CreateProfile(name string) (*Profile, error) {
	p := &Profile{
		ID:      uuid.New().String(),
		Name:    name,
		Balance: InitialBalance,
	}

	query := `INSERT INTO profiles (id, name, balance) VALUES (?, ?, ?)`
	if _, err := s.db.Exec(query, p.ID, p.Name, p.Balance); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return s.GetProfile(p.ID)
}

// UpdateBalance writes the profile's current balance
func (s *SQLiteDB) UpdateBalance(profileID string, balance int64) error {
	query := `UPDATE profiles SET balance = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	res, err := s.db.Exec(query, balance, profileID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// SaveRound saves a settled round to the database
func (s *SQLiteDB) SaveRound(round *Round) error {
	if round.ID == "" {
		round.ID = uuid.New().String()
	}

	wonInt := 0
	if round.Won {
		wonInt = 1
	}

	query := `INSERT INTO rounds (id, profile_id, game, stake, payout, profit, won, details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query,
		round.ID, round.ProfileID, round.Game, round.Stake,
		round.Payout, round.Profit, wonInt, round.DetailsJSON,
	)

	return err
}

// ListRounds retrieves rounds with pagination and game filtering
func (s *SQLiteDB) ListRounds(query RoundsQuery) (*RoundsList, error) {
	whereClause := "WHERE profile_id = ?"
	args := []interface{}{query.ProfileID}

	if query.Game != "" {
		whereClause += " AND game = ?"
		args = append(args, query.Game)
	}

	countQuery := "SELECT COUNT(*) FROM rounds " + whereClause
	var totalCount int
	err := s.db.QueryRow(countQuery, args...).Scan(&totalCount)
	if err != nil {
		return nil, fmt.Errorf("failed to get total count: %w", err)
	}

	if query.PerPage <= 0 {
		query.PerPage = 50 // Default page size
	}
	if query.Page <= 0 {
		query.Page = 1
	}

	totalPages := (totalCount + query.PerPage - 1) / query.PerPage
	offset := (query.Page - 1) * query.PerPage

	mainQuery := `SELECT id, profile_id, game, stake, payout, profit, won, details, created_at
		FROM rounds ` + whereClause + `
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`

	args = append(args, query.PerPage, offset)

	rows, err := s.db.Query(mainQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds: %w", err)
	}
	defer rows.Close()

	rounds, err := scanRounds(rows)
	if err != nil {
		return nil, err
	}

	return &RoundsList{
		Rounds:     rounds,
		TotalCount: totalCount,
		Page:       query.Page,
		PerPage:    query.PerPage,
		TotalPages: totalPages,
	}, nil
}

// RecentRounds retrieves the newest rounds for a profile, optionally
// filtered to one game.
func (s *SQLiteDB) RecentRounds(profileID, game string, limit int) ([]Round, error) {
	if limit <= 0 {
		limit = 15
	}

	whereClause := "WHERE profile_id = ?"
	args := []interface{}{profileID}
	if game != "" {
		whereClause += " AND game = ?"
		args = append(args, game)
	}

	query := `SELECT id, profile_id, game, stake, payout, profit, won, details, created_at
		FROM rounds ` + whereClause + `
		ORDER BY created_at DESC, id
		LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent rounds: %w", err)
	}
	defer rows.Close()

	return scanRounds(rows)
}

func scanRounds(rows *sql.Rows) ([]Round, error) {
	var rounds []Round
	for rows.Next() {
		var r Round
		var wonInt int
		var details sql.NullString

		err := rows.Scan(&r.ID, &r.ProfileID, &r.Game, &r.Stake,
			&r.Payout, &r.Profit, &wonInt, &details, &r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}

		r.Won = wonInt == 1
		if details.Valid {
			r.DetailsJSON = details.String
		}

		rounds = append(rounds, r)
	}

	return rounds, rows.Err()
}

// UpsertMission writes a mission progress row, replacing any existing one
func (s *SQLiteDB) UpsertMission(progress *MissionProgress) error {
	completedInt := 0
	if progress.Completed {
		completedInt = 1
	}
	rewardInt := 0
	if progress.RewardPaid {
		rewardInt = 1
	}

	query := `INSERT INTO missions (profile_id, mission_id, progress, completed, reward_paid, meta, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(profile_id, mission_id) DO UPDATE SET
			progress = excluded.progress,
			completed = excluded.completed,
			reward_paid = excluded.reward_paid,
			meta = excluded.meta,
			completed_at = excluded.completed_at`

	_, err := s.db.Exec(query,
		progress.ProfileID, progress.MissionID, progress.Progress,
		completedInt, rewardInt, progress.MetaJSON, progress.CompletedAt,
	)

	return err
}

// ListMissions retrieves all mission progress rows for a profile
func (s *SQLiteDB) ListMissions(profileID string) ([]MissionProgress, error) {
	query := `SELECT profile_id, mission_id, progress, completed, reward_paid, meta, completed_at
		FROM missions WHERE profile_id = ?
		ORDER BY mission_id`

	rows, err := s.db.Query(query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query missions: %w", err)
	}
	defer rows.Close()

	var progresses []MissionProgress
	for rows.Next() {
		var mp MissionProgress
		var completedInt, rewardInt int
		var meta sql.NullString
		var completedAt sql.NullTime

		err := rows.Scan(&mp.ProfileID, &mp.MissionID, &mp.Progress,
			&completedInt, &rewardInt, &meta, &completedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mission: %w", err)
		}

		mp.Completed = completedInt == 1
		mp.RewardPaid = rewardInt == 1
		if meta.Valid {
			mp.MetaJSON = meta.String
		}
		if completedAt.Valid {
			t := completedAt.Time
			mp.CompletedAt = &t
		}

		progresses = append(progresses, mp)
	}

	return progresses, rows.Err()
}
