package store

import (
	"database/sql"
	"errors"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()

	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	if err := db.Migrate(); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
}

func TestCreateProfileSeedsBalance(t *testing.T) {
	db := newTestDB(t)

	p, err := db.CreateProfile("player one")
	if err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	if p.ID == "" {
		t.Error("profile ID is empty")
	}
	if p.Balance != InitialBalance {
		t.Errorf("balance %d, want %d", p.Balance, InitialBalance)
	}

	got, err := db.GetProfile(p.ID)
	if err != nil {
		t.Fatalf("failed to get profile: %v", err)
	}
	if got.Name != "player one" || got.Balance != InitialBalance {
		t.Errorf("got %+v", got)
	}
}

func TestUpdateBalance(t *testing.T) {
	db := newTestDB(t)

	p, err := db.CreateProfile("player")
	if err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}

	if err := db.UpdateBalance(p.ID, 2500); err != nil {
		t.Fatalf("failed to update balance: %v", err)
	}

	got, err := db.GetProfile(p.ID)
	if err != nil {
		t.Fatalf("failed to get profile: %v", err)
	}
	if got.Balance != 2500 {
		t.Errorf("balance %d, want 2500", got.Balance)
	}

	if err := db.UpdateBalance("missing", 100); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("update of missing profile = %v, want sql.ErrNoRows", err)
	}
}

func TestSaveAndListRounds(t *testing.T) {
	db := newTestDB(t)

	p, err := db.CreateProfile("player")
	if err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}

	games := []string{"crash", "plinko", "crash", "roulette", "crash"}
	for i, game := range games {
		round := &Round{
			ProfileID:   p.ID,
			Game:        game,
			Stake:       100,
			Payout:      int64(i * 50),
			Profit:      int64(i*50) - 100,
			Won:         i*50 > 100,
			DetailsJSON: `{"n":` + string(rune('0'+i)) + `}`,
		}
		if err := db.SaveRound(round); err != nil {
			t.Fatalf("failed to save round %d: %v", i, err)
		}
		if round.ID == "" {
			t.Fatal("round ID was not assigned")
		}
	}

	list, err := db.ListRounds(RoundsQuery{ProfileID: p.ID, Page: 1, PerPage: 3})
	if err != nil {
		t.Fatalf("failed to list rounds: %v", err)
	}
	if list.TotalCount != 5 {
		t.Errorf("total count %d, want 5", list.TotalCount)
	}
	if list.TotalPages != 2 {
		t.Errorf("total pages %d, want 2", list.TotalPages)
	}
	if len(list.Rounds) != 3 {
		t.Errorf("page size %d, want 3", len(list.Rounds))
	}

	filtered, err := db.ListRounds(RoundsQuery{ProfileID: p.ID, Game: "crash"})
	if err != nil {
		t.Fatalf("failed to filter rounds: %v", err)
	}
	if filtered.TotalCount != 3 {
		t.Errorf("crash count %d, want 3", filtered.TotalCount)
	}
	for _, r := range filtered.Rounds {
		if r.Game != "crash" {
			t.Errorf("filtered list contains game %q", r.Game)
		}
	}
}

func TestRecentRoundsLimit(t *testing.T) {
	db := newTestDB(t)

	p, err := db.CreateProfile("player")
	if err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}

	for i := 0; i < 20; i++ {
		round := &Round{ProfileID: p.ID, Game: "plinko", Stake: 10, Payout: 5, Profit: -5}
		if err := db.SaveRound(round); err != nil {
			t.Fatalf("failed to save round %d: %v", i, err)
		}
	}

	recent, err := db.RecentRounds(p.ID, "", 15)
	if err != nil {
		t.Fatalf("failed to get recent rounds: %v", err)
	}
	if len(recent) != 15 {
		t.Errorf("recent rounds %d, want 15", len(recent))
	}

	none, err := db.RecentRounds(p.ID, "crash", 15)
	if err != nil {
		t.Fatalf("failed to get filtered recent rounds: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("crash rounds %d, want 0", len(none))
	}
}

func TestMissionUpsert(t *testing.T) {
	db := newTestDB(t)

	p, err := db.CreateProfile("player")
	if err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}

	mp := &MissionProgress{ProfileID: p.ID, MissionID: "crash_wins", Progress: 2}
	if err := db.UpsertMission(mp); err != nil {
		t.Fatalf("failed to upsert mission: %v", err)
	}

	now := time.Now().UTC()
	mp.Progress = 5
	mp.Completed = true
	mp.RewardPaid = true
	mp.CompletedAt = &now
	if err := db.UpsertMission(mp); err != nil {
		t.Fatalf("failed to upsert mission again: %v", err)
	}

	missions, err := db.ListMissions(p.ID)
	if err != nil {
		t.Fatalf("failed to list missions: %v", err)
	}
	if len(missions) != 1 {
		t.Fatalf("missions %d, want 1 (upsert must replace)", len(missions))
	}
	got := missions[0]
	if got.Progress != 5 || !got.Completed || !got.RewardPaid {
		t.Errorf("got %+v", got)
	}
	if got.CompletedAt == nil {
		t.Error("completed_at was not persisted")
	}
}
