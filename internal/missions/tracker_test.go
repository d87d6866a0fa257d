package missions

import (
	"errors"
	"testing"

	"github.com/cashx/engine/internal/store"
)

type fakeWallet struct {
	balance int64
}

func (w *fakeWallet) Credit(amount int64) int64 {
	w.balance += amount
	return w.balance
}

func newTracker(t *testing.T) (*Tracker, store.DB, string, *fakeWallet) {
	t.Helper()

	db, err := store.NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	p, err := db.CreateProfile("player")
	if err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}

	w := &fakeWallet{}
	tracker, err := NewTracker(db, p.ID, w)
	if err != nil {
		t.Fatalf("failed to create tracker: %v", err)
	}

	return tracker, db, p.ID, w
}

func statusByID(t *testing.T, tracker *Tracker, id string) Status {
	t.Helper()
	for _, s := range tracker.Statuses() {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("mission %q not found", id)
	return Status{}
}

func TestPlayCountMission(t *testing.T) {
	tracker, _, _, _ := newTracker(t)

	for i := 0; i < 5; i++ {
		tracker.RecordRound("plinko", false, 0)
	}

	s := statusByID(t, tracker, "plinko_5")
	if s.Progress != 5 || !s.Completed {
		t.Errorf("plinko_5 progress %d completed %v, want 5 true", s.Progress, s.Completed)
	}

	// Progress freezes at the target.
	tracker.RecordRound("plinko", false, 0)
	if s := statusByID(t, tracker, "plinko_5"); s.Progress != 5 {
		t.Errorf("progress moved past target: %d", s.Progress)
	}
}

func TestWinCountMissionIgnoresLosses(t *testing.T) {
	tracker, _, _, _ := newTracker(t)

	tracker.RecordRound("blackjack", false, 0)
	tracker.RecordRound("blackjack", true, 200)
	tracker.RecordRound("blackjack", true, 200)

	s := statusByID(t, tracker, "blackjack_win_3")
	if s.Progress != 2 || s.Completed {
		t.Errorf("blackjack_win_3 progress %d completed %v, want 2 false", s.Progress, s.Completed)
	}
}

func TestBigWinMission(t *testing.T) {
	tracker, _, _, _ := newTracker(t)

	tracker.RecordRound("crash", true, BigWinThreshold)
	if s := statusByID(t, tracker, "big_win"); s.Completed {
		t.Error("payout equal to threshold completed big_win")
	}

	tracker.RecordRound("crash", true, BigWinThreshold+1)
	if s := statusByID(t, tracker, "big_win"); !s.Completed {
		t.Error("payout above threshold did not complete big_win")
	}
}

func TestPlayAllMissionCountsDistinctGames(t *testing.T) {
	tracker, _, _, _ := newTracker(t)

	for i := 0; i < 3; i++ {
		tracker.RecordRound("crash", false, 0)
	}
	if s := statusByID(t, tracker, "play_all"); s.Progress != 1 {
		t.Errorf("repeat rounds counted as distinct games: %d", s.Progress)
	}

	for _, game := range []string{"plinko", "sugarrush", "roulette", "blackjack"} {
		tracker.RecordRound(game, false, 0)
	}
	s := statusByID(t, tracker, "play_all")
	if s.Progress != 5 || !s.Completed {
		t.Errorf("play_all progress %d completed %v, want 5 true", s.Progress, s.Completed)
	}
}

func TestClaimPaysOnce(t *testing.T) {
	tracker, _, _, w := newTracker(t)

	if _, err := tracker.Claim("plinko_5"); !errors.Is(err, ErrNotClaimable) {
		t.Fatalf("claim of incomplete mission = %v, want ErrNotClaimable", err)
	}

	for i := 0; i < 5; i++ {
		tracker.RecordRound("plinko", false, 0)
	}

	reward, err := tracker.Claim("plinko_5")
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if reward != 300 || w.balance != 300 {
		t.Errorf("reward %d, wallet %d, want 300 both", reward, w.balance)
	}

	if _, err := tracker.Claim("plinko_5"); !errors.Is(err, ErrNotClaimable) {
		t.Errorf("second claim = %v, want ErrNotClaimable", err)
	}
	if w.balance != 300 {
		t.Errorf("second claim paid again: %d", w.balance)
	}

	if _, err := tracker.Claim("no_such_mission"); !errors.Is(err, ErrNotClaimable) {
		t.Errorf("claim of unknown mission = %v, want ErrNotClaimable", err)
	}
}

func TestProgressSurvivesReload(t *testing.T) {
	tracker, db, profileID, _ := newTracker(t)

	tracker.RecordRound("crash", true, 100)
	tracker.RecordRound("plinko", false, 0)
	tracker.RecordRound("blackjack", true, 250)

	reloaded, err := NewTracker(db, profileID, nil)
	if err != nil {
		t.Fatalf("failed to reload tracker: %v", err)
	}

	if s := statusByID(t, reloaded, "total_50"); s.Progress != 3 {
		t.Errorf("total_50 progress %d after reload, want 3", s.Progress)
	}
	if s := statusByID(t, reloaded, "play_all"); s.Progress != 3 {
		t.Errorf("play_all progress %d after reload, want 3", s.Progress)
	}
	if s := statusByID(t, reloaded, "blackjack_win_3"); s.Progress != 1 {
		t.Errorf("blackjack_win_3 progress %d after reload, want 1", s.Progress)
	}
}

func TestResetZeroesEverything(t *testing.T) {
	tracker, db, profileID, _ := newTracker(t)

	for i := 0; i < 10; i++ {
		tracker.RecordRound("crash", true, 100)
	}
	tracker.Reset()

	for _, s := range tracker.Statuses() {
		if s.Progress != 0 || s.Completed || s.Claimed {
			t.Errorf("mission %s not reset: %+v", s.ID, s)
		}
	}

	reloaded, err := NewTracker(db, profileID, nil)
	if err != nil {
		t.Fatalf("failed to reload tracker: %v", err)
	}
	if s := statusByID(t, reloaded, "crash_10"); s.Progress != 0 {
		t.Errorf("reset did not persist, crash_10 progress %d", s.Progress)
	}
}
