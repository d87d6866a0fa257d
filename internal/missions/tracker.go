package missions

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cashx/engine/internal/store"
)

// ErrNotClaimable is returned when a claim targets a mission that is
// unknown, incomplete, or already claimed.
var ErrNotClaimable = errors.New("mission not claimable")

// Crediter pays coin rewards. *wallet.Wallet satisfies it.
type Crediter interface {
	Credit(amount int64) int64
}

// Status is one mission's definition combined with the profile's
// progress on it.
type Status struct {
	Definition
	Progress  int  `json:"progress"`
	Completed bool `json:"completed"`
	Claimed   bool `json:"claimed"`
}

type missionState struct {
	progress  int
	completed bool
	claimed   bool
	played    map[string]bool // play_all only
}

// playAllMeta is the persisted shape of a play_all mission's game set.
type playAllMeta struct {
	GamesPlayed []string `json:"gamesPlayed"`
}

// Tracker advances mission progress as rounds settle and persists every
// change. It implements the session package's MissionTracker.
type Tracker struct {
	mu        sync.Mutex
	db        store.DB
	profileID string
	wallet    Crediter
	defs      []Definition
	state     map[string]*missionState
}

// NewTracker loads the profile's saved progress over the default
// mission set. wallet may be nil; claims then complete without paying.
func NewTracker(db store.DB, profileID string, wallet Crediter) (*Tracker, error) {
	t := &Tracker{
		db:        db,
		profileID: profileID,
		wallet:    wallet,
		defs:      Defaults(),
		state:     make(map[string]*missionState),
	}
	for _, def := range t.defs {
		t.state[def.ID] = &missionState{played: make(map[string]bool)}
	}

	saved, err := db.ListMissions(profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mission progress: %w", err)
	}
	for _, mp := range saved {
		st, ok := t.state[mp.MissionID]
		if !ok {
			continue // retired mission, leave the row alone
		}
		st.progress = mp.Progress
		st.completed = mp.Completed
		st.claimed = mp.RewardPaid
		if mp.MetaJSON != "" {
			var meta playAllMeta
			if err := json.Unmarshal([]byte(mp.MetaJSON), &meta); err == nil {
				for _, g := range meta.GamesPlayed {
					st.played[g] = true
				}
			}
		}
	}

	return t, nil
}

// RecordRound advances every mission the round touches. Completed
// missions stay frozen.
func (t *Tracker) RecordRound(gameID string, won bool, payout int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, def := range t.defs {
		st := t.state[def.ID]
		if st.completed {
			continue
		}

		before := st.progress
		switch def.Kind {
		case KindPlayCount:
			if def.Game == gameID {
				st.progress++
			}
		case KindWinCount:
			if def.Game == gameID && won {
				st.progress++
			}
		case KindAnyCount:
			st.progress++
		case KindBigWin:
			if payout > BigWinThreshold {
				st.progress = 1
			}
		case KindPlayAll:
			st.played[gameID] = true
			st.progress = len(st.played)
		}

		if st.progress > def.Target {
			st.progress = def.Target
		}
		if st.progress == before {
			continue
		}
		st.completed = st.progress >= def.Target

		t.persist(def, st)
	}
}

// Claim pays out a completed mission's reward. Each mission pays once.
func (t *Tracker) Claim(missionID string) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var def Definition
	found := false
	for _, d := range t.defs {
		if d.ID == missionID {
			def = d
			found = true
			break
		}
	}
	if !found {
		return 0, fmt.Errorf("%w: unknown mission %q", ErrNotClaimable, missionID)
	}

	st := t.state[missionID]
	if !st.completed || st.claimed {
		return 0, fmt.Errorf("%w: %q", ErrNotClaimable, missionID)
	}

	st.claimed = true
	t.persist(def, st)
	if t.wallet != nil {
		t.wallet.Credit(def.Reward)
	}

	return def.Reward, nil
}

// Statuses returns every mission with the profile's progress, in
// definition order.
func (t *Tracker) Statuses() []Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Status, 0, len(t.defs))
	for _, def := range t.defs {
		st := t.state[def.ID]
		out = append(out, Status{
			Definition: def,
			Progress:   st.progress,
			Completed:  st.completed,
			Claimed:    st.claimed,
		})
	}

	return out
}

// Reset zeroes all mission progress, in memory and in the store.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, def := range t.defs {
		t.state[def.ID] = &missionState{played: make(map[string]bool)}
		t.persist(def, t.state[def.ID])
	}
}

func (t *Tracker) persist(def Definition, st *missionState) {
	mp := &store.MissionProgress{
		ProfileID:  t.profileID,
		MissionID:  def.ID,
		Progress:   st.progress,
		Completed:  st.completed,
		RewardPaid: st.claimed,
	}
	if def.Kind == KindPlayAll && len(st.played) > 0 {
		games := make([]string, 0, len(st.played))
		for g := range st.played {
			games = append(games, g)
		}
		sort.Strings(games)
		if b, err := json.Marshal(playAllMeta{GamesPlayed: games}); err == nil {
			mp.MetaJSON = string(b)
		}
	}
	if st.completed {
		now := time.Now().UTC()
		mp.CompletedAt = &now
	}

	_ = t.db.UpsertMission(mp) // progress loss is tolerable, round settlement is not
}
