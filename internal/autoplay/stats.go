package autoplay

// Statistics aggregates results across a strategy run.
type Statistics struct {
	Rounds        int   `json:"rounds"`
	Wins          int   `json:"wins"`
	Losses        int   `json:"losses"`
	WinStreak     int   `json:"winStreak"`
	LoseStreak    int   `json:"loseStreak"`
	CurrentStreak int   `json:"currentStreak"`
	Profit        int64 `json:"profit"`
	Wagered       int64 `json:"wagered"`
	StartBalance  int64 `json:"startBalance"`
	Balance       int64 `json:"balance"`
}

// NewStatistics creates statistics anchored at the starting balance.
func NewStatistics(startBalance int64) *Statistics {
	return &Statistics{
		StartBalance: startBalance,
		Balance:      startBalance,
	}
}

// RecordRound folds one settled round into the aggregates. The current
// streak is positive while winning and negative while losing.
func (s *Statistics) RecordRound(r RoundResult) {
	s.Rounds++
	s.Wagered += r.Stake
	s.Profit += r.Payout - r.Stake
	s.Balance += r.Payout - r.Stake

	if r.Win {
		s.Wins++
		if s.CurrentStreak > 0 {
			s.CurrentStreak++
		} else {
			s.CurrentStreak = 1
		}
		if s.CurrentStreak > s.WinStreak {
			s.WinStreak = s.CurrentStreak
		}
	} else {
		s.Losses++
		if s.CurrentStreak < 0 {
			s.CurrentStreak--
		} else {
			s.CurrentStreak = -1
		}
		if -s.CurrentStreak > s.LoseStreak {
			s.LoseStreak = -s.CurrentStreak
		}
	}
}

// Reset zeroes the aggregates, re-anchoring at the current balance.
func (s *Statistics) Reset() {
	bal := s.Balance
	*s = Statistics{StartBalance: bal, Balance: bal}
}
