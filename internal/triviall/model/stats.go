package model

import "time"

const (
	MinDifficulty     = 1
	MaxDifficulty     = 10
	DefaultDifficulty = 5
)

// Stats is the per-player running record for one game session. It is never
// persisted beyond the session and is mutated only through the score package.
type Stats struct {
	Score             int            `json:"score"`
	Correct           int            `json:"correct"`
	Total             int            `json:"total"`
	Streak            int            `json:"streak"`
	BestStreak        int            `json:"bestStreak"`
	LastAnswerCorrect bool           `json:"lastAnswerCorrect"`
	CategoryHits      map[string]int `json:"categoryHits"`
	// FastestAnswer is the minimum observed answer latency; nil until a timed
	// answer has been recorded. Timeouts never update it.
	FastestAnswer  *time.Duration `json:"fastestAnswer"`
	PointsThisTurn int            `json:"pointsThisTurn"`
	// Difficulty is the user-set base level, only changed by explicit
	// adjustment.
	Difficulty int `json:"difficulty"`
}

func NewStats(difficulty int) Stats {
	if difficulty < MinDifficulty || difficulty > MaxDifficulty {
		difficulty = DefaultDifficulty
	}
	return Stats{CategoryHits: map[string]int{}, Difficulty: difficulty}
}

func (s Stats) Clone() Stats {
	cp := s
	cp.CategoryHits = make(map[string]int, len(s.CategoryHits))
	for k, v := range s.CategoryHits {
		cp.CategoryHits[k] = v
	}
	if s.FastestAnswer != nil {
		d := *s.FastestAnswer
		cp.FastestAnswer = &d
	}
	return cp
}
