// Package score implements the streak-based scoring engine, the adaptive
// difficulty hint and the leaderboard. All functions are pure over
// model.Stats so shared and local games score identically.
package score

import (
	"sort"
	"time"

	"github.com/triviall-games/triviall/internal/triviall/model"
	"github.com/triviall-games/triviall/internal/util"
)

const basePoints = 10

// Multiplier returns the streak bonus factor. The threshold is evaluated on
// the streak the answer produced, not the prior one.
func Multiplier(streak int) float64 {
	switch {
	case streak >= 5:
		return 2.5
	case streak >= 3:
		return 2.0
	case streak >= 2:
		return 1.5
	default:
		return 1.0
	}
}

// Points returns the score awarded for a correct answer at the given new
// streak.
func Points(streak int) int {
	return int(basePoints*Multiplier(streak) + 0.5)
}

// Record applies one answer outcome and returns the updated stats. A nil
// answerTime (timeout) never updates the fastest-answer mark. The topic's
// category entry is created even for a wrong answer so the category shows up
// as attempted.
func Record(s model.Stats, correct bool, topic string, answerTime *time.Duration) model.Stats {
	next := s.Clone()

	if correct {
		next.Streak = s.Streak + 1
	} else {
		next.Streak = 0
	}

	earned := 0
	if correct {
		earned = Points(next.Streak)
	}

	next.Score += earned
	next.PointsThisTurn = earned
	next.Total++
	if correct {
		next.Correct++
	}
	if next.Streak > next.BestStreak {
		next.BestStreak = next.Streak
	}
	next.LastAnswerCorrect = correct

	if topic != "" {
		if _, ok := next.CategoryHits[topic]; !ok {
			next.CategoryHits[topic] = 0
		}
		if correct {
			next.CategoryHits[topic]++
		}
	}

	if answerTime != nil {
		if next.FastestAnswer == nil || *answerTime < *next.FastestAnswer {
			d := *answerTime
			next.FastestAnswer = &d
		}
	}

	return next
}

// Effective derives the difficulty used for question generation. It biases
// the stored base level by recent accuracy without ever overwriting it.
func Effective(s model.Stats) int {
	if s.Total < 2 {
		return s.Difficulty
	}

	accuracy := float64(s.Correct) / float64(s.Total)
	switch {
	case accuracy >= 0.8 && s.Streak >= 2:
		return util.Clamp(s.Difficulty+1, model.MinDifficulty, model.MaxDifficulty)
	case accuracy <= 0.3:
		return util.Clamp(s.Difficulty-1, model.MinDifficulty, model.MaxDifficulty)
	default:
		return s.Difficulty
	}
}

// SetBase stores an explicit user difficulty adjustment, clamped to the
// valid range.
func SetBase(s model.Stats, level int) model.Stats {
	next := s.Clone()
	next.Difficulty = util.Clamp(level, model.MinDifficulty, model.MaxDifficulty)
	return next
}

// Row is one leaderboard entry.
type Row struct {
	Player *model.Player
	Stats  model.Stats
	Rank   int
}

// Leaderboard merges players with their stats sorted by score descending.
// Ties break by earlier join time, then insertion order, so the ranking is
// deterministic on every device.
func Leaderboard(players []*model.Player, stats map[string]model.Stats) []Row {
	rows := make([]Row, 0, len(players))
	for _, p := range players {
		st, ok := stats[p.ID]
		if !ok {
			st = model.NewStats(model.DefaultDifficulty)
		}
		rows = append(rows, Row{Player: p, Stats: st})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Stats.Score != rows[j].Stats.Score {
			return rows[i].Stats.Score > rows[j].Stats.Score
		}
		if !rows[i].Player.JoinedAt.Equal(rows[j].Player.JoinedAt) {
			return rows[i].Player.JoinedAt.Before(rows[j].Player.JoinedAt)
		}
		return rows[i].Player.JoinSeq < rows[j].Player.JoinSeq
	})

	for i := range rows {
		rows[i].Rank = i + 1
	}

	return rows
}
