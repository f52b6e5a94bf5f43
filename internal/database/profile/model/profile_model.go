package model

import "time"

// Profile is the locally saved player identity, reused to prefill the next
// game's join screen.
type Profile struct {
	Name       string    `json:"name"`
	Avatar     string    `json:"avatar"`
	Interests  string    `json:"interests"`
	LastPlayed time.Time `json:"lastPlayed"`
}

// LifetimeStats aggregates results across games on this device.
type LifetimeStats struct {
	GamesPlayed      int    `json:"gamesPlayed"`
	GamesWon         int    `json:"gamesWon"`
	TotalCorrect     int    `json:"totalCorrect"`
	TotalQuestions   int    `json:"totalQuestions"`
	BestStreak       int    `json:"bestStreak"`
	FavoriteCategory string `json:"favoriteCategory"`
	TotalPoints      int    `json:"totalPoints"`
}

func DefaultLifetimeStats() LifetimeStats {
	return LifetimeStats{FavoriteCategory: "General"}
}

// GameResult is one finished game's contribution to the lifetime stats.
type GameResult struct {
	Won         bool
	Correct     int
	Total       int
	BestStreak  int
	Points      int
	TopCategory string
}

// Merge folds one game result into the aggregate.
func (s LifetimeStats) Merge(r GameResult) LifetimeStats {
	next := s
	next.GamesPlayed++
	if r.Won {
		next.GamesWon++
	}
	next.TotalCorrect += r.Correct
	next.TotalQuestions += r.Total
	if r.BestStreak > next.BestStreak {
		next.BestStreak = r.BestStreak
	}
	if r.TopCategory != "" {
		next.FavoriteCategory = r.TopCategory
	}
	next.TotalPoints += r.Points
	return next
}
