package model

import "time"

// TTL is how long a saved session stays resumable.
const TTL = 2 * time.Hour

// Session is the locally persisted pointer back into a live game, written on
// join and cleared once the game finishes.
type Session struct {
	GameID        string    `json:"gameId"`
	PlayerID      string    `json:"playerId"`
	Code          string    `json:"code"`
	PlayerName    string    `json:"playerName"`
	IsHost        bool      `json:"isHost"`
	TotalRounds   int       `json:"totalRounds"`
	NarratorStyle string    `json:"narratorStyle"`
	SavedAt       time.Time `json:"savedAt"`
}

// Expired reports whether the session is past its resume window at now.
func (s Session) Expired(now time.Time) bool {
	return now.Sub(s.SavedAt) > TTL
}
