package model

import (
	"sort"
	"time"
)

// Player belongs to exactly one game. JoinedAt is the canonical turn-order
// key and never changes after creation; JoinSeq breaks ties between players
// created within the same timestamp.
type Player struct {
	ID          string    `json:"id"`
	GameID      string    `json:"gameId"`
	Name        string    `json:"name"`
	Age         int       `json:"age"`
	Interests   string    `json:"interests"`
	AvatarEmoji string    `json:"avatarEmoji"`
	IsHost      bool      `json:"isHost"`
	IsReady     bool      `json:"isReady"`
	JoinedAt    time.Time `json:"joinedAt"`
	JoinSeq     int       `json:"joinSeq"`
}

// SortByJoinOrder sorts players by join timestamp ascending, insertion order
// breaking ties. All turn sequencing relies on this order.
func SortByJoinOrder(players []*Player) {
	sort.SliceStable(players, func(i, j int) bool {
		if players[i].JoinedAt.Equal(players[j].JoinedAt) {
			return players[i].JoinSeq < players[j].JoinSeq
		}
		return players[i].JoinedAt.Before(players[j].JoinedAt)
	})
}

// NextUnanswered returns the first player in join order whose id is not in
// answered, or nil when the round is complete.
func NextUnanswered(players []*Player, answered []string) *Player {
	sorted := make([]*Player, len(players))
	copy(sorted, players)
	SortByJoinOrder(sorted)

OuterLoop:
	for _, p := range sorted {
		for _, id := range answered {
			if id == p.ID {
				continue OuterLoop
			}
		}
		return p
	}

	return nil
}
