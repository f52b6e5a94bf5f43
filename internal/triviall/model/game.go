package model

import "time"

type GameStatus string

const (
	StatusLobby    GameStatus = "lobby"
	StatusPlaying  GameStatus = "playing"
	StatusFinished GameStatus = "finished"
)

type TurnPhase string

const (
	// PhaseNone means no turn is in progress.
	PhaseNone      TurnPhase = ""
	PhaseQuestion  TurnPhase = "question"
	PhaseRevealing TurnPhase = "revealing"
)

// Game is the canonical shared record one trivia session coordinates through.
// Every connected client derives its local view purely from the current value
// of this record plus its own player id.
type Game struct {
	ID     string     `json:"id"`
	Code   string     `json:"code"`
	Status GameStatus `json:"status"`

	Subjects    []string `json:"subjects"`
	TotalRounds int      `json:"totalRounds"`

	CurrentRoundNumber  int    `json:"currentRoundNumber"`
	CurrentRoundSubject string `json:"currentRoundSubject"`

	CurrentTurnPlayerID string    `json:"currentTurnPlayerId"`
	CurrentTurnPhase    TurnPhase `json:"currentTurnPhase"`
	CurrentTurnQuestion *Question `json:"currentTurnQuestion"`
	CurrentTurnAnswer   string    `json:"currentTurnAnswer"`
	CurrentTurnCorrect  *bool     `json:"currentTurnCorrect"`

	// PlayersAnswered holds the ids of players who finished their turn (or
	// answered, in simultaneous mode) in the current round.
	PlayersAnswered []string `json:"playersAnswered"`

	// Version increases on every store write. Informational only: clients
	// never diff versions, they re-derive from the whole record.
	Version   uint64    `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
}

func (g *Game) HasAnswered(playerID string) bool {
	for _, id := range g.PlayersAnswered {
		if id == playerID {
			return true
		}
	}
	return false
}

// ClearTurn resets all turn-scoped fields.
func (g *Game) ClearTurn() {
	g.CurrentTurnPlayerID = ""
	g.CurrentTurnPhase = PhaseNone
	g.CurrentTurnQuestion = nil
	g.CurrentTurnAnswer = ""
	g.CurrentTurnCorrect = nil
}

// Clone returns a deep copy, safe to hand to another goroutine.
func (g *Game) Clone() *Game {
	cp := *g
	cp.Subjects = append([]string(nil), g.Subjects...)
	cp.PlayersAnswered = append([]string(nil), g.PlayersAnswered...)
	if g.CurrentTurnQuestion != nil {
		q := g.CurrentTurnQuestion.Clone()
		cp.CurrentTurnQuestion = &q
	}
	if g.CurrentTurnCorrect != nil {
		v := *g.CurrentTurnCorrect
		cp.CurrentTurnCorrect = &v
	}
	return &cp
}
