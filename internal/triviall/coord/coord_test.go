package coord

import (
	"context"
	"testing"
	"time"

	"github.com/triviall-games/triviall/internal/triviall/model"
	"github.com/triviall-games/triviall/internal/triviall/narrator"
	"github.com/triviall-games/triviall/internal/triviall/quiz"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBase = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestGame(t *testing.T, store Store, totalRounds int, playerIDs ...string) *model.Game {
	t.Helper()
	ctx := context.Background()

	g := &model.Game{
		ID:          "g1",
		Code:        "AB12",
		Status:      model.StatusLobby,
		Subjects:    []string{"Science"},
		TotalRounds: totalRounds,
	}
	require.NoError(t, store.CreateGame(ctx, g))

	for i, id := range playerIDs {
		require.NoError(t, store.AddPlayer(ctx, &model.Player{
			ID:       id,
			GameID:   g.ID,
			Name:     id,
			IsHost:   i == 0,
			IsReady:  true,
			JoinedAt: testBase.Add(time.Duration(i) * time.Second),
		}))
	}

	return g
}

func newTestClient(t *testing.T, store Store, playerID string) *Client {
	t.Helper()
	c, err := NewClient(context.Background(), store, &quiz.StubGenerator{}, "g1", playerID, narrator.DefaultStyle)
	require.NoError(t, err)
	return c
}

// syncClients re-reads the record and feeds it to every client, the way a
// change notification would.
func syncClients(t *testing.T, store Store, clients ...*Client) *model.Game {
	t.Helper()
	ctx := context.Background()

	g, err := store.GameByID(ctx, "g1")
	require.NoError(t, err)
	for _, c := range clients {
		require.NoError(t, c.observe(ctx, g))
	}
	return g
}

func TestMemStoreCreateAndLookup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemStore()
	newTestGame(t, store, 1, "p1")

	g, err := store.GameByCode(ctx, "AB12")
	require.NoError(t, err)
	assert.Equal(t, "g1", g.ID)

	_, err = store.GameByCode(ctx, "ZZZZ")
	assert.ErrorIs(t, err, ErrGameNotFound)

	err = store.CreateGame(ctx, &model.Game{ID: "g2", Code: "AB12"})
	assert.ErrorIs(t, err, ErrCodeTaken)
}

func TestMemStoreUpdateIsAtomic(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemStore()
	newTestGame(t, store, 1, "p1")

	before, err := store.GameByID(ctx, "g1")
	require.NoError(t, err)

	_, err = store.UpdateGame(ctx, "g1", func(g *model.Game) error {
		g.Status = model.StatusPlaying
		g.CurrentRoundNumber = 7
		return assert.AnError
	})
	require.Error(t, err)

	after, err := store.GameByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, before.Version, after.Version)
}

func TestMemStoreWatchDeliversLatest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemStore()
	newTestGame(t, store, 1, "p1")

	events, cancel, err := store.Watch(ctx, "g1")
	require.NoError(t, err)
	defer cancel()

	// two writes back to back; a slow reader must still end on the latest
	_, err = store.UpdateGame(ctx, "g1", func(g *model.Game) error {
		g.CurrentRoundNumber = 1
		return nil
	})
	require.NoError(t, err)
	_, err = store.UpdateGame(ctx, "g1", func(g *model.Game) error {
		g.CurrentRoundNumber = 2
		return nil
	})
	require.NoError(t, err)

	select {
	case evt := <-events:
		assert.Equal(t, 2, evt.Game.CurrentRoundNumber)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestMemStoreUpdatePlayer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemStore()
	newTestGame(t, store, 1, "p1")

	err := store.UpdatePlayer(ctx, "g1", "p1", func(p *model.Player) error {
		p.IsReady = false
		return nil
	})
	require.NoError(t, err)

	p, err := store.PlayerByID(ctx, "g1", "p1")
	require.NoError(t, err)
	assert.False(t, p.IsReady)

	// a failing mutate leaves the stored player untouched
	err = store.UpdatePlayer(ctx, "g1", "p1", func(p *model.Player) error {
		p.IsReady = true
		return assert.AnError
	})
	require.Error(t, err)
	p, err = store.PlayerByID(ctx, "g1", "p1")
	require.NoError(t, err)
	assert.False(t, p.IsReady)

	err = store.UpdatePlayer(ctx, "g1", "ghost", func(p *model.Player) error { return nil })
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestMemStorePlayersSortedByJoinOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemStore()
	newTestGame(t, store, 1, "p1", "p2", "p3")

	players, err := store.PlayersByGame(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, players, 3)
	assert.Equal(t, "p1", players[0].ID)
	assert.Equal(t, "p3", players[2].ID)
}

func TestReduceAppliesRevealOnce(t *testing.T) {
	t.Parallel()

	correct := true
	g := &model.Game{
		ID:                  "g1",
		Status:              model.StatusPlaying,
		CurrentRoundNumber:  1,
		CurrentRoundSubject: "Science",
		CurrentTurnPlayerID: "p1",
		CurrentTurnPhase:    model.PhaseRevealing,
		CurrentTurnCorrect:  &correct,
	}
	players := []*model.Player{{ID: "p1", Name: "Alex"}, {ID: "p2", Name: "Sam"}}

	view := View{Stats: map[string]model.Stats{}}
	view = Reduce("p2", narrator.DefaultStyle, view, g, players)
	assert.Equal(t, 10, view.Stats["p1"].Score)
	assert.NotEmpty(t, view.Comment)

	// duplicate notification of the same record
	again := Reduce("p2", narrator.DefaultStyle, view, g, players)
	assert.Equal(t, 10, again.Stats["p1"].Score)
	assert.Equal(t, view.AppliedKey, again.AppliedKey)
}

func TestReduceDerivedFlags(t *testing.T) {
	t.Parallel()

	g := &model.Game{
		ID:                  "g1",
		Status:              model.StatusPlaying,
		CurrentRoundNumber:  1,
		CurrentTurnPlayerID: "p1",
		CurrentTurnPhase:    model.PhaseQuestion,
	}
	players := []*model.Player{{ID: "p1"}, {ID: "p2"}}

	mine := Reduce("p1", narrator.DefaultStyle, View{Stats: map[string]model.Stats{}}, g, players)
	assert.True(t, mine.IsMyTurn)
	assert.False(t, mine.IsSpectating)
	assert.True(t, mine.Generating)

	theirs := Reduce("p2", narrator.DefaultStyle, View{Stats: map[string]model.Stats{}}, g, players)
	assert.False(t, theirs.IsMyTurn)
	assert.True(t, theirs.IsSpectating)
}

func TestFullTurnCycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemStore()
	newTestGame(t, store, 1, "p1", "p2")
	host := newTestClient(t, store, "p1")
	guest := newTestClient(t, store, "p2")

	require.NoError(t, host.StartGame(ctx))
	g := syncClients(t, store, host, guest)
	assert.Equal(t, model.StatusPlaying, g.Status)
	assert.Equal(t, 1, g.CurrentRoundNumber)

	// guest cannot open the round
	assert.ErrorIs(t, guest.SetRoundSubject(ctx, "Science"), ErrNotHost)

	require.NoError(t, host.SetRoundSubject(ctx, "Science"))
	g = syncClients(t, store, host, guest)
	assert.Equal(t, "Science", g.CurrentRoundSubject)
	assert.Equal(t, "p1", g.CurrentTurnPlayerID)
	assert.Equal(t, model.PhaseQuestion, g.CurrentTurnPhase)
	assert.Nil(t, g.CurrentTurnQuestion)

	// only the active player generates
	assert.ErrorIs(t, guest.PublishQuestion(ctx), ErrNotYourTurn)
	require.NoError(t, host.PublishQuestion(ctx))
	g = syncClients(t, store, host, guest)
	require.NotNil(t, g.CurrentTurnQuestion)

	// only the active player answers
	assert.ErrorIs(t, guest.SubmitAnswer(ctx, "anything"), ErrNotYourTurn)
	require.NoError(t, host.SubmitAnswer(ctx, g.CurrentTurnQuestion.CorrectAnswer))
	g = syncClients(t, store, host, guest)
	assert.Equal(t, model.PhaseRevealing, g.CurrentTurnPhase)
	require.NotNil(t, g.CurrentTurnCorrect)
	assert.True(t, *g.CurrentTurnCorrect)

	// both sides agree on the active player's score, and a duplicate
	// notification does not double it
	syncClients(t, store, host, guest)
	assert.Equal(t, 10, host.Snapshot().Stats["p1"].Score)
	assert.Equal(t, 10, guest.Snapshot().Stats["p1"].Score)

	require.NoError(t, host.AdvanceTurn(ctx))
	g = syncClients(t, store, host, guest)
	assert.Equal(t, "p2", g.CurrentTurnPlayerID)
	assert.Equal(t, model.PhaseQuestion, g.CurrentTurnPhase)
	assert.Contains(t, g.PlayersAnswered, "p1")

	require.NoError(t, guest.PublishQuestion(ctx))
	g = syncClients(t, store, host, guest)
	require.NoError(t, guest.SubmitTimeout(ctx))
	g = syncClients(t, store, host, guest)
	require.NotNil(t, g.CurrentTurnCorrect)
	assert.False(t, *g.CurrentTurnCorrect)
	assert.Equal(t, 0, host.Snapshot().Stats["p2"].Score)

	// last player of the last round finishes the game
	require.NoError(t, guest.AdvanceTurn(ctx))
	g = syncClients(t, store, host, guest)
	assert.Equal(t, model.StatusFinished, g.Status)
	assert.Empty(t, g.CurrentTurnPlayerID)
	assert.Equal(t, model.PhaseNone, g.CurrentTurnPhase)
}

func TestSubmitAnswerRecordsLatency(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemStore()
	newTestGame(t, store, 1, "p1", "p2")
	host := newTestClient(t, store, "p1")
	guest := newTestClient(t, store, "p2")

	require.NoError(t, host.StartGame(ctx))
	syncClients(t, store, host, guest)
	require.NoError(t, host.SetRoundSubject(ctx, "Science"))
	syncClients(t, store, host, guest)
	require.NoError(t, host.PublishQuestion(ctx))
	g := syncClients(t, store, host, guest)
	require.NoError(t, host.SubmitAnswer(ctx, g.CurrentTurnQuestion.CorrectAnswer))
	syncClients(t, store, host, guest)

	fastest := host.Snapshot().Stats["p1"].FastestAnswer
	require.NotNil(t, fastest)
	assert.Greater(t, *fastest, time.Duration(0))

	// spectators never learn the submitter's latency, only the outcome
	assert.Nil(t, guest.Snapshot().Stats["p1"].FastestAnswer)
	assert.Equal(t, 10, guest.Snapshot().Stats["p1"].Score)
}

func TestRoundAdvanceResetsRoundState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemStore()
	newTestGame(t, store, 2, "p1")
	host := newTestClient(t, store, "p1")

	require.NoError(t, host.StartGame(ctx))
	syncClients(t, store, host)
	require.NoError(t, host.SetRoundSubject(ctx, "Science"))
	syncClients(t, store, host)
	require.NoError(t, host.PublishQuestion(ctx))
	g := syncClients(t, store, host)
	require.NoError(t, host.SubmitAnswer(ctx, g.CurrentTurnQuestion.CorrectAnswer))
	syncClients(t, store, host)
	require.NoError(t, host.AdvanceTurn(ctx))

	g = syncClients(t, store, host)
	assert.Equal(t, model.StatusPlaying, g.Status)
	assert.Equal(t, 2, g.CurrentRoundNumber)
	assert.Empty(t, g.CurrentRoundSubject)
	assert.Empty(t, g.PlayersAnswered)
	assert.Empty(t, g.CurrentTurnPlayerID)
}

func TestKickReassignsActiveTurn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemStore()
	newTestGame(t, store, 1, "p1", "p2", "p3")
	host := newTestClient(t, store, "p1")

	require.NoError(t, host.StartGame(ctx))
	syncClients(t, store, host)
	require.NoError(t, host.SetRoundSubject(ctx, "Science"))
	g := syncClients(t, store, host)

	// play the host's turn through so p2 is active
	require.NoError(t, host.PublishQuestion(ctx))
	g = syncClients(t, store, host)
	require.NoError(t, host.SubmitAnswer(ctx, g.CurrentTurnQuestion.CorrectAnswer))
	syncClients(t, store, host)
	require.NoError(t, host.AdvanceTurn(ctx))
	g = syncClients(t, store, host)
	require.Equal(t, "p2", g.CurrentTurnPlayerID)

	require.NoError(t, host.KickPlayer(ctx, "p2"))
	g = syncClients(t, store, host)
	assert.Equal(t, "p3", g.CurrentTurnPlayerID)
	assert.Equal(t, model.PhaseQuestion, g.CurrentTurnPhase)

	players, err := store.PlayersByGame(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, players, 2)
}

func TestKickLastUnansweredFinishesRound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemStore()
	newTestGame(t, store, 1, "p1", "p2")
	host := newTestClient(t, store, "p1")

	require.NoError(t, host.StartGame(ctx))
	syncClients(t, store, host)
	require.NoError(t, host.SetRoundSubject(ctx, "Science"))
	g := syncClients(t, store, host)

	require.NoError(t, host.PublishQuestion(ctx))
	g = syncClients(t, store, host)
	require.NoError(t, host.SubmitAnswer(ctx, g.CurrentTurnQuestion.CorrectAnswer))
	syncClients(t, store, host)
	require.NoError(t, host.AdvanceTurn(ctx))
	g = syncClients(t, store, host)
	require.Equal(t, "p2", g.CurrentTurnPlayerID)

	// kicking the only remaining unanswered player ends the round, and with
	// it the single-round game
	require.NoError(t, host.KickPlayer(ctx, "p2"))
	g = syncClients(t, store, host)
	assert.Equal(t, model.StatusFinished, g.Status)
}

func TestKickRejectsHostTarget(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemStore()
	newTestGame(t, store, 1, "p1", "p2")
	host := newTestClient(t, store, "p1")
	guest := newTestClient(t, store, "p2")

	assert.ErrorIs(t, guest.KickPlayer(ctx, "p1"), ErrNotHost)
	assert.ErrorIs(t, host.KickPlayer(ctx, "p1"), ErrKickSelfHost)
}

func TestMarkAnswered(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemStore()
	newTestGame(t, store, 1, "p1", "p2")
	host := newTestClient(t, store, "p1")

	require.NoError(t, host.StartGame(ctx))
	syncClients(t, store, host)

	require.NoError(t, host.MarkAnswered(ctx))
	require.NoError(t, host.MarkAnswered(ctx))

	g := syncClients(t, store, host)
	assert.Equal(t, []string{"p1"}, g.PlayersAnswered)
}

func TestClientRunStopsOnFinish(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store := NewMemStore()
	newTestGame(t, store, 1, "p1")
	host := newTestClient(t, store, "p1")

	done := make(chan error, 1)
	go func() { done <- host.Run(ctx) }()

	_, err := store.UpdateGame(ctx, "g1", func(g *model.Game) error {
		g.Status = model.StatusFinished
		return nil
	})
	require.NoError(t, err)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("client did not stop on finish")
	}
}
