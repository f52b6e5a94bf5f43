package local

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

func testPlayers() []*model.Player {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []*model.Player{
		{ID: "p1", Name: "Alex", JoinedAt: base, JoinSeq: 1},
		{ID: "p2", Name: "Sam", JoinedAt: base.Add(time.Second), JoinSeq: 2},
	}
}

func testConfig(gen quiz.Generator) Config {
	return Config{
		Players:       testPlayers(),
		Subjects:      []string{"Science"},
		TotalRounds:   1,
		CountdownTime: time.Millisecond,
		AnswerTime:    5 * time.Second,
		Style:         narrator.DefaultStyle,
		Generator:     gen,
	}
}

// nextState reads transitions until pred matches, failing the test on
// timeout.
func nextState(t *testing.T, sess *Session, pred func(State) bool) State {
	t.Helper()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case st := <-sess.Updates():
			if pred(st) {
				return st
			}
		case <-deadline:
			t.Fatalf("state not reached, currently %+v", sess.State())
		}
	}
}

func TestSessionRequiresPlayers(t *testing.T) {
	t.Parallel()

	_, err := NewSession(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrNoPlayers)
}

func TestSessionPlaysFullGame(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	sess, err := NewSession(ctx, testConfig(&quiz.StubGenerator{}))
	require.NoError(t, err)

	doneCalled := false
	sess.DoneFn = func(*Session) { doneCalled = true }

	runDone := make(chan error, 1)
	go func() { runDone <- sess.Run(ctx) }()

	// p1 answers correctly
	st := nextState(t, sess, func(st State) bool { return st.Phase == PhaseQuestion })
	assert.Equal(t, "p1", st.Player.ID)
	assert.Equal(t, 1, st.RoundNumber)
	require.NotNil(t, st.Question)
	require.NoError(t, sess.Submit(st.Question.CorrectAnswer))

	st = nextState(t, sess, func(st State) bool { return st.Phase == PhaseRevealing })
	require.NotNil(t, st.Correct)
	assert.True(t, *st.Correct)
	assert.NotEmpty(t, st.Comment)
	require.NoError(t, sess.Advance())

	// p2 answers wrong
	st = nextState(t, sess, func(st State) bool { return st.Phase == PhaseQuestion })
	assert.Equal(t, "p2", st.Player.ID)
	require.NoError(t, sess.Submit("definitely wrong"))

	st = nextState(t, sess, func(st State) bool { return st.Phase == PhaseRevealing })
	require.NotNil(t, st.Correct)
	assert.False(t, *st.Correct)
	require.NoError(t, sess.Advance())

	nextState(t, sess, func(st State) bool { return st.Phase == PhaseFinished })
	require.NoError(t, <-runDone)
	assert.True(t, doneCalled)

	stats := sess.Stats()
	assert.Equal(t, 10, stats["p1"].Score)
	assert.Equal(t, 0, stats["p2"].Score)

	rows := sess.Leaderboard()
	require.Len(t, rows, 2)
	assert.Equal(t, "p1", rows[0].Player.ID)
	assert.Equal(t, 1, rows[0].Rank)
}

func TestSessionAnswerTimeout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	config := testConfig(&quiz.StubGenerator{})
	config.Players = testPlayers()[:1]
	config.AnswerTime = 20 * time.Millisecond

	sess, err := NewSession(ctx, config)
	require.NoError(t, err)

	runDone := make(chan error, 1)
	go func() { runDone <- sess.Run(ctx) }()

	st := nextState(t, sess, func(st State) bool { return st.Phase == PhaseRevealing })
	require.NotNil(t, st.Correct)
	assert.False(t, *st.Correct)
	assert.Empty(t, st.Answer)
	require.NoError(t, sess.Advance())

	nextState(t, sess, func(st State) bool { return st.Phase == PhaseFinished })
	require.NoError(t, <-runDone)

	// a timeout counts as an attempt but never sets the fastest answer
	stats := sess.Stats()
	assert.Equal(t, 1, stats["p1"].Total)
	assert.Nil(t, stats["p1"].FastestAnswer)
}

func TestSessionTimeoutInput(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	config := testConfig(&quiz.StubGenerator{})
	config.Players = testPlayers()[:1]

	sess, err := NewSession(ctx, config)
	require.NoError(t, err)

	runDone := make(chan error, 1)
	go func() { runDone <- sess.Run(ctx) }()

	nextState(t, sess, func(st State) bool { return st.Phase == PhaseQuestion })
	require.NoError(t, sess.Timeout())

	st := nextState(t, sess, func(st State) bool { return st.Phase == PhaseRevealing })
	require.NotNil(t, st.Correct)
	assert.False(t, *st.Correct)
	require.NoError(t, sess.Advance())

	nextState(t, sess, func(st State) bool { return st.Phase == PhaseFinished })
	require.NoError(t, <-runDone)
}

func TestSessionGenerationRetry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	gen := &quiz.StubGenerator{}
	gen.Fail.Store(true)

	config := testConfig(gen)
	config.Players = testPlayers()[:1]

	sess, err := NewSession(ctx, config)
	require.NoError(t, err)

	runDone := make(chan error, 1)
	go func() { runDone <- sess.Run(ctx) }()

	nextState(t, sess, func(st State) bool {
		return st.Phase == PhaseGenerating && st.GenerationFailed
	})

	gen.Fail.Store(false)
	require.NoError(t, sess.Retry())

	st := nextState(t, sess, func(st State) bool { return st.Phase == PhaseQuestion })
	require.NotNil(t, st.Question)
	require.NoError(t, sess.Submit(st.Question.CorrectAnswer))

	st = nextState(t, sess, func(st State) bool { return st.Phase == PhaseRevealing })
	require.NoError(t, sess.Advance())

	nextState(t, sess, func(st State) bool { return st.Phase == PhaseFinished })
	require.NoError(t, <-runDone)
}

func TestSessionStop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	sess, err := NewSession(ctx, testConfig(&quiz.StubGenerator{}))
	require.NoError(t, err)

	runDone := make(chan error, 1)
	go func() { runDone <- sess.Run(ctx) }()

	nextState(t, sess, func(st State) bool { return st.Phase == PhaseQuestion })
	sess.Stop()
	sess.Stop()

	assert.ErrorIs(t, <-runDone, context.Canceled)
}

func TestSessionRejectsOutOfPhaseInput(t *testing.T) {
	t.Parallel()

	sess, err := NewSession(context.Background(), testConfig(&quiz.StubGenerator{}))
	require.NoError(t, err)

	assert.ErrorIs(t, sess.Submit("early"), ErrNotAcceptingAnswer)
	assert.ErrorIs(t, sess.Advance(), ErrNotRevealing)
	assert.ErrorIs(t, sess.Retry(), ErrNotFailed)
}
