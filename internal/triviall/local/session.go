// Package local runs same-device multiplayer. One process owns all state, so
// the turn cycle is a plain loop over players and rounds with no shared
// record and no notification feed, while scoring goes through the exact same
// engine as shared games.
package local

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/triviall-games/triviall/internal/logging"
	"github.com/triviall-games/triviall/internal/triviall/model"
	"github.com/triviall-games/triviall/internal/triviall/narrator"
	"github.com/triviall-games/triviall/internal/triviall/quiz"
	"github.com/triviall-games/triviall/internal/triviall/score"
	"github.com/triviall-games/triviall/internal/triviall/subject"

	"go.uber.org/zap"
)

type Phase string

const (
	PhaseStarting   Phase = "starting"
	PhaseGenerating Phase = "generating"
	PhaseQuestion   Phase = "question"
	PhaseRevealing  Phase = "revealing"
	PhaseFinished   Phase = "finished"
)

var (
	ErrNotAcceptingAnswer = fmt.Errorf("no answer expected now")
	ErrNotRevealing       = fmt.Errorf("no reveal to advance from")
	ErrNotFailed          = fmt.Errorf("no failed generation to retry")
	ErrNoPlayers          = fmt.Errorf("session needs at least one player")
)

// State is the sequencer's full renderable position. It is sent as a value on
// every transition; receivers own their copy.
type State struct {
	RoundNumber int
	RoundType   model.RoundType
	PlayerIndex int
	Player      *model.Player
	Phase       Phase
	Subject     string

	Question *model.Question
	Answer   string
	Correct  *bool
	Comment  string

	// GenerationFailed marks a generating phase stuck on an error, waiting
	// for Retry or Stop.
	GenerationFailed bool
}

type Config struct {
	Players       []*model.Player
	Subjects      []string
	TotalRounds   int
	CountdownTime time.Duration
	AnswerTime    time.Duration
	Style         narrator.Style
	Generator     quiz.Generator

	// DoneFn fires once after the last reveal is advanced past, before the
	// finished state is published.
	DoneFn func(*Session)
}

// Session cycles (round, player, phase) on a single device. All input comes
// through channel-fed methods; the loop goroutine is the only writer of the
// sequencing state.
type Session struct {
	Config

	mtx     sync.RWMutex
	players []*model.Player
	stats   map[string]model.Stats
	state   State

	stateCh   chan State
	answerCh  chan string
	advanceCh chan struct{}
	retryCh   chan struct{}
	stopCh    chan struct{}
	stopOnce  sync.Once

	logger *zap.SugaredLogger
}

func NewSession(ctx context.Context, config Config) (*Session, error) {
	if len(config.Players) == 0 {
		return nil, ErrNoPlayers
	}
	if config.TotalRounds <= 0 {
		config.TotalRounds = 1
	}

	players := make([]*model.Player, len(config.Players))
	copy(players, config.Players)
	model.SortByJoinOrder(players)

	stats := make(map[string]model.Stats, len(players))
	for _, p := range players {
		stats[p.ID] = model.NewStats(model.DefaultDifficulty)
	}

	return &Session{
		Config:    config,
		players:   players,
		stats:     stats,
		stateCh:   make(chan State, 1),
		answerCh:  make(chan string, 1),
		advanceCh: make(chan struct{}),
		retryCh:   make(chan struct{}),
		stopCh:    make(chan struct{}),
		logger:    logging.FromContext(ctx),
	}, nil
}

// Run drives the whole session to the finished state, or returns early on
// stop/cancellation.
func (s *Session) Run(ctx context.Context) error {
	for round := 1; round <= s.TotalRounds; round++ {
		subj := subject.Pick(s.Subjects)
		s.logger.Infof("round %d subject %q", round, subj)

		for idx, p := range s.players {
			if err := s.playTurn(ctx, round, idx, p, subj); err != nil {
				return err
			}
		}
	}

	if s.DoneFn != nil {
		s.DoneFn(s)
	}

	s.publish(func(st *State) {
		st.Phase = PhaseFinished
		st.Player = nil
		st.Question = nil
		st.Answer = ""
		st.Correct = nil
	})

	return nil
}

func (s *Session) playTurn(ctx context.Context, round, idx int, p *model.Player, subj string) error {
	roundType := model.RoundTypeFor(round)

	s.publish(func(st *State) {
		*st = State{
			RoundNumber: round,
			RoundType:   roundType,
			PlayerIndex: idx,
			Player:      p,
			Phase:       PhaseStarting,
			Subject:     subj,
		}
	})
	if err := s.wait(ctx, s.CountdownTime); err != nil {
		return err
	}

	s.publish(func(st *State) {
		st.Phase = PhaseGenerating
	})

	q, err := s.generate(ctx, p, roundType, subj)
	if err != nil {
		return err
	}

	// drop a submission that raced the previous turn's countdown expiry
	select {
	case <-s.answerCh:
	default:
	}

	s.publish(func(st *State) {
		st.Phase = PhaseQuestion
		st.Question = &q
	})

	submitted, answerTime, err := s.collectAnswer(ctx)
	if err != nil {
		return err
	}

	correct := quiz.Grade(q, submitted)

	s.mtx.Lock()
	updated := score.Record(s.stats[p.ID], correct, q.Topic, answerTime)
	s.stats[p.ID] = updated
	s.mtx.Unlock()

	s.publish(func(st *State) {
		st.Phase = PhaseRevealing
		st.Answer = submitted
		st.Correct = &correct
		st.Comment = narrator.Comment(s.Style, correct, updated.Streak, p.Name)
	})

	select {
	case <-s.advanceCh:
		return nil
	case <-s.stopCh:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
}

// generate retries the external call on demand until it succeeds or the
// session ends. Failures park the sequencer in a generating state flagged for
// retry rather than aborting the game.
func (s *Session) generate(ctx context.Context, p *model.Player, roundType model.RoundType, subj string) (model.Question, error) {
	for {
		s.mtx.RLock()
		difficulty := score.Effective(s.stats[p.ID])
		s.mtx.RUnlock()

		q, err := s.Generator.Generate(ctx, p, roundType, difficulty, subj)
		if err == nil {
			return q, nil
		}
		if ctx.Err() != nil {
			return model.Question{}, ctx.Err()
		}
		s.logger.Warnf("question generation for %s failed: %v", p.Name, err)

		s.publish(func(st *State) {
			st.GenerationFailed = true
		})

		select {
		case <-s.retryCh:
			s.publish(func(st *State) {
				st.GenerationFailed = false
			})
		case <-s.stopCh:
			return model.Question{}, context.Canceled
		case <-ctx.Done():
			return model.Question{}, ctx.Err()
		}
	}
}

// collectAnswer waits for a submission or the answer countdown. A timeout is
// the same as an empty wrong answer and reports no answer latency.
func (s *Session) collectAnswer(ctx context.Context) (string, *time.Duration, error) {
	started := time.Now()

	timer := time.NewTimer(s.AnswerTime)
	defer timer.Stop()

	select {
	case text := <-s.answerCh:
		elapsed := time.Since(started)
		return text, &elapsed, nil
	case <-timer.C:
		return "", nil, nil
	case <-s.stopCh:
		return "", nil, context.Canceled
	case <-ctx.Done():
		return "", nil, ctx.Err()
	}
}

func (s *Session) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-s.stopCh:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit delivers the current player's answer. Rejected outside the question
// phase or when an answer is already in flight.
func (s *Session) Submit(text string) error {
	if s.State().Phase != PhaseQuestion {
		return ErrNotAcceptingAnswer
	}

	select {
	case s.answerCh <- text:
		return nil
	case <-s.stopCh:
		return context.Canceled
	default:
		return ErrNotAcceptingAnswer
	}
}

// Timeout gives up on the current question, the same as letting the
// countdown expire.
func (s *Session) Timeout() error {
	return s.Submit("")
}

// Advance moves past the reveal to the next turn.
func (s *Session) Advance() error {
	if s.State().Phase != PhaseRevealing {
		return ErrNotRevealing
	}

	select {
	case s.advanceCh <- struct{}{}:
		return nil
	case <-s.stopCh:
		return context.Canceled
	}
}

// Retry re-attempts a failed question generation.
func (s *Session) Retry() error {
	st := s.State()
	if st.Phase != PhaseGenerating || !st.GenerationFailed {
		return ErrNotFailed
	}

	select {
	case s.retryCh <- struct{}{}:
		return nil
	case <-s.stopCh:
		return context.Canceled
	}
}

// Stop ends the session immediately. Safe to call more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

// State returns the current sequencing position.
func (s *Session) State() State {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.state
}

// Updates delivers a state value per transition, coalescing for slow readers.
func (s *Session) Updates() <-chan State {
	return s.stateCh
}

// Stats returns a copy of every player's running stats.
func (s *Session) Stats() map[string]model.Stats {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	out := make(map[string]model.Stats, len(s.stats))
	for id, st := range s.stats {
		out[id] = st.Clone()
	}
	return out
}

// Leaderboard ranks the session's players by current score.
func (s *Session) Leaderboard() []score.Row {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return score.Leaderboard(s.players, s.stats)
}

func (s *Session) publish(mutate func(*State)) {
	s.mtx.Lock()
	mutate(&s.state)
	st := s.state
	s.mtx.Unlock()

	select {
	case s.stateCh <- st:
	default:
		select {
		case <-s.stateCh:
		default:
		}
		select {
		case s.stateCh <- st:
		default:
		}
	}
}
