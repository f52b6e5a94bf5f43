package coord

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

	"go.uber.org/zap"
)

var (
	ErrNotHost      = fmt.Errorf("action requires the host")
	ErrNotYourTurn  = fmt.Errorf("not this player's turn")
	ErrWrongPhase   = fmt.Errorf("action not valid in current phase")
	ErrGameNotLive  = fmt.Errorf("game is not in progress")
	ErrKickSelfHost = fmt.Errorf("host cannot be kicked")
)

// View is one client's derived picture of the shared record. It is rebuilt
// from the full record on every notification, never from a delta.
type View struct {
	Game    *model.Game
	Players []*model.Player
	Stats   map[string]model.Stats

	IsMyTurn     bool
	IsSpectating bool
	Generating   bool
	Comment      string

	// AppliedKey is the last (player, round, phase) whose reveal outcome was
	// folded into Stats. Re-observing the same key is a no-op.
	AppliedKey string
}

func (v View) clone() View {
	next := v
	next.Stats = make(map[string]model.Stats, len(v.Stats))
	for id, s := range v.Stats {
		next.Stats[id] = s.Clone()
	}
	return next
}

// turnKey identifies one phase of one player's turn in one round. Every
// locally applied transition is guarded by it so duplicate notifications and
// reconnects cannot replay score updates.
func turnKey(g *model.Game) string {
	return fmt.Sprintf("%s:%d:%s", g.CurrentTurnPlayerID, g.CurrentRoundNumber, g.CurrentTurnPhase)
}

// Reduce folds the latest record into a view. It is pure: the inputs are not
// mutated and calling it twice with the same record yields the same view.
// Skipped intermediate states are fine because every field is re-derived from
// the record itself.
func Reduce(localPlayerID string, style narrator.Style, view View, g *model.Game, players []*model.Player) View {
	next := view.clone()
	next.Game = g
	next.Players = players

	next.IsMyTurn = g.CurrentTurnPlayerID == localPlayerID
	next.IsSpectating = g.CurrentTurnPlayerID != "" && !next.IsMyTurn
	next.Generating = g.Status == model.StatusPlaying &&
		g.CurrentTurnPhase == model.PhaseQuestion &&
		g.CurrentTurnQuestion == nil

	for _, p := range players {
		if _, ok := next.Stats[p.ID]; !ok {
			next.Stats[p.ID] = model.NewStats(model.DefaultDifficulty)
		}
	}

	if g.Status != model.StatusPlaying {
		return next
	}
	if g.CurrentTurnPhase != model.PhaseRevealing || g.CurrentTurnCorrect == nil {
		return next
	}

	key := turnKey(g)
	if key == next.AppliedKey {
		return next
	}

	stats, ok := next.Stats[g.CurrentTurnPlayerID]
	if !ok {
		stats = model.NewStats(model.DefaultDifficulty)
	}
	topic := g.CurrentRoundSubject
	if g.CurrentTurnQuestion != nil && g.CurrentTurnQuestion.Topic != "" {
		topic = g.CurrentTurnQuestion.Topic
	}
	updated := score.Record(stats, *g.CurrentTurnCorrect, topic, nil)
	next.Stats[g.CurrentTurnPlayerID] = updated
	next.AppliedKey = key

	name := g.CurrentTurnPlayerID
	for _, p := range players {
		if p.ID == g.CurrentTurnPlayerID {
			name = p.Name
			break
		}
	}
	next.Comment = narrator.Comment(style, *g.CurrentTurnCorrect, updated.Streak, name)

	return next
}

// Client drives one participant's side of a shared game. All clients watch
// the same record; each one only ever writes the fields its role owns, so
// last-write-wins storage cannot interleave two writers on the same field.
type Client struct {
	store  Store
	gen    quiz.Generator
	logger *zap.SugaredLogger

	gameID   string
	playerID string
	isHost   bool
	style    narrator.Style

	viewCh chan View

	mtx  sync.RWMutex
	view View

	// questionAt marks when this client published its current question.
	// Zero outside the client's own question phase.
	questionAt time.Time
}

func NewClient(ctx context.Context, store Store, gen quiz.Generator, gameID, playerID string, style narrator.Style) (*Client, error) {
	g, err := store.GameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("fetch game: %w", err)
	}
	self, err := store.PlayerByID(ctx, gameID, playerID)
	if err != nil {
		return nil, fmt.Errorf("fetch player: %w", err)
	}
	players, err := store.PlayersByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("fetch players: %w", err)
	}

	c := &Client{
		store:    store,
		gen:      gen,
		logger:   logging.FromContext(ctx),
		gameID:   gameID,
		playerID: playerID,
		isHost:   self.IsHost,
		style:    style,
		viewCh:   make(chan View, 1),
	}
	c.view = Reduce(playerID, style, View{Stats: map[string]model.Stats{}}, g, players)

	return c, nil
}

// Snapshot returns the current derived view.
func (c *Client) Snapshot() View {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.view.clone()
}

// Views delivers the derived view after each applied notification while Run
// is active. Like the store's watch channel it coalesces: a slow reader sees
// the latest view only.
func (c *Client) Views() <-chan View {
	return c.viewCh
}

// Run watches the shared record until ctx ends or the game finishes. Every
// notification triggers a full re-derivation; duplicates and gaps in the
// event stream are harmless.
func (c *Client) Run(ctx context.Context) error {
	events, cancel, err := c.store.Watch(ctx, c.gameID)
	if err != nil {
		return fmt.Errorf("watch game: %w", err)
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt := <-events:
			if err := c.observe(ctx, evt.Game); err != nil {
				return err
			}
			if evt.Game.Status == model.StatusFinished {
				c.logger.Infof("game %s finished", c.gameID)
				return nil
			}
		}
	}
}

func (c *Client) observe(ctx context.Context, g *model.Game) error {
	players, err := c.store.PlayersByGame(ctx, c.gameID)
	if err != nil {
		return fmt.Errorf("fetch players: %w", err)
	}

	c.mtx.Lock()
	c.view = Reduce(c.playerID, c.style, c.view, g, players)
	view := c.view.clone()
	c.mtx.Unlock()

	select {
	case c.viewCh <- view:
	default:
		select {
		case <-c.viewCh:
		default:
		}
		select {
		case c.viewCh <- view:
		default:
		}
	}

	return nil
}

// StartGame moves the game from lobby to playing. Host only.
func (c *Client) StartGame(ctx context.Context) error {
	if !c.isHost {
		return ErrNotHost
	}

	_, err := c.store.UpdateGame(ctx, c.gameID, func(g *model.Game) error {
		if g.Status != model.StatusLobby {
			return fmt.Errorf("start from status %q: %w", g.Status, ErrWrongPhase)
		}
		g.Status = model.StatusPlaying
		g.CurrentRoundNumber = 1
		g.CurrentRoundSubject = ""
		g.PlayersAnswered = nil
		g.ClearTurn()
		return nil
	})
	if err != nil {
		return fmt.Errorf("start game: %w", err)
	}

	return nil
}

// SetRoundSubject writes the round subject and, when no turn is in progress,
// hands the first turn to the earliest-joined player who has not answered
// this round. Host only.
func (c *Client) SetRoundSubject(ctx context.Context, subj string) error {
	if !c.isHost {
		return ErrNotHost
	}

	players, err := c.store.PlayersByGame(ctx, c.gameID)
	if err != nil {
		return fmt.Errorf("fetch players: %w", err)
	}

	_, err = c.store.UpdateGame(ctx, c.gameID, func(g *model.Game) error {
		if g.Status != model.StatusPlaying {
			return ErrGameNotLive
		}
		g.CurrentRoundSubject = subj
		g.PlayersAnswered = nil
		if g.CurrentTurnPlayerID == "" {
			first := model.NextUnanswered(players, nil)
			if first == nil {
				return ErrPlayerNotFound
			}
			g.ClearTurn()
			g.CurrentTurnPlayerID = first.ID
			g.CurrentTurnPhase = model.PhaseQuestion
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("set round subject: %w", err)
	}

	return nil
}

// PublishQuestion performs the external generation call and writes the result
// into the record. Only the active player generates; everyone else renders
// the waiting state until the question lands.
func (c *Client) PublishQuestion(ctx context.Context) error {
	view := c.Snapshot()
	g := view.Game
	if g.Status != model.StatusPlaying {
		return ErrGameNotLive
	}
	if g.CurrentTurnPlayerID != c.playerID {
		return ErrNotYourTurn
	}
	if g.CurrentTurnPhase != model.PhaseQuestion || g.CurrentTurnQuestion != nil {
		return ErrWrongPhase
	}

	self, err := c.store.PlayerByID(ctx, c.gameID, c.playerID)
	if err != nil {
		return fmt.Errorf("fetch player: %w", err)
	}

	stats, ok := view.Stats[c.playerID]
	if !ok {
		stats = model.NewStats(model.DefaultDifficulty)
	}
	q, err := c.gen.Generate(ctx, self, model.RoundTypeFor(g.CurrentRoundNumber), score.Effective(stats), g.CurrentRoundSubject)
	if err != nil {
		return fmt.Errorf("generate question: %w", err)
	}

	_, err = c.store.UpdateGame(ctx, c.gameID, func(g *model.Game) error {
		if g.CurrentTurnPlayerID != c.playerID || g.CurrentTurnPhase != model.PhaseQuestion {
			return ErrWrongPhase
		}
		cp := q.Clone()
		g.CurrentTurnQuestion = &cp
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish question: %w", err)
	}

	c.mtx.Lock()
	c.questionAt = time.Now()
	c.mtx.Unlock()

	return nil
}

// SubmitAnswer grades the active player's answer and moves the turn to the
// reveal phase. The submitter folds its own outcome into local stats here and
// records the reveal key, so the echoed notification cannot double-score.
// Answer latency is measured from the moment this client published the
// question; only the answering device knows it.
func (c *Client) SubmitAnswer(ctx context.Context, text string) error {
	view := c.Snapshot()
	g := view.Game
	if g.Status != model.StatusPlaying {
		return ErrGameNotLive
	}
	if g.CurrentTurnPlayerID != c.playerID {
		return ErrNotYourTurn
	}
	if g.CurrentTurnPhase != model.PhaseQuestion || g.CurrentTurnQuestion == nil {
		return ErrWrongPhase
	}

	correct := quiz.Grade(*g.CurrentTurnQuestion, text)

	stats, ok := view.Stats[c.playerID]
	if !ok {
		stats = model.NewStats(model.DefaultDifficulty)
	}
	topic := g.CurrentRoundSubject
	if g.CurrentTurnQuestion.Topic != "" {
		topic = g.CurrentTurnQuestion.Topic
	}

	// fold the outcome in and mark the reveal key applied before the record
	// write goes out: the echoed notification may race ahead of the return
	// from UpdateGame, and it must find the watermark already set
	key := fmt.Sprintf("%s:%d:%s", c.playerID, g.CurrentRoundNumber, model.PhaseRevealing)
	c.mtx.Lock()
	prevStats := c.view.Stats[c.playerID]
	prevKey := c.view.AppliedKey
	prevQuestionAt := c.questionAt
	var answerTime *time.Duration
	if !c.questionAt.IsZero() {
		d := time.Since(c.questionAt)
		answerTime = &d
	}
	c.questionAt = time.Time{}
	c.view.Stats[c.playerID] = score.Record(stats, correct, topic, answerTime)
	c.view.AppliedKey = key
	c.mtx.Unlock()

	_, err := c.store.UpdateGame(ctx, c.gameID, func(g *model.Game) error {
		if g.CurrentTurnPlayerID != c.playerID || g.CurrentTurnPhase != model.PhaseQuestion {
			return ErrWrongPhase
		}
		g.CurrentTurnAnswer = text
		v := correct
		g.CurrentTurnCorrect = &v
		g.CurrentTurnPhase = model.PhaseRevealing
		return nil
	})
	if err != nil {
		c.mtx.Lock()
		c.view.Stats[c.playerID] = prevStats
		c.view.AppliedKey = prevKey
		c.questionAt = prevQuestionAt
		c.mtx.Unlock()
		return fmt.Errorf("submit answer: %w", err)
	}

	return nil
}

// SubmitTimeout is the countdown expiring with nothing selected. It is the
// same write as an incorrect empty answer.
func (c *Client) SubmitTimeout(ctx context.Context) error {
	return c.SubmitAnswer(ctx, "")
}

// AdvanceTurn moves past the reveal. The just-finished player joins
// players_answered, then the turn goes to the next unanswered player in join
// order, or the round completes. Active player only.
func (c *Client) AdvanceTurn(ctx context.Context) error {
	view := c.Snapshot()
	g := view.Game
	if g.Status != model.StatusPlaying {
		return ErrGameNotLive
	}
	if g.CurrentTurnPlayerID != c.playerID {
		return ErrNotYourTurn
	}
	if g.CurrentTurnPhase != model.PhaseRevealing {
		return ErrWrongPhase
	}

	players, err := c.store.PlayersByGame(ctx, c.gameID)
	if err != nil {
		return fmt.Errorf("fetch players: %w", err)
	}

	_, err = c.store.UpdateGame(ctx, c.gameID, func(g *model.Game) error {
		if g.CurrentTurnPlayerID != c.playerID || g.CurrentTurnPhase != model.PhaseRevealing {
			return ErrWrongPhase
		}
		if !g.HasAnswered(c.playerID) {
			g.PlayersAnswered = append(g.PlayersAnswered, c.playerID)
		}
		advanceLocked(g, players)
		return nil
	})
	if err != nil {
		return fmt.Errorf("advance turn: %w", err)
	}

	return nil
}

// KickPlayer removes a player mid-game. When the kicked player held the
// active turn the turn is reassigned in the same update instead of leaving
// the pointer dangling. Host only; the host cannot be kicked.
func (c *Client) KickPlayer(ctx context.Context, targetID string) error {
	if !c.isHost {
		return ErrNotHost
	}

	target, err := c.store.PlayerByID(ctx, c.gameID, targetID)
	if err != nil {
		return fmt.Errorf("fetch player: %w", err)
	}
	if target.IsHost {
		return ErrKickSelfHost
	}

	if err := c.store.RemovePlayer(ctx, c.gameID, targetID); err != nil {
		return fmt.Errorf("remove player: %w", err)
	}

	players, err := c.store.PlayersByGame(ctx, c.gameID)
	if err != nil {
		return fmt.Errorf("fetch players: %w", err)
	}

	_, err = c.store.UpdateGame(ctx, c.gameID, func(g *model.Game) error {
		if g.Status != model.StatusPlaying || g.CurrentTurnPlayerID != targetID {
			return nil
		}
		advanceLocked(g, players)
		return nil
	})
	if err != nil {
		return fmt.Errorf("reassign turn: %w", err)
	}

	c.logger.Infof("kicked player %s from game %s", targetID, c.gameID)

	return nil
}

// MarkAnswered records the local player into players_answered without
// touching the turn fields. Simultaneous-answer rounds use it in place of the
// turn cycle.
func (c *Client) MarkAnswered(ctx context.Context) error {
	_, err := c.store.UpdateGame(ctx, c.gameID, func(g *model.Game) error {
		if g.Status != model.StatusPlaying {
			return ErrGameNotLive
		}
		if !g.HasAnswered(c.playerID) {
			g.PlayersAnswered = append(g.PlayersAnswered, c.playerID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("mark answered: %w", err)
	}

	return nil
}

// Leaderboard ranks all players by this client's local stats.
func (c *Client) Leaderboard() []score.Row {
	view := c.Snapshot()
	return score.Leaderboard(view.Players, view.Stats)
}

// advanceLocked applies the shared next-turn-or-round-complete rule to a
// record already inside an update. Finishing the last round and starting a
// new one are mutually exclusive outcomes.
func advanceLocked(g *model.Game, players []*model.Player) {
	next := model.NextUnanswered(players, g.PlayersAnswered)
	if next != nil {
		g.ClearTurn()
		g.CurrentTurnPlayerID = next.ID
		g.CurrentTurnPhase = model.PhaseQuestion
		return
	}

	if g.CurrentRoundNumber+1 > g.TotalRounds {
		g.Status = model.StatusFinished
		g.ClearTurn()
		return
	}

	g.CurrentRoundNumber++
	g.CurrentRoundSubject = ""
	g.PlayersAnswered = nil
	g.ClearTurn()
}
