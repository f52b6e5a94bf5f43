package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/triviall-games/triviall/internal/cache/cachelru"
	"github.com/triviall-games/triviall/internal/database"
	profiledb "github.com/triviall-games/triviall/internal/database/profile/database"
	sessiondb "github.com/triviall-games/triviall/internal/database/session/database"
	"github.com/triviall-games/triviall/internal/logging"
	"github.com/triviall-games/triviall/internal/shutdown"
	"github.com/triviall-games/triviall/internal/triviall"
	"github.com/triviall-games/triviall/internal/triviall/coord"
	"github.com/triviall-games/triviall/internal/triviall/model"
	"github.com/triviall-games/triviall/internal/triviall/narrator"
	"github.com/triviall-games/triviall/internal/triviall/quiz"
	"github.com/triviall-games/triviall/internal/triviall/resource"
	"github.com/triviall-games/triviall/internal/triviall/session"
	"github.com/triviall-games/triviall/internal/triviall/subject"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, done := shutdown.New()
	defer done()

	config := triviall.Config{}
	if err := envconfig.Process("", &config); err != nil {
		logging.DefaultLogger().Fatalf("processing the config: %v", err)
	}

	logger := logging.NewLogger(config.Debug)

	if err := realMain(ctx, config); err != nil {
		logger.Fatalf("main.realMain: %v", err)
	}
}

// realMain wires the full engine and autoplays one two-seat shared game with
// the stub generator, printing the leaderboard at the end.
func realMain(ctx context.Context, config triviall.Config) error {
	logger := logging.FromContext(ctx).Named("main.realMain")

	db, err := database.NewFromEnv(ctx, &config.DB)
	if err != nil {
		return fmt.Errorf("new database from env: %w", err)
	}

	defer db.Close(ctx)

	profileCache, err := cachelru.NewLRU(config.CacheSize)
	if err != nil {
		return fmt.Errorf("can not create lru cache: %w", err)
	}

	profiles, err := profiledb.New(db, profileCache)
	if err != nil {
		return fmt.Errorf("profile db: %w", err)
	}

	sessions, err := sessiondb.New(db, config.SessionTTL)
	if err != nil {
		return fmt.Errorf("session db: %w", err)
	}

	store := coord.NewMemStore()
	gen := quiz.WithTimeout(&quiz.StubGenerator{}, config.GenerationTimeout)
	sessionManager := session.NewManager(sessions, store, gen)
	manager := triviall.NewManager(config, store, gen, profiles, sessionManager)

	pool := []string{resource.DefaultSubject, "Science", "History"}

	hostClient, g, host, err := manager.CreateGame(ctx, "Alex", resource.DefaultAvatar, 30, pool, narrator.DefaultStyle)
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	logger.Infof("created game %s, code %s", g.ID, g.Code)

	guestClient, _, guest, err := manager.JoinGame(ctx, g.Code, "Sam", resource.DefaultAvatar, 28, narrator.DefaultStyle)
	if err != nil {
		return fmt.Errorf("join game: %w", err)
	}
	if err := manager.SetReady(ctx, g.ID, guest.ID, true); err != nil {
		return fmt.Errorf("ready guest: %w", err)
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error { return hostClient.Run(gctx) })
	group.Go(func() error { return guestClient.Run(gctx) })
	group.Go(func() error { return autoplay(gctx, hostClient, true) })
	group.Go(func() error { return autoplay(gctx, guestClient, false) })

	if err := manager.StartGame(ctx, hostClient, g.ID); err != nil {
		return fmt.Errorf("start game: %w", err)
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("game loop: %w", err)
	}

	for _, row := range hostClient.Leaderboard() {
		logger.Infof("#%d %s: %d points (best streak %d)", row.Rank, row.Player.Name, row.Stats.Score, row.Stats.BestStreak)
	}

	if err := manager.FinalizeGame(ctx, hostClient, host.ID, host.Name); err != nil {
		return fmt.Errorf("finalize host: %w", err)
	}
	if err := manager.FinalizeGame(ctx, guestClient, guest.ID, guest.Name); err != nil {
		return fmt.Errorf("finalize guest: %w", err)
	}

	return nil
}

// autoplay reacts to view updates the way the UI would: the host opens each
// round, the active player generates, answers and advances. Stale-view action
// rejections are expected and skipped.
func autoplay(ctx context.Context, client *coord.Client, isHost bool) error {
	for {
		var view coord.View
		select {
		case <-ctx.Done():
			return ctx.Err()
		case view = <-client.Views():
		}

		g := view.Game
		if g.Status == model.StatusFinished {
			return nil
		}
		if g.Status != model.StatusPlaying {
			continue
		}

		var err error
		switch {
		case isHost && g.CurrentRoundSubject == "" && g.CurrentTurnPlayerID == "":
			err = client.SetRoundSubject(ctx, subject.Pick(g.Subjects))
		case view.IsMyTurn && view.Generating:
			err = client.PublishQuestion(ctx)
		case view.IsMyTurn && g.CurrentTurnPhase == model.PhaseQuestion && g.CurrentTurnQuestion != nil:
			err = client.SubmitAnswer(ctx, g.CurrentTurnQuestion.CorrectAnswer)
		case view.IsMyTurn && g.CurrentTurnPhase == model.PhaseRevealing:
			err = client.AdvanceTurn(ctx)
		}
		if err != nil && !errors.Is(err, coord.ErrWrongPhase) && !errors.Is(err, coord.ErrNotYourTurn) {
			return err
		}
	}
}
