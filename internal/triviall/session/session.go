// Package session persists the pointer back into a live shared game so a
// relaunched client can reattach instead of losing its seat.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	sessiondb "github.com/triviall-games/triviall/internal/database/session/database"
	"github.com/triviall-games/triviall/internal/database/session/model"
	"github.com/triviall-games/triviall/internal/logging"
	"github.com/triviall-games/triviall/internal/triviall/coord"
	gamemodel "github.com/triviall-games/triviall/internal/triviall/model"
	"github.com/triviall-games/triviall/internal/triviall/narrator"
	"github.com/triviall-games/triviall/internal/triviall/quiz"
)

// ErrNoSession covers every unresumable case: nothing saved, expired, game
// gone, player gone, or game already finished. The caller lands on the home
// screen either way.
var ErrNoSession = fmt.Errorf("no resumable session")

type Manager struct {
	db    *sessiondb.DB
	store coord.Store
	gen   quiz.Generator
}

func NewManager(db *sessiondb.DB, store coord.Store, gen quiz.Generator) *Manager {
	return &Manager{db: db, store: store, gen: gen}
}

// Save records the session under the player's name, stamped now.
func (m *Manager) Save(playerName string, s model.Session) error {
	s.SavedAt = time.Now()
	if err := m.db.Save(playerName, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear drops the saved session, if any.
func (m *Manager) Clear(playerName string) error {
	if err := m.db.Delete(playerName); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Rejoin reattaches a relaunched client to its in-progress game. Any dead end
// (expired session, deleted game, removed player, finished game) clears the
// stored session so the next launch does not retry a known failure, and
// reports ErrNoSession.
func (m *Manager) Rejoin(ctx context.Context, playerName string) (*coord.Client, model.Session, error) {
	logger := logging.FromContext(ctx)

	sess, err := m.db.Fetch(playerName, time.Now())
	if err != nil {
		if errors.Is(err, sessiondb.ErrNotFound) {
			return nil, model.Session{}, ErrNoSession
		}
		return nil, model.Session{}, fmt.Errorf("fetch session: %w", err)
	}

	g, err := m.store.GameByID(ctx, sess.GameID)
	if err != nil {
		if errors.Is(err, coord.ErrGameNotFound) {
			return nil, model.Session{}, m.discard(playerName, "game missing")
		}
		return nil, model.Session{}, fmt.Errorf("fetch game: %w", err)
	}
	if g.Status == gamemodel.StatusFinished {
		return nil, model.Session{}, m.discard(playerName, "game finished")
	}

	if _, err := m.store.PlayerByID(ctx, sess.GameID, sess.PlayerID); err != nil {
		if errors.Is(err, coord.ErrPlayerNotFound) {
			return nil, model.Session{}, m.discard(playerName, "player missing")
		}
		return nil, model.Session{}, fmt.Errorf("fetch player: %w", err)
	}

	client, err := coord.NewClient(ctx, m.store, m.gen, sess.GameID, sess.PlayerID, narrator.ParseStyle(sess.NarratorStyle))
	if err != nil {
		return nil, model.Session{}, fmt.Errorf("rebuild client: %w", err)
	}

	logger.Infof("player %s rejoined game %s", sess.PlayerID, sess.GameID)

	return client, sess, nil
}

func (m *Manager) discard(playerName, reason string) error {
	if err := m.db.Delete(playerName); err != nil {
		return fmt.Errorf("discard session (%s): %w", reason, err)
	}
	return ErrNoSession
}
