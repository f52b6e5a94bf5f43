// Package triviall wires the game engine together: creating and joining
// games, local same-device sessions, and end-of-game bookkeeping.
package triviall

import (
	"context"
	"errors"
	"fmt"
	"time"

	profiledb "github.com/triviall-games/triviall/internal/database/profile/database"
	profilemodel "github.com/triviall-games/triviall/internal/database/profile/model"
	sessionmodel "github.com/triviall-games/triviall/internal/database/session/model"
	"github.com/triviall-games/triviall/internal/hashutil"
	"github.com/triviall-games/triviall/internal/logging"
	"github.com/triviall-games/triviall/internal/triviall/coord"
	"github.com/triviall-games/triviall/internal/triviall/local"
	"github.com/triviall-games/triviall/internal/triviall/model"
	"github.com/triviall-games/triviall/internal/triviall/narrator"
	"github.com/triviall-games/triviall/internal/triviall/quiz"
	"github.com/triviall-games/triviall/internal/triviall/resource"
	"github.com/triviall-games/triviall/internal/triviall/score"
	"github.com/triviall-games/triviall/internal/triviall/session"

	"github.com/google/uuid"
)

const maxCodeAttempts = 10

var (
	ErrGameStarted     = fmt.Errorf("game already started")
	ErrPlayersNotReady = fmt.Errorf("not all players are ready")
	ErrCodeExhausted   = fmt.Errorf("could not allocate an unused share code")
)

type Manager struct {
	config Config

	store    coord.Store
	gen      quiz.Generator
	profiles *profiledb.DB
	sessions *session.Manager
}

func NewManager(config Config, store coord.Store, gen quiz.Generator, profiles *profiledb.DB, sessions *session.Manager) *Manager {
	return &Manager{
		config:   config,
		store:    store,
		gen:      quiz.WithTimeout(gen, config.GenerationTimeout),
		profiles: profiles,
		sessions: sessions,
	}
}

// CreateGame opens a lobby with the caller as host and hands back a running
// coordinator client. The share code is re-rolled on collision.
func (m *Manager) CreateGame(
	ctx context.Context,
	hostName, avatar string,
	age int,
	subjects []string,
	style narrator.Style,
) (*coord.Client, *model.Game, *model.Player, error) {
	logger := logging.FromContext(ctx)

	if len(subjects) == 0 {
		subjects = []string{resource.DefaultSubject}
	}

	var g *model.Game
	for attempt := 0; ; attempt++ {
		if attempt == maxCodeAttempts {
			return nil, nil, nil, ErrCodeExhausted
		}

		code, err := hashutil.ShareCode()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("generate code: %w", err)
		}

		g = &model.Game{
			ID:          uuid.NewString(),
			Code:        code,
			Status:      model.StatusLobby,
			Subjects:    append([]string(nil), subjects...),
			TotalRounds: m.config.TotalRounds,
			CreatedAt:   time.Now(),
		}
		if err := m.store.CreateGame(ctx, g); err != nil {
			if errors.Is(err, coord.ErrCodeTaken) {
				continue
			}
			return nil, nil, nil, fmt.Errorf("create game: %w", err)
		}
		break
	}

	host := &model.Player{
		ID:          uuid.NewString(),
		GameID:      g.ID,
		Name:        hostName,
		Age:         age,
		AvatarEmoji: avatar,
		IsHost:      true,
		IsReady:     true,
		JoinedAt:    time.Now(),
	}
	if err := m.store.AddPlayer(ctx, host); err != nil {
		return nil, nil, nil, fmt.Errorf("add host: %w", err)
	}

	if err := m.saveSession(hostName, g, host, style); err != nil {
		return nil, nil, nil, err
	}

	client, err := coord.NewClient(ctx, m.store, m.gen, g.ID, host.ID, style)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build client: %w", err)
	}

	logger.Infof("game %s created with code %s", g.ID, g.Code)

	return client, g, host, nil
}

// JoinGame seats a player into a lobby looked up by share code. Codes are
// case-insensitive; games past the lobby cannot be joined.
func (m *Manager) JoinGame(
	ctx context.Context,
	code, name, avatar string,
	age int,
	style narrator.Style,
) (*coord.Client, *model.Game, *model.Player, error) {
	g, err := m.store.GameByCode(ctx, hashutil.NormalizeCode(code))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("lookup code: %w", err)
	}
	if g.Status != model.StatusLobby {
		return nil, nil, nil, ErrGameStarted
	}

	p := &model.Player{
		ID:          uuid.NewString(),
		GameID:      g.ID,
		Name:        name,
		Age:         age,
		AvatarEmoji: avatar,
		JoinedAt:    time.Now(),
	}
	if err := m.store.AddPlayer(ctx, p); err != nil {
		return nil, nil, nil, fmt.Errorf("add player: %w", err)
	}

	if err := m.saveSession(name, g, p, style); err != nil {
		return nil, nil, nil, err
	}

	client, err := coord.NewClient(ctx, m.store, m.gen, g.ID, p.ID, style)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build client: %w", err)
	}

	return client, g, p, nil
}

// SetReady flips a player's ready flag. StartGame's readiness gate reads it,
// so guests call this from the lobby before the host can begin.
func (m *Manager) SetReady(ctx context.Context, gameID, playerID string, ready bool) error {
	err := m.store.UpdatePlayer(ctx, gameID, playerID, func(p *model.Player) error {
		p.IsReady = ready
		return nil
	})
	if err != nil {
		return fmt.Errorf("set ready: %w", err)
	}

	return nil
}

// StartGame checks the lobby readiness gate, then moves the game to playing
// through the host's client.
func (m *Manager) StartGame(ctx context.Context, client *coord.Client, gameID string) error {
	players, err := m.store.PlayersByGame(ctx, gameID)
	if err != nil {
		return fmt.Errorf("fetch players: %w", err)
	}
	for _, p := range players {
		if !p.IsHost && !p.IsReady {
			return ErrPlayersNotReady
		}
	}

	return client.StartGame(ctx)
}

// KickPlayer removes a non-host player from a lobby. Mid-game removal goes
// through the host's coordinator client so the turn pointer is patched.
func (m *Manager) KickPlayer(ctx context.Context, gameID, hostID, targetID string) error {
	host, err := m.store.PlayerByID(ctx, gameID, hostID)
	if err != nil {
		return fmt.Errorf("fetch host: %w", err)
	}
	if !host.IsHost {
		return coord.ErrNotHost
	}

	target, err := m.store.PlayerByID(ctx, gameID, targetID)
	if err != nil {
		return fmt.Errorf("fetch player: %w", err)
	}
	if target.IsHost {
		return coord.ErrKickSelfHost
	}

	if err := m.store.RemovePlayer(ctx, gameID, targetID); err != nil {
		return fmt.Errorf("remove player: %w", err)
	}

	if err := m.sessions.Clear(target.Name); err != nil {
		return err
	}

	return nil
}

// LeaveGame takes the local player out of the game and drops the saved
// session. Other clients learn of it only through the record.
func (m *Manager) LeaveGame(ctx context.Context, gameID, playerID, playerName string) error {
	if err := m.store.RemovePlayer(ctx, gameID, playerID); err != nil {
		return fmt.Errorf("remove player: %w", err)
	}

	return m.sessions.Clear(playerName)
}

// Rejoin resumes the saved shared game for a player, if one is still live.
func (m *Manager) Rejoin(ctx context.Context, playerName string) (*coord.Client, sessionmodel.Session, error) {
	return m.sessions.Rejoin(ctx, playerName)
}

// LocalLobby collects same-device players before the session starts.
type LocalLobby struct {
	players  []*model.Player
	subjects []string
	style    narrator.Style
	seq      int
}

// CreateLocalGame opens a same-device lobby.
func (m *Manager) CreateLocalGame(subjects []string, style narrator.Style) *LocalLobby {
	if len(subjects) == 0 {
		subjects = []string{resource.DefaultSubject}
	}
	return &LocalLobby{
		subjects: append([]string(nil), subjects...),
		style:    style,
	}
}

// AddLocalPlayer seats one more player; seating order is turn order.
func (m *Manager) AddLocalPlayer(lobby *LocalLobby, name, avatar string, age int) *model.Player {
	lobby.seq++
	p := &model.Player{
		ID:          uuid.NewString(),
		Name:        name,
		Age:         age,
		AvatarEmoji: avatar,
		IsHost:      lobby.seq == 1,
		IsReady:     true,
		JoinedAt:    time.Now(),
		JoinSeq:     lobby.seq,
	}
	lobby.players = append(lobby.players, p)
	return p
}

// StartLocalGame runs the in-process sequencer over the lobby's players.
// Lifetime stats for every player are written when the session completes.
func (m *Manager) StartLocalGame(ctx context.Context, lobby *LocalLobby) (*local.Session, error) {
	sess, err := local.NewSession(ctx, local.Config{
		Players:       lobby.players,
		Subjects:      lobby.subjects,
		TotalRounds:   m.config.TotalRounds,
		CountdownTime: m.config.CountdownTime,
		AnswerTime:    m.config.AnswerTime,
		Style:         lobby.style,
		Generator:     m.gen,
		DoneFn: func(s *local.Session) {
			m.recordResults(ctx, s.Leaderboard())
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create local session: %w", err)
	}

	return sess, nil
}

// FinalizeGame folds a finished shared game into the local player's lifetime
// stats and drops the saved session.
func (m *Manager) FinalizeGame(ctx context.Context, client *coord.Client, playerID, playerName string) error {
	for _, row := range client.Leaderboard() {
		if row.Player.ID != playerID {
			continue
		}
		if _, err := m.profiles.RecordResult(playerName, resultFromRow(row)); err != nil {
			return fmt.Errorf("record result: %w", err)
		}
	}

	return m.sessions.Clear(playerName)
}

// recordResults writes lifetime stats for every seat of a same-device game.
func (m *Manager) recordResults(ctx context.Context, rows []score.Row) {
	logger := logging.FromContext(ctx)

	for _, row := range rows {
		if _, err := m.profiles.RecordResult(row.Player.Name, resultFromRow(row)); err != nil {
			logger.Errorf("record result for %s: %v", row.Player.Name, err)
		}
	}
}

func resultFromRow(row score.Row) profilemodel.GameResult {
	return profilemodel.GameResult{
		Won:         row.Rank == 1,
		Correct:     row.Stats.Correct,
		Total:       row.Stats.Total,
		BestStreak:  row.Stats.BestStreak,
		Points:      row.Stats.Score,
		TopCategory: topCategory(row.Stats.CategoryHits),
	}
}

// topCategory picks the most-hit category, name ascending on ties so the
// result is stable.
func topCategory(hits map[string]int) string {
	best := ""
	bestN := 0
	for name, n := range hits {
		if n > bestN || (n == bestN && n > 0 && (best == "" || name < best)) {
			best = name
			bestN = n
		}
	}
	return best
}

func (m *Manager) saveSession(playerName string, g *model.Game, p *model.Player, style narrator.Style) error {
	return m.sessions.Save(playerName, sessionmodel.Session{
		GameID:        g.ID,
		PlayerID:      p.ID,
		Code:          g.Code,
		PlayerName:    playerName,
		IsHost:        p.IsHost,
		TotalRounds:   g.TotalRounds,
		NarratorStyle: string(style),
	})
}
