// Package coord keeps a party in sync through one shared game record.
//
// There is no authoritative server process. Every participant holds a client
// that watches the record, applies observed turn outcomes exactly once, and
// writes only the fields its role owns. Notifications are at-least-once and
// may skip intermediate states, so clients reconcile against the full record
// on every wakeup instead of replaying a delta stream.
package coord

import (
	"context"
	"fmt"

	"github.com/triviall-games/triviall/internal/triviall/model"
)

var (
	ErrGameNotFound   = fmt.Errorf("game not found")
	ErrPlayerNotFound = fmt.Errorf("player not found")
	ErrCodeTaken      = fmt.Errorf("share code already taken")
)

// Event is one change notification for a watched game. Game is a snapshot
// taken at notification time; receivers own it.
type Event struct {
	Game *model.Game
}

// Store is the shared record the party plays over. UpdateGame applies mutate
// atomically: either every field write lands or none do, and the record
// version moves forward exactly once.
type Store interface {
	CreateGame(ctx context.Context, g *model.Game) error
	GameByID(ctx context.Context, id string) (*model.Game, error)
	GameByCode(ctx context.Context, code string) (*model.Game, error)
	UpdateGame(ctx context.Context, id string, mutate func(*model.Game) error) (*model.Game, error)

	AddPlayer(ctx context.Context, p *model.Player) error
	UpdatePlayer(ctx context.Context, gameID, playerID string, mutate func(*model.Player) error) error
	RemovePlayer(ctx context.Context, gameID, playerID string) error
	PlayerByID(ctx context.Context, gameID, playerID string) (*model.Player, error)
	PlayersByGame(ctx context.Context, gameID string) ([]*model.Player, error)

	// Watch delivers change events for one game until cancel is called or ctx
	// ends. Delivery is at-least-once and coalescing: a slow receiver sees
	// only the latest state, never a backlog.
	Watch(ctx context.Context, gameID string) (<-chan Event, func(), error)
}
