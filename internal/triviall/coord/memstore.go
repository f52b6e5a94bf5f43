package coord

import (
	"context"
	"sync"
	"time"

	"github.com/triviall-games/triviall/internal/triviall/model"
)

// MemStore is the in-process Store used by the demo binary and the tests.
// Watch channels hold a single slot: a publish into a full mailbox evicts the
// stale snapshot, which is exactly the skipped-state delivery clients must
// already tolerate.
type MemStore struct {
	mtx sync.RWMutex

	games   map[string]*model.Game
	codes   map[string]string
	players map[string]map[string]*model.Player
	joinSeq int

	watchSeq uint64
	watchers map[string]map[uint64]chan Event
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		games:    map[string]*model.Game{},
		codes:    map[string]string{},
		players:  map[string]map[string]*model.Player{},
		watchers: map[string]map[uint64]chan Event{},
	}
}

func (s *MemStore) CreateGame(_ context.Context, g *model.Game) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.codes[g.Code]; ok {
		return ErrCodeTaken
	}

	stored := g.Clone()
	stored.Version = 1
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}

	s.games[stored.ID] = stored
	s.codes[stored.Code] = stored.ID
	s.players[stored.ID] = map[string]*model.Player{}

	return nil
}

func (s *MemStore) GameByID(_ context.Context, id string) (*model.Game, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	g, ok := s.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}

	return g.Clone(), nil
}

func (s *MemStore) GameByCode(_ context.Context, code string) (*model.Game, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	id, ok := s.codes[code]
	if !ok {
		return nil, ErrGameNotFound
	}

	return s.games[id].Clone(), nil
}

func (s *MemStore) UpdateGame(_ context.Context, id string, mutate func(*model.Game) error) (*model.Game, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	g, ok := s.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}

	next := g.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	next.Version = g.Version + 1
	s.games[id] = next

	s.notifyLocked(id)

	return next.Clone(), nil
}

func (s *MemStore) AddPlayer(_ context.Context, p *model.Player) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	byID, ok := s.players[p.GameID]
	if !ok {
		return ErrGameNotFound
	}

	s.joinSeq++
	stored := *p
	stored.JoinSeq = s.joinSeq
	if stored.JoinedAt.IsZero() {
		stored.JoinedAt = time.Now()
	}
	byID[stored.ID] = &stored
	p.JoinSeq = stored.JoinSeq
	p.JoinedAt = stored.JoinedAt

	s.games[p.GameID].Version++
	s.notifyLocked(p.GameID)

	return nil
}

func (s *MemStore) UpdatePlayer(_ context.Context, gameID, playerID string, mutate func(*model.Player) error) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	byID, ok := s.players[gameID]
	if !ok {
		return ErrGameNotFound
	}
	p, ok := byID[playerID]
	if !ok {
		return ErrPlayerNotFound
	}

	next := *p
	if err := mutate(&next); err != nil {
		return err
	}
	byID[playerID] = &next

	s.games[gameID].Version++
	s.notifyLocked(gameID)

	return nil
}

func (s *MemStore) RemovePlayer(_ context.Context, gameID, playerID string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	byID, ok := s.players[gameID]
	if !ok {
		return ErrGameNotFound
	}
	if _, ok := byID[playerID]; !ok {
		return ErrPlayerNotFound
	}
	delete(byID, playerID)

	s.games[gameID].Version++
	s.notifyLocked(gameID)

	return nil
}

func (s *MemStore) PlayerByID(_ context.Context, gameID, playerID string) (*model.Player, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	byID, ok := s.players[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}
	p, ok := byID[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}

	clone := *p
	return &clone, nil
}

func (s *MemStore) PlayersByGame(_ context.Context, gameID string) ([]*model.Player, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	byID, ok := s.players[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}

	players := make([]*model.Player, 0, len(byID))
	for _, p := range byID {
		clone := *p
		players = append(players, &clone)
	}
	model.SortByJoinOrder(players)

	return players, nil
}

func (s *MemStore) Watch(ctx context.Context, gameID string) (<-chan Event, func(), error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.games[gameID]; !ok {
		return nil, nil, ErrGameNotFound
	}

	s.watchSeq++
	id := s.watchSeq
	ch := make(chan Event, 1)

	byWatch, ok := s.watchers[gameID]
	if !ok {
		byWatch = map[uint64]chan Event{}
		s.watchers[gameID] = byWatch
	}
	byWatch[id] = ch

	cancel := func() {
		s.mtx.Lock()
		defer s.mtx.Unlock()
		if byWatch, ok := s.watchers[gameID]; ok {
			delete(byWatch, id)
		}
	}

	go func() {
		<-ctx.Done()
		cancel()
	}()

	return ch, cancel, nil
}

// notifyLocked fans the current snapshot out to every watcher mailbox,
// replacing whatever snapshot a slow watcher has not consumed yet.
func (s *MemStore) notifyLocked(gameID string) {
	g, ok := s.games[gameID]
	if !ok {
		return
	}

	for _, ch := range s.watchers[gameID] {
		evt := Event{Game: g.Clone()}
		select {
		case ch <- evt:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- evt:
			default:
			}
		}
	}
}
