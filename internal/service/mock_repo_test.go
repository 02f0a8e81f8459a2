package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/lyonms2/avatar-arena/internal/abilities"
	"github.com/lyonms2/avatar-arena/internal/engine"
	"github.com/lyonms2/avatar-arena/internal/game"
	"github.com/lyonms2/avatar-arena/internal/settlement"
	"github.com/lyonms2/avatar-arena/internal/storage"
)

// mockRepo is an in-memory storage.Repository. Rooms are cloned on the way
// in and out so tests observe only what was persisted.
type mockRepo struct {
	mu        sync.Mutex
	rooms     map[string]*game.Room
	players   map[string]*game.Player
	avatars   map[string]*game.Avatar
	rewards   map[string]*game.PendingReward
	finished  []settlement.Settlement
	abandoned []settlement.Settlement
	deleted   []string

	// conflicts makes the next n room writes fail with a version conflict
	conflicts int
	writes    int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		rooms:   map[string]*game.Room{},
		players: map[string]*game.Player{},
		avatars: map[string]*game.Avatar{},
		rewards: map[string]*game.PendingReward{},
	}
}

func (m *mockRepo) CreateRoom(ctx context.Context, room *game.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room.ID] = room.Clone()
	return nil
}

func (m *mockRepo) GetRoom(ctx context.Context, id string) (*game.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return r.Clone(), nil
}

func (m *mockRepo) cas(room *game.Room, expected int) error {
	m.writes++
	cur, ok := m.rooms[room.ID]
	if !ok {
		return storage.ErrNotFound
	}
	if m.conflicts > 0 {
		m.conflicts--
		return storage.ErrVersionConflict
	}
	if cur.Version != expected {
		return storage.ErrVersionConflict
	}
	room.Version = expected + 1
	m.rooms[room.ID] = room.Clone()
	return nil
}

func (m *mockRepo) UpdateRoom(ctx context.Context, room *game.Room, expected int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cas(room, expected)
}

func (m *mockRepo) FinishRoom(ctx context.Context, room *game.Room, expected int, s settlement.Settlement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.cas(room, expected); err != nil {
		return err
	}
	m.finished = append(m.finished, s)
	return nil
}

func (m *mockRepo) AbandonRoom(ctx context.Context, room *game.Room, expected int, s settlement.Settlement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	cur, ok := m.rooms[room.ID]
	if !ok {
		return storage.ErrNotFound
	}
	if cur.Version != expected {
		return storage.ErrVersionConflict
	}
	delete(m.rooms, room.ID)
	m.abandoned = append(m.abandoned, s)
	return nil
}

func (m *mockRepo) ListFinishedRooms(ctx context.Context) ([]storage.FinishedRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.FinishedRoom
	for id, r := range m.rooms {
		if r.Status != game.StatusFinished {
			continue
		}
		fr := storage.FinishedRoom{ID: id}
		if r.FinishedAt != nil {
			fr.FinishedAt = *r.FinishedAt
		}
		out = append(out, fr)
	}
	return out, nil
}

func (m *mockRepo) DeleteRooms(ctx context.Context, ids []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, id := range ids {
		if _, ok := m.rooms[id]; ok {
			delete(m.rooms, id)
			m.deleted = append(m.deleted, id)
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) GetAvatar(ctx context.Context, id string) (*game.Avatar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.avatars[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) SaveAvatar(ctx context.Context, a *game.Avatar) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.avatars[a.ID] = &cp
	return nil
}

func (m *mockRepo) GetPlayer(ctx context.Context, userID string) (*game.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) SavePlayer(ctx context.Context, p *game.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.players[p.UserID] = &cp
	return nil
}

func (m *mockRepo) GetPendingReward(ctx context.Context, id string) (*game.PendingReward, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rewards[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockRepo) SavePendingReward(ctx context.Context, r *game.PendingReward) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.rewards[r.ID] = &cp
	return nil
}

func (m *mockRepo) CollectReward(ctx context.Context, rewardID, userID string, payout settlement.Payout, grants []*game.Avatar, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rewards[rewardID]
	if !ok || r.UserID != userID || r.Collected {
		return storage.ErrNotFound
	}
	r.Collected = true
	r.CollectedAt = &at
	p, ok := m.players[userID]
	if !ok {
		p = &game.Player{UserID: userID, Level: 1}
		m.players[userID] = p
	}
	p.Coins += payout.Coins
	p.Fragments += payout.Fragments
	for _, a := range grants {
		cp := *a
		m.avatars[a.ID] = &cp
	}
	return nil
}

// constRoller always returns the same value; 0 makes every roll succeed.
type constRoller int

func (c constRoller) Intn(n int) int {
	if int(c) >= n {
		return n - 1
	}
	return int(c)
}

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

func newTestEngine(rng game.Roller) *engine.Engine {
	return engine.New(abilities.Default(), rng, engine.DefaultRules(), testClock)
}

func seedAvatar(m *mockRepo, id, owner string, el game.Element, stats game.Stats) {
	m.avatars[id] = &game.Avatar{
		ID:        id,
		OwnerID:   owner,
		Name:      id,
		Element:   el,
		Rarity:    game.RarityCommon,
		HP:        100,
		MaxHP:     100,
		Stats:     stats,
		Abilities: abilities.Default().StarterSet(el),
		Bond:      50,
		Alive:     true,
	}
}

func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + strconv.Itoa(n)
	}
}
