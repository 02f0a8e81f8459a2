package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyonms2/avatar-arena/internal/engine"
	"github.com/lyonms2/avatar-arena/internal/game"
	"github.com/lyonms2/avatar-arena/internal/settlement"
)

func newTestBattles(repo *mockRepo) *Battles {
	b := NewBattles(repo, newTestEngine(constRoller(0)), settlement.DefaultRules())
	b.newID = seqIDs("room-")
	return b
}

// activeRoom seeds two players and brings a room to active with the host
// moving first.
func activeRoom(t *testing.T) (*Battles, *mockRepo, string) {
	t.Helper()
	repo := newMockRepo()
	seedAvatar(repo, "ah", "h", game.ElementFire, game.Stats{Strength: 20, Agility: 12, Resistance: 10, Focus: 15})
	seedAvatar(repo, "ag", "g", game.ElementWind, game.Stats{Strength: 15, Agility: 10, Resistance: 10, Focus: 10})
	repo.players["h"] = &game.Player{UserID: "h", Level: 5, Coins: 500}
	repo.players["g"] = &game.Player{UserID: "g", Level: 5, Coins: 500}
	b := newTestBattles(repo)
	ctx := context.Background()

	room, err := b.Create(ctx, "h", "ah")
	require.NoError(t, err)
	_, err = b.Join(ctx, room.ID, "g", "ag")
	require.NoError(t, err)
	room, err = b.Act(ctx, room.ID, "h", engine.Action{Kind: engine.ActionReady})
	require.NoError(t, err)
	require.Equal(t, game.StatusWaiting, room.Status)
	room, err = b.Act(ctx, room.ID, "g", engine.Action{Kind: engine.ActionReady})
	require.NoError(t, err)
	require.Equal(t, game.StatusActive, room.Status)
	require.Equal(t, game.RoleHost, room.Turn)
	return b, repo, room.ID
}

func TestBattles_CreateRejectsForeignAvatar(t *testing.T) {
	repo := newMockRepo()
	seedAvatar(repo, "ah", "h", game.ElementFire, game.Stats{Strength: 10})
	b := newTestBattles(repo)

	_, err := b.Create(context.Background(), "intruder", "ah")
	assert.ErrorIs(t, err, ErrAvatarNotFound)

	repo.avatars["ah"].Alive = false
	_, err = b.Create(context.Background(), "h", "ah")
	assert.ErrorIs(t, err, ErrAvatarUnavailable)

	_, err = b.Create(context.Background(), "", "ah")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBattles_JoinRules(t *testing.T) {
	repo := newMockRepo()
	seedAvatar(repo, "ah", "h", game.ElementFire, game.Stats{Strength: 10})
	seedAvatar(repo, "ag", "g", game.ElementWater, game.Stats{Strength: 10})
	seedAvatar(repo, "ax", "x", game.ElementEarth, game.Stats{Strength: 10})
	b := newTestBattles(repo)
	ctx := context.Background()

	room, err := b.Create(ctx, "h", "ah")
	require.NoError(t, err)

	_, err = b.Join(ctx, room.ID, "h", "ah")
	assert.ErrorIs(t, err, ErrInvalidInput)

	joined, err := b.Join(ctx, room.ID, "g", "ag")
	require.NoError(t, err)
	assert.Equal(t, "g", joined.GuestUserID)
	assert.Equal(t, game.RoleGuest, joined.RoleOf("g"))

	_, err = b.Join(ctx, room.ID, "x", "ax")
	assert.ErrorIs(t, err, ErrRoomFull)

	_, err = b.Join(ctx, "missing", "x", "ax")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestBattles_ActValidationOrder(t *testing.T) {
	b, repo, id := activeRoom(t)
	ctx := context.Background()

	_, err := b.Act(ctx, "nope", "h", engine.Action{Kind: engine.ActionAttack})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = b.Act(ctx, id, "stranger", engine.Action{Kind: engine.ActionAttack})
	assert.ErrorIs(t, err, ErrNotParticipant)

	before := repo.rooms[id].Version
	_, err = b.Act(ctx, id, "g", engine.Action{Kind: engine.ActionAttack})
	assert.ErrorIs(t, err, engine.ErrNotYourTurn)
	assert.Equal(t, before, repo.rooms[id].Version)

	_, err = b.Act(ctx, id, "h", engine.Action{Kind: "dance"})
	assert.ErrorIs(t, err, engine.ErrUnknownAction)

	_, err = b.Act(ctx, id, "h", engine.Action{Kind: engine.ActionAbility})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = b.Act(ctx, id, "h", engine.Action{Kind: engine.ActionReady})
	assert.ErrorIs(t, err, engine.ErrRoomNotWaiting)
}

func TestBattles_AttackPassesTurn(t *testing.T) {
	b, repo, id := activeRoom(t)

	room, err := b.Act(context.Background(), id, "h", engine.Action{Kind: engine.ActionAttack})
	require.NoError(t, err)
	assert.Equal(t, game.RoleGuest, room.Turn)
	assert.Equal(t, 2, room.TurnNumber)
	assert.Less(t, room.Guest.HP, 100)

	last, ok := room.BattleLog.Last()
	require.True(t, ok)
	assert.Equal(t, string(engine.ActionAttack), last.Action)
	assert.True(t, last.Hit)
	assert.Equal(t, 100-room.Guest.HP, last.Damage)

	stored := repo.rooms[id]
	assert.Equal(t, room.Version, stored.Version)
	assert.Equal(t, room.Guest.HP, stored.Guest.HP)
}

func TestBattles_SurrenderKeepsRoom(t *testing.T) {
	b, repo, id := activeRoom(t)
	ctx := context.Background()
	_, err := b.SetBet(ctx, id, "g", 100)
	require.NoError(t, err)

	room, err := b.Surrender(ctx, id, "g")
	require.NoError(t, err)
	assert.Equal(t, game.StatusFinished, room.Status)
	assert.Equal(t, game.RoleHost, room.Winner)
	assert.Equal(t, game.FinishSurrender, room.FinishReason)
	assert.Equal(t, 100, room.Guest.HP, "surrender must not zero HP")
	require.NotNil(t, room.FinishedAt)

	require.Contains(t, repo.rooms, id)
	require.Len(t, repo.finished, 1)
	s := repo.finished[0]
	assert.Empty(t, s.Transfers, "surrender moves no coins")
	pen := settlement.SurrenderPenalty(settlement.DefaultRules())
	var guestCommit *settlement.AvatarCommit
	for i := range s.Avatars {
		if s.Avatars[i].AvatarID == "ag" {
			guestCommit = &s.Avatars[i]
		}
	}
	require.NotNil(t, guestCommit)
	assert.Equal(t, -pen.BondLoss, guestCommit.BondDelta)
	assert.Equal(t, pen.FatigueGain, guestCommit.FatigueDelta)

	// finished rooms reject everything and stay untouched
	version := repo.rooms[id].Version
	for _, k := range []engine.ActionKind{engine.ActionAttack, engine.ActionSurrender, engine.ActionAbandon} {
		_, err := b.Act(ctx, id, "h", engine.Action{Kind: k})
		assert.ErrorIs(t, err, ErrRoomFinished, string(k))
	}
	_, err = b.SetBet(ctx, id, "h", 20)
	assert.ErrorIs(t, err, ErrRoomFinished)
	assert.Equal(t, version, repo.rooms[id].Version)
}

func TestBattles_AbandonDeletesRoom(t *testing.T) {
	b, repo, id := activeRoom(t)
	ctx := context.Background()
	_, err := b.SetBet(ctx, id, "g", 100)
	require.NoError(t, err)

	room, err := b.Abandon(ctx, id, "g")
	require.NoError(t, err)
	assert.Equal(t, game.FinishAbandon, room.FinishReason)
	assert.Equal(t, game.RoleHost, room.Winner)
	assert.Equal(t, 0, room.Guest.HP)
	assert.NotContains(t, repo.rooms, id)

	require.Len(t, repo.abandoned, 1)
	s := repo.abandoned[0]
	assert.Equal(t, []settlement.Transfer{{From: "g", To: "h", Amount: 100}}, s.Transfers)

	_, err = b.Get(ctx, id, "h")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestBattles_SetBetLimits(t *testing.T) {
	b, repo, id := activeRoom(t)
	ctx := context.Background()

	lim, err := b.BetLimits(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, settlement.BetLimits{Minimum: 10, Maximum: 250}, lim)

	room, err := b.SetBet(ctx, id, "h", 100)
	require.NoError(t, err)
	assert.Equal(t, 100, room.HostBet)
	assert.Equal(t, 100, repo.rooms[id].HostBet)

	_, err = b.SetBet(ctx, id, "h", 300)
	var bound *settlement.BetBoundError
	require.True(t, errors.As(err, &bound))
	assert.Equal(t, "Aposta máxima é 250 moedas", err.Error())
	assert.Equal(t, 100, repo.rooms[id].HostBet)

	_, err = b.SetBet(ctx, id, "h", 5)
	assert.EqualError(t, err, "Aposta mínima é 10 moedas")

	_, err = b.SetBet(ctx, id, "h", -1)
	assert.ErrorIs(t, err, settlement.ErrNegativeBet)

	room, err = b.SetBet(ctx, id, "h", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, room.HostBet)

	_, err = b.SetBet(ctx, id, "stranger", 50)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = b.BetLimits(ctx, "nobody")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestBattles_RetriesVersionConflicts(t *testing.T) {
	b, repo, id := activeRoom(t)
	ctx := context.Background()

	repo.conflicts = 2
	repo.writes = 0
	room, err := b.Act(ctx, id, "h", engine.Action{Kind: engine.ActionDefend})
	require.NoError(t, err)
	assert.True(t, room.Host.Defending)
	assert.Equal(t, 3, repo.writes)

	repo.conflicts = 100
	_, err = b.Act(ctx, id, "g", engine.Action{Kind: engine.ActionAttack})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestBattles_FightToVictorySettles(t *testing.T) {
	b, repo, id := activeRoom(t)
	ctx := context.Background()

	var room *game.Room
	var err error
	for i := 0; i < 200; i++ {
		cur := repo.rooms[id]
		if cur.Status == game.StatusFinished {
			break
		}
		room, err = b.Act(ctx, id, cur.UserID(cur.Turn), engine.Action{Kind: engine.ActionAttack})
		require.NoError(t, err)
	}
	require.NotNil(t, room)
	require.Equal(t, game.StatusFinished, room.Status)
	assert.Equal(t, game.FinishVictory, room.FinishReason)
	loser := room.Combatant(room.Winner.Opponent())
	assert.Equal(t, 0, loser.HP)
	require.Len(t, repo.finished, 1)
	last, ok := room.BattleLog.Last()
	require.True(t, ok)
	assert.Equal(t, room.Winner, last.Actor)
}
