package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lyonms2/avatar-arena/internal/constants"
	"github.com/lyonms2/avatar-arena/internal/engine"
	"github.com/lyonms2/avatar-arena/internal/game"
	"github.com/lyonms2/avatar-arena/internal/logging"
	"github.com/lyonms2/avatar-arena/internal/settlement"
	"github.com/lyonms2/avatar-arena/internal/storage"
)

// Battles runs PvP rooms. Every call re-reads the room, validates it and
// writes it back with a version check, so two players polling the same room
// never overwrite each other.
type Battles struct {
	repo    storage.Repository
	engine  *engine.Engine
	economy settlement.Rules
	newID   func() string
}

func NewBattles(repo storage.Repository, eng *engine.Engine, economy settlement.Rules) *Battles {
	return &Battles{repo: repo, engine: eng, economy: economy, newID: uuid.NewString}
}

func casBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 15 * time.Millisecond
	b.MaxInterval = 150 * time.Millisecond
	return b
}

// participant resolves userID to a side of room.
func participant(room *game.Room, userID string) (game.Role, error) {
	role := room.RoleOf(userID)
	if role == game.RoleNone {
		return role, ErrNotParticipant
	}
	return role, nil
}

// mutate loads the room, rejects finished rooms, lets fn change it and
// persists the result. Version conflicts reload and run fn again; any other
// error is returned as is.
func (b *Battles) mutate(ctx context.Context, roomID string, fn func(*game.Room) error) (*game.Room, error) {
	attempt := 0
	op := func() (*game.Room, error) {
		attempt++
		room, err := b.repo.GetRoom(ctx, roomID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, backoff.Permanent(ErrRoomNotFound)
		}
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if room.Status == game.StatusFinished {
			return nil, backoff.Permanent(ErrRoomFinished)
		}
		expected := room.Version
		if err := fn(room); err != nil {
			return nil, backoff.Permanent(err)
		}
		err = b.persist(ctx, room, expected)
		switch {
		case err == nil:
			return room, nil
		case errors.Is(err, storage.ErrVersionConflict):
			return nil, err
		case errors.Is(err, storage.ErrNotFound):
			return nil, backoff.Permanent(ErrRoomNotFound)
		}
		return nil, backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		logging.Debug("room write conflict, retrying", logging.Fields{
			constants.LogFieldRoomID:  roomID,
			constants.LogFieldAttempt: attempt,
			"wait":                    wait.String(),
		})
	}
	room, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(casBackOff()),
		backoff.WithMaxTries(constants.MaxCASAttempts),
		backoff.WithNotify(notify),
	)
	if errors.Is(err, storage.ErrVersionConflict) {
		return nil, ErrConflict
	}
	return room, err
}

// persist writes room. A room that just finished is settled in the same
// transaction; an abandoned one is deleted.
func (b *Battles) persist(ctx context.Context, room *game.Room, expected int) error {
	if room.Status != game.StatusFinished {
		return b.repo.UpdateRoom(ctx, room, expected)
	}
	s := settlement.Settle(b.economy, room)
	var err error
	if room.FinishReason == game.FinishAbandon {
		err = b.repo.AbandonRoom(ctx, room, expected, s)
	} else {
		err = b.repo.FinishRoom(ctx, room, expected, s)
	}
	if err == nil {
		logging.Info("battle finished", logging.Fields{
			constants.LogFieldRoomID: room.ID,
			constants.LogFieldReason: string(room.FinishReason),
			constants.LogFieldWinner: room.UserID(room.Winner),
		})
	}
	return err
}

func (b *Battles) battleAvatar(ctx context.Context, userID, avatarID string) (*game.Avatar, error) {
	a, err := b.repo.GetAvatar(ctx, avatarID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrAvatarNotFound
	}
	if err != nil {
		return nil, err
	}
	// someone else's avatar is reported missing rather than forbidden
	if a.OwnerID != userID {
		return nil, ErrAvatarNotFound
	}
	if !a.Alive || a.HP <= 0 {
		return nil, ErrAvatarUnavailable
	}
	return a, nil
}

// Create opens a waiting room hosted by userID.
func (b *Battles) Create(ctx context.Context, userID, avatarID string) (room *game.Room, err error) {
	ctx, span := startSpan(ctx, "Battles.Create", attribute.String("user.id", userID))
	defer func() { endSpan(span, err) }()

	userID, avatarID = strings.TrimSpace(userID), strings.TrimSpace(avatarID)
	if userID == "" || avatarID == "" {
		return nil, ErrInvalidInput
	}
	a, err := b.battleAvatar(ctx, userID, avatarID)
	if err != nil {
		return nil, err
	}
	room = &game.Room{
		ID:         b.newID(),
		HostUserID: userID,
		Host:       game.Snapshot(a),
		Status:     game.StatusWaiting,
		BattleLog:  game.BattleLog{},
		CreatedAt:  b.engine.Now(),
	}
	if err := b.repo.CreateRoom(ctx, room); err != nil {
		return nil, err
	}
	logging.Info("room created", logging.Fields{constants.LogFieldRoomID: room.ID, constants.LogFieldUserID: userID})
	return room, nil
}

// Join seats userID as the guest of a waiting room. A guest may join again
// to swap avatars until the battle starts.
func (b *Battles) Join(ctx context.Context, roomID, userID, avatarID string) (room *game.Room, err error) {
	ctx, span := startSpan(ctx, "Battles.Join", attribute.String("room.id", roomID), attribute.String("user.id", userID))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(roomID) == "" || strings.TrimSpace(userID) == "" || strings.TrimSpace(avatarID) == "" {
		return nil, ErrInvalidInput
	}
	a, err := b.battleAvatar(ctx, userID, avatarID)
	if err != nil {
		return nil, err
	}
	return b.mutate(ctx, roomID, func(room *game.Room) error {
		if room.HostUserID == userID {
			return ErrInvalidInput
		}
		if room.GuestUserID != "" && room.GuestUserID != userID {
			return ErrRoomFull
		}
		if room.Status != game.StatusWaiting {
			return engine.ErrRoomNotWaiting
		}
		room.GuestUserID = userID
		room.Guest = game.Snapshot(a)
		room.GuestReady = false
		return nil
	})
}

// Get returns the room as seen by one of its participants. Finished rooms
// stay readable until they are swept.
func (b *Battles) Get(ctx context.Context, roomID, userID string) (room *game.Room, err error) {
	ctx, span := startSpan(ctx, "Battles.Get", attribute.String("room.id", roomID))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(roomID) == "" || strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	room, err = b.repo.GetRoom(ctx, roomID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	if _, err := participant(room, userID); err != nil {
		return nil, err
	}
	return room, nil
}

// Act applies one player command to a room: ready, attack, defend, ability,
// surrender or abandon.
func (b *Battles) Act(ctx context.Context, roomID, userID string, act engine.Action) (room *game.Room, err error) {
	ctx, span := startSpan(ctx, "Battles.Act",
		attribute.String("room.id", roomID),
		attribute.String("user.id", userID),
		attribute.String("battle.action", string(act.Kind)),
	)
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(roomID) == "" || strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	switch act.Kind {
	case engine.ActionReady, engine.ActionAttack, engine.ActionDefend,
		engine.ActionSurrender, engine.ActionAbandon:
	case engine.ActionAbility:
		if strings.TrimSpace(act.AbilityID) == "" {
			return nil, ErrInvalidInput
		}
	default:
		return nil, engine.ErrUnknownAction
	}

	return b.mutate(ctx, roomID, func(room *game.Room) error {
		role, err := participant(room, userID)
		if err != nil {
			return err
		}
		logging.Debug("battle action", logging.Fields{
			constants.LogFieldRoomID:    room.ID,
			constants.LogFieldUserID:    userID,
			constants.LogFieldRole:      string(role),
			constants.LogFieldAction:    string(act.Kind),
			constants.LogFieldAbilityID: act.AbilityID,
		})
		switch act.Kind {
		case engine.ActionReady:
			return b.ready(room, role)
		case engine.ActionSurrender:
			return b.engine.Surrender(room, role)
		case engine.ActionAbandon:
			return b.engine.Abandon(room, role)
		}
		_, err = b.engine.Apply(room, role, act)
		return err
	})
}

func (b *Battles) ready(room *game.Room, role game.Role) error {
	if room.Status != game.StatusWaiting {
		return engine.ErrRoomNotWaiting
	}
	if room.Combatant(role) == nil {
		return engine.ErrMissingCombatant
	}
	room.SetReady(role)
	if room.HostReady && room.GuestReady && room.Host != nil && room.Guest != nil {
		return b.engine.Start(room)
	}
	return nil
}

// Surrender ends an active battle in favour of the opponent.
func (b *Battles) Surrender(ctx context.Context, roomID, userID string) (*game.Room, error) {
	return b.Act(ctx, roomID, userID, engine.Action{Kind: engine.ActionSurrender})
}

// Abandon ends the battle, settles the full penalty and deletes the room.
// The returned room is the final state that was settled.
func (b *Battles) Abandon(ctx context.Context, roomID, userID string) (*game.Room, error) {
	return b.Act(ctx, roomID, userID, engine.Action{Kind: engine.ActionAbandon})
}
