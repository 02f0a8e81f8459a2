package storage

import (
	"context"
	"errors"
	"time"

	"github.com/lyonms2/avatar-arena/internal/game"
	"github.com/lyonms2/avatar-arena/internal/settlement"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrVersionConflict = errors.New("room was modified concurrently")
)

// FinishedRoom is the cleanup view of a finished room.
type FinishedRoom struct {
	ID         string
	FinishedAt time.Time
}

type Repository interface {
	CreateRoom(ctx context.Context, room *game.Room) error
	GetRoom(ctx context.Context, id string) (*game.Room, error)
	// UpdateRoom writes room only if the stored version still equals
	// expectedVersion, then bumps room.Version. ErrVersionConflict otherwise.
	UpdateRoom(ctx context.Context, room *game.Room, expectedVersion int) error
	// FinishRoom performs the guarded room write and the settlement in one
	// transaction.
	FinishRoom(ctx context.Context, room *game.Room, expectedVersion int, s settlement.Settlement) error
	// AbandonRoom applies the settlement and deletes the room in one
	// transaction.
	AbandonRoom(ctx context.Context, room *game.Room, expectedVersion int, s settlement.Settlement) error
	ListFinishedRooms(ctx context.Context) ([]FinishedRoom, error)
	DeleteRooms(ctx context.Context, ids []string) (int, error)

	GetAvatar(ctx context.Context, id string) (*game.Avatar, error)
	SaveAvatar(ctx context.Context, a *game.Avatar) error
	GetPlayer(ctx context.Context, userID string) (*game.Player, error)
	SavePlayer(ctx context.Context, p *game.Player) error

	GetPendingReward(ctx context.Context, id string) (*game.PendingReward, error)
	SavePendingReward(ctx context.Context, r *game.PendingReward) error
	// CollectReward marks the reward collected, credits the payout and
	// stores granted avatars, all or nothing. A reward that is missing,
	// owned by someone else or already collected yields ErrNotFound.
	CollectReward(ctx context.Context, rewardID, userID string, payout settlement.Payout, grants []*game.Avatar, at time.Time) error
}
