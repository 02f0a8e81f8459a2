package service

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/lyonms2/avatar-arena/internal/game"
	"github.com/lyonms2/avatar-arena/internal/settlement"
	"github.com/lyonms2/avatar-arena/internal/storage"
)

func (b *Battles) player(ctx context.Context, userID string) (*game.Player, error) {
	p, err := b.repo.GetPlayer(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrPlayerNotFound
	}
	return p, err
}

// BetLimits returns the wager range for userID's current level and coins.
func (b *Battles) BetLimits(ctx context.Context, userID string) (lim settlement.BetLimits, err error) {
	ctx, span := startSpan(ctx, "Battles.BetLimits", attribute.String("user.id", userID))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(userID) == "" {
		return settlement.BetLimits{}, ErrInvalidInput
	}
	p, err := b.player(ctx, userID)
	if err != nil {
		return settlement.BetLimits{}, err
	}
	return settlement.Limits(b.economy, p.Level, p.Coins), nil
}

// SetBet records userID's wager on a room that has not finished. Zero
// withdraws the wager. Coins only move when the room is settled.
func (b *Battles) SetBet(ctx context.Context, roomID, userID string, amount int) (room *game.Room, err error) {
	ctx, span := startSpan(ctx, "Battles.SetBet",
		attribute.String("room.id", roomID),
		attribute.String("user.id", userID),
		attribute.Int("bet.amount", amount),
	)
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(roomID) == "" || strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	if amount < 0 {
		return nil, settlement.ErrNegativeBet
	}
	return b.mutate(ctx, roomID, func(room *game.Room) error {
		role, err := participant(room, userID)
		if err != nil {
			return err
		}
		p, err := b.player(ctx, userID)
		if err != nil {
			return err
		}
		if err := settlement.ValidateBet(b.economy, amount, p.Level, p.Coins); err != nil {
			return err
		}
		room.SetBet(role, amount)
		return nil
	})
}
