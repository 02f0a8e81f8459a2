package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lyonms2/avatar-arena/internal/abilities"
	"github.com/lyonms2/avatar-arena/internal/constants"
	"github.com/lyonms2/avatar-arena/internal/engine"
	"github.com/lyonms2/avatar-arena/internal/game"
	"github.com/lyonms2/avatar-arena/internal/logging"
	"github.com/lyonms2/avatar-arena/internal/training"
)

// TrainingOpponentID is the user id of the computer side of a session.
const TrainingOpponentID = "cpu"

// maxComputerTurns bounds the computer's consecutive turns after one player
// action. Only stuns can hand it more than one.
const maxComputerTurns = 4

// Training runs practice battles against the computer. Sessions live in
// memory only and never touch balances or avatar records.
type Training struct {
	battles  *Battles
	store    *training.Store
	engine   *engine.Engine
	registry *abilities.Registry
	rng      game.Roller
	newID    func() string
}

func NewTraining(battles *Battles, store *training.Store, eng *engine.Engine, reg *abilities.Registry, rng game.Roller) *Training {
	return &Training{battles: battles, store: store, engine: eng, registry: reg, rng: rng, newID: uuid.NewString}
}

// Start creates a session pitting avatarID against a generated opponent of
// the same rarity.
func (t *Training) Start(ctx context.Context, userID, avatarID string) (sess *training.Session, err error) {
	ctx, span := startSpan(ctx, "Training.Start", attribute.String("user.id", userID))
	defer func() { endSpan(span, err) }()

	userID, avatarID = strings.TrimSpace(userID), strings.TrimSpace(avatarID)
	if userID == "" || avatarID == "" {
		return nil, ErrInvalidInput
	}
	a, err := t.battles.battleAvatar(ctx, userID, avatarID)
	if err != nil {
		return nil, err
	}
	opp := game.GenerateAvatar(t.rng, t.newID(), TrainingOpponentID, a.Rarity, "", t.registry.StarterSet)

	now := t.engine.Now()
	id := t.newID()
	room := &game.Room{
		ID:          id,
		HostUserID:  userID,
		GuestUserID: TrainingOpponentID,
		Host:        game.Snapshot(a),
		Guest:       game.Snapshot(opp),
		HostReady:   true,
		GuestReady:  true,
		Status:      game.StatusWaiting,
		BattleLog:   game.BattleLog{},
		CreatedAt:   now,
	}
	if err := t.engine.Start(room); err != nil {
		return nil, err
	}
	if err := t.computerTurns(room); err != nil {
		return nil, err
	}
	sess = &training.Session{ID: id, UserID: userID, Room: room, CreatedAt: now}
	t.store.Put(sess)
	logging.Info("training session started", logging.Fields{
		constants.LogFieldSessionID: id,
		constants.LogFieldUserID:    userID,
	})
	return t.store.Get(id)
}

// Get returns a session owned by userID.
func (t *Training) Get(ctx context.Context, sessionID, userID string) (*training.Session, error) {
	sess, err := t.store.Get(sessionID)
	if errors.Is(err, training.ErrSessionNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, ErrNotParticipant
	}
	return sess, nil
}

// Act applies the player's action and lets the computer answer. Surrender
// and abandon simply end the session.
func (t *Training) Act(ctx context.Context, sessionID, userID string, act engine.Action) (sess *training.Session, err error) {
	_, span := startSpan(ctx, "Training.Act",
		attribute.String("session.id", sessionID),
		attribute.String("battle.action", string(act.Kind)),
	)
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(sessionID) == "" || strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	sess, err = t.store.Update(sessionID, func(s *training.Session) error {
		if s.UserID != userID {
			return ErrNotParticipant
		}
		room := s.Room
		if room.Status == game.StatusFinished {
			return ErrRoomFinished
		}
		switch act.Kind {
		case engine.ActionSurrender:
			return t.engine.Surrender(room, game.RoleHost)
		case engine.ActionAbandon:
			return t.engine.Abandon(room, game.RoleHost)
		case engine.ActionAttack, engine.ActionDefend, engine.ActionAbility:
		default:
			return engine.ErrUnknownAction
		}
		if _, err := t.engine.Apply(room, game.RoleHost, act); err != nil {
			return err
		}
		return t.computerTurns(room)
	})
	if errors.Is(err, training.ErrSessionNotFound) {
		return nil, ErrSessionNotFound
	}
	return sess, err
}

func (t *Training) computerTurns(room *game.Room) error {
	for i := 0; i < maxComputerTurns && room.Status == game.StatusActive && room.Turn == game.RoleGuest; i++ {
		act := t.engine.PlanAction(room.Guest, room.Host)
		if _, err := t.engine.Apply(room, game.RoleGuest, act); err != nil {
			// a plan the engine refuses falls back to a basic attack
			logging.Debug("computer plan rejected", logging.Fields{
				constants.LogFieldRoomID:    room.ID,
				constants.LogFieldAbilityID: act.AbilityID,
				constants.LogFieldReason:    err.Error(),
			})
			if _, err := t.engine.Apply(room, game.RoleGuest, engine.Action{Kind: engine.ActionAttack}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Sweep evicts idle sessions.
func (t *Training) Sweep() int {
	n := t.store.Sweep()
	if n > 0 {
		logging.Info("training sessions expired", logging.Fields{constants.LogFieldCount: n})
	}
	return n
}
