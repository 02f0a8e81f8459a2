package engine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/lyonms2/avatar-arena/internal/game"
)

// Lifecycle events. Status only ever moves forward.
const (
	EventStart   = "start"
	EventFinish  = "finish"
	EventAbandon = "abandon"
)

func newLifecycle(status game.RoomStatus) *fsm.FSM {
	waiting := string(game.StatusWaiting)
	active := string(game.StatusActive)
	finished := string(game.StatusFinished)
	return fsm.NewFSM(
		string(status),
		fsm.Events{
			{Name: EventStart, Src: []string{waiting}, Dst: active},
			{Name: EventFinish, Src: []string{active}, Dst: finished},
			{Name: EventAbandon, Src: []string{waiting, active}, Dst: finished},
		},
		fsm.Callbacks{},
	)
}

// CanTransition reports whether event is allowed from status.
func CanTransition(status game.RoomStatus, event string) bool {
	return newLifecycle(status).Can(event)
}

// transition moves room.Status along event or fails with ErrInvalidTransition.
func transition(room *game.Room, event string) error {
	f := newLifecycle(room.Status)
	if err := f.Event(context.Background(), event); err != nil {
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, event, room.Status)
	}
	room.Status = game.RoomStatus(f.Current())
	return nil
}
