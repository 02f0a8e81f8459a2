package engine

import (
	"time"

	"github.com/lyonms2/avatar-arena/internal/game"
)

// --- Turn context and helpers -----------------------------------------
type turnContext struct {
	room    *game.Room
	actor   game.Role
	self    *game.Combatant
	opp     *game.Combatant
	now     time.Time
	entries []game.LogEntry
}

func newTurnContext(room *game.Room, actor game.Role, now time.Time) *turnContext {
	return &turnContext{
		room:    room,
		actor:   actor,
		self:    room.Combatant(actor),
		opp:     room.Combatant(actor.Opponent()),
		now:     now,
		entries: make([]game.LogEntry, 0, 4),
	}
}

func (tc *turnContext) add(e game.LogEntry) {
	e.Turn = tc.room.TurnNumber
	if e.Actor == game.RoleNone {
		e.Actor = tc.actor
	}
	e.At = tc.now
	tc.entries = append(tc.entries, e)
}

// flush moves the collected entries into the room's log.
func (tc *turnContext) flush() []game.LogEntry {
	tc.room.BattleLog.Append(tc.entries...)
	return tc.entries
}
