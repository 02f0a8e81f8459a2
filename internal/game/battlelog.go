package game

import "time"

// LogCapacity is the number of entries a battle log retains.
const LogCapacity = 20

type LogEntry struct {
	Turn      int        `json:"turno"`
	Actor     Role       `json:"ator,omitempty"`
	Action    string     `json:"acao"`
	AbilityID string     `json:"habilidadeId,omitempty"`
	Hit       bool       `json:"acertou"`
	Damage    int        `json:"dano,omitempty"`
	Hits      []int      `json:"golpes,omitempty"`
	Heal      int        `json:"cura,omitempty"`
	Effect    EffectKind `json:"efeito,omitempty"`
	Message   string     `json:"mensagem"`
	At        time.Time  `json:"em"`
}

// BattleLog keeps the most recent LogCapacity entries, oldest first.
type BattleLog []LogEntry

// Append adds an entry and drops the oldest ones beyond capacity.
func (l *BattleLog) Append(entries ...LogEntry) {
	out := append(*l, entries...)
	if n := len(out); n > LogCapacity {
		trimmed := make(BattleLog, LogCapacity)
		copy(trimmed, out[n-LogCapacity:])
		out = trimmed
	}
	*l = out
}

// Last returns the most recent entry.
func (l BattleLog) Last() (LogEntry, bool) {
	if len(l) == 0 {
		return LogEntry{}, false
	}
	return l[len(l)-1], true
}
