package game

import (
	"slices"
	"time"
)

type Rarity string

const (
	RarityCommon    Rarity = "Comum"
	RarityRare      Rarity = "Raro"
	RarityLegendary Rarity = "Lendario"
)

// StatKey names one of the four primary stats. Abilities scale off one.
type StatKey string

const (
	StatStrength   StatKey = "forca"
	StatAgility    StatKey = "agilidade"
	StatResistance StatKey = "resistencia"
	StatFocus      StatKey = "foco"
)

type Stats struct {
	Strength   int `json:"forca"`
	Agility    int `json:"agilidade"`
	Resistance int `json:"resistencia"`
	Focus      int `json:"foco"`
}

// Get returns the value of the named stat, or 0 for an unknown key.
func (s Stats) Get(k StatKey) int {
	switch k {
	case StatStrength:
		return s.Strength
	case StatAgility:
		return s.Agility
	case StatResistance:
		return s.Resistance
	case StatFocus:
		return s.Focus
	}
	return 0
}

// Scale multiplies every stat by f, truncating.
func (s Stats) Scale(f float64) Stats {
	return Stats{
		Strength:   int(float64(s.Strength) * f),
		Agility:    int(float64(s.Agility) * f),
		Resistance: int(float64(s.Resistance) * f),
		Focus:      int(float64(s.Focus) * f),
	}
}

// AbilityRef is what a combatant stores about an ability. Balance numbers
// are resolved from the registry by ID when the ability is used.
type AbilityRef struct {
	ID   string `json:"id"`
	Name string `json:"nome"`
}

type EffectKind string

const (
	EffectBurn   EffectKind = "burn"
	EffectRegen  EffectKind = "regen"
	EffectStun   EffectKind = "stun"
	EffectShield EffectKind = "shield"
	EffectWeaken EffectKind = "weaken"
)

type StatusEffect struct {
	Kind      EffectKind `json:"tipo"`
	Duration  int        `json:"duracao"`
	Magnitude int        `json:"intensidade"`
	// set while the effect was applied during the action being resolved
	Fresh bool `json:"-"`
}

// Combatant is the in-battle snapshot of an avatar.
type Combatant struct {
	AvatarID  string         `json:"avatarId"`
	OwnerID   string         `json:"ownerId"`
	Name      string         `json:"nome"`
	Element   Element        `json:"elemento"`
	Rarity    Rarity         `json:"raridade"`
	HP        int            `json:"hp"`
	MaxHP     int            `json:"hpMax"`
	Stats     Stats          `json:"stats"`
	Energy    int            `json:"energia"`
	MaxEnergy int            `json:"energiaMax"`
	Abilities []AbilityRef   `json:"habilidades"`
	Effects   []StatusEffect `json:"efeitos"`
	Bond      int            `json:"vinculo"`
	Fatigue   int            `json:"exaustao"`
	Cooldowns map[string]int `json:"cooldowns,omitempty"`
	Defending bool           `json:"defendendo"`
}

// HasAbility reports whether the combatant carries a reference with id.
func (c *Combatant) HasAbility(id string) bool {
	for _, a := range c.Abilities {
		if a.ID == id {
			return true
		}
	}
	return false
}

// AbilityRef returns the stored reference for id.
func (c *Combatant) AbilityRef(id string) (AbilityRef, bool) {
	for _, a := range c.Abilities {
		if a.ID == id {
			return a, true
		}
	}
	return AbilityRef{}, false
}

// Cooldown returns the remaining cooldown for an ability id.
func (c *Combatant) Cooldown(id string) int {
	if c.Cooldowns == nil {
		return 0
	}
	return c.Cooldowns[id]
}

// Alive reports whether the combatant still has hit points.
func (c *Combatant) Alive() bool { return c.HP > 0 }

type Role string

const (
	RoleNone  Role = ""
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

// Opponent returns the other side; RoleNone maps to RoleNone.
func (r Role) Opponent() Role {
	switch r {
	case RoleHost:
		return RoleGuest
	case RoleGuest:
		return RoleHost
	}
	return RoleNone
}

type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusActive   RoomStatus = "active"
	StatusFinished RoomStatus = "finished"
)

type FinishReason string

const (
	FinishNone      FinishReason = ""
	FinishVictory   FinishReason = "victory"
	FinishSurrender FinishReason = "surrender"
	FinishAbandon   FinishReason = "abandon"
)

// Room is a PvP battle between a host and a guest. It is persisted as a
// single document; Version guards concurrent writers.
type Room struct {
	ID           string       `json:"id"`
	HostUserID   string       `json:"hostUserId"`
	GuestUserID  string       `json:"guestUserId,omitempty"`
	Host         *Combatant   `json:"hostAvatar,omitempty"`
	Guest        *Combatant   `json:"guestAvatar,omitempty"`
	HostBet      int          `json:"hostBet"`
	GuestBet     int          `json:"guestBet"`
	HostReady    bool         `json:"hostReady"`
	GuestReady   bool         `json:"guestReady"`
	Status       RoomStatus   `json:"status"`
	Turn         Role         `json:"turn,omitempty"`
	TurnNumber   int          `json:"turnNumber"`
	Winner       Role         `json:"winner,omitempty"`
	FinishReason FinishReason `json:"finishReason,omitempty"`
	BattleLog    BattleLog    `json:"battleLog"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	FinishedAt   *time.Time   `json:"finishedAt,omitempty"`
	Version      int          `json:"version"`
}

// RoleOf resolves which side a user plays in this room.
func (r *Room) RoleOf(userID string) Role {
	if userID == "" {
		return RoleNone
	}
	switch userID {
	case r.HostUserID:
		return RoleHost
	case r.GuestUserID:
		return RoleGuest
	}
	return RoleNone
}

// Combatant returns the snapshot for a side, nil when absent.
func (r *Room) Combatant(role Role) *Combatant {
	switch role {
	case RoleHost:
		return r.Host
	case RoleGuest:
		return r.Guest
	}
	return nil
}

// UserID returns the user id of a side.
func (r *Room) UserID(role Role) string {
	switch role {
	case RoleHost:
		return r.HostUserID
	case RoleGuest:
		return r.GuestUserID
	}
	return ""
}

// Bet returns the wager placed by a side.
func (r *Room) Bet(role Role) int {
	switch role {
	case RoleHost:
		return r.HostBet
	case RoleGuest:
		return r.GuestBet
	}
	return 0
}

// SetBet stores the wager of a side.
func (r *Room) SetBet(role Role, amount int) {
	switch role {
	case RoleHost:
		r.HostBet = amount
	case RoleGuest:
		r.GuestBet = amount
	}
}

// SetReady marks a side ready.
func (r *Room) SetReady(role Role) {
	switch role {
	case RoleHost:
		r.HostReady = true
	case RoleGuest:
		r.GuestReady = true
	}
}

// Player holds the account balances touched by battles and rewards.
type Player struct {
	UserID       string    `json:"userId" gorm:"primaryKey"`
	Name         string    `json:"nome"`
	Level        int       `json:"nivel"`
	Coins        int       `json:"moedas"`
	Fragments    int       `json:"fragmentos"`
	Fame         int       `json:"fama"`
	HunterRankXP int       `json:"hunterRankXp"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Avatar is the persistent creature record. Combatants are snapshots of it.
type Avatar struct {
	ID        string       `json:"id" gorm:"primaryKey"`
	OwnerID   string       `json:"ownerId" gorm:"index"`
	Name      string       `json:"nome"`
	Element   Element      `json:"elemento"`
	Rarity    Rarity       `json:"raridade"`
	HP        int          `json:"hp"`
	MaxHP     int          `json:"hpMax"`
	Stats     Stats        `json:"stats" gorm:"embedded;embeddedPrefix:stat_"`
	Abilities []AbilityRef `json:"habilidades" gorm:"serializer:json"`
	Bond      int          `json:"vinculo"`
	Fatigue   int          `json:"exaustao"`
	Alive     bool         `json:"vivo"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// PendingReward is a season reward waiting to be collected exactly once.
type PendingReward struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	UserID         string     `json:"userId" gorm:"index"`
	Season         string     `json:"temporada"`
	Coins          int        `json:"moedas"`
	Fragments      int        `json:"fragmentos"`
	GrantLegendary bool       `json:"avatarLendario"`
	GrantRare      bool       `json:"avatarRaro"`
	Collected      bool       `json:"coletada"`
	CollectedAt    *time.Time `json:"coletadaEm,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Clone returns a deep copy of the combatant.
func (c *Combatant) Clone() *Combatant {
	if c == nil {
		return nil
	}
	out := *c
	out.Abilities = slices.Clone(c.Abilities)
	out.Effects = slices.Clone(c.Effects)
	if c.Cooldowns != nil {
		out.Cooldowns = make(map[string]int, len(c.Cooldowns))
		for k, v := range c.Cooldowns {
			out.Cooldowns[k] = v
		}
	}
	return &out
}

// Clone returns a deep copy of the room.
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	out := *r
	out.Host = r.Host.Clone()
	out.Guest = r.Guest.Clone()
	out.BattleLog = slices.Clone(r.BattleLog)
	for i := range out.BattleLog {
		out.BattleLog[i].Hits = slices.Clone(r.BattleLog[i].Hits)
	}
	if r.FinishedAt != nil {
		t := *r.FinishedAt
		out.FinishedAt = &t
	}
	return &out
}
