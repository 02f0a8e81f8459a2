package engine

import (
	"errors"
	"time"

	"github.com/lyonms2/avatar-arena/internal/abilities"
	"github.com/lyonms2/avatar-arena/internal/game"
)

var (
	ErrRoomNotActive      = errors.New("room is not active")
	ErrRoomNotWaiting     = errors.New("room is not waiting")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrUnknownAction      = errors.New("unknown action")
	ErrUnknownAbility     = errors.New("unknown ability")
	ErrInsufficientEnergy = errors.New("insufficient energy")
	ErrAbilityOnCooldown  = errors.New("ability on cooldown")
	ErrMissingCombatant   = errors.New("combatant missing")
	ErrInvalidTransition  = errors.New("invalid room transition")
)

// AbilitySource resolves combatant ability references to balance data.
type AbilitySource interface {
	Resolve(ref game.AbilityRef) (abilities.Ability, bool)
}

// Rules are the tunable turn mechanics.
type Rules struct {
	EnergyRegen       int     `yaml:"energy_regen"`
	DefendEnergyBonus int     `yaml:"defend_energy_bonus"`
	DefendMitigation  float64 `yaml:"defend_mitigation"`
}

// DefaultRules returns the standard turn mechanics.
func DefaultRules() Rules {
	return Rules{
		EnergyRegen:       10,
		DefendEnergyBonus: 10,
		DefendMitigation:  0.5,
	}
}

// Engine resolves room transitions and combat actions. It mutates the room
// it is given; callers persist the result.
type Engine struct {
	abilities AbilitySource
	rng       game.Roller
	rules     Rules
	now       func() time.Time
}

// New builds an Engine. now defaults to time.Now.
func New(src AbilitySource, rng game.Roller, rules Rules, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{abilities: src, rng: rng, rules: rules, now: now}
}

// Now returns the engine clock in UTC.
func (e *Engine) Now() time.Time { return e.now().UTC() }
