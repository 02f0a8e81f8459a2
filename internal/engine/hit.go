package engine

import (
	"math"

	"github.com/lyonms2/avatar-arena/internal/game"
)

// Hit chances are integer percentages.
const (
	BasicHitBase   = 85
	AbilityHitBase = 90
	MinHitChance   = 10
	MaxHitChance   = 100
)

// ClampHitChance bounds p to [MinHitChance, MaxHitChance].
func ClampHitChance(p int) int {
	if p < MinHitChance {
		return MinHitChance
	}
	if p > MaxHitChance {
		return MaxHitChance
	}
	return p
}

// every two points of accuracy over evasion add one percent
func statSwing(accuracy, evasion int) int {
	return int(math.Round(float64(accuracy-evasion) / 2))
}

// BasicHitChance is the chance of a basic attack landing.
func BasicHitChance(accuracy, evasion int) int {
	return ClampHitChance(BasicHitBase + statSwing(accuracy, evasion))
}

// AbilityHitChance is the chance of an ability landing. A non-nil override
// replaces the stat formula but is clamped the same way.
func AbilityHitChance(accuracy, evasion int, override *int) int {
	if override != nil {
		return ClampHitChance(*override)
	}
	return ClampHitChance(AbilityHitBase + statSwing(accuracy, evasion))
}

// Roll draws once from rng and reports whether it falls under chance percent.
func Roll(rng game.Roller, chance int) bool {
	return rng.Intn(100) < chance
}

// ResolveBasicHit rolls a basic attack.
func ResolveBasicHit(rng game.Roller, accuracy, evasion int) bool {
	return Roll(rng, BasicHitChance(accuracy, evasion))
}

// ResolveAbilityHit rolls an ability.
func ResolveAbilityHit(rng game.Roller, accuracy, evasion int, override *int) bool {
	return Roll(rng, AbilityHitChance(accuracy, evasion, override))
}
