package engine

import (
	"math"

	"github.com/lyonms2/avatar-arena/internal/abilities"
	"github.com/lyonms2/avatar-arena/internal/game"
)

// BasicAttackBase is added to strength before mitigation.
const BasicAttackBase = 10

// mitigation turns resistance into a damage factor in (0, 1].
func mitigation(resistance int) float64 {
	if resistance < 0 {
		resistance = 0
	}
	return 100.0 / float64(100+resistance)
}

func floorNonNegative(x float64) int {
	if x <= 0 || math.IsNaN(x) {
		return 0
	}
	return int(math.Floor(x))
}

func statScale(ab abilities.Ability, s game.Stats) float64 {
	return 1 + float64(s.Get(ab.PrimaryStat))*ab.StatMultiplier/100
}

// AttackDamage computes basic attack damage. Never negative.
func AttackDamage(att, def game.Stats, mult float64) int {
	raw := float64(BasicAttackBase+att.Strength) * mitigation(def.Resistance) * mult
	return floorNonNegative(raw)
}

// AbilityDamage returns the damage of each hit of a damaging ability. Every
// hit is floored on its own, so the total is the sum of floors.
func AbilityDamage(ab abilities.Ability, att, def game.Stats, mult float64) []int {
	perHit := floorNonNegative(float64(ab.BaseDamage) * statScale(ab, att) * mitigation(def.Resistance) * mult)
	out := make([]int, ab.NumHits())
	for i := range out {
		out[i] = perHit
	}
	return out
}

// AbilityHeal returns the raw heal amount. Capping at max HP is done by the
// caller.
func AbilityHeal(ab abilities.Ability, caster game.Stats) int {
	return floorNonNegative(float64(ab.BaseDamage) * statScale(ab, caster))
}

func sum(xs []int) int {
	t := 0
	for _, x := range xs {
		t += x
	}
	return t
}
