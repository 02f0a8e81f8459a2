package engine

import (
	"math"

	"github.com/lyonms2/avatar-arena/internal/game"
)

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// --- Modifier helpers --------------------------------------------------

// performanceFactor: full fatigue halves output, full bond adds 10%.
func performanceFactor(c *game.Combatant) float64 {
	fatigue := float64(clampInt(c.Fatigue, 0, 100))
	bond := float64(clampInt(c.Bond, 0, 100))
	return (1 - fatigue/200) * (1 + bond/1000)
}

func effectiveStats(c *game.Combatant) game.Stats {
	return c.Stats.Scale(performanceFactor(c))
}

func weakenFactor(c *game.Combatant) float64 {
	if e := findEffect(c, game.EffectWeaken); e != nil {
		return 1 - float64(clampInt(e.Magnitude, 0, 100))/100
	}
	return 1
}

func (e *Engine) gainEnergy(c *game.Combatant, amount int) {
	c.Energy = clampInt(c.Energy+amount, 0, c.MaxEnergy)
}

// applyDamage runs dmg from attacker through weaken, defend stance and
// shield, then subtracts it from target. It returns the HP actually lost.
func (e *Engine) applyDamage(attacker, target *game.Combatant, dmg int) int {
	dmg = int(math.Floor(float64(dmg) * weakenFactor(attacker)))
	if target.Defending {
		dmg = int(math.Floor(float64(dmg) * e.rules.DefendMitigation))
		target.Defending = false
	}
	dmg, _ = AbsorbDamage(target, dmg)
	if dmg > target.HP {
		dmg = target.HP
	}
	if dmg < 0 {
		dmg = 0
	}
	target.HP -= dmg
	return dmg
}
