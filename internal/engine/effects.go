package engine

import "github.com/lyonms2/avatar-arena/internal/game"

// EffectEvent describes what a tick did to a combatant.
type EffectEvent struct {
	Kind    game.EffectKind
	Amount  int
	Expired bool
}

func findEffect(c *game.Combatant, kind game.EffectKind) *game.StatusEffect {
	for i := range c.Effects {
		if c.Effects[i].Kind == kind {
			return &c.Effects[i]
		}
	}
	return nil
}

// HasEffect reports whether kind is active on c.
func HasEffect(c *game.Combatant, kind game.EffectKind) bool {
	return findEffect(c, kind) != nil
}

// ApplyEffect adds eff to c. Re-applying a kind overwrites its duration and
// magnitude; values never sum. The effect is marked fresh so the tick of the
// current action skips it.
func ApplyEffect(c *game.Combatant, eff game.StatusEffect) {
	if eff.Duration <= 0 {
		return
	}
	eff.Fresh = true
	if cur := findEffect(c, eff.Kind); cur != nil {
		*cur = eff
		return
	}
	c.Effects = append(c.Effects, eff)
}

// ExpireEffects drops effects whose duration already reached zero.
func ExpireEffects(c *game.Combatant) []game.EffectKind {
	var expired []game.EffectKind
	kept := c.Effects[:0]
	for _, e := range c.Effects {
		if e.Duration <= 0 {
			expired = append(expired, e.Kind)
			continue
		}
		kept = append(kept, e)
	}
	c.Effects = kept
	return expired
}

// TickEffects applies one turn of every non-fresh effect on c: burn deals
// its magnitude, regen heals it, and each duration drops by one. Effects
// reaching zero are removed.
func TickEffects(c *game.Combatant) []EffectEvent {
	var events []EffectEvent
	kept := c.Effects[:0]
	for _, e := range c.Effects {
		if e.Fresh {
			kept = append(kept, e)
			continue
		}
		ev := EffectEvent{Kind: e.Kind}
		switch e.Kind {
		case game.EffectBurn:
			dmg := e.Magnitude
			if dmg > c.HP {
				dmg = c.HP
			}
			if dmg < 0 {
				dmg = 0
			}
			c.HP -= dmg
			ev.Amount = dmg
		case game.EffectRegen:
			heal := e.Magnitude
			if room := c.MaxHP - c.HP; heal > room {
				heal = room
			}
			if heal < 0 {
				heal = 0
			}
			c.HP += heal
			ev.Amount = heal
		}
		e.Duration--
		if e.Duration <= 0 {
			ev.Expired = true
		} else {
			kept = append(kept, e)
		}
		events = append(events, ev)
	}
	c.Effects = kept
	return events
}

// ClearFresh ends the grace period of effects applied this action.
func ClearFresh(c *game.Combatant) {
	for i := range c.Effects {
		c.Effects[i].Fresh = false
	}
}

// AbsorbDamage lets an active shield soak dmg. It returns the damage that
// gets through and the amount absorbed. A depleted shield is removed.
func AbsorbDamage(c *game.Combatant, dmg int) (remaining, absorbed int) {
	s := findEffect(c, game.EffectShield)
	if s == nil || dmg <= 0 {
		return dmg, 0
	}
	absorbed = s.Magnitude
	if absorbed > dmg {
		absorbed = dmg
	}
	s.Magnitude -= absorbed
	if s.Magnitude <= 0 {
		s.Duration = 0
		ExpireEffects(c)
	}
	return dmg - absorbed, absorbed
}

// TickCooldowns lowers every cooldown of c by one, except the ability used
// this turn.
func TickCooldowns(c *game.Combatant, except string) {
	for id, left := range c.Cooldowns {
		if id == except {
			continue
		}
		if left <= 1 {
			delete(c.Cooldowns, id)
			continue
		}
		c.Cooldowns[id] = left - 1
	}
}
