package engine

import (
	"github.com/lyonms2/avatar-arena/internal/abilities"
	"github.com/lyonms2/avatar-arena/internal/game"
)

// candidate is an action the planner is weighing.
type candidate struct {
	action Action
	score  float64
}

// PlanAction picks the action for a computer-controlled combatant: heal or
// shield when low, otherwise the option with the best expected damage.
// Defends when too tired to do anything useful.
func (e *Engine) PlanAction(self, opp *game.Combatant) Action {
	att, def := effectiveStats(self), effectiveStats(opp)
	mult := game.Multiplier(self.Element, opp.Element)
	hpPct := 100
	if self.MaxHP > 0 {
		hpPct = self.HP * 100 / self.MaxHP
	}

	best := candidate{
		action: Action{Kind: ActionAttack},
		score:  float64(AttackDamage(att, def, mult)) * float64(BasicHitChance(att.Focus, def.Agility)) / 100,
	}
	var heal, shield *candidate
	for _, ref := range self.Abilities {
		ab, ok := e.abilities.Resolve(ref)
		if !ok || self.Cooldown(ref.ID) > 0 || self.Energy < ab.EnergyCost {
			continue
		}
		act := Action{Kind: ActionAbility, AbilityID: ref.ID}
		switch ab.Kind {
		case abilities.KindDamage:
			abMult := game.Multiplier(abilityElement(self, ab), opp.Element)
			score := float64(sum(AbilityDamage(ab, att, def, abMult))) * float64(AbilityHitChance(att.Focus, def.Agility, ab.HitChance)) / 100
			if score > best.score {
				best = candidate{action: act, score: score}
			}
		case abilities.KindHeal:
			if heal == nil {
				heal = &candidate{action: act}
			}
		case abilities.KindBuff:
			if ab.Effect != nil && ab.Effect.Kind == game.EffectShield && shield == nil && !HasEffect(self, game.EffectShield) {
				shield = &candidate{action: act}
			}
		case abilities.KindDebuff:
			if ab.Effect != nil && !HasEffect(opp, ab.Effect.Kind) && best.action.Kind == ActionAttack {
				// worth about one tick per remaining turn of the effect
				score := float64(ab.Effect.Magnitude*ab.Effect.Duration) * float64(AbilityHitChance(att.Focus, def.Agility, ab.HitChance)) / 100
				if score > best.score {
					best = candidate{action: act, score: score}
				}
			}
		}
	}

	switch {
	case hpPct < 35 && heal != nil:
		return heal.action
	case hpPct < 50 && shield != nil:
		return shield.action
	case best.action.Kind == ActionAttack && hpPct < 25 && self.Energy < 20 && !self.Defending:
		return Action{Kind: ActionDefend}
	}
	return best.action
}
