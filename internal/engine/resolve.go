package engine

import (
	"fmt"

	"github.com/lyonms2/avatar-arena/internal/abilities"
	"github.com/lyonms2/avatar-arena/internal/game"
)

type ActionKind string

const (
	ActionAttack    ActionKind = "attack"
	ActionDefend    ActionKind = "defend"
	ActionAbility   ActionKind = "ability"
	ActionReady     ActionKind = "ready"
	ActionSurrender ActionKind = "surrender"
	ActionAbandon   ActionKind = "abandon"

	// log-only actions
	actionStunned ActionKind = "stunned"
	actionEffect  ActionKind = "effect"
	actionStart   ActionKind = "start"
	actionFinish  ActionKind = "finish"
)

// Action is a combat command for the side whose turn it is.
type Action struct {
	Kind      ActionKind
	AbilityID string
}

// Outcome summarises one resolved action.
type Outcome struct {
	Entries  []game.LogEntry
	Finished bool
	Winner   game.Role
}

// Start moves a waiting room with two ready combatants to active. The first
// turn goes to the higher effective agility, ties to the host.
func (e *Engine) Start(room *game.Room) error {
	if room.Status != game.StatusWaiting {
		return ErrRoomNotWaiting
	}
	if room.Host == nil || room.Guest == nil {
		return ErrMissingCombatant
	}
	if err := transition(room, EventStart); err != nil {
		return err
	}
	room.Turn = game.RoleHost
	if effectiveStats(room.Guest).Agility > effectiveStats(room.Host).Agility {
		room.Turn = game.RoleGuest
	}
	room.TurnNumber = 1
	tc := newTurnContext(room, room.Turn, e.Now())
	tc.add(game.LogEntry{
		Action:  string(actionStart),
		Message: fmt.Sprintf("A batalha começou! %s age primeiro.", room.Combatant(room.Turn).Name),
	})
	tc.flush()
	return nil
}

// Apply resolves one action for actor. Validation happens before any
// mutation, so a returned error leaves room untouched.
func (e *Engine) Apply(room *game.Room, actor game.Role, act Action) (Outcome, error) {
	if room.Status != game.StatusActive {
		return Outcome{}, ErrRoomNotActive
	}
	if room.Turn != actor {
		return Outcome{}, ErrNotYourTurn
	}
	self, opp := room.Combatant(actor), room.Combatant(actor.Opponent())
	if self == nil || opp == nil {
		return Outcome{}, ErrMissingCombatant
	}

	stunned := HasEffect(self, game.EffectStun)
	var (
		ab    abilities.Ability
		refID string
	)
	if !stunned {
		switch act.Kind {
		case ActionAttack, ActionDefend:
		case ActionAbility:
			var err error
			ab, refID, err = e.validateAbility(self, act.AbilityID)
			if err != nil {
				return Outcome{}, err
			}
		default:
			return Outcome{}, ErrUnknownAction
		}
	}

	tc := newTurnContext(room, actor, e.Now())
	// expire-check
	ExpireEffects(self)
	ExpireEffects(opp)
	self.Defending = false

	// apply-new
	switch {
	case stunned:
		tc.add(game.LogEntry{
			Action:  string(actionStunned),
			Effect:  game.EffectStun,
			Message: fmt.Sprintf("%s está atordoado e perde o turno.", self.Name),
		})
	case act.Kind == ActionAttack:
		e.execAttack(tc)
	case act.Kind == ActionDefend:
		e.execDefend(tc)
	case act.Kind == ActionAbility:
		e.execAbility(tc, ab, refID)
	}

	// tick-existing
	for _, ev := range TickEffects(self) {
		tc.add(effectEntry(self, ev))
	}
	if !stunned {
		TickCooldowns(self, refID)
	}
	e.gainEnergy(self, e.rules.EnergyRegen)
	ClearFresh(self)
	ClearFresh(opp)

	out := Outcome{}
	switch {
	case !opp.Alive():
		out.Finished, out.Winner = true, actor
	case !self.Alive():
		out.Finished, out.Winner = true, actor.Opponent()
	}
	if out.Finished {
		if err := transition(room, EventFinish); err != nil {
			return Outcome{}, err
		}
		e.markFinished(room, out.Winner, game.FinishVictory)
		tc.add(game.LogEntry{
			Actor:   out.Winner,
			Action:  string(actionFinish),
			Message: fmt.Sprintf("%s venceu a batalha!", room.Combatant(out.Winner).Name),
		})
	} else {
		room.Turn = actor.Opponent()
		room.TurnNumber++
	}
	out.Entries = tc.flush()
	return out, nil
}

// Surrender ends an active room in favour of the opponent.
func (e *Engine) Surrender(room *game.Room, actor game.Role) error {
	if room.Status != game.StatusActive {
		return ErrRoomNotActive
	}
	if err := transition(room, EventFinish); err != nil {
		return err
	}
	winner := actor.Opponent()
	e.markFinished(room, winner, game.FinishSurrender)
	tc := newTurnContext(room, actor, e.Now())
	tc.add(game.LogEntry{
		Action:  string(ActionSurrender),
		Message: fmt.Sprintf("%s se rendeu.", displayName(room, actor)),
	})
	tc.flush()
	return nil
}

// Abandon ends a waiting or active room. The abandoning combatant is left at
// zero HP and the opponent, when there is one, wins.
func (e *Engine) Abandon(room *game.Room, actor game.Role) error {
	if err := transition(room, EventAbandon); err != nil {
		return err
	}
	if c := room.Combatant(actor); c != nil {
		c.HP = 0
	}
	winner := actor.Opponent()
	if room.Combatant(winner) == nil {
		winner = game.RoleNone
	}
	e.markFinished(room, winner, game.FinishAbandon)
	tc := newTurnContext(room, actor, e.Now())
	tc.add(game.LogEntry{
		Action:  string(ActionAbandon),
		Message: fmt.Sprintf("%s abandonou a batalha.", displayName(room, actor)),
	})
	tc.flush()
	return nil
}

func (e *Engine) markFinished(room *game.Room, winner game.Role, reason game.FinishReason) {
	now := e.Now()
	room.Winner = winner
	room.FinishReason = reason
	room.FinishedAt = &now
	room.Turn = game.RoleNone
}

func displayName(room *game.Room, role game.Role) string {
	if c := room.Combatant(role); c != nil && c.Name != "" {
		return c.Name
	}
	return room.UserID(role)
}

func (e *Engine) validateAbility(self *game.Combatant, id string) (abilities.Ability, string, error) {
	ref, ok := self.AbilityRef(id)
	if !ok {
		return abilities.Ability{}, "", ErrUnknownAbility
	}
	ab, ok := e.abilities.Resolve(ref)
	if !ok {
		return abilities.Ability{}, "", ErrUnknownAbility
	}
	if self.Cooldown(ref.ID) > 0 {
		return abilities.Ability{}, "", ErrAbilityOnCooldown
	}
	if self.Energy < ab.EnergyCost {
		return abilities.Ability{}, "", ErrInsufficientEnergy
	}
	return ab, ref.ID, nil
}

// --- Action execution ---------------------------------------------------

func (e *Engine) execAttack(tc *turnContext) {
	self, opp := tc.self, tc.opp
	att, def := effectiveStats(self), effectiveStats(opp)
	if !ResolveBasicHit(e.rng, att.Focus, def.Agility) {
		tc.add(game.LogEntry{
			Action:  string(ActionAttack),
			Message: fmt.Sprintf("%s atacou, mas %s esquivou.", self.Name, opp.Name),
		})
		return
	}
	mult := game.Multiplier(self.Element, opp.Element)
	dealt := e.applyDamage(self, opp, AttackDamage(att, def, mult))
	tc.add(game.LogEntry{
		Action:  string(ActionAttack),
		Hit:     true,
		Damage:  dealt,
		Message: fmt.Sprintf("%s atacou %s causando %d de dano%s.", self.Name, opp.Name, dealt, multiplierNote(mult)),
	})
}

func (e *Engine) execDefend(tc *turnContext) {
	tc.self.Defending = true
	e.gainEnergy(tc.self, e.rules.DefendEnergyBonus)
	tc.add(game.LogEntry{
		Action:  string(ActionDefend),
		Hit:     true,
		Message: fmt.Sprintf("%s assumiu postura defensiva.", tc.self.Name),
	})
}

func (e *Engine) execAbility(tc *turnContext, ab abilities.Ability, refID string) {
	self, opp := tc.self, tc.opp
	self.Energy -= ab.EnergyCost
	if ab.Cooldown > 0 {
		if self.Cooldowns == nil {
			self.Cooldowns = map[string]int{}
		}
		self.Cooldowns[refID] = ab.Cooldown
	}
	entry := game.LogEntry{Action: string(ActionAbility), AbilityID: ab.ID}

	switch ab.Kind {
	case abilities.KindDamage:
		att, def := effectiveStats(self), effectiveStats(opp)
		mult := game.Multiplier(abilityElement(self, ab), opp.Element)
		perHit := AbilityDamage(ab, att, def, mult)
		// every hit rolls on its own; a miss is recorded as 0
		dealt := make([]int, 0, len(perHit))
		for _, d := range perHit {
			if !opp.Alive() {
				break
			}
			if !ResolveAbilityHit(e.rng, att.Focus, def.Agility, ab.HitChance) {
				dealt = append(dealt, 0)
				continue
			}
			entry.Hit = true
			dealt = append(dealt, e.applyDamage(self, opp, d))
		}
		if len(perHit) > 1 {
			entry.Hits = dealt
		}
		if !entry.Hit {
			entry.Message = fmt.Sprintf("%s usou %s, mas errou.", self.Name, ab.Name)
			tc.add(entry)
			return
		}
		entry.Damage = sum(dealt)
		entry.Message = fmt.Sprintf("%s usou %s em %s causando %d de dano%s.", self.Name, ab.Name, opp.Name, entry.Damage, multiplierNote(mult))
	case abilities.KindDebuff:
		att, def := effectiveStats(self), effectiveStats(opp)
		if !ResolveAbilityHit(e.rng, att.Focus, def.Agility, ab.HitChance) {
			entry.Message = fmt.Sprintf("%s usou %s, mas errou.", self.Name, ab.Name)
			tc.add(entry)
			return
		}
		entry.Hit = true
		entry.Message = fmt.Sprintf("%s usou %s em %s.", self.Name, ab.Name, opp.Name)
	case abilities.KindHeal:
		heal := AbilityHeal(ab, effectiveStats(self))
		if room := self.MaxHP - self.HP; heal > room {
			heal = room
		}
		self.HP += heal
		entry.Hit = true
		entry.Heal = heal
		entry.Message = fmt.Sprintf("%s usou %s e recuperou %d de HP.", self.Name, ab.Name, heal)
	case abilities.KindBuff:
		entry.Hit = true
		entry.Message = fmt.Sprintf("%s usou %s.", self.Name, ab.Name)
	}

	if kind, ok := e.applyPayload(tc, ab); ok {
		entry.Effect = kind
	}
	tc.add(entry)
}

// abilityElement is the element an ability strikes with: its own when set,
// otherwise the caster's.
func abilityElement(self *game.Combatant, ab abilities.Ability) game.Element {
	if ab.Element != "" {
		return ab.Element
	}
	return self.Element
}

// applyPayload rolls and applies the ability's status effect. Called only
// after the ability landed.
func (e *Engine) applyPayload(tc *turnContext, ab abilities.Ability) (game.EffectKind, bool) {
	p := ab.Effect
	if p == nil {
		return "", false
	}
	if p.Chance < 100 && !Roll(e.rng, p.Chance) {
		return "", false
	}
	target := tc.opp
	if p.Target == abilities.TargetSelf {
		target = tc.self
	}
	if !target.Alive() {
		return "", false
	}
	ApplyEffect(target, game.StatusEffect{Kind: p.Kind, Duration: p.Duration, Magnitude: p.Magnitude})
	return p.Kind, true
}

func effectEntry(c *game.Combatant, ev EffectEvent) game.LogEntry {
	entry := game.LogEntry{Action: string(actionEffect), Effect: ev.Kind, Hit: true}
	switch ev.Kind {
	case game.EffectBurn:
		entry.Damage = ev.Amount
		entry.Message = fmt.Sprintf("%s sofreu %d de dano por queimadura.", c.Name, ev.Amount)
	case game.EffectRegen:
		entry.Heal = ev.Amount
		entry.Message = fmt.Sprintf("%s regenerou %d de HP.", c.Name, ev.Amount)
	default:
		entry.Message = fmt.Sprintf("Efeito %s em %s.", ev.Kind, c.Name)
	}
	if ev.Expired {
		entry.Message += " O efeito terminou."
	}
	return entry
}

func multiplierNote(mult float64) string {
	switch {
	case mult > 1:
		return " (super efetivo)"
	case mult < 1:
		return " (pouco efetivo)"
	}
	return ""
}
