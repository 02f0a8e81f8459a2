package abilities

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lyonms2/avatar-arena/internal/game"
	"github.com/lyonms2/avatar-arena/internal/keys"
)

type Kind string

const (
	KindDamage Kind = "damage"
	KindHeal   Kind = "heal"
	KindBuff   Kind = "buff"
	KindDebuff Kind = "debuff"
)

type Target string

const (
	TargetSelf     Target = "self"
	TargetOpponent Target = "opponent"
)

// EffectPayload is the status effect an ability may leave behind.
// Chance is a percentage rolled after a successful hit.
type EffectPayload struct {
	Kind      game.EffectKind `json:"kind" yaml:"kind"`
	Chance    int             `json:"chance" yaml:"chance"`
	Duration  int             `json:"duration" yaml:"duration"`
	Magnitude int             `json:"magnitude" yaml:"magnitude"`
	Target    Target          `json:"target" yaml:"target"`
}

// Ability holds the canonical balance numbers for one ability.
type Ability struct {
	ID             string         `json:"id" yaml:"id"`
	Name           string         `json:"name" yaml:"name"`
	Description    string         `json:"description,omitempty" yaml:"description"`
	Element        game.Element   `json:"element,omitempty" yaml:"element"`
	Kind           Kind           `json:"kind" yaml:"kind"`
	EnergyCost     int            `json:"energyCost" yaml:"energy_cost"`
	BaseDamage     int            `json:"baseDamage" yaml:"base_damage"`
	StatMultiplier float64        `json:"statMultiplier" yaml:"stat_multiplier"`
	PrimaryStat    game.StatKey   `json:"primaryStat" yaml:"primary_stat"`
	Hits           int            `json:"hits" yaml:"hits"`
	HitChance      *int           `json:"hitChance,omitempty" yaml:"hit_chance"`
	Effect         *EffectPayload `json:"effect,omitempty" yaml:"effect"`
	Cooldown       int            `json:"cooldown" yaml:"cooldown"`
	Starter        bool           `json:"starter,omitempty" yaml:"starter"`
}

// NumHits returns the hit count, at least one.
func (a Ability) NumHits() int {
	if a.Hits < 1 {
		return 1
	}
	return a.Hits
}

// Offensive reports whether the ability targets the opponent and so needs a
// hit roll.
func (a Ability) Offensive() bool {
	return a.Kind == KindDamage || a.Kind == KindDebuff
}

// Ref returns the reference stored on combatants.
func (a Ability) Ref() game.AbilityRef {
	return game.AbilityRef{ID: a.ID, Name: a.Name}
}

// Registry is the versioned, read-only ability table.
type Registry struct {
	version string
	byID    map[string]Ability
	byKey   map[string]string
	order   []string
}

// NewRegistry validates list and indexes it by id and by canonical name key.
func NewRegistry(version string, list []Ability) (*Registry, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("ability registry %q is empty", version)
	}
	r := &Registry{
		version: version,
		byID:    make(map[string]Ability, len(list)),
		byKey:   make(map[string]string, len(list)),
		order:   make([]string, 0, len(list)),
	}
	for _, a := range list {
		a.ID = strings.TrimSpace(a.ID)
		if a.ID == "" {
			return nil, fmt.Errorf("ability %q missing id", a.Name)
		}
		if _, dup := r.byID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate ability id %q", a.ID)
		}
		if err := validate(&a); err != nil {
			return nil, fmt.Errorf("ability %q: %w", a.ID, err)
		}
		key := keys.AbilityKey(a.Name)
		if other, dup := r.byKey[key]; dup {
			return nil, fmt.Errorf("abilities %q and %q share the name key %q", other, a.ID, key)
		}
		r.byID[a.ID] = a
		r.byKey[key] = a.ID
		r.order = append(r.order, a.ID)
	}
	return r, nil
}

func validate(a *Ability) error {
	switch a.Kind {
	case KindDamage, KindHeal, KindBuff, KindDebuff:
	default:
		return fmt.Errorf("unknown kind %q", a.Kind)
	}
	if a.Name == "" {
		return fmt.Errorf("missing name")
	}
	if a.EnergyCost < 0 || a.BaseDamage < 0 || a.Cooldown < 0 || a.StatMultiplier < 0 {
		return fmt.Errorf("negative balance value")
	}
	if a.PrimaryStat == "" {
		a.PrimaryStat = game.StatStrength
	}
	if a.HitChance != nil && (*a.HitChance < 0 || *a.HitChance > 100) {
		return fmt.Errorf("hit_chance %d out of [0,100]", *a.HitChance)
	}
	if a.Element != "" && !a.Element.Valid() {
		return fmt.Errorf("unknown element %q", a.Element)
	}
	if e := a.Effect; e != nil {
		switch e.Kind {
		case game.EffectBurn, game.EffectRegen, game.EffectStun, game.EffectShield, game.EffectWeaken:
		default:
			return fmt.Errorf("unknown effect kind %q", e.Kind)
		}
		if e.Duration <= 0 {
			return fmt.Errorf("effect duration must be positive")
		}
		if e.Chance <= 0 || e.Chance > 100 {
			e.Chance = 100
		}
		if e.Target == "" {
			e.Target = TargetOpponent
			if a.Kind == KindBuff || a.Kind == KindHeal {
				e.Target = TargetSelf
			}
		}
	}
	if (a.Kind == KindBuff || a.Kind == KindDebuff) && a.Effect == nil {
		return fmt.Errorf("%s ability needs an effect", a.Kind)
	}
	return nil
}

// Version identifies the balance table the registry was built from.
func (r *Registry) Version() string { return r.version }

// Get returns the ability with id.
func (r *Registry) Get(id string) (Ability, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// Resolve looks up a combatant's reference by id, falling back to the
// canonical name key for records written before ids existed.
func (r *Registry) Resolve(ref game.AbilityRef) (Ability, bool) {
	if a, ok := r.byID[ref.ID]; ok {
		return a, true
	}
	if id, ok := r.byKey[keys.AbilityKey(ref.Name)]; ok {
		return r.byID[id], true
	}
	if id, ok := r.byKey[keys.AbilityKey(ref.ID)]; ok {
		return r.byID[id], true
	}
	return Ability{}, false
}

// All returns the abilities in declaration order.
func (r *Registry) All() []Ability {
	out := make([]Ability, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// StarterSet returns the references a freshly minted avatar of element el
// receives: the starter abilities of its element plus the generic ones.
func (r *Registry) StarterSet(el game.Element) []game.AbilityRef {
	var refs []game.AbilityRef
	for _, id := range r.order {
		a := r.byID[id]
		if !a.Starter {
			continue
		}
		if a.Element == "" || a.Element == el {
			refs = append(refs, a.Ref())
		}
	}
	sort.SliceStable(refs, func(i, j int) bool {
		ei := r.byID[refs[i].ID].Element != ""
		ej := r.byID[refs[j].ID].Element != ""
		return ei && !ej
	})
	return refs
}
