package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Roller is the random source used by combat and avatar generation.
// *rand.Rand satisfies it; tests inject fixed sequences.
type Roller interface {
	Intn(n int) int
}

// LockedRand is a Roller safe for concurrent use.
type LockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewLockedRand seeds a concurrency-safe Roller. A zero seed uses the clock.
func NewLockedRand(seed int64) *LockedRand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &LockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *LockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

const DefaultMaxEnergy = 100

// Snapshot builds the in-battle combatant from an avatar record.
func Snapshot(a *Avatar) *Combatant {
	abilities := make([]AbilityRef, len(a.Abilities))
	copy(abilities, a.Abilities)
	return &Combatant{
		AvatarID:  a.ID,
		OwnerID:   a.OwnerID,
		Name:      a.Name,
		Element:   a.Element,
		Rarity:    a.Rarity,
		HP:        a.HP,
		MaxHP:     a.MaxHP,
		Stats:     a.Stats,
		Energy:    DefaultMaxEnergy,
		MaxEnergy: DefaultMaxEnergy,
		Abilities: abilities,
		Effects:   []StatusEffect{},
		Bond:      a.Bond,
		Fatigue:   a.Fatigue,
		Cooldowns: map[string]int{},
	}
}

type statRange struct{ min, max int }

var rarityStats = map[Rarity]statRange{
	RarityCommon:    {min: 8, max: 16},
	RarityRare:      {min: 14, max: 24},
	RarityLegendary: {min: 22, max: 34},
}

var rarityHP = map[Rarity]int{
	RarityCommon:    100,
	RarityRare:      130,
	RarityLegendary: 170,
}

var namePrefixes = map[Element]string{
	ElementFire:        "Ignis",
	ElementWater:       "Maris",
	ElementEarth:       "Terran",
	ElementWind:        "Zephyr",
	ElementElectricity: "Volt",
	ElementLight:       "Lumen",
	ElementShadow:      "Umbra",
	ElementVoid:        "Nihil",
	ElementAether:      "Aeris",
}

// GenerateAvatar rolls a fresh avatar of the given rarity. The element is
// random when el is empty. abilities receives the element and returns the
// starter ability set for it.
func GenerateAvatar(rng Roller, id, ownerID string, rarity Rarity, el Element, abilities func(Element) []AbilityRef) *Avatar {
	if el == "" {
		el = Elements[rng.Intn(len(Elements))]
	}
	rs, ok := rarityStats[rarity]
	if !ok {
		rarity = RarityCommon
		rs = rarityStats[RarityCommon]
	}
	roll := func() int { return rs.min + rng.Intn(rs.max-rs.min+1) }
	hp := rarityHP[rarity]
	var refs []AbilityRef
	if abilities != nil {
		refs = abilities(el)
	}
	return &Avatar{
		ID:      id,
		OwnerID: ownerID,
		Name:    fmt.Sprintf("%s %03d", namePrefixes[el], rng.Intn(1000)),
		Element: el,
		Rarity:  rarity,
		HP:      hp,
		MaxHP:   hp,
		Stats: Stats{
			Strength:   roll(),
			Agility:    roll(),
			Resistance: roll(),
			Focus:      roll(),
		},
		Abilities: refs,
		Bond:      50,
		Fatigue:   0,
		Alive:     true,
	}
}
