package abilities

import "github.com/lyonms2/avatar-arena/internal/game"

// DefaultVersion tags the built-in table used when no balance file is given.
const DefaultVersion = "builtin-1"

func chance(p int) *int { return &p }

// Defaults returns the built-in ability table.
func Defaults() []Ability {
	return []Ability{
		{
			ID: "chama_ardente", Name: "Chama Ardente", Element: game.ElementFire, Kind: KindDamage,
			EnergyCost: 25, BaseDamage: 30, StatMultiplier: 0.8, PrimaryStat: game.StatStrength, Hits: 1, Cooldown: 2,
			Effect:  &EffectPayload{Kind: game.EffectBurn, Chance: 40, Duration: 3, Magnitude: 5, Target: TargetOpponent},
			Starter: true,
		},
		{
			ID: "jato_dagua", Name: "Jato d'Agua", Element: game.ElementWater, Kind: KindDamage,
			EnergyCost: 25, BaseDamage: 28, StatMultiplier: 0.9, PrimaryStat: game.StatFocus, Hits: 1, Cooldown: 2,
			Effect:  &EffectPayload{Kind: game.EffectWeaken, Chance: 30, Duration: 2, Magnitude: 20, Target: TargetOpponent},
			Starter: true,
		},
		{
			ID: "tremor", Name: "Tremor", Element: game.ElementEarth, Kind: KindDamage,
			EnergyCost: 30, BaseDamage: 32, StatMultiplier: 0.8, PrimaryStat: game.StatStrength, Hits: 1, Cooldown: 3,
			Effect:  &EffectPayload{Kind: game.EffectStun, Chance: 25, Duration: 1, Target: TargetOpponent},
			Starter: true,
		},
		{
			ID: "lamina_de_vento", Name: "Lamina de Vento", Element: game.ElementWind, Kind: KindDamage,
			EnergyCost: 30, BaseDamage: 12, StatMultiplier: 0.6, PrimaryStat: game.StatAgility, Hits: 3, Cooldown: 2,
			Starter: true,
		},
		{
			ID: "descarga", Name: "Descarga", Element: game.ElementElectricity, Kind: KindDamage,
			EnergyCost: 35, BaseDamage: 35, StatMultiplier: 0.9, PrimaryStat: game.StatFocus, Hits: 1, Cooldown: 3,
			Effect:  &EffectPayload{Kind: game.EffectStun, Chance: 30, Duration: 1, Target: TargetOpponent},
			Starter: true,
		},
		{
			ID: "raio_solar", Name: "Raio Solar", Element: game.ElementLight, Kind: KindDamage,
			EnergyCost: 30, BaseDamage: 30, StatMultiplier: 0.8, PrimaryStat: game.StatFocus, Hits: 1, Cooldown: 2,
			HitChance: chance(100),
			Starter:   true,
		},
		{
			ID: "garra_sombria", Name: "Garra Sombria", Element: game.ElementShadow, Kind: KindDamage,
			EnergyCost: 30, BaseDamage: 34, StatMultiplier: 0.8, PrimaryStat: game.StatStrength, Hits: 1, Cooldown: 2,
			Effect:  &EffectPayload{Kind: game.EffectWeaken, Chance: 40, Duration: 2, Magnitude: 25, Target: TargetOpponent},
			Starter: true,
		},
		{
			ID: "colapso", Name: "Colapso", Element: game.ElementVoid, Kind: KindDamage,
			EnergyCost: 40, BaseDamage: 40, StatMultiplier: 1.0, PrimaryStat: game.StatFocus, Hits: 1, Cooldown: 3,
			HitChance: chance(75),
			Starter:   true,
		},
		{
			ID: "pulso_etereo", Name: "Pulso Etereo", Element: game.ElementAether, Kind: KindDamage,
			EnergyCost: 30, BaseDamage: 26, StatMultiplier: 0.8, PrimaryStat: game.StatFocus, Hits: 1, Cooldown: 2,
			Effect:  &EffectPayload{Kind: game.EffectRegen, Chance: 100, Duration: 3, Magnitude: 6, Target: TargetSelf},
			Starter: true,
		},
		{
			ID: "cura_vital", Name: "Cura Vital", Kind: KindHeal,
			EnergyCost: 30, BaseDamage: 25, StatMultiplier: 1.0, PrimaryStat: game.StatFocus, Cooldown: 3,
			Starter: true,
		},
		{
			ID: "barreira", Name: "Barreira", Kind: KindBuff,
			EnergyCost: 25, Cooldown: 4,
			Effect:  &EffectPayload{Kind: game.EffectShield, Chance: 100, Duration: 3, Magnitude: 30, Target: TargetSelf},
			Starter: true,
		},
		{
			ID: "toxina", Name: "Toxina", Kind: KindDebuff,
			EnergyCost: 20, PrimaryStat: game.StatFocus, Cooldown: 3,
			Effect: &EffectPayload{Kind: game.EffectBurn, Chance: 100, Duration: 3, Magnitude: 6, Target: TargetOpponent},
		},
		{
			ID: "golpe_duplo", Name: "Golpe Duplo", Kind: KindDamage,
			EnergyCost: 20, BaseDamage: 14, StatMultiplier: 0.5, PrimaryStat: game.StatStrength, Hits: 2, Cooldown: 1,
		},
	}
}

// Default builds the registry from the built-in table.
func Default() *Registry {
	r, err := NewRegistry(DefaultVersion, Defaults())
	if err != nil {
		panic(err)
	}
	return r
}
