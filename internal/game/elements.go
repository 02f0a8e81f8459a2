package game

type Element string

const (
	ElementFire        Element = "Fogo"
	ElementWater       Element = "Agua"
	ElementEarth       Element = "Terra"
	ElementWind        Element = "Vento"
	ElementElectricity Element = "Eletricidade"
	ElementLight       Element = "Luz"
	ElementShadow      Element = "Sombra"
	ElementVoid        Element = "Void"
	ElementAether      Element = "Aether"
)

// Elements lists every element in table order.
var Elements = []Element{
	ElementFire, ElementWater, ElementEarth, ElementWind, ElementElectricity,
	ElementLight, ElementShadow, ElementVoid, ElementAether,
}

const (
	MultiplierNeutral  = 1.0
	MultiplierStrong   = 1.5
	MultiplierWeak     = 0.75
	MultiplierOpposite = 2.0
)

// advantages maps attacker -> defender for non-neutral pairs. The five
// classic elements form a cycle (each beats the next); Luz/Sombra and
// Void/Aether are mutual.
var advantages = map[Element]map[Element]float64{
	ElementFire:        {ElementWind: MultiplierStrong, ElementWater: MultiplierWeak},
	ElementWind:        {ElementEarth: MultiplierStrong, ElementFire: MultiplierWeak},
	ElementEarth:       {ElementElectricity: MultiplierStrong, ElementWind: MultiplierWeak},
	ElementElectricity: {ElementWater: MultiplierStrong, ElementEarth: MultiplierWeak},
	ElementWater:       {ElementFire: MultiplierStrong, ElementElectricity: MultiplierWeak},
	ElementLight:       {ElementShadow: MultiplierStrong},
	ElementShadow:      {ElementLight: MultiplierStrong},
	ElementVoid:        {ElementAether: MultiplierOpposite},
	ElementAether:      {ElementVoid: MultiplierOpposite},
}

// Multiplier returns the damage multiplier for an attacker element hitting a
// defender element. Unknown elements are neutral.
func Multiplier(attacker, defender Element) float64 {
	if row, ok := advantages[attacker]; ok {
		if m, ok := row[defender]; ok {
			return m
		}
	}
	return MultiplierNeutral
}

// Valid reports whether e is one of the known elements.
func (e Element) Valid() bool {
	for _, x := range Elements {
		if x == e {
			return true
		}
	}
	return false
}
