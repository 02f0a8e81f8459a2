package settlement

import (
	"math"

	"github.com/lyonms2/avatar-arena/internal/game"
)

// HunterRank is a tier of the season ladder with its reward bonuses.
type HunterRank struct {
	Tier           string  `json:"tier" yaml:"tier"`
	MinXP          int     `json:"minXp" yaml:"min_xp"`
	BonusCoins     float64 `json:"bonusMoedas" yaml:"bonus_moedas"`
	BonusFragments float64 `json:"bonusFragmentos" yaml:"bonus_fragmentos"`
}

// DefaultRanks is ordered by MinXP ascending.
var DefaultRanks = []HunterRank{
	{Tier: "F", MinXP: 0},
	{Tier: "E", MinXP: 100, BonusCoins: 0.05, BonusFragments: 0.05},
	{Tier: "D", MinXP: 300, BonusCoins: 0.10, BonusFragments: 0.05},
	{Tier: "C", MinXP: 700, BonusCoins: 0.15, BonusFragments: 0.10},
	{Tier: "B", MinXP: 1500, BonusCoins: 0.20, BonusFragments: 0.15},
	{Tier: "A", MinXP: 3000, BonusCoins: 0.30, BonusFragments: 0.20},
	{Tier: "S", MinXP: 6000, BonusCoins: 0.50, BonusFragments: 0.30},
}

// RankFor returns the highest tier whose MinXP is reached. ranks must be
// sorted ascending; an empty table yields the zero rank.
func RankFor(ranks []HunterRank, xp int) HunterRank {
	var out HunterRank
	for _, r := range ranks {
		if xp < r.MinXP {
			break
		}
		out = r
	}
	return out
}

// Payout is what a reward collection credits.
type Payout struct {
	Rank           string `json:"rank"`
	BaseCoins      int    `json:"moedasBase"`
	BonusCoins     int    `json:"moedasBonus"`
	Coins          int    `json:"moedas"`
	BaseFragments  int    `json:"fragmentosBase"`
	BonusFragments int    `json:"fragmentosBonus"`
	Fragments      int    `json:"fragmentos"`
}

// CollectPayout applies the rank bonus to a pending reward: total is base
// plus floor(base * bonus) for coins and fragments independently.
func CollectPayout(reward game.PendingReward, rank HunterRank) Payout {
	bc := int(math.Floor(float64(reward.Coins) * rank.BonusCoins))
	bf := int(math.Floor(float64(reward.Fragments) * rank.BonusFragments))
	return Payout{
		Rank:           rank.Tier,
		BaseCoins:      reward.Coins,
		BonusCoins:     bc,
		Coins:          reward.Coins + bc,
		BaseFragments:  reward.Fragments,
		BonusFragments: bf,
		Fragments:      reward.Fragments + bf,
	}
}
