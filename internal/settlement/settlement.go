package settlement

import (
	"github.com/lyonms2/avatar-arena/internal/game"
)

// Rules holds the economy constants. Abandon and win values are fixed and do
// not scale with the wager.
type Rules struct {
	BetMinPerLevel       int `yaml:"bet_min_per_level"`
	BetMaxPerLevel       int `yaml:"bet_max_per_level"`
	BetMaxBalanceDivisor int `yaml:"bet_max_balance_divisor"`

	AbandonBondLoss    int `yaml:"abandon_bond_loss"`
	AbandonFatigueGain int `yaml:"abandon_fatigue_gain"`
	AbandonFameLoss    int `yaml:"abandon_fame_loss"`

	WinFame     int `yaml:"win_fame"`
	WinBond     int `yaml:"win_bond"`
	WinFatigue  int `yaml:"win_fatigue"`
	WinRankXP   int `yaml:"win_rank_xp"`
	LossFame    int `yaml:"loss_fame"`
	LossFatigue int `yaml:"loss_fatigue"`
	LossRankXP  int `yaml:"loss_rank_xp"`
}

// DefaultRules returns the standard economy.
func DefaultRules() Rules {
	return Rules{
		BetMinPerLevel:       2,
		BetMaxPerLevel:       50,
		BetMaxBalanceDivisor: 2,
		AbandonBondLoss:      20,
		AbandonFatigueGain:   30,
		AbandonFameLoss:      50,
		WinFame:              25,
		WinBond:              5,
		WinFatigue:           10,
		WinRankXP:            20,
		LossFame:             10,
		LossFatigue:          15,
		LossRankXP:           5,
	}
}

// Penalty is applied to the side that leaves a battle early.
type Penalty struct {
	BondLoss    int  `json:"vinculo"`
	FatigueGain int  `json:"exaustao"`
	FameLoss    int  `json:"fama"`
	ForfeitBet  bool `json:"apostaPerdida"`
}

// AbandonPenalty is the full penalty, including the forfeited wager.
func AbandonPenalty(r Rules) Penalty {
	return Penalty{
		BondLoss:    r.AbandonBondLoss,
		FatigueGain: r.AbandonFatigueGain,
		FameLoss:    r.AbandonFameLoss,
		ForfeitBet:  true,
	}
}

// SurrenderPenalty is half of the abandon penalty, floored, with no coins
// at stake.
func SurrenderPenalty(r Rules) Penalty {
	a := AbandonPenalty(r)
	return Penalty{
		BondLoss:    a.BondLoss / 2,
		FatigueGain: a.FatigueGain / 2,
		FameLoss:    a.FameLoss / 2,
	}
}

// PlayerDelta changes one player's balances.
type PlayerDelta struct {
	UserID string
	Fame   int
	RankXP int
}

// Transfer moves coins between players, bounded by the payer's balance.
type Transfer struct {
	From   string
	To     string
	Amount int
}

// AvatarCommit writes a combatant back to its avatar record.
type AvatarCommit struct {
	AvatarID     string
	OwnerID      string
	HP           int
	BondDelta    int
	FatigueDelta int
}

// Settlement is everything that must be written, atomically, when a room
// finishes.
type Settlement struct {
	RoomID    string
	Reason    game.FinishReason
	Winner    game.Role
	Players   []PlayerDelta
	Transfers []Transfer
	Avatars   []AvatarCommit
}

// Settle computes the settlement of a finished room.
func Settle(r Rules, room *game.Room) Settlement {
	s := Settlement{RoomID: room.ID, Reason: room.FinishReason, Winner: room.Winner}
	winner := room.Winner
	loser := winner.Opponent()
	if winner == game.RoleNone {
		// abandoned with nobody on the other side
		loser = room.RoleOf(abandonerID(room))
	}

	if winner != game.RoleNone {
		s.Players = append(s.Players, PlayerDelta{UserID: room.UserID(winner), Fame: r.WinFame, RankXP: r.WinRankXP})
		if c := room.Combatant(winner); c != nil {
			s.Avatars = append(s.Avatars, AvatarCommit{
				AvatarID: c.AvatarID, OwnerID: c.OwnerID, HP: c.HP,
				BondDelta: r.WinBond, FatigueDelta: r.WinFatigue,
			})
		}
	}
	if loser == game.RoleNone {
		return s
	}

	loserID := room.UserID(loser)
	lc := room.Combatant(loser)
	switch room.FinishReason {
	case game.FinishVictory:
		s.Players = append(s.Players, PlayerDelta{UserID: loserID, Fame: -r.LossFame, RankXP: r.LossRankXP})
		if lc != nil {
			s.Avatars = append(s.Avatars, AvatarCommit{
				AvatarID: lc.AvatarID, OwnerID: lc.OwnerID, HP: lc.HP, FatigueDelta: r.LossFatigue,
			})
		}
		if bet := room.Bet(loser); bet > 0 && winner != game.RoleNone {
			s.Transfers = append(s.Transfers, Transfer{From: loserID, To: room.UserID(winner), Amount: bet})
		}
	case game.FinishSurrender, game.FinishAbandon:
		p := SurrenderPenalty(r)
		if room.FinishReason == game.FinishAbandon {
			p = AbandonPenalty(r)
		}
		s.Players = append(s.Players, PlayerDelta{UserID: loserID, Fame: -p.FameLoss})
		if lc != nil {
			hp := lc.HP
			if room.FinishReason == game.FinishAbandon {
				hp = 0
			}
			s.Avatars = append(s.Avatars, AvatarCommit{
				AvatarID: lc.AvatarID, OwnerID: lc.OwnerID, HP: hp,
				BondDelta: -p.BondLoss, FatigueDelta: p.FatigueGain,
			})
		}
		if bet := room.Bet(loser); p.ForfeitBet && bet > 0 && winner != game.RoleNone {
			s.Transfers = append(s.Transfers, Transfer{From: loserID, To: room.UserID(winner), Amount: bet})
		}
	}
	return s
}

// abandonerID finds who abandoned a room that has no winner: the side whose
// combatant was zeroed, defaulting to the host.
func abandonerID(room *game.Room) string {
	if room.Guest != nil && room.Guest.HP == 0 {
		return room.GuestUserID
	}
	return room.HostUserID
}
