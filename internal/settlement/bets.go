package settlement

import (
	"errors"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/lyonms2/avatar-arena/internal/constants"
)

var (
	ErrNegativeBet   = errors.New("bet must not be negative")
	ErrBetsDisabled  = errors.New("bets are disabled for this player")
	ErrBetOutOfRange = errors.New("bet out of range")
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// BetLimits is the allowed wager range for one player.
type BetLimits struct {
	Minimum int `json:"minimum"`
	Maximum int `json:"maximum"`
}

// Enabled reports whether any positive bet is possible.
func (l BetLimits) Enabled() bool { return l.Maximum >= l.Minimum && l.Maximum > 0 }

// Limits derives the wager range from level and balance:
// min = level*BetMinPerLevel, max = min(coins/BetMaxBalanceDivisor, level*BetMaxPerLevel).
func Limits(r Rules, level, coins int) BetLimits {
	if level < 1 {
		level = 1
	}
	if coins < 0 {
		coins = 0
	}
	divisor := r.BetMaxBalanceDivisor
	if divisor < 1 {
		divisor = 1
	}
	maxByBalance := coins / divisor
	maxByLevel := level * r.BetMaxPerLevel
	max := maxByLevel
	if maxByBalance < max {
		max = maxByBalance
	}
	return BetLimits{Minimum: level * r.BetMinPerLevel, Maximum: max}
}

// BetBoundError reports a wager outside the allowed range. Its message is
// shown to the player as-is.
type BetBoundError struct {
	Minimum bool
	Limit   int
}

func (e *BetBoundError) Error() string {
	if e.Minimum {
		return printer.Sprintf(constants.MsgBetMinimumFmt, e.Limit)
	}
	return printer.Sprintf(constants.MsgBetMaximumFmt, e.Limit)
}

func (e *BetBoundError) Unwrap() error { return ErrBetOutOfRange }

// ValidateBet checks amount against the player's limits. Zero clears a bet
// and is always accepted.
func ValidateBet(r Rules, amount, level, coins int) error {
	if amount < 0 {
		return ErrNegativeBet
	}
	if amount == 0 {
		return nil
	}
	lim := Limits(r, level, coins)
	if !lim.Enabled() {
		return ErrBetsDisabled
	}
	if amount < lim.Minimum {
		return &BetBoundError{Minimum: true, Limit: lim.Minimum}
	}
	if amount > lim.Maximum {
		return &BetBoundError{Limit: lim.Maximum}
	}
	return nil
}
