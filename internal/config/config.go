package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lyonms2/avatar-arena/internal/abilities"
	"github.com/lyonms2/avatar-arena/internal/engine"
	"github.com/lyonms2/avatar-arena/internal/settlement"
)

type rawBalance struct {
	Version   string                  `yaml:"version"`
	Abilities []abilities.Ability     `yaml:"abilities"`
	Combat    engine.Rules            `yaml:"combat"`
	Economy   settlement.Rules        `yaml:"economy"`
	Ranks     []settlement.HunterRank `yaml:"hunter_ranks"`
}

// Balance is the game tuning loaded from the balance file: the versioned
// ability registry plus combat and economy constants.
type Balance struct {
	Registry *abilities.Registry
	Combat   engine.Rules
	Economy  settlement.Rules
	Ranks    []settlement.HunterRank
	// Source is the file the balance came from, empty for built-in defaults.
	Source string
}

// DefaultBalance returns the built-in tuning.
func DefaultBalance() *Balance {
	ranks := make([]settlement.HunterRank, len(settlement.DefaultRanks))
	copy(ranks, settlement.DefaultRanks)
	return &Balance{
		Registry: abilities.Default(),
		Combat:   engine.DefaultRules(),
		Economy:  settlement.DefaultRules(),
		Ranks:    ranks,
	}
}

// LoadBalance reads the balance file at path. The file is YAML (JSON is
// accepted too); every section is optional and falls back to the built-in
// values key by key. A missing file yields the defaults.
func LoadBalance(path string) (*Balance, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultBalance(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read balance file %s: %w", path, err)
	}
	return ParseBalance(path, b)
}

// ParseBalance decodes and validates balance file contents. name is only
// used in error messages.
func ParseBalance(name string, data []byte) (*Balance, error) {
	rb := rawBalance{
		Combat:  engine.DefaultRules(),
		Economy: settlement.DefaultRules(),
	}
	if err := yaml.Unmarshal(data, &rb); err != nil {
		return nil, fmt.Errorf("failed to parse balance file %s: %w", name, err)
	}

	version := strings.TrimSpace(rb.Version)
	list := rb.Abilities
	if len(list) == 0 {
		list = abilities.Defaults()
		if version == "" {
			version = abilities.DefaultVersion
		}
	}
	if version == "" {
		return nil, fmt.Errorf("balance file %s: 'version' is required when abilities are listed", name)
	}
	reg, err := abilities.NewRegistry(version, list)
	if err != nil {
		return nil, fmt.Errorf("balance file %s: %w", name, err)
	}

	if err := validateCombat(rb.Combat); err != nil {
		return nil, fmt.Errorf("balance file %s: %w", name, err)
	}
	if err := validateEconomy(rb.Economy); err != nil {
		return nil, fmt.Errorf("balance file %s: %w", name, err)
	}

	ranks := rb.Ranks
	if len(ranks) == 0 {
		ranks = make([]settlement.HunterRank, len(settlement.DefaultRanks))
		copy(ranks, settlement.DefaultRanks)
	}
	sort.SliceStable(ranks, func(i, j int) bool { return ranks[i].MinXP < ranks[j].MinXP })
	if ranks[0].MinXP != 0 {
		return nil, fmt.Errorf("balance file %s: the lowest hunter rank must start at min_xp 0", name)
	}
	seen := make(map[string]struct{}, len(ranks))
	for _, r := range ranks {
		if r.Tier == "" {
			return nil, fmt.Errorf("balance file %s: hunter rank missing 'tier'", name)
		}
		if _, dup := seen[r.Tier]; dup {
			return nil, fmt.Errorf("balance file %s: duplicate hunter rank '%s'", name, r.Tier)
		}
		seen[r.Tier] = struct{}{}
		if r.BonusCoins < 0 || r.BonusFragments < 0 {
			return nil, fmt.Errorf("balance file %s: hunter rank '%s' has a negative bonus", name, r.Tier)
		}
	}

	return &Balance{
		Registry: reg,
		Combat:   rb.Combat,
		Economy:  rb.Economy,
		Ranks:    ranks,
		Source:   name,
	}, nil
}

func validateCombat(r engine.Rules) error {
	if r.DefendMitigation <= 0 || r.DefendMitigation > 1 {
		return fmt.Errorf("combat.defend_mitigation must be in (0,1], got %v", r.DefendMitigation)
	}
	if r.EnergyRegen < 0 || r.DefendEnergyBonus < 0 {
		return fmt.Errorf("combat energy values must not be negative")
	}
	return nil
}

func validateEconomy(r settlement.Rules) error {
	if r.BetMinPerLevel < 0 || r.BetMaxPerLevel < 0 || r.BetMaxBalanceDivisor < 1 {
		return fmt.Errorf("economy bet limits are invalid")
	}
	if r.AbandonBondLoss < 0 || r.AbandonFatigueGain < 0 || r.AbandonFameLoss < 0 {
		return fmt.Errorf("economy abandon penalties must not be negative")
	}
	return nil
}
