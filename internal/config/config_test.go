package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyonms2/avatar-arena/internal/abilities"
	"github.com/lyonms2/avatar-arena/internal/engine"
	"github.com/lyonms2/avatar-arena/internal/settlement"
)

func TestLoadBalance_MissingFileUsesDefaults(t *testing.T) {
	b, err := LoadBalance(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, b.Source)
	assert.Equal(t, abilities.DefaultVersion, b.Registry.Version())
	assert.Equal(t, engine.DefaultRules(), b.Combat)
	assert.Equal(t, settlement.DefaultRules(), b.Economy)
	assert.Equal(t, settlement.DefaultRanks, b.Ranks)
}

func TestLoadBalance_SampleMatchesBuiltins(t *testing.T) {
	b, err := LoadBalance("../../arena_balance.yaml")
	require.NoError(t, err)
	assert.Equal(t, "arena-2024.1", b.Registry.Version())
	assert.Equal(t, abilities.Default().All(), b.Registry.All())
	assert.Equal(t, engine.DefaultRules(), b.Combat)
	assert.Equal(t, settlement.DefaultRules(), b.Economy)
	assert.Equal(t, settlement.DefaultRanks, b.Ranks)
}

func TestParseBalance_PartialOverrides(t *testing.T) {
	b, err := ParseBalance("t.yaml", []byte(`
combat:
  defend_mitigation: 0.4
economy:
  abandon_fame_loss: 80
hunter_ranks:
  - { tier: Pro, min_xp: 50, bonus_moedas: 0.5 }
  - { tier: Novato, min_xp: 0 }
`))
	require.NoError(t, err)
	assert.Equal(t, "t.yaml", b.Source)
	assert.Equal(t, abilities.DefaultVersion, b.Registry.Version())
	assert.Equal(t, 0.4, b.Combat.DefendMitigation)
	assert.Equal(t, 10, b.Combat.EnergyRegen)
	assert.Equal(t, 80, b.Economy.AbandonFameLoss)
	assert.Equal(t, 20, b.Economy.AbandonBondLoss)
	require.Len(t, b.Ranks, 2)
	assert.Equal(t, "Novato", b.Ranks[0].Tier)
}

func TestParseBalance_CustomAbilities(t *testing.T) {
	b, err := ParseBalance("t.yaml", []byte(`
version: custom-7
abilities:
  - { id: soco, name: Soco, kind: damage, base_damage: 5 }
`))
	require.NoError(t, err)
	assert.Equal(t, "custom-7", b.Registry.Version())
	require.Len(t, b.Registry.All(), 1)
	_, ok := b.Registry.Get("chama_ardente")
	assert.False(t, ok)
}

func TestParseBalance_Errors(t *testing.T) {
	cases := map[string]string{
		"syntax":          "combat: [",
		"no version":      "abilities:\n  - { id: a, name: A, kind: damage }\n",
		"bad ability":     "version: v\nabilities:\n  - { id: a, name: A, kind: summon }\n",
		"mitigation zero": "combat: { defend_mitigation: 0 }",
		"negative regen":  "combat: { energy_regen: -1 }",
		"divisor":         "economy: { bet_max_balance_divisor: 0 }",
		"negative fame":   "economy: { abandon_fame_loss: -5 }",
		"rank floor":      "hunter_ranks:\n  - { tier: X, min_xp: 10 }\n",
		"rank dup":        "hunter_ranks:\n  - { tier: X, min_xp: 0 }\n  - { tier: X, min_xp: 5 }\n",
		"rank no tier":    "hunter_ranks:\n  - { min_xp: 0 }\n",
		"rank bonus":      "hunter_ranks:\n  - { tier: X, min_xp: 0, bonus_moedas: -1 }\n",
	}
	for name, doc := range cases {
		_, err := ParseBalance(name, []byte(doc))
		assert.Error(t, err, name)
	}
}

func TestLoadBalance_Unreadable(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadBalance(dir)
	assert.Error(t, err)

	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: [1"), 0o600))
	_, err = LoadBalance(path)
	assert.ErrorContains(t, err, path)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("ARENA_ADDR", ":9090")
	t.Setenv("ARENA_DEBUG", "true")
	t.Setenv("ARENA_TRAINING_TTL", "5m")
	t.Setenv("ARENA_RNG_SEED", "42")

	e, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", e.Addr)
	assert.True(t, e.Debug)
	assert.Equal(t, 5*time.Minute, e.TrainingTTL)
	assert.Equal(t, 24*time.Hour, e.RoomRetention)
	assert.Equal(t, int64(42), e.RandomSeed)
	assert.Empty(t, e.JWTSecret)
}

func TestLoadEnv_Invalid(t *testing.T) {
	for key, val := range map[string]string{
		"ARENA_ROOM_RETENTION": "0s",
		"ARENA_TRAINING_TTL":   "-1m",
		"ARENA_SWEEP_INTERVAL": "soon",
		"ARENA_DEBUG":          "maybe",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := LoadEnv()
			assert.Error(t, err)
		})
	}
}
