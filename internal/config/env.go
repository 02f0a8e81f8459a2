package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Env is the process configuration read from ARENA_* variables.
type Env struct {
	Addr          string        `env:"ARENA_ADDR" envDefault:":8080"`
	DBPath        string        `env:"ARENA_DB" envDefault:"./data/arena.db"`
	BalanceFile   string        `env:"ARENA_BALANCE_FILE" envDefault:"./arena_balance.yaml"`
	JWTSecret     string        `env:"ARENA_JWT_SECRET"`
	CronSecret    string        `env:"ARENA_CRON_SECRET"`
	Debug         bool          `env:"ARENA_DEBUG" envDefault:"false"`
	RoomRetention time.Duration `env:"ARENA_ROOM_RETENTION" envDefault:"24h"`
	TrainingTTL   time.Duration `env:"ARENA_TRAINING_TTL" envDefault:"30m"`
	SweepInterval time.Duration `env:"ARENA_SWEEP_INTERVAL" envDefault:"10m"`
	OTLPEndpoint  string        `env:"ARENA_OTLP_ENDPOINT"`
	RandomSeed    int64         `env:"ARENA_RNG_SEED" envDefault:"0"`
}

// LoadEnv parses the environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	if e.RoomRetention <= 0 {
		return Env{}, fmt.Errorf("ARENA_ROOM_RETENTION must be positive")
	}
	if e.TrainingTTL <= 0 {
		return Env{}, fmt.Errorf("ARENA_TRAINING_TTL must be positive")
	}
	if e.SweepInterval <= 0 {
		return Env{}, fmt.Errorf("ARENA_SWEEP_INTERVAL must be positive")
	}
	return e, nil
}
