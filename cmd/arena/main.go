package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/lyonms2/avatar-arena/internal/api"
	"github.com/lyonms2/avatar-arena/internal/config"
	"github.com/lyonms2/avatar-arena/internal/constants"
	"github.com/lyonms2/avatar-arena/internal/engine"
	"github.com/lyonms2/avatar-arena/internal/game"
	"github.com/lyonms2/avatar-arena/internal/logging"
	"github.com/lyonms2/avatar-arena/internal/service"
	"github.com/lyonms2/avatar-arena/internal/telemetry"
	"github.com/lyonms2/avatar-arena/internal/training"
)

func main() {
	env := loadEnvOrExit()
	logging.Init(env.Debug)
	if !env.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := run(env); err != nil {
		logging.Error("Server stopped", err, nil)
		logging.Sync()
		os.Exit(1)
	}
	logging.Info("Server stopped", nil)
	logging.Sync()
}

func run(env config.Env) error {
	bal := loadBalanceOrExit(env.BalanceFile)
	repo := createRepositoryOrExit(env.DBPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, constants.ServiceName, env.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logging.Warn("tracing shutdown failed", logging.Fields{constants.LogFieldReason: err.Error()})
		}
	}()

	rng := game.NewLockedRand(seedOrNow(env.RandomSeed))
	eng := engine.New(bal.Registry, rng, bal.Combat, time.Now)

	battles := service.NewBattles(repo, eng, bal.Economy)
	rewards := service.NewRewards(repo, bal.Registry, bal.Ranks, rng, time.Now)
	sweeper := service.NewSweeper(repo, env.RoomRetention, time.Now)
	store := training.NewStore(env.TrainingTTL, training.WithDebug(env.Debug))
	trainer := service.NewTraining(battles, store, eng, bal.Registry, rng)

	handler := api.NewGameHandler(battles, rewards, sweeper, trainer, bal.Registry)
	router := api.NewRouter(handler, api.RouterConfig{JWTSecret: env.JWTSecret, CronSecret: env.CronSecret})

	logging.Info("Balance loaded", logging.Fields{
		"abilities_version": bal.Registry.Version(),
		"abilities":         len(bal.Registry.All()),
	})

	g, gctx := errgroup.WithContext(ctx)
	serve(gctx, g, env.Addr, router)
	startSweepers(gctx, g, sweeper, env.SweepInterval, trainer)
	return g.Wait()
}
