package main

import (
	"time"

	"github.com/lyonms2/avatar-arena/internal/config"
	"github.com/lyonms2/avatar-arena/internal/logging"
	"github.com/lyonms2/avatar-arena/internal/storage"
)

func loadEnvOrExit() config.Env {
	env, err := config.LoadEnv()
	if err != nil {
		logging.Fatal("Invalid environment", err, nil)
	}
	return env
}

func loadBalanceOrExit(path string) *config.Balance {
	bal, err := config.LoadBalance(path)
	if err != nil {
		logging.Fatal("Missing or invalid balance file", err, logging.Fields{"balance_path": path})
	}
	if bal.Source == "" {
		logging.Info("Balance file not found, using built-in tuning", logging.Fields{"balance_path": path})
	}
	return bal
}

func createRepositoryOrExit(dbPath string) storage.Repository {
	db, err := storage.OpenAndMigrate(dbPath)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, logging.Fields{"db_path": dbPath})
	}
	return storage.NewSQLiteRepository(db, time.Now)
}

func seedOrNow(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}
