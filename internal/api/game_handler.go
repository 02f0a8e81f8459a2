package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lyonms2/avatar-arena/internal/abilities"
	"github.com/lyonms2/avatar-arena/internal/constants"
	"github.com/lyonms2/avatar-arena/internal/logging"
	"github.com/lyonms2/avatar-arena/internal/service"
)

// GameHandler groups all game-related HTTP handlers.
type GameHandler struct {
	battles  *service.Battles
	rewards  *service.Rewards
	sweeper  *service.Sweeper
	training *service.Training
	registry *abilities.Registry
}

// NewGameHandler creates a GameHandler over the services.
func NewGameHandler(battles *service.Battles, rewards *service.Rewards, sweeper *service.Sweeper, training *service.Training, registry *abilities.Registry) *GameHandler {
	return &GameHandler{battles: battles, rewards: rewards, sweeper: sweeper, training: training, registry: registry}
}

// RouterConfig carries the secrets the middleware checks.
type RouterConfig struct {
	JWTSecret  string
	CronSecret string
}

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(h *GameHandler, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET(constants.RouteVersion, Version)
	router.GET(constants.RouteHealth, Health)

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		apiRoutes.GET(constants.RouteAbilities, h.ListAbilities)

		maintenance := apiRoutes.Group("")
		maintenance.Use(CronRequired(cfg.CronSecret))
		maintenance.POST(constants.RouteCleanupRooms, h.CleanupRooms)

		protected := apiRoutes.Group("")
		protected.Use(Identity(cfg.JWTSecret))

		protected.POST(constants.RouteRooms, h.CreateRoom)
		protected.GET(constants.RouteRoomByID, h.GetRoom)
		protected.POST(constants.RouteRoomJoin, h.JoinRoom)
		protected.POST(constants.RouteBattleAction, h.SubmitAction)
		protected.POST(constants.RouteBattleSetBet, h.SetBet)
		protected.POST(constants.RouteBattleSurrender, h.Surrender)
		protected.POST(constants.RouteBattleAbandon, h.Abandon)
		protected.GET(constants.RouteBetLimits, h.BetLimits)
		protected.POST(constants.RouteCollectReward, h.CollectReward)

		protected.POST(constants.RouteTraining, h.StartTraining)
		protected.GET(constants.RouteTrainingByID, h.GetTraining)
		protected.POST(constants.RouteTrainingAction, h.TrainingAction)
	}
	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.Debug("request", logging.Fields{
			"method":               c.Request.Method,
			constants.LogFieldPath: c.FullPath(),
			"status":               c.Writer.Status(),
			"latency_ms":           time.Since(start).Milliseconds(),
		})
	}
}
