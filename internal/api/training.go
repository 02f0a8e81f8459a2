package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lyonms2/avatar-arena/internal/constants"
	"github.com/lyonms2/avatar-arena/internal/engine"
)

type startTrainingRequest struct {
	UserID   string `json:"userId"`
	AvatarID string `json:"avatarId" binding:"required"`
}

type trainingActionRequest struct {
	UserID    string `json:"userId"`
	Action    string `json:"action" binding:"required"`
	AbilityID string `json:"abilityId"`
}

// StartTraining begins a practice battle against the computer.
func (h *GameHandler) StartTraining(c *gin.Context) {
	var req startTrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	userID, ok := actingUser(c, req.UserID)
	if !ok {
		return
	}
	sess, err := h.training.Start(c.Request.Context(), userID, req.AvatarID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (h *GameHandler) GetTraining(c *gin.Context) {
	userID, ok := actingUser(c, c.Query(constants.QueryUserID))
	if !ok {
		return
	}
	sess, err := h.training.Get(c.Request.Context(), c.Param(constants.ParamSessionID), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// TrainingAction plays the caller's move; the computer answers in the same
// request.
func (h *GameHandler) TrainingAction(c *gin.Context) {
	var req trainingActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	userID, ok := actingUser(c, req.UserID)
	if !ok {
		return
	}
	kind, known := parseActionKind(req.Action)
	if !known {
		respondError(c, engine.ErrUnknownAction)
		return
	}
	sess, err := h.training.Act(c.Request.Context(), c.Param(constants.ParamSessionID), userID, engine.Action{Kind: kind, AbilityID: req.AbilityID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}
