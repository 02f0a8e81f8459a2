package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lyonms2/avatar-arena/internal/constants"
	"github.com/lyonms2/avatar-arena/internal/engine"
	"github.com/lyonms2/avatar-arena/internal/logging"
)

type actionRequest struct {
	RoomID    string `json:"roomId" binding:"required"`
	UserID    string `json:"userId"`
	Action    string `json:"action" binding:"required"`
	AbilityID string `json:"abilityId"`
}

type betRequest struct {
	RoomID    string `json:"roomId" binding:"required"`
	UserID    string `json:"userId"`
	BetAmount *int   `json:"betAmount" binding:"required"`
}

type roomRequest struct {
	RoomID string `json:"roomId" binding:"required"`
	UserID string `json:"userId"`
}

// SubmitAction applies one combat command (ready, attack, defend, ability,
// surrender or abandon) for the caller.
func (h *GameHandler) SubmitAction(c *gin.Context) {
	var req actionRequest
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
	if kind == engine.ActionAbandon {
		h.abandon(c, req.RoomID, userID)
		return
	}
	room, err := h.battles.Act(c.Request.Context(), req.RoomID, userID, engine.Action{Kind: kind, AbilityID: req.AbilityID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// SetBet records the caller's wager for a room.
func (h *GameHandler) SetBet(c *gin.Context) {
	var req betRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	userID, ok := actingUser(c, req.UserID)
	if !ok {
		return
	}
	room, err := h.battles.SetBet(c.Request.Context(), req.RoomID, userID, *req.BetAmount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// Surrender concedes an active battle. The room stays readable.
func (h *GameHandler) Surrender(c *gin.Context) {
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	userID, ok := actingUser(c, req.UserID)
	if !ok {
		return
	}
	room, err := h.battles.Surrender(c.Request.Context(), req.RoomID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// Abandon leaves a room for good; the room is deleted once settled.
func (h *GameHandler) Abandon(c *gin.Context) {
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	userID, ok := actingUser(c, req.UserID)
	if !ok {
		return
	}
	h.abandon(c, req.RoomID, userID)
}

func (h *GameHandler) abandon(c *gin.Context, roomID, userID string) {
	room, err := h.battles.Abandon(c.Request.Context(), roomID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	logging.Info("room abandoned", logging.Fields{
		constants.LogFieldRoomID: roomID,
		constants.LogFieldUserID: userID,
	})
	c.JSON(http.StatusOK, gin.H{
		"roomId":  room.ID,
		"deleted": true,
		"winner":  room.UserID(room.Winner),
	})
}
