package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lyonms2/avatar-arena/internal/constants"
)

type createRoomRequest struct {
	UserID   string `json:"userId"`
	AvatarID string `json:"avatarId" binding:"required"`
}

type joinRoomRequest struct {
	UserID   string `json:"userId"`
	AvatarID string `json:"avatarId" binding:"required"`
}

type collectRequest struct {
	UserID   string `json:"userId"`
	RewardID string `json:"rewardId" binding:"required"`
}

// CreateRoom opens a waiting room hosted by the caller.
func (h *GameHandler) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	userID, ok := actingUser(c, req.UserID)
	if !ok {
		return
	}
	room, err := h.battles.Create(c.Request.Context(), userID, req.AvatarID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

// JoinRoom seats the caller as guest.
func (h *GameHandler) JoinRoom(c *gin.Context) {
	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	userID, ok := actingUser(c, req.UserID)
	if !ok {
		return
	}
	room, err := h.battles.Join(c.Request.Context(), c.Param(constants.ParamRoomID), userID, req.AvatarID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// CollectReward pays out a pending season reward once.
func (h *GameHandler) CollectReward(c *gin.Context) {
	var req collectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	userID, ok := actingUser(c, req.UserID)
	if !ok {
		return
	}
	out, err := h.rewards.Collect(c.Request.Context(), userID, req.RewardID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// CleanupRooms deletes finished rooms past retention. Called by a scheduler.
func (h *GameHandler) CleanupRooms(c *gin.Context) {
	res, err := h.sweeper.Sweep(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
