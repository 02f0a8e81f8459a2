package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lyonms2/avatar-arena/internal/constants"
)

// GetRoom returns a room to one of its participants.
func (h *GameHandler) GetRoom(c *gin.Context) {
	userID, ok := actingUser(c, c.Query(constants.QueryUserID))
	if !ok {
		return
	}
	room, err := h.battles.Get(c.Request.Context(), c.Param(constants.ParamRoomID), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// BetLimits reports the wager range for a player.
func (h *GameHandler) BetLimits(c *gin.Context) {
	userID, ok := actingUser(c, c.Param(constants.ParamUserID))
	if !ok {
		return
	}
	lim, err := h.battles.BetLimits(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"minimum": lim.Minimum,
		"maximum": lim.Maximum,
		"enabled": lim.Enabled(),
	})
}

// ListAbilities exposes the ability registry the server is running with.
func (h *GameHandler) ListAbilities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":   h.registry.Version(),
		"abilities": h.registry.All(),
	})
}
