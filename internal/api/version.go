package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lyonms2/avatar-arena/internal/constants"
	"github.com/lyonms2/avatar-arena/internal/version"
)

// Version returns build and VCS metadata injected at build time.
func Version(c *gin.Context) {
	info := version.Get()
	c.JSON(http.StatusOK, gin.H{
		"service": constants.ServiceName,
		"version": info.Version,
		"commit":  info.Commit,
		"date":    info.Date,
		"dirty":   info.Dirty,
	})
}

// Health answers liveness probes.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
