package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lyonms2/avatar-arena/internal/constants"
	"github.com/lyonms2/avatar-arena/internal/logging"
)

// Identity validates the bearer token and stores its subject in the
// context. Login lives in another service; with an empty secret the
// middleware does nothing and handlers trust the user id in the request.
func Identity(secret string) gin.HandlerFunc {
	if secret == "" {
		return func(c *gin.Context) { c.Next() }
	}
	key := []byte(secret)
	return func(c *gin.Context) {
		header := c.GetHeader(constants.HeaderAuthorization)
		if !strings.HasPrefix(header, constants.BearerPrefix) {
			abortWith(c, http.StatusUnauthorized, constants.ErrKindAuth, constants.MsgAuthRequired)
			return
		}
		userID, err := parseBearer(key, strings.TrimPrefix(header, constants.BearerPrefix))
		if err != nil {
			logging.Debug("rejected bearer token", logging.Fields{constants.LogFieldReason: err.Error()})
			abortWith(c, http.StatusUnauthorized, constants.ErrKindAuth, constants.MsgInvalidToken)
			return
		}
		c.Set(constants.ContextUserID, userID)
		c.Next()
	}
}

// CronRequired guards maintenance endpoints with a shared secret header.
// An empty secret leaves them open.
func CronRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		got := c.GetHeader(constants.HeaderCronSecret)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			abortWith(c, http.StatusUnauthorized, constants.ErrKindAuth, constants.MsgCronForbidden)
			return
		}
		c.Next()
	}
}
