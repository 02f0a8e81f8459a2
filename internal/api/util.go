package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/lyonms2/avatar-arena/internal/constants"
	"github.com/lyonms2/avatar-arena/internal/engine"
	"github.com/lyonms2/avatar-arena/internal/logging"
	"github.com/lyonms2/avatar-arena/internal/service"
	"github.com/lyonms2/avatar-arena/internal/settlement"
)

type errorMapping struct {
	err     error
	status  int
	kind    string
	message string
}

var errorTable = []errorMapping{
	{service.ErrInvalidInput, http.StatusBadRequest, constants.ErrKindValidation, constants.MsgMissingFields},
	{settlement.ErrNegativeBet, http.StatusBadRequest, constants.ErrKindValidation, constants.MsgInvalidRequest},
	{settlement.ErrBetsDisabled, http.StatusBadRequest, constants.ErrKindValidation, constants.MsgBetsDisabled},
	{engine.ErrUnknownAction, http.StatusBadRequest, constants.ErrKindValidation, constants.MsgUnknownAction},
	{engine.ErrUnknownAbility, http.StatusBadRequest, constants.ErrKindValidation, constants.MsgUnknownAbility},

	{service.ErrNotParticipant, http.StatusForbidden, constants.ErrKindForbidden, constants.MsgNotParticipant},

	{service.ErrRoomNotFound, http.StatusNotFound, constants.ErrKindNotFound, constants.MsgRoomNotFound},
	{service.ErrAvatarNotFound, http.StatusNotFound, constants.ErrKindNotFound, constants.MsgAvatarNotFound},
	{service.ErrPlayerNotFound, http.StatusNotFound, constants.ErrKindNotFound, constants.MsgPlayerNotFound},
	{service.ErrRewardNotFound, http.StatusNotFound, constants.ErrKindNotFound, constants.MsgRewardNotFound},
	{service.ErrSessionNotFound, http.StatusNotFound, constants.ErrKindNotFound, constants.MsgSessionNotFound},

	{service.ErrRoomFinished, http.StatusConflict, constants.ErrKindConflict, constants.MsgRoomFinished},
	{service.ErrRoomFull, http.StatusConflict, constants.ErrKindConflict, constants.MsgRoomFull},
	{service.ErrAvatarUnavailable, http.StatusConflict, constants.ErrKindConflict, constants.MsgAvatarUnavailable},
	{service.ErrConflict, http.StatusConflict, constants.ErrKindConflict, constants.MsgRoomConflict},
	{engine.ErrRoomNotActive, http.StatusConflict, constants.ErrKindConflict, constants.MsgRoomNotActive},
	{engine.ErrRoomNotWaiting, http.StatusConflict, constants.ErrKindConflict, constants.MsgRoomNotWaiting},
	{engine.ErrNotYourTurn, http.StatusConflict, constants.ErrKindConflict, constants.MsgNotYourTurn},
	{engine.ErrInsufficientEnergy, http.StatusConflict, constants.ErrKindConflict, constants.MsgInsufficientEnergy},
	{engine.ErrAbilityOnCooldown, http.StatusConflict, constants.ErrKindConflict, constants.MsgAbilityOnCooldown},
	{engine.ErrMissingCombatant, http.StatusConflict, constants.ErrKindConflict, constants.MsgMissingCombatant},
	{engine.ErrInvalidTransition, http.StatusConflict, constants.ErrKindConflict, constants.MsgRoomNotActive},
}

// classify maps a service error to its HTTP status, kind and message.
func classify(err error) (int, string, string) {
	var bound *settlement.BetBoundError
	if errors.As(err, &bound) {
		return http.StatusBadRequest, constants.ErrKindValidation, bound.Error()
	}
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m.status, m.kind, m.message
		}
	}
	return http.StatusInternalServerError, constants.ErrKindInternal, constants.MsgInternal
}

func abortWith(c *gin.Context, status int, kind, message string) {
	c.AbortWithStatusJSON(status, gin.H{constants.JSONKeyError: kind, constants.JSONKeyMessage: message})
}

// respondError writes err as a JSON error. Unexpected errors are logged with
// the request path and trace id; the client only sees a generic message.
func respondError(c *gin.Context, err error) {
	status, kind, msg := classify(err)
	if status == http.StatusInternalServerError {
		fields := logging.Fields{constants.LogFieldPath: c.FullPath()}
		if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.IsValid() {
			fields["trace_id"] = sc.TraceID().String()
		}
		logging.Error("request failed", err, fields)
	}
	abortWith(c, status, kind, msg)
}

func badRequest(c *gin.Context) {
	abortWith(c, http.StatusBadRequest, constants.ErrKindValidation, constants.MsgInvalidRequest)
}

// actingUser settles who a request acts for. Without authentication the
// claimed id is trusted; with it the token subject wins and a different
// claimed id is rejected.
func actingUser(c *gin.Context, claimed string) (string, bool) {
	claimed = strings.TrimSpace(claimed)
	v, authed := c.Get(constants.ContextUserID)
	if !authed {
		if claimed == "" {
			abortWith(c, http.StatusBadRequest, constants.ErrKindValidation, constants.MsgMissingFields)
			return "", false
		}
		return claimed, true
	}
	subject, _ := v.(string)
	if claimed != "" && claimed != subject {
		abortWith(c, http.StatusForbidden, constants.ErrKindForbidden, constants.MsgIdentityMismatch)
		return "", false
	}
	return subject, true
}

// parseActionKind accepts the action names sent by the web client.
func parseActionKind(s string) (engine.ActionKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ready", "pronto":
		return engine.ActionReady, true
	case "attack", "atacar":
		return engine.ActionAttack, true
	case "defend", "defender":
		return engine.ActionDefend, true
	case "ability", "use_ability", "use-ability", "habilidade":
		return engine.ActionAbility, true
	case "surrender", "render":
		return engine.ActionSurrender, true
	case "abandon", "abandonar":
		return engine.ActionAbandon, true
	}
	return "", false
}
