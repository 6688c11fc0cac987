package handlers

import (
	"net/http"

	"praxis/flow"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger retrieves a Zap logger from the Gin context or the global one.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return zap.L()
}

func statusForKind(kind flow.Kind) int {
	switch kind {
	case flow.KindValidation:
		return http.StatusBadRequest
	case flow.KindConflict, flow.KindTerminalAccountState:
		return http.StatusConflict
	case flow.KindPaymentVerifiedLoginFailed:
		return http.StatusUnauthorized
	case flow.KindFatal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

// respondFlowError converts an orchestration error into the standard
// {success:false, error, kind} envelope. Extra fields carry alongside.
func respondFlowError(c *gin.Context, err error, extra gin.H) {
	kind := flow.KindOf(err)
	body := gin.H{
		"success": false,
		"error":   err.Error(),
		"kind":    kind,
	}
	if code := flow.CodeOf(err); code != "" {
		body["code"] = code
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(statusForKind(kind), body)
}
