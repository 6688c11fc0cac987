package handlers

import (
	"net/http"

	"praxis/models"
	"praxis/services/registration"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegistrationHandler exposes the wizard over a single step-discriminated
// endpoint plus the checkout return-trip entry point.
type RegistrationHandler struct {
	Service registration.RegistrationService
}

func NewRegistrationHandler(svc registration.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{Service: svc}
}

// StepHandler handles POST /api/registration. The "step" field selects the
// transition being executed.
func (h *RegistrationHandler) StepHandler(c *gin.Context) {
	logger := getLogger(c)

	var req models.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid registration request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request: " + err.Error()})
		return
	}

	ctx := c.Request.Context()

	switch req.Step {
	case "start":
		sess, err := h.Service.Start(ctx, req.AccountType)
		h.respondSession(c, sess, err)
	case "select":
		sess, err := h.Service.SelectAccountType(ctx, req.SessionID, req.AccountType)
		h.respondSession(c, sess, err)
	case "email":
		sess, err := h.Service.CheckEmail(ctx, req.SessionID, req.Email)
		h.respondSession(c, sess, err)
	case "details":
		if req.Details == nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "details payload is required"})
			return
		}
		sess, err := h.Service.SubmitDetails(ctx, req.SessionID, *req.Details)
		h.respondSession(c, sess, err)
	case "back":
		sess, err := h.Service.Back(ctx, req.SessionID)
		h.respondSession(c, sess, err)
	case "jump":
		sess, err := h.Service.JumpTo(ctx, req.SessionID, req.TargetStep)
		h.respondSession(c, sess, err)
	case "proceed":
		url, err := h.Service.Proceed(ctx, req.SessionID)
		if err != nil {
			logger.Error("Checkout session creation failed", zap.Error(err))
			respondFlowError(c, err, nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "url": url})
	case "teardown":
		if err := h.Service.Teardown(ctx, req.SessionID); err != nil {
			logger.Error("Registration teardown failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "unknown step: " + req.Step})
	}
}

func (h *RegistrationHandler) respondSession(c *gin.Context, sess *models.RegistrationSession, err error) {
	if err != nil {
		extra := gin.H{}
		if sess != nil {
			extra["session"] = sess
		}
		respondFlowError(c, err, extra)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": sess})
}

// ReturnHandler handles GET /api/registration/return, the re-entry point
// after the external payment page. It is gated entirely on the status and
// session_id query parameters.
func (h *RegistrationHandler) ReturnHandler(c *gin.Context) {
	logger := getLogger(c)

	status := c.Query("status")
	checkoutSessionID := c.Query("session_id")
	sessionID := c.Query("rid")

	outcome, err := h.Service.ResolveReturn(c.Request.Context(), sessionID, status, checkoutSessionID)
	if err != nil {
		logger.Error("Payment return resolution failed",
			zap.String("status", status),
			zap.String("checkoutSessionId", checkoutSessionID),
			zap.Error(err))
		extra := gin.H{}
		if outcome != nil {
			extra["outcome"] = outcome
		}
		respondFlowError(c, err, extra)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "outcome": outcome})
}
