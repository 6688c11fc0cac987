package handlers

import (
	"net/http"

	"praxis/models"
	"praxis/services/billing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BillingHandler exposes the subscription lifecycle operations.
type BillingHandler struct {
	Subscriptions billing.SubscriptionService
}

func NewBillingHandler(subs billing.SubscriptionService) *BillingHandler {
	return &BillingHandler{Subscriptions: subs}
}

type seatUpgradeRequest struct {
	OrganizationID  string `json:"organizationId" binding:"required"`
	AdditionalSeats int    `json:"additionalSeats" binding:"required"`
}

type cancellationRequest struct {
	OrganizationID string `json:"organizationId,omitempty"`
	UserID         string `json:"userId,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// SnapshotHandler handles GET /api/billing/subscription.
func (h *BillingHandler) SnapshotHandler(c *gin.Context) {
	scope := models.SubscriptionScope{
		OrganizationID: c.Query("organizationId"),
		UserID:         c.Query("userId"),
	}
	snap, err := h.Subscriptions.Snapshot(c.Request.Context(), scope)
	if err != nil {
		respondFlowError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "subscription": snap})
}

// QuoteSeatsHandler handles POST /api/billing/seats/quote.
func (h *BillingHandler) QuoteSeatsHandler(c *gin.Context) {
	var req seatUpgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request: " + err.Error()})
		return
	}
	quote, err := h.Subscriptions.QuoteSeatUpgrade(c.Request.Context(), req.OrganizationID, req.AdditionalSeats)
	if err != nil {
		respondFlowError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "quote": quote})
}

// UpgradeSeatsHandler handles POST /api/billing/seats/upgrade.
func (h *BillingHandler) UpgradeSeatsHandler(c *gin.Context) {
	logger := getLogger(c)

	var req seatUpgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request: " + err.Error()})
		return
	}
	snap, err := h.Subscriptions.UpgradeSeats(c.Request.Context(), req.OrganizationID, req.AdditionalSeats)
	if err != nil {
		logger.Error("Seat upgrade failed",
			zap.String("organizationId", req.OrganizationID), zap.Error(err))
		respondFlowError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "subscription": snap})
}

// ScheduleCancellationHandler handles POST /api/billing/cancel.
func (h *BillingHandler) ScheduleCancellationHandler(c *gin.Context) {
	var req cancellationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request: " + err.Error()})
		return
	}
	scope := models.SubscriptionScope{OrganizationID: req.OrganizationID, UserID: req.UserID}
	snap, err := h.Subscriptions.ScheduleCancellation(c.Request.Context(), scope, req.Reason)
	if err != nil {
		respondFlowError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "subscription": snap})
}

// UndoCancellationHandler handles POST /api/billing/cancel/undo.
func (h *BillingHandler) UndoCancellationHandler(c *gin.Context) {
	var req cancellationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request: " + err.Error()})
		return
	}
	scope := models.SubscriptionScope{OrganizationID: req.OrganizationID, UserID: req.UserID}
	snap, err := h.Subscriptions.UndoCancellation(c.Request.Context(), scope)
	if err != nil {
		respondFlowError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "subscription": snap})
}
