package handlers

import (
	"net/http"
	"time"

	"praxis/models"
	"praxis/services/account"
	"praxis/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthHandler exposes password login and logout.
type AuthHandler struct {
	Accounts account.AccountService
	Store    session.Store
}

func NewAuthHandler(accounts account.AccountService, store session.Store) *AuthHandler {
	return &AuthHandler{Accounts: accounts, Store: store}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginHandler handles POST /api/auth/login.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	logger := getLogger(c)

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request: " + err.Error()})
		return
	}

	usr, token, err := h.Accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		logger.Warn("Login failed", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid email or password"})
		return
	}

	authSessionID := uuid.New().String()
	auth := session.AuthSession{Token: token, User: *usr, CreatedAt: time.Now()}
	if err := h.Store.SaveAuth(c.Request.Context(), authSessionID, auth); err != nil {
		logger.Error("Failed to persist auth session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "login failed, please try again"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"token":         token,
		"user":          usr,
		"authSessionId": authSessionID,
		"redirectPath":  models.DashboardPathForRole(usr.Role),
	})
}

// LogoutHandler handles POST /api/auth/logout, clearing the auth session.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	authSessionID := c.GetHeader("X-Auth-Session")
	if authSessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "missing X-Auth-Session header"})
		return
	}
	if err := h.Store.DeleteAuth(c.Request.Context(), authSessionID); err != nil {
		getLogger(c).Error("Failed to clear auth session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
