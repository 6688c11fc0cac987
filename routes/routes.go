package routes

import (
	"praxis/handlers"
	"praxis/middleware"
	"praxis/models"

	"github.com/gin-gonic/gin"
)

// RegisterRegistrationRoutes registers the wizard and checkout return endpoints.
func RegisterRegistrationRoutes(r *gin.Engine, h *handlers.RegistrationHandler) {
	api := r.Group("/api/registration")
	{
		api.POST("", h.StepHandler)
		api.GET("/return", h.ReturnHandler)
	}
}

// RegisterAuthRoutes registers login/logout endpoints.
func RegisterAuthRoutes(r *gin.Engine, h *handlers.AuthHandler) {
	api := r.Group("/api/auth")
	{
		api.POST("/login", h.LoginHandler)
		api.POST("/logout", h.LogoutHandler)
	}
}

// RegisterBillingRoutes registers the subscription lifecycle endpoints.
// All of them require authentication; seat operations are admin-only.
func RegisterBillingRoutes(r *gin.Engine, h *handlers.BillingHandler) {
	api := r.Group("/api/billing")
	api.Use(middleware.JWTAuthMiddleware())
	{
		api.GET("/subscription", h.SnapshotHandler)
		api.POST("/cancel", h.ScheduleCancellationHandler)
		api.POST("/cancel/undo", h.UndoCancellationHandler)

		admin := api.Group("/seats")
		admin.Use(middleware.RequireRole(models.RoleCompanyAdmin, models.RoleSuperAdmin))
		admin.POST("/quote", h.QuoteSeatsHandler)
		admin.POST("/upgrade", h.UpgradeSeatsHandler)
	}
}
