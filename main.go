package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"praxis/config"
	"praxis/cron"
	"praxis/database"
	accountRepo "praxis/database/repository/account"
	"praxis/handlers"
	"praxis/middleware"
	"praxis/routes"
	"praxis/services/account"
	"praxis/services/billing"
	"praxis/services/checkout"
	"praxis/services/registration"
	"praxis/session"
	"praxis/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	defer database.CloseDB()

	sessionStore := session.InitRedisStore()
	defer sessionStore.Close()

	stripe.Key = config.AppConfig.StripeKey

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(cors.Default())

	// Repositories.
	userRepo := accountRepo.NewMongoUserRepo()
	orgRepo := accountRepo.NewMongoOrganizationRepo()

	// Background purge of temp accounts that never complete checkout.
	purgeEnqueuer := cron.NewEnqueuer()
	defer purgeEnqueuer.Close()
	cron.InitPurgeWorker(userRepo, orgRepo)

	// Services.
	accountService := &account.DefaultAccountService{
		Users:          userRepo,
		Orgs:           orgRepo,
		Purge:          purgeEnqueuer,
		MinOrgSeats:    config.AppConfig.MinOrgSeats,
		TempAccountTTL: time.Duration(config.AppConfig.TempAccountTTL) * time.Minute,
	}

	stripeGateway := &checkout.StripeGateway{
		Finalizer:     accountService,
		SeatUnitPrice: config.AppConfig.SeatUnitPrice,
		Currency:      config.AppConfig.Currency,
	}

	registrationService := &registration.DefaultRegistrationService{
		Store:         sessionStore,
		Accounts:      accountService,
		Authenticator: accountService,
		Broker:        stripeGateway,
		Verifier:      stripeGateway,
		BaseURL:       config.AppConfig.AppBaseURL,
	}

	subscriptionService := &billing.DefaultSubscriptionService{
		Users:     userRepo,
		Orgs:      orgRepo,
		UnitPrice: config.AppConfig.SeatUnitPrice,
	}

	// Handlers and routes.
	routes.RegisterRegistrationRoutes(router, handlers.NewRegistrationHandler(registrationService))
	routes.RegisterAuthRoutes(router, handlers.NewAuthHandler(accountService, sessionStore))
	routes.RegisterBillingRoutes(router, handlers.NewBillingHandler(subscriptionService))

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.AppPort,
		Handler: router,
	}

	go func() {
		logger.Sugar().Infof("listening on :%s", config.AppConfig.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("forced shutdown: %v", err)
	}
	logger.Info("server exited")
}
