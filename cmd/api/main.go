package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/hirelane/hirelane-backend/internal/config"
	"github.com/hirelane/hirelane-backend/internal/handler"
	"github.com/hirelane/hirelane-backend/internal/middleware"
	"github.com/hirelane/hirelane-backend/internal/repository"
	"github.com/hirelane/hirelane-backend/internal/service"
	"github.com/hirelane/hirelane-backend/pkg/database"
	"github.com/hirelane/hirelane-backend/pkg/email"
	"github.com/hirelane/hirelane-backend/pkg/logger"
	"github.com/hirelane/hirelane-backend/pkg/payment"
	"github.com/hirelane/hirelane-backend/pkg/utils"
)

func main() {
	// Load .env (optional in deployed environments)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer zapLogger.Sync()

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("database init failed", zap.Error(err))
	}

	// Repositories
	purchaseRepo := repository.NewPurchaseRepository(db)
	creditRepo := repository.NewCreditRepository(db)

	// Stripe service
	stripeService := payment.NewStripeService(cfg.Stripe.SecretKey, cfg.Stripe.SuccessURL, cfg.Stripe.CancelURL)

	// Email service
	emailService := email.NewEmailService(cfg.Email.ResendAPIKey, cfg.Email.FromAddress, cfg.Email.FromName, zapLogger)

	// Services
	checkoutService := service.NewCheckoutService(stripeService, purchaseRepo, zapLogger, cfg.CreditTTL)
	fulfillmentService := service.NewFulfillmentService(db, emailService, zapLogger)
	creditService := service.NewCreditService(creditRepo, zapLogger)
	historyService := service.NewHistoryService(purchaseRepo, creditRepo)

	validator := utils.NewValidator()

	// Handlers
	purchaseHandler := handler.NewPurchaseHandler(
		checkoutService,
		fulfillmentService,
		historyService,
		validator,
		cfg.Stripe.WebhookSecret,
		zapLogger,
	)
	creditHandler := handler.NewCreditHandler(creditService, historyService, validator)

	// Periodic expiration sweep; reporting only, claims never depend on it
	go func() {
		ticker := time.NewTicker(cfg.SweepEvery)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := creditService.SweepExpired(); err != nil {
				zapLogger.Warn("expiration sweep failed", zap.Error(err))
			}
		}
	}()

	// Router
	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE",
		AllowCredentials: true,
	}))
	app.Use(fiberlogger.New())
	app.Use(limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	api := app.Group("/api")

	// Stripe webhook (public)
	api.Post("/payments/webhook", purchaseHandler.HandleStripeWebhook)

	// Public pricing
	api.Get("/payments/packages", purchaseHandler.GetPackages)

	// Admin maintenance routes
	admin := api.Group("/admin", middleware.AdminMiddleware(cfg.AdminToken))
	admin.Post("/credits/normalize", creditHandler.NormalizeCreditTypes)

	// Protected routes
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		purchases := api.Group("/purchases")
		purchases.Post("/", purchaseHandler.CreateCheckout)
		purchases.Get("/", purchaseHandler.GetPurchaseHistory)

		credits := api.Group("/credits")
		credits.Post("/claim", creditHandler.ClaimCredit)
		credits.Get("/", creditHandler.ListCredits)
		credits.Get("/history", creditHandler.GetHistory)
		credits.Get("/stats", creditHandler.GetStats)
	}

	zapLogger.Info("server starting", zap.String("port", cfg.Port))
	log.Fatal(app.Listen(":" + cfg.Port))
}
