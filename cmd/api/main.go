package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/lexhub/identity-service/internal/delivery"
	"github.com/lexhub/identity-service/internal/handlers"
	"github.com/lexhub/identity-service/internal/repository"
	"github.com/lexhub/identity-service/internal/service"
	"github.com/lexhub/identity-service/migrations"
	"github.com/lexhub/identity-service/pkg/config"
	"github.com/lexhub/identity-service/pkg/database"
	"github.com/lexhub/identity-service/pkg/events"
	"github.com/lexhub/identity-service/pkg/logger"
	mw "github.com/lexhub/identity-service/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()

	// Run migrations over a plain database/sql connection, then open the pool.
	migrateDB, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		logger.Error("Failed to open database for migrations", "error", err)
		os.Exit(1)
	}
	if err := migrations.Migrate(migrateDB); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	migrateDB.Close()

	pool, err := database.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Repositories
	userRepo := repository.NewUserRepository(pool)
	otpRepo := repository.NewOtpRepository(pool)
	rateLimitRepo := repository.NewRateLimitRepository(pool)
	subRepo := repository.NewSubscriptionRepository(pool)

	// Delivery channels
	var email delivery.EmailSender = delivery.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	if cfg.Email.DevMode {
		email = delivery.NewDevEmailSender()
	}
	var sms delivery.SMSSender = delivery.NewSMSGateway(cfg.SMS.GatewayURL, cfg.SMS.APIKey, cfg.SMS.Sender)
	if cfg.SMS.DevMode {
		sms = delivery.NewDevSMSSender()
	}
	dispatcher := delivery.NewDispatcher(email, sms)

	// Services
	subscriptionService := service.NewSubscriptionService(subRepo, cfg.Auth.TrialDuration)
	tokenService := service.NewTokenService(userRepo, subscriptionService, eventBus, cfg)
	otpService := service.NewOtpService(otpRepo, dispatcher, eventBus, cfg.Otp.DailyCap, cfg.Otp.TTL)
	rateLimitService := service.NewRateLimitService(rateLimitRepo, eventBus, cfg.RateLimit.Window, cfg.RateLimit.BanThreshold, cfg.RateLimit.BanDuration)
	authService := service.NewAuthService(userRepo, otpService, tokenService, eventBus)

	h := handlers.New(authService, otpService, tokenService, subscriptionService, rateLimitService, userRepo)

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/otp/request", h.OtpRequest)
		r.Post("/otp/verify", h.OtpVerify)
		r.Post("/login", h.PasswordLogin)
		r.Post("/refresh", h.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireJWT)
			r.Post("/logout", h.Logout)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(h.RequireJWT)
		r.Get("/subscription/status", h.SubscriptionStatus)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down identity service...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Identity service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting identity service", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Identity service error", "error", err)
		os.Exit(1)
	}
}
