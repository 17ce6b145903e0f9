package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medicloud/docs-api/internal/config"
	"github.com/medicloud/docs-api/internal/email"
	"github.com/medicloud/docs-api/internal/handler"
	appointmentHandler "github.com/medicloud/docs-api/internal/handler/appointment"
	authHandler "github.com/medicloud/docs-api/internal/handler/auth"
	reportHandler "github.com/medicloud/docs-api/internal/handler/report"
	userHandler "github.com/medicloud/docs-api/internal/handler/user"
	"github.com/medicloud/docs-api/internal/middleware"
	"github.com/medicloud/docs-api/internal/repository/postgres"
	"github.com/medicloud/docs-api/internal/router"
	aiService "github.com/medicloud/docs-api/internal/service/ai"
	appointmentService "github.com/medicloud/docs-api/internal/service/appointment"
	authService "github.com/medicloud/docs-api/internal/service/auth"
	eventService "github.com/medicloud/docs-api/internal/service/event"
	reportService "github.com/medicloud/docs-api/internal/service/report"
	userService "github.com/medicloud/docs-api/internal/service/user"
	"github.com/medicloud/docs-api/pkg/auth"
	"github.com/medicloud/docs-api/pkg/genai"
	"github.com/medicloud/docs-api/pkg/logger"
	"github.com/medicloud/docs-api/pkg/metrics"
	"github.com/medicloud/docs-api/pkg/security"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	reportRepo := postgres.NewReportRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Expiry:        time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
		RefreshExpiry: time.Duration(cfg.JWT.RefreshExpiryHours) * time.Hour,
	})
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)

	encryptor, err := security.NewAESEncryptor([]byte(cfg.Security.EncryptionKey))
	if err != nil {
		log.Fatal(err, "failed to initialize signature encryptor")
	}

	genaiClient, err := genai.NewClient(genai.Config{
		APIKey:     cfg.GenAI.APIKey,
		BaseURL:    cfg.GenAI.BaseURL,
		TextModel:  cfg.GenAI.TextModel,
		ImageModel: cfg.GenAI.ImageModel,
		Timeout:    cfg.GenAI.Timeout,
	})
	if err != nil {
		log.Fatal(err, "failed to initialize genai client")
	}

	appMetrics := metrics.NewMetrics("medicloud", "api")
	emailSvc := email.NewSMTPService(cfg.SMTP)
	events := eventService.NewService(outboxRepo, log)

	authSvc := authService.NewService(userRepo, jwtSvc, hasher, emailSvc, events, log, cfg.Security.AdminEmails)
	userSvc := userService.NewService(userRepo, encryptor, events)
	appointmentSvc := appointmentService.NewService(appointmentRepo, userRepo, events)
	reportSvc := reportService.NewService(reportRepo, userRepo, events, emailSvc, log, appMetrics)
	aiSvc := aiService.NewService(genaiClient, genaiClient, log, appMetrics)

	authMW := middleware.NewAuthMiddleware(authSvc, userRepo)

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Security.AllowedOrigins
	}

	r := router.NewRouter(
		authMW,
		authHandler.NewHandler(authSvc),
		userHandler.NewHandler(userSvc),
		appointmentHandler.NewHandler(appointmentSvc),
		reportHandler.NewHandler(reportSvc, aiSvc),
		handler.NewHandler(),
		router.Config{
			RateLimitRPS:   cfg.RateLimit.RequestsPerSecond,
			RateLimitBurst: cfg.RateLimit.Burst,
			CORSConfig:     corsConfig,
			MetricsPrefix:  "medicloud",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err, "forced shutdown")
	}

	log.Info("server stopped")
}
