package main

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/SatuKas/api/internal/config"
	httpHandler "github.com/SatuKas/api/internal/handler/http"
	"github.com/SatuKas/api/internal/infrastructure/database"
	"github.com/SatuKas/api/internal/infrastructure/security"
	"github.com/SatuKas/api/internal/mailer"
	redisRepo "github.com/SatuKas/api/internal/repository/redis"
	"github.com/SatuKas/api/internal/service"
	"github.com/SatuKas/api/internal/utils/logger"
	"github.com/SatuKas/api/internal/utils/rate"
	"github.com/SatuKas/api/internal/utils/shutdown"
	"github.com/SatuKas/api/internal/utils/telemetry"
	"github.com/SatuKas/api/internal/utils/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.NewLogger(cfg.Logging.Level, cfg.App.Environment)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	if err := validator.RegisterCustomValidators(); err != nil {
		log.Fatal("Failed to register custom validators", zap.Error(err))
	}

	if cfg.Telemetry.TracingEnabled {
		stopTracer, err := telemetry.InitTracer(cfg.App.Name, cfg.Telemetry.JaegerEndpoint, log)
		if err != nil {
			log.Error("Failed to initialize tracer", zap.Error(err))
		} else {
			defer stopTracer()
		}
	}

	ctx, cancel := rootContext()
	defer cancel()

	dbPool, err := initDatabase(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize PostgreSQL", zap.Error(err))
	}
	defer dbPool.Close()

	redisClient, err := redisRepo.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to initialize Redis client", zap.Error(err))
	}
	defer redisClient.Close()

	publisher := initPublisher(cfg, log)
	defer publisher.Close()

	hasher, err := security.NewArgon2idHasher(security.DefaultArgon2idParams())
	if err != nil {
		log.Fatal("Failed to initialize password hasher", zap.Error(err))
	}

	userRepo := database.NewPgxUserRepository(dbPool)
	deviceRepo := database.NewPgxDeviceRepository(dbPool)
	blacklist := redisRepo.NewTokenBlacklist(redisClient, log, cfg.JWT.AccessTokenTTL, cfg.JWT.PasswordResetTokenTTL)

	tokenService := service.NewTokenService(cfg.JWT, blacklist, log)
	userService := service.NewUserService(userRepo, hasher, log)
	deviceService := service.NewDeviceService(deviceRepo, log)
	mail := mailer.NewMailer(mailer.NewTransport(cfg.Mail, log), cfg.App, log)
	authService := service.NewAuthService(userService, tokenService, deviceService, mail, publisher, cfg.JWT, log)

	router := httpHandler.NewRouter(httpHandler.RouterDeps{
		Config:        cfg,
		Logger:        log,
		AuthHandler:   httpHandler.NewAuthHandler(authService, log),
		UserHandler:   httpHandler.NewUserHandler(userService, log),
		HealthHandler: httpHandler.NewHealthHandler(dbPool, redisClient, log),
		Tokens:        tokenService,
		Devices:       deviceService,
		Limiter:       rate.NewLimiter(redisClient, log, cfg.RateLimit),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	shutdown.Wait(srv, cfg.Server.ShutdownTimeout, log)
}
