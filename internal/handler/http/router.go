package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SatuKas/api/internal/config"
	"github.com/SatuKas/api/internal/handler/http/middleware"
	"github.com/SatuKas/api/internal/utils/telemetry"
)

// RouterDeps bundles everything the router mounts.
type RouterDeps struct {
	Config        *config.Config
	Logger        *zap.Logger
	AuthHandler   *AuthHandler
	UserHandler   *UserHandler
	HealthHandler *HealthHandler
	Tokens        middleware.TokenVerifier
	Devices       middleware.DeviceChecker
	// Limiter throttles the anonymous credential endpoints. Nil disables
	// rate limiting, which the tests rely on.
	Limiter middleware.RequestLimiter
}

// NewRouter assembles the gin engine: ambient middleware first, then the
// /api/v1 surface with the auth gate on the authenticated subset.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.LoggingMiddleware(deps.Logger))
	router.Use(middleware.MetricsMiddleware())
	if deps.Config.Telemetry.TracingEnabled {
		router.Use(middleware.TracingMiddleware())
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{deps.Config.App.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", deps.HealthHandler.Health)
	router.GET("/metrics", gin.WrapF(telemetry.PrometheusHandler()))

	authRequired := middleware.AuthMiddleware(deps.Tokens, deps.Devices, deps.Logger)

	limited := func(scope string) gin.HandlerFunc {
		if deps.Limiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimitMiddleware(deps.Limiter, scope, deps.Logger)
	}

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", limited("register"), deps.AuthHandler.Register)
			auth.POST("/login", limited("login"), deps.AuthHandler.Login)
			auth.POST("/refresh-token", deps.AuthHandler.Refresh)
			auth.POST("/logout", authRequired, deps.AuthHandler.Logout)
			auth.POST("/logout/device/:device_id", deps.AuthHandler.LogoutDevice)
			auth.POST("/email/verify", deps.AuthHandler.VerifyEmail)
			auth.GET("/email/verify/:token", deps.AuthHandler.VerifyEmailLink)
			auth.POST("/resend-verification", authRequired, deps.AuthHandler.ResendVerification)
			auth.POST("/forgot-password", limited("forgot-password"), deps.AuthHandler.ForgotPassword)
			auth.POST("/reset-password", deps.AuthHandler.ResetPassword)
		}

		user := v1.Group("/user")
		{
			user.GET("/me", authRequired, deps.UserHandler.Me)
		}
	}

	return router
}
