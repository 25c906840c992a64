package http

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SatuKas/api/internal/domain/models"
	"github.com/SatuKas/api/internal/handler/http/middleware"
	"github.com/SatuKas/api/internal/service"
	"github.com/SatuKas/api/internal/utils/metrics"

	domainErrors "github.com/SatuKas/api/internal/domain/errors"
)

// AuthHandler exposes the authentication flows over HTTP.
type AuthHandler struct {
	logger      *zap.Logger
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		logger:      logger.Named("auth_handler"),
		authService: authService,
	}
}

// Register handles POST /api/v1/auth/register. Registration never issues
// tokens; the user verifies their email and then logs in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithValidationError(c, err, h.logger)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		metrics.RegistrationAttemptsTotal.WithLabelValues(metrics.StatusFailure).Inc()
		RespondWithDomainError(c, err, h.logger)
		return
	}

	metrics.RegistrationAttemptsTotal.WithLabelValues(metrics.StatusSuccess).Inc()
	RespondWithSuccess(c, http.StatusCreated,
		"Registration successful. Please check your email to verify your account.",
		gin.H{"user": user.ToResponse()},
	)
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithValidationError(c, err, h.logger)
		return
	}

	user, pair, deviceID, err := h.authService.Login(c.Request.Context(), req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.StatusFailure).Inc()
		RespondWithDomainError(c, err, h.logger)
		return
	}

	metrics.LoginAttemptsTotal.WithLabelValues(metrics.StatusSuccess).Inc()
	RespondWithSuccess(c, http.StatusOK, "Login successful", models.LoginResponse{
		User:              user.ToResponse(),
		DeviceID:          deviceID,
		TokenPairResponse: models.NewTokenPairResponse(pair),
	})
}

// Refresh handles POST /api/v1/auth/refresh-token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithValidationError(c, err, h.logger)
		return
	}

	pair, err := h.authService.RefreshToken(c.Request.Context(), req)
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues(metrics.StatusFailure).Inc()
		RespondWithDomainError(c, err, h.logger)
		return
	}

	metrics.TokenRefreshTotal.WithLabelValues(metrics.StatusSuccess).Inc()
	RespondWithSuccess(c, http.StatusOK, "Token refreshed", models.NewTokenPairResponse(pair))
}

// Logout handles POST /api/v1/auth/logout for the authenticated caller's own
// device. The presented access token is blacklisted so it dies immediately.
func (h *AuthHandler) Logout(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "Unauthorized", domainErrors.CodeUnauthorized, h.logger)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), identity.DeviceID, &identity.UserID, identity.Token); err != nil {
		RespondWithDomainError(c, err, h.logger)
		return
	}

	RespondWithMessage(c, http.StatusOK, "Logged out")
}

// LogoutDevice handles POST /api/v1/auth/logout/device/:device_id. It lets a
// client kill a device session it no longer holds tokens for.
func (h *AuthHandler) LogoutDevice(c *gin.Context) {
	deviceID, err := uuid.Parse(c.Param("device_id"))
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, "Invalid device id", domainErrors.CodeValidation, h.logger)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), deviceID, nil, ""); err != nil {
		RespondWithDomainError(c, err, h.logger)
		return
	}

	RespondWithMessage(c, http.StatusOK, "Device logged out")
}

// VerifyEmail handles POST /api/v1/auth/email/verify.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req models.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithValidationError(c, err, h.logger)
		return
	}

	if err := h.authService.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		RespondWithDomainError(c, err, h.logger)
		return
	}

	RespondWithMessage(c, http.StatusOK, "Email verified")
}

// VerifyEmailLink handles GET /api/v1/auth/email/verify/:token, the target
// of the emailed link when verification goes through the backend. It renders
// a small HTML page instead of the JSON envelope.
func (h *AuthHandler) VerifyEmailLink(c *gin.Context) {
	outcome := h.authService.VerifyEmailFromLink(c.Request.Context(), c.Param("token"))

	status := http.StatusOK
	if !outcome.OK {
		status = http.StatusBadRequest
	}
	var buf []byte
	if rendered, err := renderVerifyPage(outcome); err != nil {
		h.logger.Error("Failed to render verification page", zap.Error(err))
		buf = []byte(outcome.Message)
	} else {
		buf = rendered
	}
	c.Data(status, "text/html; charset=utf-8", buf)
}

// ResendVerification handles POST /api/v1/auth/resend-verification for the
// authenticated caller.
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "Unauthorized", domainErrors.CodeUnauthorized, h.logger)
		return
	}

	if err := h.authService.ResendVerification(c.Request.Context(), identity.Email); err != nil {
		RespondWithDomainError(c, err, h.logger)
		return
	}

	RespondWithMessage(c, http.StatusOK, "Verification email sent")
}

// ForgotPassword handles POST /api/v1/auth/forgot-password. The response is
// identical whether or not the address exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithValidationError(c, err, h.logger)
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		RespondWithDomainError(c, err, h.logger)
		return
	}

	RespondWithMessage(c, http.StatusOK, "If the email is registered, a reset link has been sent")
}

// ResetPassword handles POST /api/v1/auth/reset-password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithValidationError(c, err, h.logger)
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req); err != nil {
		RespondWithDomainError(c, err, h.logger)
		return
	}

	RespondWithMessage(c, http.StatusOK, "Password has been reset")
}

var verifyPageTmpl = template.Must(template.New("verify_page").Parse(`<!DOCTYPE html>
<html lang="id">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Email Verification</title>
  <style>
    body { font-family: Arial, sans-serif; background: #f4f4f7; margin: 0; }
    .card { max-width: 480px; margin: 80px auto; background: #ffffff; border-radius: 8px; padding: 40px; text-align: center; }
    h1 { font-size: 20px; color: #333333; }
    p { color: #555555; }
  </style>
</head>
<body>
  <div class="card">
    <h1>{{if .OK}}Verification Successful{{else}}Verification Failed{{end}}</h1>
    <p>{{.Message}}</p>
  </div>
</body>
</html>
`))

func renderVerifyPage(outcome service.VerifyEmailOutcome) ([]byte, error) {
	var buf bytes.Buffer
	if err := verifyPageTmpl.Execute(&buf, outcome); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
