package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domainErrors "github.com/SatuKas/api/internal/domain/errors"
	validatorUtil "github.com/SatuKas/api/internal/utils/validator"
)

// ResponseError is the API error envelope. Code is the stable identifier
// clients branch on; Error is for humans.
type ResponseError struct {
	Error   string       `json:"error"`
	Code    string       `json:"code"`
	Details []FieldError `json:"details,omitempty"`
}

// FieldError is one entry of the field-level validation detail list.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ResponseSuccess is the API success envelope.
type ResponseSuccess struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// RespondWithError sends an error envelope and logs it.
func RespondWithError(c *gin.Context, statusCode int, message string, code domainErrors.Code, logger *zap.Logger) {
	logger.Error("API error response",
		zap.Int("status_code", statusCode),
		zap.String("error_message", message),
		zap.String("error_code", string(code)),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	)

	c.JSON(statusCode, ResponseError{
		Error: message,
		Code:  string(code),
	})
}

// RespondWithDomainError maps a service-layer error chain onto status, code
// and message. Unknown errors surface as a generic 500 so internals never
// leak.
func RespondWithDomainError(c *gin.Context, err error, logger *zap.Logger) {
	status := statusOf(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	var appErr *domainErrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		message = appErr.Message
	}
	RespondWithError(c, status, message, domainErrors.CodeOf(err), logger)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domainErrors.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domainErrors.ErrDeviceRevoked):
		// Revoking an already-revoked device is a client error, not an
		// authentication failure.
		return http.StatusBadRequest
	case errors.Is(err, domainErrors.ErrInvalidCredentials),
		errors.Is(err, domainErrors.ErrInvalidToken),
		errors.Is(err, domainErrors.ErrExpiredToken),
		errors.Is(err, domainErrors.ErrInvalidTokenType),
		errors.Is(err, domainErrors.ErrInvalidRefreshToken),
		errors.Is(err, domainErrors.ErrBlacklistedToken),
		errors.Is(err, domainErrors.ErrTokenUsed),
		errors.Is(err, domainErrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domainErrors.ErrEmailNotVerified):
		return http.StatusForbidden
	case domainErrors.IsNotFound(err):
		return http.StatusNotFound
	case domainErrors.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithValidationError maps a gin binding failure to a 400 with a
// field-level detail list when the failure came from struct validation, or a
// single message for malformed JSON.
func RespondWithValidationError(c *gin.Context, err error, logger *zap.Logger) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		RespondWithError(c, http.StatusBadRequest, "Invalid request payload", domainErrors.CodeValidation, logger)
		return
	}

	details := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, FieldError{
			Field:   fe.Field(),
			Message: validatorUtil.Describe(fe),
		})
	}

	c.JSON(http.StatusBadRequest, ResponseError{
		Error:   "Validation failed",
		Code:    string(domainErrors.CodeValidation),
		Details: details,
	})
}

// RespondWithSuccess sends a success envelope.
func RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, ResponseSuccess{
		Message: message,
		Data:    data,
	})
}

// RespondWithMessage sends a success envelope with no data section.
func RespondWithMessage(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ResponseSuccess{Message: message})
}
