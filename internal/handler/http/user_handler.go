package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/SatuKas/api/internal/domain/errors"
	"github.com/SatuKas/api/internal/handler/http/middleware"
	"github.com/SatuKas/api/internal/service"
)

// UserHandler exposes user profile reads over HTTP.
type UserHandler struct {
	logger      *zap.Logger
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		logger:      logger.Named("user_handler"),
		userService: userService,
	}
}

// Me handles GET /api/v1/user/me. The row is reloaded rather than rebuilt
// from token claims so the response reflects current state.
func (h *UserHandler) Me(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "Unauthorized", domainErrors.CodeUnauthorized, h.logger)
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), identity.UserID)
	if err != nil {
		RespondWithDomainError(c, err, h.logger)
		return
	}

	RespondWithSuccess(c, http.StatusOK, "", gin.H{"user": user.ToResponse()})
}
