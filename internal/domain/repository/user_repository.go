package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/SatuKas/api/internal/domain/models"
)

// UserRepository persists user records. Implementations return the domain
// sentinel errors from internal/domain/errors for not-found and uniqueness
// violations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, id uuid.UUID, params models.UpdateUserParams) (*models.User, error)
}
