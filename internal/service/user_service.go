package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SatuKas/api/internal/domain/models"
	"github.com/SatuKas/api/internal/domain/repository"
	"github.com/SatuKas/api/internal/infrastructure/security"
)

// UserService owns user CRUD and credential state. Passwords are stored as
// argon2id hashes only; the plaintext never leaves this layer.
type UserService struct {
	userRepo repository.UserRepository
	hasher   security.PasswordHasher
	logger   *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, hasher security.PasswordHasher, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		hasher:   hasher,
		logger:   logger.Named("user_service"),
	}
}

// CreateUser persists a new unverified user with a hashed password.
func (s *UserService) CreateUser(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	hash, err := s.hasher.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Username:     req.Username,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         models.UserRoleUser,
		IsVerified:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("Created user", zap.String("user_id", user.ID.String()))
	return user, nil
}

// GetUserByID loads a user by id.
func (s *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// GetUserByEmail loads a user by email.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.userRepo.FindByEmail(ctx, email)
}

// IsEmailTaken reports whether the email is already registered.
func (s *UserService) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	return s.userRepo.ExistsByEmail(ctx, email)
}

// IsUsernameTaken reports whether the username is already registered.
func (s *UserService) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	return s.userRepo.ExistsByUsername(ctx, username)
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func (s *UserService) CheckPassword(user *models.User, password string) (bool, error) {
	return s.hasher.CheckPasswordHash(password, user.PasswordHash)
}

// MarkVerified flips is_verified exactly once; the caller guards against
// re-verification.
func (s *UserService) MarkVerified(ctx context.Context, id uuid.UUID) (*models.User, error) {
	verified := true
	now := time.Now().UTC()
	user, err := s.userRepo.Update(ctx, id, models.UpdateUserParams{
		IsVerified: &verified,
		VerifiedAt: &now,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Marked user verified", zap.String("user_id", id.String()))
	return user, nil
}

// ChangePassword replaces the user's password hash.
func (s *UserService) ChangePassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	hash, err := s.hasher.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if _, err := s.userRepo.Update(ctx, id, models.UpdateUserParams{PasswordHash: &hash}); err != nil {
		return err
	}
	s.logger.Info("Changed user password", zap.String("user_id", id.String()))
	return nil
}
