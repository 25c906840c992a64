package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SatuKas/api/internal/config"
	domainErrors "github.com/SatuKas/api/internal/domain/errors"
	"github.com/SatuKas/api/internal/domain/models"
	eventskafka "github.com/SatuKas/api/internal/events/kafka"
	eventmodels "github.com/SatuKas/api/internal/events/models"
)

// MailSender delivers the auth-flow emails. *mailer.Mailer implements it.
type MailSender interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) error
	SendPasswordResetEmail(ctx context.Context, to, name, token string) error
}

// AuthService composes the user, token and device services into the
// end-to-end auth flows. It is the only component that combines them into a
// decision; mail and event publishing are side effects that never fail a
// flow.
type AuthService struct {
	users     *UserService
	tokens    *TokenService
	devices   *DeviceService
	mail      MailSender
	publisher eventskafka.Publisher
	jwtCfg    config.JWTConfig
	logger    *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	users *UserService,
	tokens *TokenService,
	devices *DeviceService,
	mail MailSender,
	publisher eventskafka.Publisher,
	jwtCfg config.JWTConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		devices:   devices,
		mail:      mail,
		publisher: publisher,
		jwtCfg:    jwtCfg,
		logger:    logger.Named("auth_service"),
	}
}

// Register creates an unverified user and sends the verification email. No
// device or tokens are issued at registration; the user logs in after
// verifying. Email uniqueness is checked before username so the caller
// learns which field collided.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	emailTaken, err := s.users.IsEmailTaken(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if emailTaken {
		return nil, domainErrors.ErrEmailExists
	}

	usernameTaken, err := s.users.IsUsernameTaken(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if usernameTaken {
		return nil, domainErrors.ErrUsernameExists
	}

	user, err := s.users.CreateUser(ctx, req)
	if err != nil {
		return nil, err
	}

	s.sendVerificationEmail(ctx, user)
	s.publish(ctx, eventmodels.AuthEvent{
		Type:   eventmodels.EventUserRegistered,
		UserID: user.ID.String(),
		Email:  user.Email,
	})
	return user, nil
}

// Login checks credentials, enforces the verification gate before any token
// work, then binds a token pair to the caller's device.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest, ip, userAgent string) (*models.User, models.TokenPair, string, error) {
	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return nil, models.TokenPair{}, "", domainErrors.ErrInvalidCredentials
		}
		return nil, models.TokenPair{}, "", err
	}

	ok, err := s.users.CheckPassword(user, req.Password)
	if err != nil {
		return nil, models.TokenPair{}, "", err
	}
	if !ok {
		return nil, models.TokenPair{}, "", domainErrors.ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, models.TokenPair{}, "", domainErrors.ErrEmailNotVerified
	}

	pair, deviceID, err := s.registerDevice(ctx, user, ip, userAgent, req.DeviceID)
	if err != nil {
		return nil, models.TokenPair{}, "", err
	}

	s.publish(ctx, eventmodels.AuthEvent{
		Type:     eventmodels.EventUserLoggedIn,
		UserID:   user.ID.String(),
		DeviceID: deviceID,
		Email:    user.Email,
	})
	return user, pair, deviceID, nil
}

// registerDevice looks up or creates the device row for a login and rotates
// its refresh-token hash. Logging in again on a revoked device reactivates
// it with a fresh hash.
func (s *AuthService) registerDevice(ctx context.Context, user *models.User, ip, userAgent, callerDeviceID string) (models.TokenPair, string, error) {
	var device *models.Device
	if callerDeviceID != "" {
		id, err := uuid.Parse(callerDeviceID)
		if err != nil {
			return models.TokenPair{}, "", domainErrors.ErrInvalidRequest
		}
		device, err = s.devices.GetDeviceByID(ctx, id, &user.ID, nil)
		if err != nil && !errors.Is(err, domainErrors.ErrDeviceNotFound) {
			return models.TokenPair{}, "", err
		}
	}

	deviceID := uuid.New()
	if device != nil {
		deviceID = device.ID
	}

	pair, err := s.tokens.GenerateTokenPair(models.TokenPayload{
		Sub:      user.ID.String(),
		Email:    user.Email,
		DeviceID: deviceID.String(),
	})
	if err != nil {
		return models.TokenPair{}, "", err
	}

	if device != nil {
		notRevoked := false
		err = s.devices.UpdateAuthDevice(ctx, models.UpdateDeviceParams{
			ID:               device.ID,
			RefreshTokenHash: &pair.HashedRefreshToken,
			IsRevoked:        &notRevoked,
		})
	} else {
		err = s.devices.RegisterAuthDevice(ctx, models.RegisterDeviceParams{
			ID:               deviceID,
			UserID:           user.ID,
			UserAgent:        userAgent,
			IPAddress:        ip,
			RefreshTokenHash: pair.HashedRefreshToken,
		})
	}
	if err != nil {
		return models.TokenPair{}, "", err
	}
	return pair, deviceID.String(), nil
}

// RefreshToken exchanges a refresh token for a fresh pair. The unverified
// decode only locates the device; authorization requires both the signature
// check and the stored-hash comparison to pass, because the signature alone
// cannot prove the token was not superseded by a later rotation, and the
// hash alone cannot prove authenticity.
func (s *AuthService) RefreshToken(ctx context.Context, req models.RefreshTokenRequest) (models.TokenPair, error) {
	decoded, err := s.tokens.DecodeToken(req.RefreshToken)
	if err != nil {
		return models.TokenPair{}, domainErrors.ErrInvalidRefreshToken
	}

	deviceID, err := uuid.Parse(decoded.DeviceID)
	if err != nil {
		return models.TokenPair{}, domainErrors.ErrInvalidRefreshToken
	}
	userID, err := uuid.Parse(decoded.Subject)
	if err != nil {
		return models.TokenPair{}, domainErrors.ErrInvalidRefreshToken
	}

	notRevoked := false
	device, err := s.devices.GetDeviceByID(ctx, deviceID, &userID, &notRevoked)
	if err != nil {
		if errors.Is(err, domainErrors.ErrDeviceNotFound) {
			return models.TokenPair{}, domainErrors.ErrInvalidRefreshToken
		}
		return models.TokenPair{}, err
	}
	if device.RefreshToken == nil {
		return models.TokenPair{}, domainErrors.ErrInvalidRefreshToken
	}

	if _, err := s.tokens.VerifyToken(req.RefreshToken, ""); err != nil {
		return models.TokenPair{}, err
	}

	match, err := s.tokens.CompareTokenHash(req.RefreshToken, *device.RefreshToken)
	if err != nil {
		return models.TokenPair{}, err
	}
	if !match {
		return models.TokenPair{}, domainErrors.ErrInvalidToken
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return models.TokenPair{}, domainErrors.ErrInvalidToken
		}
		return models.TokenPair{}, err
	}

	pair, err := s.tokens.GenerateTokenPair(models.TokenPayload{
		Sub:      user.ID.String(),
		Email:    user.Email,
		DeviceID: device.ID.String(),
	})
	if err != nil {
		return models.TokenPair{}, err
	}

	err = s.devices.UpdateAuthDevice(ctx, models.UpdateDeviceParams{
		ID:               device.ID,
		RefreshTokenHash: &pair.HashedRefreshToken,
	})
	if err != nil {
		return models.TokenPair{}, err
	}

	s.publish(ctx, eventmodels.AuthEvent{
		Type:     eventmodels.EventTokenRefreshed,
		UserID:   user.ID.String(),
		DeviceID: device.ID.String(),
	})
	return pair, nil
}

// Logout revokes the device and blacklists the presented access token so it
// dies immediately instead of at natural expiry. accessToken may be empty
// for the public logout-by-device-id route.
func (s *AuthService) Logout(ctx context.Context, deviceID uuid.UUID, userID *uuid.UUID, accessToken string) error {
	if err := s.devices.RevokeDevice(ctx, deviceID, userID); err != nil {
		return err
	}

	if accessToken != "" {
		if err := s.tokens.RevokeToken(ctx, accessToken); err != nil {
			s.logger.Error("Failed to blacklist access token on logout", zap.Error(err))
		}
	}

	event := eventmodels.AuthEvent{
		Type:     eventmodels.EventDeviceRevoked,
		DeviceID: deviceID.String(),
	}
	if userID != nil {
		event.UserID = userID.String()
	}
	s.publish(ctx, event)
	return nil
}

// VerifyEmail flips the user's verification state exactly once. The token
// itself is never stored server-side; replaying a still-valid token fails on
// the already-verified check.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.tokens.VerifyToken(token, s.jwtCfg.EmailSecret)
	if err != nil {
		return err
	}
	if claims.Type != models.TokenTypeEmailVerification {
		return domainErrors.ErrInvalidTokenType
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domainErrors.ErrInvalidToken
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return domainErrors.ErrAlreadyVerified
	}

	if _, err := s.users.MarkVerified(ctx, userID); err != nil {
		return err
	}

	s.publish(ctx, eventmodels.AuthEvent{
		Type:   eventmodels.EventUserVerified,
		UserID: user.ID.String(),
		Email:  user.Email,
	})
	return nil
}

// ResendVerification re-sends a fresh verification email. Previously issued
// tokens stay valid; whichever is presented first wins and the rest become
// inert via the already-verified check.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return domainErrors.ErrAlreadyVerified
	}

	s.sendVerificationEmail(ctx, user)
	return nil
}

// ForgotPassword sends a reset email. An unknown address is a silent no-op
// so the endpoint cannot be used to probe for accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return nil
		}
		return err
	}

	token, err := s.tokens.GenerateForgotPasswordToken(models.TokenPayload{
		Sub:   user.ID.String(),
		Email: user.Email,
	})
	if err != nil {
		return err
	}

	if err := s.mail.SendPasswordResetEmail(ctx, user.Email, user.Name, token); err != nil {
		s.logger.Error("Failed to send password reset email",
			zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	return nil
}

// ResetPassword replaces the user's password hash. Reset tokens are
// single-use: a consumed token is tracked in the cache for the remainder of
// its validity window and rejected on replay.
func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	claims, err := s.tokens.VerifyToken(req.Token, s.jwtCfg.EmailSecret)
	if err != nil {
		return err
	}
	if claims.Type != models.TokenTypePasswordReset {
		return domainErrors.ErrInvalidTokenType
	}

	used, err := s.tokens.IsResetTokenUsed(ctx, req.Token)
	if err != nil {
		return err
	}
	if used {
		return domainErrors.ErrTokenUsed
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domainErrors.ErrInvalidToken
	}

	if err := s.users.ChangePassword(ctx, userID, req.Password); err != nil {
		return err
	}

	if err := s.tokens.MarkResetTokenUsed(ctx, req.Token); err != nil {
		s.logger.Error("Failed to mark reset token as used", zap.Error(err))
	}

	s.publish(ctx, eventmodels.AuthEvent{
		Type:   eventmodels.EventPasswordReset,
		UserID: userID.String(),
	})
	return nil
}

func (s *AuthService) sendVerificationEmail(ctx context.Context, user *models.User) {
	token, err := s.tokens.GenerateEmailToken(models.TokenPayload{
		Sub:   user.ID.String(),
		Email: user.Email,
	})
	if err != nil {
		s.logger.Error("Failed to generate verification token",
			zap.String("user_id", user.ID.String()), zap.Error(err))
		return
	}

	if err := s.mail.SendVerificationEmail(ctx, user.Email, user.Name, token); err != nil {
		s.logger.Error("Failed to send verification email",
			zap.String("user_id", user.ID.String()), zap.Error(err))
	}
}

func (s *AuthService) publish(ctx context.Context, event eventmodels.AuthEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish auth event",
			zap.String("type", string(event.Type)), zap.Error(err))
	}
}

// VerifyEmailOutcome is the result surfaced on the HTML confirmation page.
type VerifyEmailOutcome struct {
	OK      bool
	Message string
}

// VerifyEmailFromLink runs the verification flow for the emailed link and
// folds every failure into a page message instead of an error.
func (s *AuthService) VerifyEmailFromLink(ctx context.Context, token string) VerifyEmailOutcome {
	err := s.VerifyEmail(ctx, token)
	switch {
	case err == nil:
		return VerifyEmailOutcome{OK: true, Message: "Your email has been verified"}
	case errors.Is(err, domainErrors.ErrAlreadyVerified):
		return VerifyEmailOutcome{Message: "Email already verified"}
	case errors.Is(err, domainErrors.ErrUserNotFound):
		return VerifyEmailOutcome{Message: "Account not found"}
	default:
		return VerifyEmailOutcome{Message: "Invalid or expired verification link"}
	}
}
