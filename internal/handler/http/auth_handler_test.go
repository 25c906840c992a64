package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SatuKas/api/internal/config"
	domainErrors "github.com/SatuKas/api/internal/domain/errors"
	"github.com/SatuKas/api/internal/domain/models"
	eventmodels "github.com/SatuKas/api/internal/events/models"
	"github.com/SatuKas/api/internal/infrastructure/security"
	"github.com/SatuKas/api/internal/service"
	"github.com/SatuKas/api/internal/utils/validator"
)

// --- Mocks ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}
func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}
func (m *MockUserRepository) Update(ctx context.Context, id uuid.UUID, params models.UpdateUserParams) (*models.User, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockDeviceRepository struct {
	mock.Mock
}

func (m *MockDeviceRepository) Create(ctx context.Context, params models.RegisterDeviceParams, deviceLabel string) error {
	args := m.Called(ctx, params, deviceLabel)
	return args.Error(0)
}
func (m *MockDeviceRepository) FindByID(ctx context.Context, id uuid.UUID, filter models.DeviceFilter) (*models.Device, error) {
	args := m.Called(ctx, id, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Device), args.Error(1)
}
func (m *MockDeviceRepository) Update(ctx context.Context, params models.UpdateDeviceParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

type MockTokenBlacklist struct {
	mock.Mock
}

func (m *MockTokenBlacklist) Revoke(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}
func (m *MockTokenBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}
func (m *MockTokenBlacklist) MarkUsed(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}
func (m *MockTokenBlacklist) IsUsed(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

type MockMailSender struct {
	mock.Mock
}

func (m *MockMailSender) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	args := m.Called(ctx, to, name, token)
	return args.Error(0)
}
func (m *MockMailSender) SendPasswordResetEmail(ctx context.Context, to, name, token string) error {
	args := m.Called(ctx, to, name, token)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event eventmodels.AuthEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// --- Suite ---

type handlerSuite struct {
	router     *gin.Engine
	tokens     *service.TokenService
	hasher     security.PasswordHasher
	userRepo   *MockUserRepository
	deviceRepo *MockDeviceRepository
	blacklist  *MockTokenBlacklist
	mail       *MockMailSender
	publisher  *MockPublisher
}

func setupHandlerSuite(t *testing.T) *handlerSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validator.RegisterCustomValidators())

	ts := &handlerSuite{
		userRepo:   new(MockUserRepository),
		deviceRepo: new(MockDeviceRepository),
		blacklist:  new(MockTokenBlacklist),
		mail:       new(MockMailSender),
		publisher:  new(MockPublisher),
	}

	cfg := &config.Config{}
	cfg.App.Environment = "test"
	cfg.App.FrontendURL = "http://localhost:3000"
	cfg.JWT = config.JWTConfig{
		AccessSecret:          "test-access-secret",
		EmailSecret:           "test-email-secret",
		AccessTokenTTL:        15 * time.Minute,
		RefreshTokenTTL:       7 * 24 * time.Hour,
		EmailTokenTTL:         24 * time.Hour,
		PasswordResetTokenTTL: 30 * time.Minute,
		Issuer:                "satukas-api",
	}

	hasher, err := security.NewArgon2idHasher(security.Argon2idParams{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	require.NoError(t, err)
	ts.hasher = hasher

	logger := zap.NewNop()
	ts.tokens = service.NewTokenService(cfg.JWT, ts.blacklist, logger)
	users := service.NewUserService(ts.userRepo, hasher, logger)
	devices := service.NewDeviceService(ts.deviceRepo, logger)
	auth := service.NewAuthService(users, ts.tokens, devices, ts.mail, ts.publisher, cfg.JWT, logger)

	ts.router = NewRouter(RouterDeps{
		Config:      cfg,
		Logger:      logger,
		AuthHandler: NewAuthHandler(auth, logger),
		UserHandler: NewUserHandler(users, logger),
		Tokens:      ts.tokens,
		Devices:     devices,
	})
	return ts
}

func (ts *handlerSuite) postJSON(t *testing.T, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Register_Created(t *testing.T) {
	ts := setupHandlerSuite(t)

	ts.userRepo.On("ExistsByEmail", mock.Anything, "new@example.com").Return(false, nil).Once()
	ts.userRepo.On("ExistsByUsername", mock.Anything, "newuser").Return(false, nil).Once()
	ts.userRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	ts.mail.On("SendVerificationEmail", mock.Anything, "new@example.com", "New User", mock.Anything).Return(nil).Once()
	ts.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()

	w := ts.postJSON(t, "/api/v1/auth/register", gin.H{
		"email":    "new@example.com",
		"password": "password123",
		"name":     "New User",
		"username": "newuser",
	}, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "new@example.com")
	// No token material at registration.
	assert.NotContains(t, w.Body.String(), "access_token")
	assert.NotContains(t, w.Body.String(), "password")
}

func TestAuthHandler_Register_Conflict(t *testing.T) {
	ts := setupHandlerSuite(t)

	ts.userRepo.On("ExistsByEmail", mock.Anything, "taken@example.com").Return(true, nil).Once()

	w := ts.postJSON(t, "/api/v1/auth/register", gin.H{
		"email":    "taken@example.com",
		"password": "password123",
		"name":     "Someone",
		"username": "someone",
	}, nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), string(domainErrors.CodeAlreadyExists))
}

func TestAuthHandler_Register_ValidationError(t *testing.T) {
	ts := setupHandlerSuite(t)

	cases := []gin.H{
		{"email": "not-an-email", "password": "password123", "name": "A", "username": "someone"},
		{"email": "a@b.com", "password": "short", "name": "A", "username": "someone"},
		{"email": "a@b.com", "password": "password123", "name": "A", "username": "Bad Username!"},
	}
	for _, body := range cases {
		w := ts.postJSON(t, "/api/v1/auth/register", body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), string(domainErrors.CodeValidation))
	}
	ts.userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthHandler_Login_Unauthorized(t *testing.T) {
	ts := setupHandlerSuite(t)

	ts.userRepo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, domainErrors.ErrUserNotFound).Once()

	w := ts.postJSON(t, "/api/v1/auth/login", gin.H{
		"email":    "ghost@example.com",
		"password": "whatever",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), string(domainErrors.CodeInvalidCredentials))
}

func TestAuthHandler_Login_EmailNotVerified(t *testing.T) {
	ts := setupHandlerSuite(t)

	hash, err := ts.hasher.HashPassword("password123")
	require.NoError(t, err)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "user@example.com",
		PasswordHash: hash,
		IsVerified:   false,
	}
	ts.userRepo.On("FindByEmail", mock.Anything, user.Email).Return(user, nil).Once()

	w := ts.postJSON(t, "/api/v1/auth/login", gin.H{
		"email":    user.Email,
		"password": "password123",
	}, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), string(domainErrors.CodeEmailNotVerified))
}

func TestAuthHandler_Login_Success(t *testing.T) {
	ts := setupHandlerSuite(t)

	hash, err := ts.hasher.HashPassword("password123")
	require.NoError(t, err)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "user@example.com",
		Username:     "someuser",
		PasswordHash: hash,
		Role:         models.UserRoleUser,
		IsVerified:   true,
	}
	ts.userRepo.On("FindByEmail", mock.Anything, user.Email).Return(user, nil).Once()
	ts.deviceRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	ts.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()

	w := ts.postJSON(t, "/api/v1/auth/login", gin.H{
		"email":    user.Email,
		"password": "password123",
	}, nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.Token.AccessToken)
	assert.NotEmpty(t, resp.Data.Token.RefreshToken)
	assert.NotEmpty(t, resp.Data.DeviceID)
	assert.Equal(t, user.Email, resp.Data.User.Email)
	assert.Positive(t, resp.Data.Expires.AccessToken)
}

func TestAuthHandler_Refresh_InvalidToken(t *testing.T) {
	ts := setupHandlerSuite(t)

	w := ts.postJSON(t, "/api/v1/auth/refresh-token", gin.H{
		"refresh_token": "eyJhbGciOiJIUzI1NiJ9.e30.invalid",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), string(domainErrors.CodeInvalidToken))
}

func TestUserHandler_Me(t *testing.T) {
	ts := setupHandlerSuite(t)
	userID := uuid.New()
	deviceID := uuid.New()

	token, err := ts.tokens.GenerateAccessToken(models.TokenPayload{
		Sub:      userID.String(),
		Email:    "user@example.com",
		DeviceID: deviceID.String(),
	})
	require.NoError(t, err)

	user := &models.User{ID: userID, Email: "user@example.com", Username: "someuser", IsVerified: true}
	ts.blacklist.On("IsBlacklisted", mock.Anything, token).Return(false, nil).Once()
	ts.deviceRepo.On("FindByID", mock.Anything, deviceID, mock.Anything).
		Return(&models.Device{ID: deviceID, UserID: userID}, nil).Once()
	ts.userRepo.On("FindByID", mock.Anything, userID).Return(user, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "someuser")
	assert.NotContains(t, w.Body.String(), "password")
}

func TestUserHandler_Me_RevokedDevice(t *testing.T) {
	ts := setupHandlerSuite(t)
	userID := uuid.New()
	deviceID := uuid.New()

	token, err := ts.tokens.GenerateAccessToken(models.TokenPayload{
		Sub:      userID.String(),
		DeviceID: deviceID.String(),
	})
	require.NoError(t, err)

	ts.blacklist.On("IsBlacklisted", mock.Anything, token).Return(false, nil).Once()
	// The device row is gone; the gate fails closed.
	ts.deviceRepo.On("FindByID", mock.Anything, deviceID, mock.Anything).
		Return(nil, domainErrors.ErrDeviceNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), string(domainErrors.CodeRevokedToken))
	ts.userRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}
