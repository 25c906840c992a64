package models

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	Username string `json:"username" binding:"required,username"`
}

// LoginRequest is the payload for POST /auth/login. DeviceID is optional;
// when absent a fresh device id is generated server-side.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	DeviceID string `json:"device_id" binding:"omitempty,uuid"`
}

// RefreshTokenRequest is the payload for POST /auth/refresh-token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required,jwt"`
}

// VerifyEmailRequest is the payload for POST /auth/email/verify.
type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required,jwt"`
}

// ForgotPasswordRequest is the payload for POST /auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest is the payload for POST /auth/reset-password.
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required,jwt"`
	Password string `json:"password" binding:"required,min=6"`
}

// TokenPairResponse is the token section of login/refresh responses.
type TokenPairResponse struct {
	Token   TokenStrings `json:"token"`
	Expires TokenExpires `json:"expires"`
}

type TokenStrings struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenExpires reports remaining lifetimes in milliseconds.
type TokenExpires struct {
	AccessToken  int64 `json:"access_token"`
	RefreshToken int64 `json:"refresh_token"`
}

// NewTokenPairResponse shapes a TokenPair for the API envelope.
func NewTokenPairResponse(pair TokenPair) TokenPairResponse {
	return TokenPairResponse{
		Token: TokenStrings{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		},
		Expires: TokenExpires{
			AccessToken:  pair.AccessExpiresInMS,
			RefreshToken: pair.RefreshExpiresInMS,
		},
	}
}

// LoginResponse is the data section of a successful login.
type LoginResponse struct {
	User     UserResponse `json:"user"`
	DeviceID string       `json:"device_id"`
	TokenPairResponse
}
