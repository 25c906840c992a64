package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenType discriminates email-verification and password-reset tokens from
// ordinary access/refresh tokens. Access and refresh tokens carry an empty
// type and are distinguished by which flow presents them.
type TokenType string

const (
	TokenTypeEmailVerification TokenType = "VERIF"
	TokenTypePasswordReset     TokenType = "PASS"
)

// TokenClaims is the payload shared by all four token kinds.
type TokenClaims struct {
	jwt.RegisteredClaims
	Email    string    `json:"email"`
	DeviceID string    `json:"device_id"`
	Type     TokenType `json:"type,omitempty"`
}

// TokenPayload is the input to token generation.
type TokenPayload struct {
	Sub      string
	Email    string
	DeviceID string
	Type     TokenType
}

// TokenPair is a freshly minted access/refresh pair. Expiries are in
// milliseconds. HashedRefreshToken is what gets persisted on the device row,
// never the raw refresh token.
type TokenPair struct {
	AccessToken        string `json:"access_token"`
	RefreshToken       string `json:"refresh_token"`
	AccessExpiresInMS  int64  `json:"access_expires_in"`
	RefreshExpiresInMS int64  `json:"refresh_expires_in"`
	HashedRefreshToken string `json:"-"`
}
