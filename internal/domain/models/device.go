package models

import (
	"time"

	"github.com/google/uuid"
)

// Device is one row per logical client the user has authenticated from.
// The id stays stable across refreshes for the same device; RefreshToken
// holds a one-way hash of the currently valid refresh token, never the raw
// token itself.
//
// Invariant: a revoked device always has RefreshToken == nil.
type Device struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	UserAgent    string    `json:"user_agent" db:"user_agent"`
	DeviceLabel  string    `json:"device_label" db:"device_label"`
	IPAddress    string    `json:"ip_address" db:"ip_address"`
	RefreshToken *string   `json:"-" db:"refresh_token"`
	IsRevoked    bool      `json:"is_revoked" db:"is_revoked"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	LastUsedAt   time.Time `json:"last_used_at" db:"last_used_at"`
}

// RegisterDeviceParams carries the data for a new device row.
type RegisterDeviceParams struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	UserAgent        string
	IPAddress        string
	RefreshTokenHash string
}

// UpdateDeviceParams is a partial update used both for rotation (new hash)
// and revocation (hash cleared, IsRevoked set).
type UpdateDeviceParams struct {
	ID uuid.UUID
	// RefreshTokenHash nil means "set refresh_token to NULL", not "leave
	// unchanged"; every call site rotates or clears the hash.
	RefreshTokenHash *string
	IsRevoked        *bool
}

// DeviceFilter narrows device lookups by owner and revocation state.
type DeviceFilter struct {
	UserID    *uuid.UUID
	IsRevoked *bool
}
