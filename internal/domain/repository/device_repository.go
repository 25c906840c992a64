package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/SatuKas/api/internal/domain/models"
)

// DeviceRepository persists device/session records. Each operation touches a
// single row; the service layer relies on row-level atomicity of the store.
type DeviceRepository interface {
	Create(ctx context.Context, params models.RegisterDeviceParams, deviceLabel string) error
	// FindByID applies the optional owner/revocation filters; a row that
	// exists but fails a filter is reported as not found.
	FindByID(ctx context.Context, id uuid.UUID, filter models.DeviceFilter) (*models.Device, error)
	Update(ctx context.Context, params models.UpdateDeviceParams) error
}

// TokenBlacklist marks raw access tokens as revoked ahead of their natural
// expiry, and tracks used single-use password-reset tokens.
type TokenBlacklist interface {
	Revoke(ctx context.Context, token string) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
	MarkUsed(ctx context.Context, token string) error
	IsUsed(ctx context.Context, token string) (bool, error)
}
