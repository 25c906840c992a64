package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mssola/user_agent"
	"go.uber.org/zap"

	domainErrors "github.com/SatuKas/api/internal/domain/errors"
	"github.com/SatuKas/api/internal/domain/models"
	"github.com/SatuKas/api/internal/domain/repository"
)

// DeviceService owns the per-device session records and their revocation
// state transitions. A device is Active (hash set, not revoked), rotates in
// place on refresh or re-login, and moves to Revoked (hash cleared) on
// logout. Revoked is terminal for that device id; only a fresh login brings
// the id back.
type DeviceService struct {
	deviceRepo repository.DeviceRepository
	logger     *zap.Logger
}

// NewDeviceService creates a new DeviceService.
func NewDeviceService(deviceRepo repository.DeviceRepository, logger *zap.Logger) *DeviceService {
	return &DeviceService{
		deviceRepo: deviceRepo,
		logger:     logger.Named("device_service"),
	}
}

// RegisterAuthDevice creates a new device row. A duplicate id surfaces as a
// conflict; not expected in normal flow since ids are freshly generated.
func (s *DeviceService) RegisterAuthDevice(ctx context.Context, params models.RegisterDeviceParams) error {
	if err := s.deviceRepo.Create(ctx, params, deviceLabel(params.UserAgent)); err != nil {
		return err
	}
	s.logger.Info("Registered auth device",
		zap.String("device_id", params.ID.String()),
		zap.String("user_id", params.UserID.String()),
	)
	return nil
}

// UpdateAuthDevice partially updates a device row. It serves both rotation
// (new hash) and revocation (hash cleared, is_revoked set).
func (s *DeviceService) UpdateAuthDevice(ctx context.Context, params models.UpdateDeviceParams) error {
	return s.deviceRepo.Update(ctx, params)
}

// GetDeviceByID looks a device up by primary key with optional owner and
// revocation filters. A row failing a filter is reported as not found.
func (s *DeviceService) GetDeviceByID(ctx context.Context, deviceID uuid.UUID, userID *uuid.UUID, isRevoked *bool) (*models.Device, error) {
	return s.deviceRepo.FindByID(ctx, deviceID, models.DeviceFilter{
		UserID:    userID,
		IsRevoked: isRevoked,
	})
}

// RevokeDevice transitions a device to revoked with its hash cleared. A
// missing device is not found; revoking twice is a client error, not a
// silent success.
func (s *DeviceService) RevokeDevice(ctx context.Context, deviceID uuid.UUID, userID *uuid.UUID) error {
	device, err := s.GetDeviceByID(ctx, deviceID, userID, nil)
	if err != nil {
		return err
	}
	if device.IsRevoked {
		return domainErrors.ErrDeviceRevoked
	}

	revoked := true
	err = s.deviceRepo.Update(ctx, models.UpdateDeviceParams{
		ID:               deviceID,
		RefreshTokenHash: nil,
		IsRevoked:        &revoked,
	})
	if err != nil {
		return fmt.Errorf("failed to revoke device: %w", err)
	}

	s.logger.Info("Revoked auth device", zap.String("device_id", deviceID.String()))
	return nil
}

// IsDeviceRevoked treats a missing device as revoked, so requests from
// devices that no longer exist fail closed.
func (s *DeviceService) IsDeviceRevoked(ctx context.Context, deviceID uuid.UUID, userID *uuid.UUID) (bool, error) {
	device, err := s.GetDeviceByID(ctx, deviceID, userID, nil)
	if err != nil {
		if errors.Is(err, domainErrors.ErrDeviceNotFound) {
			return true, nil
		}
		return true, err
	}
	return device.IsRevoked, nil
}

// deviceLabel derives a human-readable label like "Chrome on Linux" from the
// raw User-Agent string.
func deviceLabel(rawUA string) string {
	if rawUA == "" {
		return "Unknown device"
	}
	ua := user_agent.New(rawUA)
	browser, _ := ua.Browser()
	os := ua.OS()
	switch {
	case browser != "" && os != "":
		return fmt.Sprintf("%s on %s", browser, os)
	case browser != "":
		return browser
	case os != "":
		return os
	default:
		return "Unknown device"
	}
}
