package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/SatuKas/api/internal/domain/errors"
	"github.com/SatuKas/api/internal/domain/models"
	"github.com/SatuKas/api/internal/domain/repository"
)

// pgxDeviceRepository implements repository.DeviceRepository using pgx.
type pgxDeviceRepository struct {
	db *pgxpool.Pool
}

// NewPgxDeviceRepository creates a new instance of pgxDeviceRepository.
func NewPgxDeviceRepository(db *pgxpool.Pool) repository.DeviceRepository {
	return &pgxDeviceRepository{db: db}
}

const deviceColumns = `id, user_id, user_agent, device_label, ip_address, refresh_token, is_revoked, created_at, last_used_at`

func scanDevice(row pgx.Row) (*models.Device, error) {
	device := &models.Device{}
	err := row.Scan(
		&device.ID, &device.UserID, &device.UserAgent, &device.DeviceLabel, &device.IPAddress,
		&device.RefreshToken, &device.IsRevoked, &device.CreatedAt, &device.LastUsedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrDeviceNotFound
		}
		return nil, err
	}
	return device, nil
}

func (r *pgxDeviceRepository) Create(ctx context.Context, params models.RegisterDeviceParams, deviceLabel string) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO devices (id, user_id, user_agent, device_label, ip_address, refresh_token, is_revoked, created_at, last_used_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, $7, $7)`
	_, err := r.db.Exec(ctx, query,
		params.ID, params.UserID, params.UserAgent, deviceLabel, params.IPAddress,
		params.RefreshTokenHash, now,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return domainErrors.ErrDeviceExists
		}
		return fmt.Errorf("failed to create device: %w", err)
	}
	return nil
}

func (r *pgxDeviceRepository) FindByID(ctx context.Context, id uuid.UUID, filter models.DeviceFilter) (*models.Device, error) {
	conditions := []string{"id = $1"}
	args := []interface{}{id}
	idx := 2

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", idx))
		args = append(args, *filter.UserID)
		idx++
	}
	if filter.IsRevoked != nil {
		conditions = append(conditions, fmt.Sprintf("is_revoked = $%d", idx))
		args = append(args, *filter.IsRevoked)
	}

	query := `SELECT ` + deviceColumns + ` FROM devices WHERE ` + strings.Join(conditions, " AND ")
	device, err := scanDevice(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, domainErrors.ErrDeviceNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find device: %w", err)
	}
	return device, nil
}

func (r *pgxDeviceRepository) Update(ctx context.Context, params models.UpdateDeviceParams) error {
	sets := []string{"refresh_token = $1", "last_used_at = $2"}
	args := []interface{}{params.RefreshTokenHash, time.Now().UTC()}
	idx := 3

	if params.IsRevoked != nil {
		sets = append(sets, fmt.Sprintf("is_revoked = $%d", idx))
		args = append(args, *params.IsRevoked)
		idx++
	}

	query := fmt.Sprintf("UPDATE devices SET %s WHERE id = $%d", strings.Join(sets, ", "), idx)
	args = append(args, params.ID)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update device: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrDeviceNotFound
	}
	return nil
}
