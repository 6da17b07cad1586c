package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/worktrack/timeclock-api/internal/models"
)

// DeviceRepository reads registered tablet records.
type DeviceRepository struct {
	db *sqlx.DB
}

// NewDeviceRepository constructs the repository.
func NewDeviceRepository(db *sqlx.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

const deviceColumns = "id, name, device_id, api_token, is_active, created_at"

// GetByID returns a device by primary key, or nil when absent.
func (r *DeviceRepository) GetByID(ctx context.Context, id string) (*models.Device, error) {
	query := fmt.Sprintf(`SELECT %s FROM devices WHERE id = $1`, deviceColumns)
	var device models.Device
	if err := r.db.GetContext(ctx, &device, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get device: %w", err)
	}
	return &device, nil
}

// GetByAPIToken resolves the token the tablet authenticates with, or nil.
func (r *DeviceRepository) GetByAPIToken(ctx context.Context, token string) (*models.Device, error) {
	query := fmt.Sprintf(`SELECT %s FROM devices WHERE api_token = $1`, deviceColumns)
	var device models.Device
	if err := r.db.GetContext(ctx, &device, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get device by token: %w", err)
	}
	return &device, nil
}
