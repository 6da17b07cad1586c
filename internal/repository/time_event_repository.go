package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/worktrack/timeclock-api/internal/models"
)

// TimeEventRepository handles persistence for the append-only time event log.
type TimeEventRepository struct {
	db *sqlx.DB
}

// NewTimeEventRepository constructs the repository.
func NewTimeEventRepository(db *sqlx.DB) *TimeEventRepository {
	return &TimeEventRepository{db: db}
}

const timeEventColumns = "id, employee_id, device_id, event_type, timestamp, is_anomaly, anomaly_reason, created_at"

// ListByEmployeeBetween returns events with start <= timestamp < end, in the
// authoritative (timestamp, id) ascending order.
func (r *TimeEventRepository) ListByEmployeeBetween(ctx context.Context, employeeID string, start, end time.Time) ([]models.TimeEvent, error) {
	query := fmt.Sprintf(`SELECT %s FROM time_events
WHERE employee_id = $1 AND timestamp >= $2 AND timestamp < $3
ORDER BY timestamp ASC, id ASC`, timeEventColumns)
	var events []models.TimeEvent
	if err := r.db.SelectContext(ctx, &events, query, employeeID, start, end); err != nil {
		return nil, fmt.Errorf("list time events: %w", err)
	}
	return events, nil
}

// LastCheckIn returns the employee's most recent CHECK_IN across all days,
// or nil when the employee has never checked in.
func (r *TimeEventRepository) LastCheckIn(ctx context.Context, employeeID string) (*models.TimeEvent, error) {
	query := fmt.Sprintf(`SELECT %s FROM time_events
WHERE employee_id = $1 AND event_type = $2
ORDER BY timestamp DESC, id DESC
LIMIT 1`, timeEventColumns)
	var event models.TimeEvent
	if err := r.db.GetContext(ctx, &event, query, employeeID, models.EventCheckIn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last check-in: %w", err)
	}
	return &event, nil
}

// HasCheckOutAfter reports whether a CHECK_OUT exists after the given event
// in (timestamp, id) order.
func (r *TimeEventRepository) HasCheckOutAfter(ctx context.Context, employeeID string, after models.TimeEvent) (bool, error) {
	query := `SELECT EXISTS (
SELECT 1 FROM time_events
WHERE employee_id = $1 AND event_type = $2 AND (timestamp, id) > ($3, $4))`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, employeeID, models.EventCheckOut, after.Timestamp, after.ID); err != nil {
		return false, fmt.Errorf("check-out lookup: %w", err)
	}
	return exists, nil
}

// HasCheckInBetween reports whether a CHECK_IN exists in [start, end).
func (r *TimeEventRepository) HasCheckInBetween(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	query := `SELECT EXISTS (
SELECT 1 FROM time_events
WHERE employee_id = $1 AND event_type = $2 AND timestamp >= $3 AND timestamp < $4)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, employeeID, models.EventCheckIn, start, end); err != nil {
		return false, fmt.Errorf("check-in lookup: %w", err)
	}
	return exists, nil
}

// MarkAnomaly flags an existing event. The event itself stays immutable;
// only the anomaly flag and reason are writable after insertion.
func (r *TimeEventRepository) MarkAnomaly(ctx context.Context, id int64, reason string) error {
	query := `UPDATE time_events SET is_anomaly = TRUE, anomaly_reason = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, reason)
	if err != nil {
		return fmt.Errorf("mark anomaly: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("mark anomaly: event %d not found", id)
	}
	return nil
}

// Insert appends a new event and fills in its server-assigned id.
func (r *TimeEventRepository) Insert(ctx context.Context, event *models.TimeEvent) (*models.TimeEvent, error) {
	query := `INSERT INTO time_events (employee_id, device_id, event_type, timestamp, is_anomaly, anomaly_reason)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query,
		event.EmployeeID, event.DeviceID, event.EventType, event.Timestamp, event.IsAnomaly, event.AnomalyReason)
	if err := row.Scan(&event.ID, &event.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert time event: %w", err)
	}
	return event, nil
}

// LastByDevice returns the newest event submitted through a device, or nil.
func (r *TimeEventRepository) LastByDevice(ctx context.Context, deviceID string) (*models.TimeEvent, error) {
	query := fmt.Sprintf(`SELECT %s FROM time_events
WHERE device_id = $1
ORDER BY timestamp DESC, id DESC
LIMIT 1`, timeEventColumns)
	var event models.TimeEvent
	if err := r.db.GetContext(ctx, &event, query, deviceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last device event: %w", err)
	}
	return &event, nil
}

// CountByDevice returns the number of events submitted through a device.
func (r *TimeEventRepository) CountByDevice(ctx context.Context, deviceID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM time_events WHERE device_id = $1`, deviceID); err != nil {
		return 0, fmt.Errorf("count device events: %w", err)
	}
	return total, nil
}
