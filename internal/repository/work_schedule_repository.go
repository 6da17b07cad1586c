package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/worktrack/timeclock-api/internal/models"
)

// WorkScheduleRepository handles persistence for planned work days.
type WorkScheduleRepository struct {
	db *sqlx.DB
}

// NewWorkScheduleRepository constructs the repository.
func NewWorkScheduleRepository(db *sqlx.DB) *WorkScheduleRepository {
	return &WorkScheduleRepository{db: db}
}

const scheduleColumns = "id, employee_id, date, day_type, planned_start, planned_end, created_at"

// ScheduleFilter scopes schedule listing queries.
type ScheduleFilter struct {
	EmployeeID string
	Date       *time.Time
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
}

// GetByEmployeeAndDate returns the schedule row for one day, or nil.
func (r *WorkScheduleRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*models.WorkSchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM work_schedules WHERE employee_id = $1 AND date = $2`, scheduleColumns)
	var schedule models.WorkSchedule
	if err := r.db.GetContext(ctx, &schedule, query, employeeID, date.Format("2006-01-02")); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return &schedule, nil
}

// ListByEmployeeBetween returns schedule rows for an inclusive date range.
func (r *WorkScheduleRepository) ListByEmployeeBetween(ctx context.Context, employeeID string, from, to time.Time) ([]models.WorkSchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM work_schedules
WHERE employee_id = $1 AND date >= $2 AND date <= $3
ORDER BY date ASC`, scheduleColumns)
	var schedules []models.WorkSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, employeeID, from.Format("2006-01-02"), to.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return schedules, nil
}

// List returns schedule rows matching the filter plus the total count.
func (r *WorkScheduleRepository) List(ctx context.Context, filter ScheduleFilter) ([]models.WorkSchedule, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.EmployeeID != "" {
		where = append(where, fmt.Sprintf("employee_id = $%d", len(args)+1))
		args = append(args, filter.EmployeeID)
	}
	if filter.Date != nil {
		where = append(where, fmt.Sprintf("date = $%d", len(args)+1))
		args = append(args, filter.Date.Format("2006-01-02"))
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, filter.DateFrom.Format("2006-01-02"))
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, filter.DateTo.Format("2006-01-02"))
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM work_schedules WHERE %s ORDER BY date ASC, employee_id ASC LIMIT %d OFFSET %d`,
		scheduleColumns, whereClause, size, offset)
	var schedules []models.WorkSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM work_schedules WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}
	return schedules, total, nil
}

// Upsert inserts or replaces the schedule for (employee, date).
func (r *WorkScheduleRepository) Upsert(ctx context.Context, schedule *models.WorkSchedule) (*models.WorkSchedule, error) {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	query := fmt.Sprintf(`INSERT INTO work_schedules (id, employee_id, date, day_type, planned_start, planned_end)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (employee_id, date)
DO UPDATE SET day_type = EXCLUDED.day_type, planned_start = EXCLUDED.planned_start, planned_end = EXCLUDED.planned_end
RETURNING %s`, scheduleColumns)
	var stored models.WorkSchedule
	if err := r.db.GetContext(ctx, &stored, query,
		schedule.ID, schedule.EmployeeID, schedule.Date.Format("2006-01-02"), schedule.DayType, schedule.PlannedStart, schedule.PlannedEnd); err != nil {
		return nil, fmt.Errorf("upsert schedule: %w", err)
	}
	return &stored, nil
}

// Delete removes a schedule row by id.
func (r *WorkScheduleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM work_schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
