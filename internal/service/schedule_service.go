package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/worktrack/timeclock-api/internal/models"
	"github.com/worktrack/timeclock-api/internal/repository"
	appErrors "github.com/worktrack/timeclock-api/pkg/errors"
)

type scheduleRepository interface {
	List(ctx context.Context, filter repository.ScheduleFilter) ([]models.WorkSchedule, int, error)
	Upsert(ctx context.Context, schedule *models.WorkSchedule) (*models.WorkSchedule, error)
	Delete(ctx context.Context, id string) error
}

type scheduleEmployeeRepository interface {
	GetByID(ctx context.Context, id string) (*models.Employee, error)
}

// ScheduleInput is the write payload for a planned day.
type ScheduleInput struct {
	EmployeeID   string  `json:"employee_id" validate:"required,uuid4"`
	Date         string  `json:"date" validate:"required,datetime=2006-01-02"`
	DayType      string  `json:"day_type" validate:"required,oneof=WORK OFF LEAVE"`
	PlannedStart *string `json:"planned_start" validate:"omitempty"`
	PlannedEnd   *string `json:"planned_end" validate:"omitempty"`
}

// ScheduleListQuery scopes schedule listings.
type ScheduleListQuery struct {
	EmployeeID string
	Date       string
	DateFrom   string
	DateTo     string
	Page       int
	PageSize   int
}

// ScheduleService manages planned work days.
type ScheduleService struct {
	schedules scheduleRepository
	employees scheduleEmployeeRepository
	dashboard *CacheService
	validator *validator.Validate
	loc       *time.Location
	logger    *zap.Logger
}

// NewScheduleService constructs the service.
func NewScheduleService(schedules scheduleRepository, employees scheduleEmployeeRepository, dashboardCache *CacheService, v *validator.Validate, loc *time.Location, logger *zap.Logger) *ScheduleService {
	if v == nil {
		v = validator.New()
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		schedules: schedules,
		employees: employees,
		dashboard: dashboardCache,
		validator: v,
		loc:       loc,
		logger:    logger,
	}
}

// List returns schedules matching the query plus pagination metadata.
func (s *ScheduleService) List(ctx context.Context, query ScheduleListQuery) ([]models.WorkSchedule, *models.Pagination, error) {
	filter := repository.ScheduleFilter{
		EmployeeID: query.EmployeeID,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	var err error
	if filter.Date, err = parseOptionalDate(query.Date, s.loc); err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}
	if filter.DateFrom, err = parseOptionalDate(query.DateFrom, s.loc); err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid date_from, expected YYYY-MM-DD")
	}
	if filter.DateTo, err = parseOptionalDate(query.DateTo, s.loc); err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid date_to, expected YYYY-MM-DD")
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "date_to must be on or after date_from")
	}

	schedules, total, err := s.schedules.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	pagination := &models.Pagination{
		Page:       page,
		PageSize:   size,
		TotalCount: total,
	}
	return schedules, pagination, nil
}

// Upsert validates the input and inserts or replaces the planned day. A
// second write for the same (employee, date) overwrites the previous row.
func (s *ScheduleService) Upsert(ctx context.Context, input ScheduleInput) (*models.WorkSchedule, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}

	employee, err := s.employees.GetByID(ctx, input.EmployeeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "employee lookup failed")
	}
	if employee == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
	}

	date, err := time.ParseInLocation(dateLayout, input.Date, s.loc)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}

	schedule := &models.WorkSchedule{
		EmployeeID: input.EmployeeID,
		Date:       date,
		DayType:    models.DayType(input.DayType),
	}
	if schedule.PlannedStart, err = parseOptionalTimeOfDay(input.PlannedStart); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid planned_start, expected HH:MM")
	}
	if schedule.PlannedEnd, err = parseOptionalTimeOfDay(input.PlannedEnd); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid planned_end, expected HH:MM")
	}
	if err := schedule.Validate(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	stored, err := s.schedules.Upsert(ctx, schedule)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store schedule")
	}

	s.invalidateDashboard(ctx)
	s.logger.Info("schedule upserted",
		zap.String("employee_id", stored.EmployeeID),
		zap.String("date", stored.Date.Format(dateLayout)),
		zap.String("day_type", string(stored.DayType)))
	return stored, nil
}

// Delete removes a planned day by id.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return appErrors.Clone(appErrors.ErrValidation, "schedule id is required")
	}
	if err := s.schedules.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}
	s.invalidateDashboard(ctx)
	return nil
}

func (s *ScheduleService) invalidateDashboard(ctx context.Context) {
	if err := s.dashboard.Invalidate(ctx, "dashboard:live:*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func parseOptionalDate(value string, loc *time.Location) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseOptionalTimeOfDay(value *string) (*models.TimeOfDay, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	tod, err := models.ParseTimeOfDay(*value)
	if err != nil {
		return nil, err
	}
	return &tod, nil
}
