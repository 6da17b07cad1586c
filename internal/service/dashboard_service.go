package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/worktrack/timeclock-api/internal/models"
	appErrors "github.com/worktrack/timeclock-api/pkg/errors"
)

type dashboardEmployeeRepository interface {
	ListAll(ctx context.Context) ([]models.Employee, error)
}

type dashboardScheduleRepository interface {
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*models.WorkSchedule, error)
}

// DashboardService produces one live row per employee for "today". Rows are
// recomputed from the event log on every call; the Redis cache only smooths
// bursts of dashboard polling and is bounded by a short TTL.
type DashboardService struct {
	employees dashboardEmployeeRepository
	schedules dashboardScheduleRepository
	events    stateEventRepository
	state     stateDeriver
	cache     *CacheService
	loc       *time.Location
	logger    *zap.Logger

	now func() time.Time
}

// NewDashboardService constructs the service.
func NewDashboardService(employees dashboardEmployeeRepository, schedules dashboardScheduleRepository, events stateEventRepository, state stateDeriver, cache *CacheService, loc *time.Location, logger *zap.Logger) *DashboardService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		employees: employees,
		schedules: schedules,
		events:    events,
		state:     state,
		cache:     cache,
		loc:       loc,
		logger:    logger,
		now:       time.Now,
	}
}

func statusLabel(status string) string {
	switch status {
	case string(models.DutyWorking):
		return "Working"
	case string(models.DutyOnBreak):
		return "On break"
	case string(models.DutyOffDuty):
		return "Off duty"
	case "ABSENT":
		return "Absent"
	default:
		return status
	}
}

// Live returns today's dashboard rows. The second return value reports
// whether the rows came from cache.
func (s *DashboardService) Live(ctx context.Context) ([]models.DashboardRow, bool, error) {
	now := s.now().In(s.loc)
	day := localDate(now, s.loc)
	cacheKey := fmt.Sprintf("dashboard:live:%s", day.Format(dateLayout))

	var cached []models.DashboardRow
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, true, nil
	}

	employees, err := s.employees.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}

	rows := make([]models.DashboardRow, 0, len(employees))
	for _, employee := range employees {
		row, err := s.buildRow(ctx, employee, day, now)
		if err != nil {
			return nil, false, err
		}
		rows = append(rows, row)
	}

	_ = s.cache.Set(ctx, cacheKey, rows, 0)
	return rows, false, nil
}

func (s *DashboardService) buildRow(ctx context.Context, employee models.Employee, day, now time.Time) (models.DashboardRow, error) {
	schedule, err := s.schedules.GetByEmployeeAndDate(ctx, employee.ID, day)
	if err != nil {
		return models.DashboardRow{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	dayEnd := day.AddDate(0, 0, 1)
	events, err := s.events.ListByEmployeeBetween(ctx, employee.ID, day, dayEnd)
	if err != nil {
		return models.DashboardRow{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time events")
	}

	state, err := s.state.Derive(ctx, employee.ID, day)
	if err != nil {
		return models.DashboardRow{}, err
	}

	status := string(state.State)
	if schedule != nil && schedule.DayType == models.DayTypeWork && len(events) == 0 {
		status = "ABSENT"
	}

	var checkIn, checkOut *models.TimeEvent
	for i := len(events) - 1; i >= 0; i-- {
		if checkIn == nil && events[i].EventType == models.EventCheckIn {
			checkIn = &events[i]
		}
		if checkOut == nil && events[i].EventType == models.EventCheckOut {
			checkOut = &events[i]
		}
	}

	row := models.DashboardRow{
		EmployeeID:   employee.ID,
		EmployeeName: employee.FullName(),
		Status:       status,
		StatusLabel:  statusLabel(status),
		Anomalies:    []string{},
		GeneratedAt:  now,
	}

	if checkIn != nil {
		row.InTime = strPtr(formatHM(checkIn.Timestamp, s.loc))
		row.TotalMinutes = wholeMinutes(checkIn.Timestamp, now)
	}
	if checkOut != nil {
		row.OutTime = strPtr(formatHM(checkOut.Timestamp, s.loc))
	}

	// Break accounting over the full day: an open break keeps counting to now.
	var openBreak *models.TimeEvent
	for i := range events {
		e := &events[i]
		switch e.EventType {
		case models.EventBreakStart:
			openBreak = e
		case models.EventBreakEnd:
			if openBreak != nil {
				row.BreakMinutes += wholeMinutes(openBreak.Timestamp, e.Timestamp)
				openBreak = nil
			}
		}
	}
	if openBreak != nil {
		row.BreakMinutes += wholeMinutes(openBreak.Timestamp, now)
	}

	row.WorkMinutes = row.TotalMinutes - row.BreakMinutes
	if row.WorkMinutes < 0 {
		row.WorkMinutes = 0
	}

	if checkIn != nil && checkOut == nil {
		row.Anomalies = append(row.Anomalies, "MISSING_CHECK_OUT")
	}
	if openBreak != nil {
		row.Anomalies = append(row.Anomalies, "OPEN_BREAK")
	}
	if checkIn == nil && len(events) > 0 {
		row.Anomalies = append(row.Anomalies, "EVENT_WITHOUT_CHECK_IN")
	}

	if len(events) > 0 {
		row.LastAction = strPtr(actionLabel(events[len(events)-1].EventType))
	}

	return row, nil
}
