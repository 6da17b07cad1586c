package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/worktrack/timeclock-api/internal/models"
	appErrors "github.com/worktrack/timeclock-api/pkg/errors"
)

type reportEmployeeRepository interface {
	ListActive(ctx context.Context) ([]models.Employee, error)
	GetByID(ctx context.Context, id string) (*models.Employee, error)
}

type reportScheduleRepository interface {
	ListByEmployeeBetween(ctx context.Context, employeeID string, from, to time.Time) ([]models.WorkSchedule, error)
}

// ReportService aggregates events and schedules over an inclusive date range
// into per-day and per-employee attendance figures.
type ReportService struct {
	employees reportEmployeeRepository
	schedules reportScheduleRepository
	events    stateEventRepository
	threshold int
	loc       *time.Location
	logger    *zap.Logger
}

// NewReportService constructs the aggregator. lateThresholdMinutes is the
// tolerance before a late check-in counts against totals.
func NewReportService(employees reportEmployeeRepository, schedules reportScheduleRepository, events stateEventRepository, lateThresholdMinutes int, loc *time.Location, logger *zap.Logger) *ReportService {
	if lateThresholdMinutes <= 0 {
		lateThresholdMinutes = 5
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		employees: employees,
		schedules: schedules,
		events:    events,
		threshold: lateThresholdMinutes,
		loc:       loc,
		logger:    logger,
	}
}

const dateLayout = "2006-01-02"

// BuildReport computes the attendance report for [from, to]. When employeeID
// is non-empty the report covers that employee only.
func (s *ReportService) BuildReport(ctx context.Context, from, to time.Time, employeeID string) (*models.AttendanceReport, error) {
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "'to' must be on or after 'from'")
	}

	var employees []models.Employee
	if employeeID != "" {
		employee, err := s.employees.GetByID(ctx, employeeID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "employee lookup failed")
		}
		if employee == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		if employee.IsActive {
			employees = []models.Employee{*employee}
		}
	} else {
		all, err := s.employees.ListActive(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
		}
		employees = all
	}

	report := &models.AttendanceReport{
		Range:                models.ReportRange{From: from.Format(dateLayout), To: to.Format(dateLayout)},
		LateThresholdMinutes: s.threshold,
		Employees:            make([]models.ReportEmployee, 0, len(employees)),
	}

	rangeStart := localDate(from, s.loc)
	rangeEnd := localDate(to, s.loc).AddDate(0, 0, 1)

	for _, employee := range employees {
		schedules, err := s.schedules.ListByEmployeeBetween(ctx, employee.ID, from, to)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedules")
		}
		scheduleByDay := make(map[string]models.WorkSchedule, len(schedules))
		for _, schedule := range schedules {
			scheduleByDay[schedule.Date.Format(dateLayout)] = schedule
		}

		events, err := s.events.ListByEmployeeBetween(ctx, employee.ID, rangeStart, rangeEnd)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time events")
		}
		eventsByDay := make(map[string][]models.TimeEvent)
		for _, event := range events {
			key := event.Timestamp.In(s.loc).Format(dateLayout)
			eventsByDay[key] = append(eventsByDay[key], event)
		}

		entry := models.ReportEmployee{
			EmployeeID:   employee.ID,
			EmployeeName: employee.FullName(),
		}

		for day := rangeStart; day.Before(rangeEnd); day = day.AddDate(0, 0, 1) {
			row := s.buildDay(day, scheduleByDay, eventsByDay, &entry.Totals)
			entry.Days = append(entry.Days, row)
		}

		report.Employees = append(report.Employees, entry)
	}

	return report, nil
}

func (s *ReportService) buildDay(day time.Time, scheduleByDay map[string]models.WorkSchedule, eventsByDay map[string][]models.TimeEvent, totals *models.ReportTotals) models.ReportDay {
	key := day.Format(dateLayout)
	dayEvents := eventsByDay[key]

	row := models.ReportDay{
		Date:      key,
		DayType:   models.DayTypeNoSchedule,
		Anomalies: []models.Anomaly{},
	}

	var schedule *models.WorkSchedule
	if sched, ok := scheduleByDay[key]; ok {
		schedule = &sched
		row.DayType = sched.DayType
	}

	if schedule != nil && schedule.DayType == models.DayTypeWork {
		row.Planned = models.PlannedDay{
			Start:   strPtr(schedule.PlannedStart.String()),
			End:     strPtr(schedule.PlannedEnd.String()),
			Minutes: schedule.PlannedMinutes(),
		}
		totals.PlannedMinutes += row.Planned.Minutes
	}
	if schedule != nil && schedule.DayType == models.DayTypeLeave {
		totals.LeaveDays++
	}

	var checkIn, checkOut *models.TimeEvent
	for i := range dayEvents {
		if dayEvents[i].EventType == models.EventCheckIn {
			checkIn = &dayEvents[i]
			break
		}
	}
	for i := len(dayEvents) - 1; i >= 0; i-- {
		if dayEvents[i].EventType == models.EventCheckOut {
			checkOut = &dayEvents[i]
			break
		}
	}

	row.Anomalies = append(row.Anomalies, detectEventAnomalies(dayEvents)...)

	if checkIn != nil {
		row.Actual.CheckIn = strPtr(checkIn.Timestamp.In(s.loc).Format(time.RFC3339))
	}
	if checkOut != nil {
		row.Actual.CheckOut = strPtr(checkOut.Timestamp.In(s.loc).Format(time.RFC3339))
	}

	if checkIn != nil && checkOut != nil && checkOut.Timestamp.After(checkIn.Timestamp) {
		spanMinutes := wholeMinutes(checkIn.Timestamp, checkOut.Timestamp)
		breakMinutes, breakAnomalies := pairBreaks(dayEvents)
		row.Anomalies = append(row.Anomalies, breakAnomalies...)
		row.Actual.BreakMinutes = breakMinutes
		row.Actual.WorkedMinutes = spanMinutes - breakMinutes
		if row.Actual.WorkedMinutes < 0 {
			row.Actual.WorkedMinutes = 0
		}
		totals.WorkedMinutes += row.Actual.WorkedMinutes
		totals.BreakMinutes += breakMinutes
	}

	// Lateness only applies to scheduled WORK days with an actual check-in;
	// exactly-at-threshold is not late.
	if schedule != nil && schedule.DayType == models.DayTypeWork && checkIn != nil && schedule.PlannedStart != nil {
		plannedStart := schedule.PlannedStart.At(day, s.loc)
		diff := wholeMinutes(plannedStart, checkIn.Timestamp)
		if diff > s.threshold {
			row.LatenessMinutes = diff
			totals.LateMinutes += diff
		}
	}

	if schedule != nil && schedule.DayType == models.DayTypeWork && checkIn == nil {
		row.Absence = true
		totals.Absences++
	}

	if len(row.Anomalies) > 0 {
		totals.AnomalyDays++
	}

	return row
}

// pairBreaks walks the day's events and totals the complete
// BREAK_START -> BREAK_END pairs, flagging malformed sequences.
func pairBreaks(events []models.TimeEvent) (int, []models.Anomaly) {
	breakMinutes := 0
	var anomalies []models.Anomaly

	var open *models.TimeEvent
	for i := range events {
		e := &events[i]
		switch e.EventType {
		case models.EventBreakStart:
			if open != nil {
				anomalies = append(anomalies, models.Anomaly{Kind: models.AnomalyBreakStartWhileOpen, Detail: "break already started"})
			} else {
				open = e
			}
		case models.EventBreakEnd:
			if open == nil {
				anomalies = append(anomalies, models.Anomaly{Kind: models.AnomalyBreakEndWithoutStart, Detail: "break end without break start"})
			} else {
				if mins := wholeMinutes(open.Timestamp, e.Timestamp); mins > 0 {
					breakMinutes += mins
				}
				open = nil
			}
		}
	}

	if open != nil {
		anomalies = append(anomalies, models.Anomaly{Kind: models.AnomalyBreakWithoutEnd, Detail: "break started but not ended"})
	}

	return breakMinutes, anomalies
}

// detectEventAnomalies surfaces stored per-event flags plus day-shape
// violations, independent of break pairing.
func detectEventAnomalies(events []models.TimeEvent) []models.Anomaly {
	var anomalies []models.Anomaly

	for _, e := range events {
		if e.IsAnomaly {
			detail := e.AnomalyReason
			if detail == "" {
				detail = "unknown anomaly"
			}
			anomalies = append(anomalies, models.Anomaly{Kind: models.AnomalyEvent, Detail: detail})
		}
	}

	checkIns, checkOuts := 0, 0
	for _, e := range events {
		switch e.EventType {
		case models.EventCheckIn:
			checkIns++
		case models.EventCheckOut:
			checkOuts++
		}
	}

	if checkIns > 1 {
		anomalies = append(anomalies, models.Anomaly{Kind: models.AnomalyMultipleCheckIn, Detail: "more than one CHECK_IN in the same day"})
	}
	if checkOuts > 1 {
		anomalies = append(anomalies, models.Anomaly{Kind: models.AnomalyMultipleCheckOut, Detail: "more than one CHECK_OUT in the same day"})
	}
	if checkOuts > 0 && checkIns == 0 {
		anomalies = append(anomalies, models.Anomaly{Kind: models.AnomalyCheckOutWithoutCheckIn, Detail: "check out exists but no check in"})
	}
	if checkIns > 0 && checkOuts == 0 {
		anomalies = append(anomalies, models.Anomaly{Kind: models.AnomalyMissingCheckOut, Detail: "check in exists but no check out"})
	}

	return anomalies
}
