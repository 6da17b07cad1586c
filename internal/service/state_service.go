package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/worktrack/timeclock-api/internal/models"
	appErrors "github.com/worktrack/timeclock-api/pkg/errors"
)

type stateEventRepository interface {
	ListByEmployeeBetween(ctx context.Context, employeeID string, start, end time.Time) ([]models.TimeEvent, error)
}

// StateService derives an employee's current duty state from the day's event
// log. The state is a pure function of the ordered events; nothing is cached
// and nothing is stored.
type StateService struct {
	events stateEventRepository
	loc    *time.Location
	logger *zap.Logger

	now func() time.Time
}

// NewStateService constructs the service. loc is the single configured local
// timezone all wall-clock rendering and day bucketing happens in.
func NewStateService(events stateEventRepository, loc *time.Location, logger *zap.Logger) *StateService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StateService{events: events, loc: loc, logger: logger, now: time.Now}
}

// Location exposes the configured timezone to collaborating services.
func (s *StateService) Location() *time.Location {
	return s.loc
}

// DayBounds returns the [start, end) instants covering the local calendar day.
func (s *StateService) DayBounds(day time.Time) (time.Time, time.Time) {
	d := day.In(s.loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.loc)
	return start, start.AddDate(0, 0, 1)
}

// Derive computes the employee's state for the given local calendar day.
func (s *StateService) Derive(ctx context.Context, employeeID string, day time.Time) (models.EmployeeState, error) {
	start, end := s.DayBounds(day)
	events, err := s.events.ListByEmployeeBetween(ctx, employeeID, start, end)
	if err != nil {
		return models.EmployeeState{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time events")
	}
	return deriveState(events, s.now(), s.loc), nil
}

// actionLabel maps an event type to the label shown on the tablet.
func actionLabel(t models.EventType) string {
	switch t {
	case models.EventCheckIn:
		return "Started work"
	case models.EventBreakStart:
		return "Break started"
	case models.EventBreakEnd:
		return "Break ended"
	case models.EventCheckOut:
		return "Finished work"
	case models.EventToilet:
		return "Toilet exit"
	default:
		return "No action"
	}
}

// deriveState folds the day's events, ordered by (timestamp, id), into a
// point-in-time EmployeeState. now is used as the open end of a running shift.
func deriveState(events []models.TimeEvent, now time.Time, loc *time.Location) models.EmployeeState {
	if len(events) == 0 {
		return models.OffDuty()
	}

	last := events[len(events)-1]

	// The last CHECK_IN anchors the current shift. Orphan events without one
	// cannot put the employee on duty.
	var checkIn *models.TimeEvent
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].EventType == models.EventCheckIn {
			checkIn = &events[i]
			break
		}
	}
	if checkIn == nil {
		return models.OffDuty()
	}

	endTime := now
	if last.EventType == models.EventCheckOut {
		endTime = last.Timestamp
	}

	totalMinutes := wholeMinutes(checkIn.Timestamp, endTime)

	var openBreak *models.TimeEvent
	breakMinutes := 0
	for i := range events {
		e := &events[i]
		if e.Timestamp.Before(checkIn.Timestamp) {
			continue
		}
		switch e.EventType {
		case models.EventBreakStart:
			openBreak = e
		case models.EventBreakEnd:
			if openBreak != nil {
				breakEnd := e.Timestamp
				if endTime.Before(breakEnd) {
					breakEnd = endTime
				}
				breakMinutes += wholeMinutes(openBreak.Timestamp, breakEnd)
			}
			openBreak = nil
		}
	}

	var minutesOnBreak *int
	if openBreak != nil && openBreak.Timestamp.Before(endTime) {
		mob := wholeMinutes(openBreak.Timestamp, endTime)
		breakMinutes += mob
		minutesOnBreak = &mob
	}

	state := models.DutyWorking
	switch {
	case last.EventType == models.EventCheckOut:
		state = models.DutyOffDuty
	case openBreak != nil:
		state = models.DutyOnBreak
	}

	workMinutes := totalMinutes - breakMinutes
	if workMinutes < 0 {
		workMinutes = 0
	}

	result := models.EmployeeState{
		State:              state,
		StartedAt:          strPtr(formatHM(checkIn.Timestamp, loc)),
		WorkMinutes:        intPtr(workMinutes),
		BreakMinutes:       intPtr(breakMinutes),
		LastEventType:      strPtr(string(last.EventType)),
		LastAction:         strPtr(actionLabel(last.EventType)),
		LastEventTimestamp: strPtr(last.Timestamp.In(loc).Format(time.RFC3339)),
		MinutesSinceStart:  intPtr(totalMinutes),
		LastWasToilet:      last.EventType == models.EventToilet,
	}
	if state == models.DutyOnBreak && openBreak != nil {
		result.BreakStartedAt = strPtr(formatHM(openBreak.Timestamp, loc))
		result.MinutesOnBreak = minutesOnBreak
	}
	return result
}

// wholeMinutes floors the elapsed seconds between two instants to minutes.
func wholeMinutes(from, to time.Time) int {
	return int(to.Sub(from).Seconds()) / 60
}

func formatHM(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("15:04")
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
