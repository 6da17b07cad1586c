package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/worktrack/timeclock-api/internal/models"
	appErrors "github.com/worktrack/timeclock-api/pkg/errors"
)

// Rejection messages are part of the API contract: tablets display them
// verbatim and tests pin them.
const (
	ReasonUnknownDevice    = "unknown device"
	ReasonInactiveDevice   = "inactive device"
	ReasonStaleShift       = "previous shift was never closed"
	ReasonAlreadyStarted   = "already started today"
	ReasonShiftInProgress  = "shift already in progress"
	ReasonCannotStartBreak = "cannot start a break now"
	ReasonNoOpenBreak      = "no break in progress"
	ReasonNotWorking       = "not currently working"
	ReasonUnknownEventType = "unrecognized event type"

	// Anomaly reasons stored on flagged events.
	AnomalyReasonStaleCheckIn  = "missing checkout from previous shift"
	AnomalyReasonToiletOffDuty = "toilet exit outside working hours"
)

type registrarEventRepository interface {
	LastCheckIn(ctx context.Context, employeeID string) (*models.TimeEvent, error)
	HasCheckOutAfter(ctx context.Context, employeeID string, after models.TimeEvent) (bool, error)
	HasCheckInBetween(ctx context.Context, employeeID string, start, end time.Time) (bool, error)
	MarkAnomaly(ctx context.Context, id int64, reason string) error
	Insert(ctx context.Context, event *models.TimeEvent) (*models.TimeEvent, error)
}

type registrarDeviceRepository interface {
	GetByID(ctx context.Context, id string) (*models.Device, error)
}

type stateDeriver interface {
	Derive(ctx context.Context, employeeID string, day time.Time) (models.EmployeeState, error)
}

// RegistrationResult is the outcome of a registration attempt. A rejection is
// a normal business outcome, never an error: Accepted is false and Message
// carries the human-readable reason.
type RegistrationResult struct {
	Event    *models.TimeEvent `json:"event,omitempty"`
	Accepted bool              `json:"accepted"`
	Message  string            `json:"message"`
}

func rejected(reason string) *RegistrationResult {
	return &RegistrationResult{Accepted: false, Message: reason}
}

// EventService validates and records tablet-submitted time events.
//
// Registrations for the same employee are serialized through a per-employee
// mutex so two near-simultaneous taps cannot both observe OFF_DUTY and both
// write a CHECK_IN. Different employees proceed in parallel.
type EventService struct {
	events  registrarEventRepository
	devices registrarDeviceRepository
	state   stateDeriver
	metrics *MetricsService
	loc     *time.Location
	logger  *zap.Logger

	locks sync.Map // employee id -> *sync.Mutex
	now   func() time.Time
}

// NewEventService constructs the registrar.
func NewEventService(events registrarEventRepository, devices registrarDeviceRepository, state stateDeriver, metrics *MetricsService, loc *time.Location, logger *zap.Logger) *EventService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{
		events:  events,
		devices: devices,
		state:   state,
		metrics: metrics,
		loc:     loc,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *EventService) lockFor(employeeID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(employeeID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Register applies the transition rules and appends the event when legal.
// The timestamp is always stamped here; client-supplied clocks are ignored.
func (s *EventService) Register(ctx context.Context, employeeID, deviceID string, eventType models.EventType) (*RegistrationResult, error) {
	mu := s.lockFor(employeeID)
	mu.Lock()
	defer mu.Unlock()

	result, err := s.register(ctx, employeeID, deviceID, eventType)
	if err == nil {
		s.metrics.RecordRegistration(string(eventType), result.Accepted)
		if !result.Accepted {
			s.logger.Info("event rejected",
				zap.String("employee_id", employeeID),
				zap.String("event_type", string(eventType)),
				zap.String("reason", result.Message),
			)
		}
	}
	return result, err
}

func (s *EventService) register(ctx context.Context, employeeID, deviceID string, eventType models.EventType) (*RegistrationResult, error) {
	now := s.now().In(s.loc)

	device, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "device lookup failed")
	}
	if device == nil {
		return rejected(ReasonUnknownDevice), nil
	}
	if !device.IsActive {
		return rejected(ReasonInactiveDevice), nil
	}

	// Stale-shift guard: an unclosed CHECK_IN from a previous day blocks every
	// event type until the record is reconciled by an admin. The dangling
	// CHECK_IN is flagged on the blocking attempt.
	lastCheckIn, err := s.events.LastCheckIn(ctx, employeeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "check-in lookup failed")
	}
	if lastCheckIn != nil {
		closed, err := s.events.HasCheckOutAfter(ctx, employeeID, *lastCheckIn)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "check-out lookup failed")
		}
		if !closed && localDate(lastCheckIn.Timestamp, s.loc).Before(localDate(now, s.loc)) {
			if err := s.events.MarkAnomaly(ctx, lastCheckIn.ID, AnomalyReasonStaleCheckIn); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to flag stale shift")
			}
			return rejected(ReasonStaleShift), nil
		}
	}

	state, err := s.state.Derive(ctx, employeeID, now)
	if err != nil {
		return nil, err
	}

	event := &models.TimeEvent{
		EmployeeID: employeeID,
		DeviceID:   device.ID,
		EventType:  eventType,
		Timestamp:  now,
	}

	var message string
	switch eventType {
	case models.EventCheckIn:
		dayStart, dayEnd := dayBounds(now, s.loc)
		exists, err := s.events.HasCheckInBetween(ctx, employeeID, dayStart, dayEnd)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "check-in lookup failed")
		}
		if exists {
			return rejected(ReasonAlreadyStarted), nil
		}
		if state.State != models.DutyOffDuty {
			return rejected(ReasonShiftInProgress), nil
		}
		message = "work started"

	case models.EventBreakStart:
		if state.State != models.DutyWorking {
			return rejected(ReasonCannotStartBreak), nil
		}
		message = "break started"

	case models.EventBreakEnd:
		if state.State != models.DutyOnBreak {
			return rejected(ReasonNoOpenBreak), nil
		}
		message = "break ended"

	case models.EventCheckOut:
		if state.State != models.DutyWorking && state.State != models.DutyOnBreak {
			return rejected(ReasonNotWorking), nil
		}
		message = "work finished"

	case models.EventToilet:
		// Toilet exits never change the duty state machine; outside working
		// hours they are stored flagged rather than rejected.
		message = "toilet exit recorded"
		if state.State != models.DutyWorking {
			event.IsAnomaly = true
			event.AnomalyReason = AnomalyReasonToiletOffDuty
			message = "toilet exit recorded (anomaly)"
		}

	default:
		return rejected(ReasonUnknownEventType), nil
	}

	stored, err := s.events.Insert(ctx, event)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store event")
	}
	return &RegistrationResult{Event: stored, Accepted: true, Message: message}, nil
}

// localDate truncates an instant to its local calendar date.
func localDate(t time.Time, loc *time.Location) time.Time {
	d := t.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

// dayBounds returns the [start, end) instants of the local calendar day.
func dayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := localDate(t, loc)
	return start, start.AddDate(0, 0, 1)
}
