package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/worktrack/timeclock-api/internal/models"
)

type mockRegistrarEventRepo struct {
	lastCheckIn   *models.TimeEvent
	checkedOut    bool
	hasCheckInDay bool
	inserted      []models.TimeEvent
	anomalies     map[int64]string
	nextID        int64
}

func (m *mockRegistrarEventRepo) LastCheckIn(ctx context.Context, employeeID string) (*models.TimeEvent, error) {
	return m.lastCheckIn, nil
}

func (m *mockRegistrarEventRepo) HasCheckOutAfter(ctx context.Context, employeeID string, after models.TimeEvent) (bool, error) {
	return m.checkedOut, nil
}

func (m *mockRegistrarEventRepo) HasCheckInBetween(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	return m.hasCheckInDay, nil
}

func (m *mockRegistrarEventRepo) MarkAnomaly(ctx context.Context, id int64, reason string) error {
	if m.anomalies == nil {
		m.anomalies = make(map[int64]string)
	}
	m.anomalies[id] = reason
	return nil
}

func (m *mockRegistrarEventRepo) Insert(ctx context.Context, event *models.TimeEvent) (*models.TimeEvent, error) {
	m.nextID++
	event.ID = m.nextID
	event.CreatedAt = event.Timestamp
	m.inserted = append(m.inserted, *event)
	return event, nil
}

type mockRegistrarDeviceRepo struct {
	devices map[string]*models.Device
}

func (m *mockRegistrarDeviceRepo) GetByID(ctx context.Context, id string) (*models.Device, error) {
	return m.devices[id], nil
}

type fixedStateDeriver struct {
	state models.EmployeeState
}

func (f *fixedStateDeriver) Derive(ctx context.Context, employeeID string, day time.Time) (models.EmployeeState, error) {
	return f.state, nil
}

func newTestEventService(events *mockRegistrarEventRepo, state models.EmployeeState) *EventService {
	devices := &mockRegistrarDeviceRepo{devices: map[string]*models.Device{
		"dev-1": {ID: "dev-1", Name: "Entrance", IsActive: true},
		"dev-2": {ID: "dev-2", Name: "Broken", IsActive: false},
	}}
	svc := NewEventService(events, devices, &fixedStateDeriver{state: state}, nil, testLoc, zap.NewNop())
	svc.now = func() time.Time { return at(9, 0) }
	return svc
}

func TestRegisterUnknownDevice(t *testing.T) {
	svc := newTestEventService(&mockRegistrarEventRepo{}, models.OffDuty())

	result, err := svc.Register(context.Background(), "emp-1", "nope", models.EventCheckIn)
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, ReasonUnknownDevice, result.Message)
}

func TestRegisterInactiveDevice(t *testing.T) {
	svc := newTestEventService(&mockRegistrarEventRepo{}, models.OffDuty())

	result, err := svc.Register(context.Background(), "emp-1", "dev-2", models.EventCheckIn)
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, ReasonInactiveDevice, result.Message)
}

func TestRegisterStaleShiftBlocksEverything(t *testing.T) {
	yesterday := at(8, 0).AddDate(0, 0, -1)
	stale := &models.TimeEvent{ID: 7, EmployeeID: "emp-1", EventType: models.EventCheckIn, Timestamp: yesterday}

	for _, eventType := range []models.EventType{
		models.EventCheckIn, models.EventCheckOut, models.EventBreakStart, models.EventBreakEnd, models.EventToilet,
	} {
		events := &mockRegistrarEventRepo{lastCheckIn: stale}
		svc := newTestEventService(events, models.OffDuty())

		result, err := svc.Register(context.Background(), "emp-1", "dev-1", eventType)
		require.NoError(t, err)
		assert.False(t, result.Accepted, "event type %s", eventType)
		assert.Equal(t, ReasonStaleShift, result.Message)
		assert.Equal(t, AnomalyReasonStaleCheckIn, events.anomalies[7])
		assert.Empty(t, events.inserted)
	}
}

func TestRegisterClosedPreviousShiftDoesNotBlock(t *testing.T) {
	yesterday := at(8, 0).AddDate(0, 0, -1)
	events := &mockRegistrarEventRepo{
		lastCheckIn: &models.TimeEvent{ID: 7, EventType: models.EventCheckIn, Timestamp: yesterday},
		checkedOut:  true,
	}
	svc := newTestEventService(events, models.OffDuty())

	result, err := svc.Register(context.Background(), "emp-1", "dev-1", models.EventCheckIn)
	require.NoError(t, err)
	assert.True(t, result.Accepted)
}

func TestRegisterDuplicateCheckIn(t *testing.T) {
	events := &mockRegistrarEventRepo{hasCheckInDay: true}
	svc := newTestEventService(events, models.OffDuty())

	result, err := svc.Register(context.Background(), "emp-1", "dev-1", models.EventCheckIn)
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, ReasonAlreadyStarted, result.Message)
	assert.Empty(t, events.inserted)
}

func TestRegisterCheckInWhileWorking(t *testing.T) {
	svc := newTestEventService(&mockRegistrarEventRepo{}, models.EmployeeState{State: models.DutyWorking})

	result, err := svc.Register(context.Background(), "emp-1", "dev-1", models.EventCheckIn)
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, ReasonShiftInProgress, result.Message)
}

func TestRegisterCheckInAccepted(t *testing.T) {
	events := &mockRegistrarEventRepo{}
	svc := newTestEventService(events, models.OffDuty())

	result, err := svc.Register(context.Background(), "emp-1", "dev-1", models.EventCheckIn)
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	require.NotNil(t, result.Event)
	assert.Equal(t, at(9, 0), result.Event.Timestamp)
	assert.Equal(t, "dev-1", result.Event.DeviceID)
	require.Len(t, events.inserted, 1)
}

func TestRegisterBreakStartRequiresWorking(t *testing.T) {
	svc := newTestEventService(&mockRegistrarEventRepo{}, models.OffDuty())

	result, err := svc.Register(context.Background(), "emp-1", "dev-1", models.EventBreakStart)
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, ReasonCannotStartBreak, result.Message)
}

func TestRegisterBreakEndRequiresOpenBreak(t *testing.T) {
	svc := newTestEventService(&mockRegistrarEventRepo{}, models.EmployeeState{State: models.DutyWorking})

	result, err := svc.Register(context.Background(), "emp-1", "dev-1", models.EventBreakEnd)
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, ReasonNoOpenBreak, result.Message)
}

func TestRegisterCheckOutWhileOnBreak(t *testing.T) {
	events := &mockRegistrarEventRepo{}
	svc := newTestEventService(events, models.EmployeeState{State: models.DutyOnBreak})

	result, err := svc.Register(context.Background(), "emp-1", "dev-1", models.EventCheckOut)
	require.NoError(t, err)
	assert.True(t, result.Accepted)
}

func TestRegisterCheckOutOffDutyRejected(t *testing.T) {
	svc := newTestEventService(&mockRegistrarEventRepo{}, models.OffDuty())

	result, err := svc.Register(context.Background(), "emp-1", "dev-1", models.EventCheckOut)
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, ReasonNotWorking, result.Message)
}

func TestRegisterToiletWhileWorking(t *testing.T) {
	events := &mockRegistrarEventRepo{}
	svc := newTestEventService(events, models.EmployeeState{State: models.DutyWorking})

	result, err := svc.Register(context.Background(), "emp-1", "dev-1", models.EventToilet)
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	require.NotNil(t, result.Event)
	assert.False(t, result.Event.IsAnomaly)
}

func TestRegisterToiletOffDutyFlagged(t *testing.T) {
	events := &mockRegistrarEventRepo{}
	svc := newTestEventService(events, models.OffDuty())

	result, err := svc.Register(context.Background(), "emp-1", "dev-1", models.EventToilet)
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	require.NotNil(t, result.Event)
	assert.True(t, result.Event.IsAnomaly)
	assert.Equal(t, AnomalyReasonToiletOffDuty, result.Event.AnomalyReason)
}

func TestRegisterUnknownEventType(t *testing.T) {
	svc := newTestEventService(&mockRegistrarEventRepo{}, models.OffDuty())

	result, err := svc.Register(context.Background(), "emp-1", "dev-1", models.EventType("LUNCH"))
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, ReasonUnknownEventType, result.Message)
}
