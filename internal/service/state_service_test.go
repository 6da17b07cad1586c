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

var testLoc = time.UTC

type mockStateEventRepo struct {
	events []models.TimeEvent
	err    error
}

func (m *mockStateEventRepo) ListByEmployeeBetween(ctx context.Context, employeeID string, start, end time.Time) ([]models.TimeEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.TimeEvent
	for _, e := range m.events {
		if !e.Timestamp.Before(start) && e.Timestamp.Before(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

func at(hour, minute int) time.Time {
	return time.Date(2026, time.March, 9, hour, minute, 0, 0, testLoc)
}

func event(id int64, t models.EventType, ts time.Time) models.TimeEvent {
	return models.TimeEvent{ID: id, EmployeeID: "emp-1", EventType: t, Timestamp: ts}
}

func TestDeriveStateNoEvents(t *testing.T) {
	state := deriveState(nil, at(12, 0), testLoc)
	assert.Equal(t, models.DutyOffDuty, state.State)
	assert.Nil(t, state.StartedAt)
	assert.Nil(t, state.WorkMinutes)
}

func TestDeriveStateOrphanEventsStayOffDuty(t *testing.T) {
	events := []models.TimeEvent{
		event(1, models.EventBreakStart, at(9, 0)),
		event(2, models.EventBreakEnd, at(9, 15)),
	}
	state := deriveState(events, at(12, 0), testLoc)
	assert.Equal(t, models.DutyOffDuty, state.State)
}

func TestDeriveStateWorking(t *testing.T) {
	events := []models.TimeEvent{
		event(1, models.EventCheckIn, at(8, 0)),
	}
	state := deriveState(events, at(10, 30), testLoc)

	assert.Equal(t, models.DutyWorking, state.State)
	require.NotNil(t, state.StartedAt)
	assert.Equal(t, "08:00", *state.StartedAt)
	require.NotNil(t, state.WorkMinutes)
	assert.Equal(t, 150, *state.WorkMinutes)
	require.NotNil(t, state.BreakMinutes)
	assert.Equal(t, 0, *state.BreakMinutes)
	require.NotNil(t, state.LastAction)
	assert.Equal(t, "Started work", *state.LastAction)
}

func TestDeriveStateOnBreak(t *testing.T) {
	events := []models.TimeEvent{
		event(1, models.EventCheckIn, at(8, 0)),
		event(2, models.EventBreakStart, at(10, 0)),
	}
	state := deriveState(events, at(10, 20), testLoc)

	assert.Equal(t, models.DutyOnBreak, state.State)
	require.NotNil(t, state.BreakStartedAt)
	assert.Equal(t, "10:00", *state.BreakStartedAt)
	require.NotNil(t, state.MinutesOnBreak)
	assert.Equal(t, 20, *state.MinutesOnBreak)
	require.NotNil(t, state.WorkMinutes)
	assert.Equal(t, 120, *state.WorkMinutes)
}

func TestDeriveStateFullShift(t *testing.T) {
	events := []models.TimeEvent{
		event(1, models.EventCheckIn, at(8, 0)),
		event(2, models.EventBreakStart, at(12, 0)),
		event(3, models.EventBreakEnd, at(12, 30)),
		event(4, models.EventCheckOut, at(16, 0)),
	}
	state := deriveState(events, at(18, 0), testLoc)

	assert.Equal(t, models.DutyOffDuty, state.State)
	require.NotNil(t, state.WorkMinutes)
	assert.Equal(t, 450, *state.WorkMinutes)
	require.NotNil(t, state.BreakMinutes)
	assert.Equal(t, 30, *state.BreakMinutes)
	require.NotNil(t, state.LastAction)
	assert.Equal(t, "Finished work", *state.LastAction)
}

func TestDeriveStateRepeatedBreakStartUsesLatest(t *testing.T) {
	events := []models.TimeEvent{
		event(1, models.EventCheckIn, at(8, 0)),
		event(2, models.EventBreakStart, at(9, 0)),
		event(3, models.EventBreakStart, at(10, 0)),
	}
	state := deriveState(events, at(10, 30), testLoc)

	assert.Equal(t, models.DutyOnBreak, state.State)
	require.NotNil(t, state.BreakStartedAt)
	assert.Equal(t, "10:00", *state.BreakStartedAt)
	require.NotNil(t, state.MinutesOnBreak)
	assert.Equal(t, 30, *state.MinutesOnBreak)
}

func TestDeriveStateBreakClampedToCheckOut(t *testing.T) {
	events := []models.TimeEvent{
		event(1, models.EventCheckIn, at(8, 0)),
		event(2, models.EventBreakStart, at(11, 0)),
		event(3, models.EventCheckOut, at(11, 30)),
	}
	state := deriveState(events, at(14, 0), testLoc)

	assert.Equal(t, models.DutyOffDuty, state.State)
	require.NotNil(t, state.BreakMinutes)
	assert.Equal(t, 30, *state.BreakMinutes)
	require.NotNil(t, state.WorkMinutes)
	assert.Equal(t, 180, *state.WorkMinutes)
}

func TestDeriveStateToiletDoesNotChangeState(t *testing.T) {
	events := []models.TimeEvent{
		event(1, models.EventCheckIn, at(8, 0)),
		event(2, models.EventToilet, at(9, 0)),
	}
	state := deriveState(events, at(9, 30), testLoc)

	assert.Equal(t, models.DutyWorking, state.State)
	assert.True(t, state.LastWasToilet)
	require.NotNil(t, state.LastAction)
	assert.Equal(t, "Toilet exit", *state.LastAction)
}

func TestDeriveStateSecondShiftAfterCheckOut(t *testing.T) {
	events := []models.TimeEvent{
		event(1, models.EventCheckIn, at(6, 0)),
		event(2, models.EventCheckOut, at(10, 0)),
		event(3, models.EventCheckIn, at(12, 0)),
	}
	state := deriveState(events, at(13, 0), testLoc)

	assert.Equal(t, models.DutyWorking, state.State)
	require.NotNil(t, state.StartedAt)
	assert.Equal(t, "12:00", *state.StartedAt)
	require.NotNil(t, state.WorkMinutes)
	assert.Equal(t, 60, *state.WorkMinutes)
}

func TestStateServiceDerive(t *testing.T) {
	repo := &mockStateEventRepo{events: []models.TimeEvent{
		event(1, models.EventCheckIn, at(8, 0)),
	}}
	svc := NewStateService(repo, testLoc, zap.NewNop())
	svc.now = func() time.Time { return at(9, 0) }

	state, err := svc.Derive(context.Background(), "emp-1", at(9, 0))
	require.NoError(t, err)
	assert.Equal(t, models.DutyWorking, state.State)
	require.NotNil(t, state.WorkMinutes)
	assert.Equal(t, 60, *state.WorkMinutes)
}

func TestStateServiceDayBounds(t *testing.T) {
	svc := NewStateService(&mockStateEventRepo{}, testLoc, zap.NewNop())
	start, end := svc.DayBounds(at(15, 42))
	assert.Equal(t, at(0, 0), start)
	assert.Equal(t, at(0, 0).AddDate(0, 0, 1), end)
}

func TestWholeMinutesFloors(t *testing.T) {
	from := at(8, 0)
	to := from.Add(4*time.Minute + 59*time.Second)
	assert.Equal(t, 4, wholeMinutes(from, to))
}
