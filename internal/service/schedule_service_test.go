package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/worktrack/timeclock-api/internal/models"
	"github.com/worktrack/timeclock-api/internal/repository"
	appErrors "github.com/worktrack/timeclock-api/pkg/errors"
)

const testEmployeeID = "a81bc81b-dead-4e5d-abff-90865d1e13b1"

type mockScheduleRepo struct {
	listResult []models.WorkSchedule
	listTotal  int
	upserted   []models.WorkSchedule
	deleted    []string
	deleteErr  error
}

func (m *mockScheduleRepo) List(ctx context.Context, filter repository.ScheduleFilter) ([]models.WorkSchedule, int, error) {
	return m.listResult, m.listTotal, nil
}

func (m *mockScheduleRepo) Upsert(ctx context.Context, schedule *models.WorkSchedule) (*models.WorkSchedule, error) {
	stored := *schedule
	stored.ID = "sched-1"
	stored.CreatedAt = time.Now()
	m.upserted = append(m.upserted, stored)
	return &stored, nil
}

func (m *mockScheduleRepo) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockScheduleEmployeeRepo struct {
	byID map[string]*models.Employee
}

func (m *mockScheduleEmployeeRepo) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	return m.byID[id], nil
}

func newTestScheduleService(repo *mockScheduleRepo) *ScheduleService {
	employees := &mockScheduleEmployeeRepo{byID: map[string]*models.Employee{
		testEmployeeID: {ID: testEmployeeID, FirstName: "Anna", LastName: "Nowak", IsActive: true},
	}}
	return NewScheduleService(repo, employees, nil, validator.New(), testLoc, zap.NewNop())
}

func TestScheduleUpsertWorkDay(t *testing.T) {
	repo := &mockScheduleRepo{}
	svc := newTestScheduleService(repo)

	start, end := "08:00", "16:00"
	stored, err := svc.Upsert(context.Background(), ScheduleInput{
		EmployeeID:   testEmployeeID,
		Date:         "2026-03-09",
		DayType:      "WORK",
		PlannedStart: &start,
		PlannedEnd:   &end,
	})
	require.NoError(t, err)
	assert.Equal(t, models.DayTypeWork, stored.DayType)
	require.NotNil(t, stored.PlannedStart)
	assert.Equal(t, "08:00", stored.PlannedStart.String())
	assert.Equal(t, 480, stored.PlannedMinutes())
	require.Len(t, repo.upserted, 1)
}

func TestScheduleUpsertWorkDayRequiresTimes(t *testing.T) {
	svc := newTestScheduleService(&mockScheduleRepo{})

	_, err := svc.Upsert(context.Background(), ScheduleInput{
		EmployeeID: testEmployeeID,
		Date:       "2026-03-09",
		DayType:    "WORK",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleUpsertEndBeforeStartRejected(t *testing.T) {
	svc := newTestScheduleService(&mockScheduleRepo{})

	start, end := "16:00", "08:00"
	_, err := svc.Upsert(context.Background(), ScheduleInput{
		EmployeeID:   testEmployeeID,
		Date:         "2026-03-09",
		DayType:      "WORK",
		PlannedStart: &start,
		PlannedEnd:   &end,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleUpsertLeaveDayRejectsTimes(t *testing.T) {
	svc := newTestScheduleService(&mockScheduleRepo{})

	start := "08:00"
	_, err := svc.Upsert(context.Background(), ScheduleInput{
		EmployeeID:   testEmployeeID,
		Date:         "2026-03-09",
		DayType:      "LEAVE",
		PlannedStart: &start,
	})
	require.Error(t, err)
}

func TestScheduleUpsertUnknownEmployee(t *testing.T) {
	svc := newTestScheduleService(&mockScheduleRepo{})

	_, err := svc.Upsert(context.Background(), ScheduleInput{
		EmployeeID: "b91bc81b-dead-4e5d-abff-90865d1e13b2",
		Date:       "2026-03-09",
		DayType:    "OFF",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestScheduleUpsertInvalidDayType(t *testing.T) {
	svc := newTestScheduleService(&mockScheduleRepo{})

	_, err := svc.Upsert(context.Background(), ScheduleInput{
		EmployeeID: testEmployeeID,
		Date:       "2026-03-09",
		DayType:    "HOLIDAY",
	})
	require.Error(t, err)
}

func TestScheduleListRejectsInvertedRange(t *testing.T) {
	svc := newTestScheduleService(&mockScheduleRepo{})

	_, _, err := svc.List(context.Background(), ScheduleListQuery{
		DateFrom: "2026-03-10",
		DateTo:   "2026-03-09",
	})
	require.Error(t, err)
}

func TestScheduleListPagination(t *testing.T) {
	repo := &mockScheduleRepo{
		listResult: []models.WorkSchedule{{ID: "sched-1"}},
		listTotal:  101,
	}
	svc := newTestScheduleService(repo)

	schedules, pagination, err := svc.List(context.Background(), ScheduleListQuery{Page: 2, PageSize: 50})
	require.NoError(t, err)
	assert.Len(t, schedules, 1)
	require.NotNil(t, pagination)
	assert.Equal(t, 2, pagination.Page)
	assert.Equal(t, 50, pagination.PageSize)
	assert.Equal(t, 101, pagination.TotalCount)
}

func TestScheduleDeleteNotFound(t *testing.T) {
	repo := &mockScheduleRepo{deleteErr: sql.ErrNoRows}
	svc := newTestScheduleService(repo)

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestScheduleDelete(t *testing.T) {
	repo := &mockScheduleRepo{}
	svc := newTestScheduleService(repo)

	require.NoError(t, svc.Delete(context.Background(), "sched-1"))
	assert.Equal(t, []string{"sched-1"}, repo.deleted)
}
