package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worktrack/timeclock-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func timeEventRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "employee_id", "device_id", "event_type", "timestamp", "is_anomaly", "anomaly_reason", "created_at"})
}

func TestTimeEventRepositoryListOrdersByTimestampThenID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeEventRepository(db)

	now := time.Now()
	rows := timeEventRows().
		AddRow(int64(1), "emp-1", "dev-1", "CHECK_IN", now, false, "", now).
		AddRow(int64(2), "emp-1", "dev-1", "CHECK_OUT", now.Add(8*time.Hour), false, "", now)
	mock.ExpectQuery("SELECT id, employee_id, device_id, event_type, timestamp, is_anomaly, anomaly_reason, created_at FROM time_events\\s+WHERE employee_id = \\$1 AND timestamp >= \\$2 AND timestamp < \\$3\\s+ORDER BY timestamp ASC, id ASC").
		WithArgs("emp-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	events, err := repo.ListByEmployeeBetween(context.Background(), "emp-1", now, now.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventCheckIn, events[0].EventType)
	assert.Equal(t, int64(2), events[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeEventRepositoryLastCheckInNone(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeEventRepository(db)

	mock.ExpectQuery("SELECT .+ FROM time_events").
		WithArgs("emp-1", models.EventCheckIn).
		WillReturnRows(timeEventRows())

	event, err := repo.LastCheckIn(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Nil(t, event)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeEventRepositoryHasCheckOutAfter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeEventRepository(db)

	after := models.TimeEvent{ID: 7, Timestamp: time.Now()}
	mock.ExpectQuery(regexp.QuoteMeta("(timestamp, id) > ($3, $4)")).
		WithArgs("emp-1", models.EventCheckOut, after.Timestamp, after.ID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.HasCheckOutAfter(context.Background(), "emp-1", after)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeEventRepositoryMarkAnomaly(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeEventRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE time_events SET is_anomaly = TRUE, anomaly_reason = $2 WHERE id = $1")).
		WithArgs(int64(7), "missing checkout from previous shift").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkAnomaly(context.Background(), 7, "missing checkout from previous shift"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeEventRepositoryMarkAnomalyMissingEvent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeEventRepository(db)

	mock.ExpectExec("UPDATE time_events").
		WithArgs(int64(99), "x").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkAnomaly(context.Background(), 99, "x")
	require.Error(t, err)
}

func TestTimeEventRepositoryInsertFillsServerFields(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeEventRepository(db)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO time_events").
		WithArgs("emp-1", "dev-1", models.EventCheckIn, now, false, "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), now))

	event := &models.TimeEvent{EmployeeID: "emp-1", DeviceID: "dev-1", EventType: models.EventCheckIn, Timestamp: now}
	stored, err := repo.Insert(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, int64(42), stored.ID)
	assert.Equal(t, now, stored.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeEventRepositoryCountByDevice(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeEventRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM time_events WHERE device_id = $1")).
		WithArgs("dev-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	total, err := repo.CountByDevice(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
