package timeslot

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(db), mock
}

func TestGetByResourceAndInterval(t *testing.T) {
	repo, mock := newMockRepo(t)

	startAt := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	endAt := startAt.Add(time.Hour)
	now := time.Now()

	rows := sqlmock.NewRows(timeslotColumns).
		AddRow(int64(42), int64(20), startAt, endAt, "open", 3, 4, now, now)

	// squirrel сортирует ключи Eq по алфавиту: end_at, resource_id, start_at
	mock.ExpectQuery("SELECT .+ FROM timeslots WHERE").
		WithArgs(endAt, int64(20), startAt).
		WillReturnRows(rows)

	ts, err := repo.GetByResourceAndInterval(context.Background(), 20, startAt, endAt)

	require.NoError(t, err)
	assert.Equal(t, int64(42), ts.ID)
	assert.Equal(t, int64(20), ts.ResourceID)
	assert.Equal(t, domain.TimeslotOpen, ts.Status)
	assert.Equal(t, 3, ts.AvailableCapacity)
	assert.Equal(t, 4, ts.MaxCapacity)
	assert.True(t, ts.StartAt.Equal(startAt))
	assert.True(t, ts.EndAt.Equal(endAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByResourceAndInterval_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	startAt := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT .+ FROM timeslots WHERE").
		WillReturnRows(sqlmock.NewRows(timeslotColumns))

	_, err := repo.GetByResourceAndInterval(context.Background(), 20, startAt, startAt.Add(time.Hour))

	assert.ErrorIs(t, err, ErrTimeslotNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyCapacityDelta(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE timeslots SET available_capacity").
		WithArgs(-2, int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ApplyCapacityDelta(context.Background(), 42, -2)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyCapacityDelta_UnknownTimeslot(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE timeslots SET available_capacity").
		WithArgs(1, int64(999)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ApplyCapacityDelta(context.Background(), 999, 1)

	assert.ErrorIs(t, err, ErrTimeslotNotFound)
}
