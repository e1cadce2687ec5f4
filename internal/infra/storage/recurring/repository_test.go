package recurring

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db), mock
}

func TestRepository_CreateDuplicate(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`INSERT INTO recurring_bookings`).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Create(context.Background(), &domain.RecurringBooking{
		CourtID:         1,
		Weekday:         time.Tuesday,
		StartTime:       "20:00",
		DurationMinutes: 60,
		StartDate:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestRepository_ListActiveForDate(t *testing.T) {
	repo, mock := newMock(t)
	date := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM recurring_bookings WHERE is_active = \$1 AND start_date <= \$2 `+
		`AND \(end_date IS NULL OR end_date >= \$3\) ORDER BY id ASC`).
		WithArgs(true, "2026-03-10", "2026-03-10").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			int64(5), int64(1), int64(100), 2, "20:00:00", 60, true,
			time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), nil, true, int64(77),
			"Ana", "Gomez", "+5491100000001", nil, now, now,
		))

	got, err := repo.ListActiveForDate(context.Background(), date)
	require.NoError(t, err)
	require.Len(t, got, 1)

	b := got[0]
	assert.Equal(t, time.Tuesday, b.Weekday)
	assert.Equal(t, "20:00", b.StartTime.String())
	assert.Nil(t, b.EndDate)
	require.NotNil(t, b.OwnerUserID)
	assert.Equal(t, int64(77), *b.OwnerUserID)
	assert.Equal(t, "Ana", b.Client.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_IsClaimed(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`SELECT 1 FROM recurring_bookings WHERE court_id = \$1 AND start_time = \$2 AND weekday = \$3 LIMIT 1`).
		WithArgs(int64(2), "20:00", 2).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	claimed, err := repo.IsClaimed(context.Background(), 2, time.Tuesday, "20:00")
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SetActiveNotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(`UPDATE recurring_bookings SET is_active = \$1, updated_at = \$2 WHERE id = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetActive(context.Background(), 99, false, time.Now())
	assert.ErrorIs(t, err, ErrRecurringNotFound)
}
