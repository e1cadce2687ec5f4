package pricerule

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_GetByCourt(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT id, court_id, weekday, percentage, note, created_at, updated_at FROM price_rules WHERE court_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(1), int64(1), 5, 150, "viernes noche", now, now).
			AddRow(int64(2), int64(1), 1, 80, nil, now, now))

	rules, err := repo.GetByCourt(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, 150, rules[time.Friday].Percentage)
	require.NotNil(t, rules[time.Friday].Note)
	assert.Nil(t, rules[time.Monday].Note)
	assert.Nil(t, rules[time.Sunday])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM price_rules WHERE court_id = \$1 AND weekday = \$2`).
		WithArgs(int64(1), 3).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewRepository(db).Delete(context.Background(), 1, time.Wednesday)
	assert.ErrorIs(t, err, ErrRuleNotFound)
}
