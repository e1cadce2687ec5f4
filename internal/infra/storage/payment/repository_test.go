package payment

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	"github.com/m04kA/SMC-CourtSlotService/pkg/ptr"
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

	mock.ExpectQuery(`INSERT INTO payments`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "payments_live_slot_uidx"})

	_, err := repo.Create(context.Background(), &domain.PaymentRecord{
		SlotID: 7,
		Amount: decimal.NewFromInt(1500),
		Method: domain.PaymentTransfer,
		Status: domain.PaymentSubmitted,
	})
	assert.ErrorIs(t, err, ErrPaymentExists)
}

func TestRepository_TransitionRejected(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()
	reason := "comprobante ilegible"

	mock.ExpectQuery(`UPDATE payments SET status = \$1, rejection_reason = \$2, validated_by = \$3, `+
		`validated_at = \$4, updated_at = \$5 WHERE id = \$6 AND status = \$7 RETURNING id`).
		WithArgs("REJECTED", reason, int64(10), now, now, int64(3), "SUBMITTED").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			int64(3), int64(7), "1500.00", "TRANSFERENCIA", "REJECTED", nil,
			now, now, int64(10), reason, now, now,
		))

	p, err := repo.Transition(context.Background(), 3, domain.PaymentSubmitted, domain.PaymentRejected,
		ptr.Ptr(reason), ptr.Ptr(int64(10)), now)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentRejected, p.Status)
	require.NotNil(t, p.RejectionReason)
	assert.Equal(t, reason, *p.RejectionReason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_TransitionConflict(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`UPDATE payments SET status = \$1`).
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := repo.Transition(context.Background(), 3, domain.PaymentSubmitted, domain.PaymentApproved,
		nil, ptr.Ptr(int64(10)), time.Now())
	assert.ErrorIs(t, err, ErrStatusConflict)
}

func TestRepository_VoidLive(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()

	mock.ExpectExec(`UPDATE payments SET status = \$1, rejection_reason = \$2, updated_at = \$3 `+
		`WHERE slot_id IN \(\$4,\$5\) AND status NOT IN \(\$6,\$7\)`).
		WithArgs("VOIDED", domain.VoidReasonRecurringCancelled, now, int64(7), int64(8), "REJECTED", "VOIDED").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.VoidLive(context.Background(), []int64{7, 8}, domain.VoidReasonRecurringCancelled, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_VoidLiveWithoutSlots(t *testing.T) {
	repo, mock := newMock(t)

	n, err := repo.VoidLive(context.Background(), nil, domain.VoidReasonSlotCancelled, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetLiveBySlotIDSkipsClosed(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`SELECT .* FROM payments WHERE slot_id = \$1 AND status NOT IN \(\$2,\$3\)`).
		WithArgs(int64(7), "REJECTED", "VOIDED").
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := repo.GetLiveBySlotID(context.Background(), 7)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
