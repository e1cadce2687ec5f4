package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	"github.com/m04kA/SMC-CourtSlotService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtSlotService/pkg/pgerr"
	"github.com/m04kA/SMC-CourtSlotService/pkg/psqlbuilder"
)

const table = "payments"

var columns = []string{
	"id",
	"slot_id",
	"amount",
	"method",
	"status",
	"proof_url",
	"submitted_at",
	"validated_at",
	"validated_by",
	"rejection_reason",
	"created_at",
	"updated_at",
}

// Repository репозиторий платежей по депозитам
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория платежей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает платеж. Частичный уникальный индекс по slot_id (кроме REJECTED и VOIDED)
// не дает завести второй живой платеж на один слот.
func (r *Repository) Create(ctx context.Context, p *domain.PaymentRecord) (*domain.PaymentRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns("slot_id", "amount", "method", "status", "proof_url", "submitted_at").
		Values(p.SlotID, p.Amount, p.Method, p.Status, p.ProofURL, p.SubmittedAt).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	created, err := scanPayment(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		if pgerr.IsUniqueViolation(err) {
			return nil, ErrPaymentExists
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return created, nil
}

// GetByID получает платеж по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.PaymentRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	p, err := scanPayment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan payment: %v", ErrScanRow, err)
	}

	return p, nil
}

// GetLiveBySlotID получает живой (не отклоненный и не аннулированный) платеж слота
func (r *Repository) GetLiveBySlotID(ctx context.Context, slotID int64) (*domain.PaymentRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"slot_id": slotID}).
		Where(squirrel.NotEq{"status": domain.ClosedPaymentStatuses}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetLiveBySlotID - build select query: %v", ErrBuildQuery, err)
	}

	p, err := scanPayment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetLiveBySlotID - scan payment: %v", ErrScanRow, err)
	}

	return p, nil
}

// Transition меняет статус платежа условной записью (WHERE status = from)
func (r *Repository) Transition(
	ctx context.Context,
	id int64,
	from, to domain.PaymentStatus,
	reason *string,
	validatedBy *int64,
	at time.Time,
) (*domain.PaymentRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("status", to).
		Set("rejection_reason", reason).
		Set("validated_by", validatedBy).
		Set("validated_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id, "status": from}).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Transition - build update query: %v", ErrBuildQuery, err)
	}

	p, err := scanPayment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStatusConflict
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Transition - execute update: %v", ErrExecQuery, err)
	}

	return p, nil
}

// VoidLive аннулирует живые платежи слотов. Вызывается в транзакции отмены
// или освобождения слотов, чтобы слот можно было снова оплатить.
func (r *Repository) VoidLive(ctx context.Context, slotIDs []int64, reason string, at time.Time) (int64, error) {
	if len(slotIDs) == 0 {
		return 0, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("status", domain.PaymentVoided).
		Set("rejection_reason", reason).
		Set("updated_at", at).
		Where(squirrel.Eq{"slot_id": slotIDs}).
		Where(squirrel.NotEq{"status": domain.ClosedPaymentStatuses}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: VoidLive - build update query: %v", ErrBuildQuery, err)
	}

	res, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: VoidLive - execute update: %v", ErrExecQuery, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: VoidLive - rows affected: %v", ErrExecQuery, err)
	}

	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*domain.PaymentRecord, error) {
	var (
		p                        domain.PaymentRecord
		proofURL, reason         sql.NullString
		submittedAt, validatedAt sql.NullTime
		validatedBy              sql.NullInt64
		createdAt, updatedAt     sql.NullTime
	)

	err := row.Scan(
		&p.ID,
		&p.SlotID,
		&p.Amount,
		&p.Method,
		&p.Status,
		&proofURL,
		&submittedAt,
		&validatedAt,
		&validatedBy,
		&reason,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if proofURL.Valid {
		p.ProofURL = &proofURL.String
	}
	if reason.Valid {
		p.RejectionReason = &reason.String
	}
	if submittedAt.Valid {
		p.SubmittedAt = &submittedAt.Time
	}
	if validatedAt.Valid {
		p.ValidatedAt = &validatedAt.Time
	}
	if validatedBy.Valid {
		p.ValidatedBy = &validatedBy.Int64
	}
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return &p, nil
}
