package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	"github.com/m04kA/SMC-CourtSlotService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtSlotService/pkg/pgerr"
	"github.com/m04kA/SMC-CourtSlotService/pkg/psqlbuilder"
)

const table = "slots"

var columns = []string{
	"id",
	"court_id",
	"facility_id",
	"start_at",
	"duration_minutes",
	"total_price",
	"deposit_amount",
	"status",
	"client_name",
	"client_surname",
	"client_phone",
	"client_national_id",
	"owner_user_id",
	"reserved_at",
	"expires_at",
	"confirmed_at",
	"recurring_booking_id",
	"created_at",
	"updated_at",
}

var insertColumns = []string{
	"court_id",
	"facility_id",
	"start_at",
	"duration_minutes",
	"total_price",
	"deposit_amount",
	"status",
	"client_name",
	"client_surname",
	"client_phone",
	"client_national_id",
	"owner_user_id",
	"reserved_at",
	"expires_at",
	"confirmed_at",
	"recurring_booking_id",
}

// Repository репозиторий слотов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// InsertBatch вставляет слоты, пропуская уже существующие по (court_id, start_at).
// Возвращает количество созданных строк.
func (r *Repository) InsertBatch(ctx context.Context, slots []*domain.Slot) (int64, error) {
	if len(slots) == 0 {
		return 0, nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Insert(table).Columns(insertColumns...)
	for _, s := range slots {
		builder = builder.Values(insertValues(s)...)
	}

	query, args, err := builder.
		Suffix("ON CONFLICT (court_id, start_at) DO NOTHING").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: InsertBatch - build insert query: %v", ErrBuildQuery, err)
	}

	res, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: InsertBatch - execute insert: %v", ErrExecQuery, err)
	}

	created, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: InsertBatch - rows affected: %v", ErrExecQuery, err)
	}

	return created, nil
}

// InsertIfAbsent вставляет слот, если (court_id, start_at) свободен.
// Возвращает false без ошибки, когда слот уже существует.
func (r *Repository) InsertIfAbsent(ctx context.Context, s *domain.Slot) (*domain.Slot, bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns(insertColumns...).
		Values(insertValues(s)...).
		Suffix("ON CONFLICT (court_id, start_at) DO NOTHING RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("%w: InsertIfAbsent - build insert query: %v", ErrBuildQuery, err)
	}

	created, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		if pgerr.IsSerializationFailure(err) {
			return nil, false, fmt.Errorf("%w: InsertIfAbsent: %v", ErrConcurrentUpdate, err)
		}
		return nil, false, fmt.Errorf("%w: InsertIfAbsent - execute insert: %v", ErrExecQuery, err)
	}

	return created, true, nil
}

// GetByID получает слот по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id})
}

// GetByCourtAndStart получает слот корта по времени начала
func (r *Repository) GetByCourtAndStart(ctx context.Context, courtID int64, startAt time.Time) (*domain.Slot, error) {
	return r.getOne(ctx, "GetByCourtAndStart", squirrel.Eq{"court_id": courtID, "start_at": startAt})
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Sqlizer) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	s, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan slot: %v", ErrScanRow, op, err)
	}

	return s, nil
}

// ListAvailable возвращает свободные слоты корта с началом в [from, to)
func (r *Repository) ListAvailable(ctx context.Context, courtID int64, from, to time.Time) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"court_id": courtID, "status": domain.SlotAvailable}).
		Where(squirrel.GtOrEq{"start_at": from}).
		Where(squirrel.Lt{"start_at": to}).
		OrderBy("start_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListAvailable - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListAvailable - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var slots []*domain.Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListAvailable - scan slot: %v", ErrScanRow, err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListAvailable - rows iteration: %v", ErrExecQuery, err)
	}

	return slots, nil
}

// CountActiveByPhone считает слоты, удерживаемые клиентом с данным телефоном
func (r *Repository) CountActiveByPhone(ctx context.Context, phone string) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From(table).
		Where(squirrel.Eq{"client_phone": phone, "status": domain.ActiveSlotStatuses}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountActiveByPhone - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountActiveByPhone - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// ApplyTransition выполняет переход слота одной условной записью:
// UPDATE ... WHERE id = ? AND status IN (исходные статусы события) AND <проверки>.
// Если ни одна строка не изменилась, возвращает ErrStateConflict; вызывающий код
// перечитывает слот, чтобы определить причину.
func (r *Repository) ApplyTransition(
	ctx context.Context,
	id int64,
	event domain.SlotEvent,
	upd domain.SlotUpdate,
	now time.Time,
) (*domain.Slot, error) {
	if !event.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, event)
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Update(table).
		Set("status", event.Target()).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id, "status": event.Sources()})

	if event.ClearsClient() {
		builder = builder.
			Set("client_name", nil).
			Set("client_surname", nil).
			Set("client_phone", nil).
			Set("client_national_id", nil).
			Set("owner_user_id", nil).
			Set("deposit_amount", nil).
			Set("reserved_at", nil).
			Set("expires_at", nil).
			Set("confirmed_at", nil)
	} else {
		builder = applyUpdate(builder, upd)
	}

	builder, err := applyGuards(builder, upd)
	if err != nil {
		return nil, fmt.Errorf("%w: ApplyTransition - build guards: %v", ErrBuildQuery, err)
	}

	query, args, err := builder.
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ApplyTransition - build update query: %v", ErrBuildQuery, err)
	}

	s, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStateConflict
	}
	if err != nil {
		if pgerr.IsSerializationFailure(err) {
			return nil, fmt.Errorf("%w: ApplyTransition: %v", ErrConcurrentUpdate, err)
		}
		return nil, fmt.Errorf("%w: ApplyTransition - execute update: %v", ErrExecQuery, err)
	}

	return s, nil
}

// ExpireOverdue переводит просроченные брони в EXPIRADO одним запросом.
// Повторный вызов ничего не меняет.
func (r *Repository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("status", domain.EventExpire.Target()).
		Set("updated_at", now).
		Where(squirrel.Eq{"status": domain.EventExpire.Sources()}).
		Where(squirrel.Lt{"expires_at": now}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: ExpireOverdue - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffected(ctx, executor, "ExpireOverdue", query, args)
}

// CancelFutureByRecurring отменяет будущие активные слоты постоянной брони
// и возвращает их ID (для аннулирования платежей в той же транзакции)
func (r *Repository) CancelFutureByRecurring(ctx context.Context, recurringID int64, now time.Time) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("status", domain.EventCancel.Target()).
		Set("updated_at", now).
		Where(squirrel.Eq{"recurring_booking_id": recurringID, "status": domain.EventCancel.Sources()}).
		Where(squirrel.Gt{"start_at": now}).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CancelFutureByRecurring - build update query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: CancelFutureByRecurring - execute update: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: CancelFutureByRecurring - scan id: %v", ErrScanRow, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: CancelFutureByRecurring - rows iteration: %v", ErrExecQuery, err)
	}

	return ids, nil
}

func (r *Repository) execAffected(ctx context.Context, executor DBExecutor, op, query string, args []any) (int64, error) {
	res, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %s - rows affected: %v", ErrExecQuery, op, err)
	}
	return n, nil
}

func applyUpdate(b squirrel.UpdateBuilder, upd domain.SlotUpdate) squirrel.UpdateBuilder {
	if upd.Client != nil {
		b = b.
			Set("client_name", upd.Client.Name).
			Set("client_surname", upd.Client.Surname).
			Set("client_phone", upd.Client.Phone).
			Set("client_national_id", upd.Client.NationalID)
	}
	if upd.OwnerUserID != nil {
		b = b.Set("owner_user_id", *upd.OwnerUserID)
	}
	if upd.DepositAmount != nil {
		b = b.Set("deposit_amount", *upd.DepositAmount)
	}
	if upd.ReservedAt != nil {
		b = b.Set("reserved_at", *upd.ReservedAt)
	}
	if upd.ExpiresAt != nil {
		b = b.Set("expires_at", *upd.ExpiresAt)
	}
	if upd.ConfirmedAt != nil {
		b = b.Set("confirmed_at", *upd.ConfirmedAt)
	}
	if upd.RecurringBookingID != nil {
		b = b.Set("recurring_booking_id", *upd.RecurringBookingID)
	}
	return b
}

func applyGuards(b squirrel.UpdateBuilder, upd domain.SlotUpdate) (squirrel.UpdateBuilder, error) {
	if upd.StartsAfter != nil {
		b = b.Where(squirrel.Gt{"start_at": *upd.StartsAfter})
	}
	if upd.StartsBefore != nil {
		b = b.Where(squirrel.Lt{"start_at": *upd.StartsBefore})
	}
	if upd.RequireUnlinked {
		b = b.Where(squirrel.Eq{"recurring_booking_id": nil})
	}
	if upd.MaxActivePerPhone > 0 && upd.Client != nil {
		// Подзапрос собирается с плейсхолдерами "?", итоговый билдер пронумерует их в $n
		sub, subArgs, err := squirrel.Select("COUNT(*)").
			From(table).
			Where(squirrel.Eq{"client_phone": upd.Client.Phone, "status": domain.ActiveSlotStatuses}).
			ToSql()
		if err != nil {
			return b, err
		}
		b = b.Where(squirrel.Expr("("+sub+") < ?", append(subArgs, upd.MaxActivePerPhone)...))
	}
	return b, nil
}

func insertValues(s *domain.Slot) []any {
	var name, surname, phone, nationalID any
	if s.Client != nil {
		name, surname, phone, nationalID = s.Client.Name, s.Client.Surname, s.Client.Phone, s.Client.NationalID
	}
	var deposit any
	if s.DepositAmount != nil {
		deposit = *s.DepositAmount
	}
	return []any{
		s.CourtID,
		s.FacilityID,
		s.StartAt,
		s.DurationMinutes,
		s.TotalPrice,
		deposit,
		s.Status,
		name,
		surname,
		phone,
		nationalID,
		s.OwnerUserID,
		s.ReservedAt,
		s.ExpiresAt,
		s.ConfirmedAt,
		s.RecurringBookingID,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSlot(row rowScanner) (*domain.Slot, error) {
	var (
		s                             domain.Slot
		deposit                       decimal.NullDecimal
		name, surname, phone, natID   sql.NullString
		ownerID, recurringID          sql.NullInt64
		reservedAt, expiresAt, confAt sql.NullTime
		createdAt, updatedAt          sql.NullTime
	)

	err := row.Scan(
		&s.ID,
		&s.CourtID,
		&s.FacilityID,
		&s.StartAt,
		&s.DurationMinutes,
		&s.TotalPrice,
		&deposit,
		&s.Status,
		&name,
		&surname,
		&phone,
		&natID,
		&ownerID,
		&reservedAt,
		&expiresAt,
		&confAt,
		&recurringID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if deposit.Valid {
		s.DepositAmount = &deposit.Decimal
	}
	if phone.Valid {
		s.Client = &domain.ClientInfo{
			Name:    name.String,
			Surname: surname.String,
			Phone:   phone.String,
		}
		if natID.Valid {
			s.Client.NationalID = &natID.String
		}
	}
	if ownerID.Valid {
		s.OwnerUserID = &ownerID.Int64
	}
	if recurringID.Valid {
		s.RecurringBookingID = &recurringID.Int64
	}
	if reservedAt.Valid {
		s.ReservedAt = &reservedAt.Time
	}
	if expiresAt.Valid {
		s.ExpiresAt = &expiresAt.Time
	}
	if confAt.Valid {
		s.ConfirmedAt = &confAt.Time
	}
	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}
