package recurring

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	"github.com/m04kA/SMC-CourtSlotService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtSlotService/pkg/pgerr"
	"github.com/m04kA/SMC-CourtSlotService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-CourtSlotService/pkg/types"
)

const (
	table        = "recurring_bookings"
	historyTable = "recurring_booking_history"
)

var columns = []string{
	"id",
	"court_id",
	"facility_id",
	"weekday",
	"start_time",
	"duration_minutes",
	"is_active",
	"start_date",
	"end_date",
	"requires_deposit",
	"owner_user_id",
	"client_name",
	"client_surname",
	"client_phone",
	"client_national_id",
	"created_at",
	"updated_at",
}

// Repository репозиторий постоянных броней и их истории
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория постоянных броней
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает постоянную бронь
func (r *Repository) Create(ctx context.Context, b *domain.RecurringBooking) (*domain.RecurringBooking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	var endDate any
	if b.EndDate != nil {
		endDate = b.EndDate.Format(domain.DateFormat)
	}

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"court_id",
			"facility_id",
			"weekday",
			"start_time",
			"duration_minutes",
			"is_active",
			"start_date",
			"end_date",
			"requires_deposit",
			"owner_user_id",
			"client_name",
			"client_surname",
			"client_phone",
			"client_national_id",
		).
		Values(
			b.CourtID,
			b.FacilityID,
			int(b.Weekday),
			b.StartTime,
			b.DurationMinutes,
			b.IsActive,
			b.StartDate.Format(domain.DateFormat),
			endDate,
			b.RequiresDeposit,
			b.OwnerUserID,
			b.Client.Name,
			b.Client.Surname,
			b.Client.Phone,
			b.Client.NationalID,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&b.ID, &createdAt, &updatedAt)
	if err != nil {
		if pgerr.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return b, nil
}

// GetByID получает постоянную бронь по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.RecurringBooking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	b, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecurringNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan recurring booking: %v", ErrScanRow, err)
	}

	return b, nil
}

// ListActiveForDate возвращает активные брони, диапазон дат которых покрывает date
func (r *Repository) ListActiveForDate(ctx context.Context, date time.Time) ([]*domain.RecurringBooking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)
	day := date.Format(domain.DateFormat)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.LtOrEq{"start_date": day}).
		Where(squirrel.Or{
			squirrel.Eq{"end_date": nil},
			squirrel.GtOrEq{"end_date": day},
		}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveForDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveForDate - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var bookings []*domain.RecurringBooking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListActiveForDate - scan recurring booking: %v", ErrScanRow, err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActiveForDate - rows iteration: %v", ErrExecQuery, err)
	}

	return bookings, nil
}

// SetActive ставит бронь на паузу или возобновляет её
func (r *Repository) SetActive(ctx context.Context, id int64, active bool, now time.Time) error {
	query, args, err := psqlbuilder.Update(table).
		Set("is_active", active).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetActive - build update query: %v", ErrBuildQuery, err)
	}

	return r.execOne(ctx, "SetActive", query, args)
}

// UpdateCourt переносит бронь на другой корт
func (r *Repository) UpdateCourt(ctx context.Context, id, courtID int64, now time.Time) error {
	query, args, err := psqlbuilder.Update(table).
		Set("court_id", courtID).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateCourt - build update query: %v", ErrBuildQuery, err)
	}

	return r.execOne(ctx, "UpdateCourt", query, args)
}

// Delete удаляет бронь. У таблицы истории нет внешнего ключа, записи истории остаются.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	query, args, err := psqlbuilder.Delete(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	return r.execOne(ctx, "Delete", query, args)
}

// IsClaimed проверяет, занят ли (корт, день недели, время) какой-либо постоянной бронью
func (r *Repository) IsClaimed(ctx context.Context, courtID int64, weekday time.Weekday, startTime types.TimeString) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		From(table).
		Where(squirrel.Eq{"court_id": courtID, "weekday": int(weekday), "start_time": startTime}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: IsClaimed - build select query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: IsClaimed - scan row: %v", ErrScanRow, err)
	}

	return true, nil
}

// AppendHistory добавляет запись в историю брони
func (r *Repository) AppendHistory(ctx context.Context, e *domain.HistoryEntry) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(historyTable).
		Columns("recurring_booking_id", "action", "detail", "actor_id", "created_at").
		Values(e.RecurringBookingID, e.Action, e.Detail, e.ActorID, e.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: AppendHistory - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&e.ID); err != nil {
		return fmt.Errorf("%w: AppendHistory - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// ListHistory возвращает историю брони в хронологическом порядке
func (r *Repository) ListHistory(ctx context.Context, recurringID int64) ([]*domain.HistoryEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "recurring_booking_id", "action", "detail", "actor_id", "created_at").
		From(historyTable).
		Where(squirrel.Eq{"recurring_booking_id": recurringID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListHistory - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListHistory - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var entries []*domain.HistoryEntry
	for rows.Next() {
		var (
			e       domain.HistoryEntry
			actorID sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.RecurringBookingID, &e.Action, &e.Detail, &actorID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: ListHistory - scan entry: %v", ErrScanRow, err)
		}
		if actorID.Valid {
			e.ActorID = &actorID.Int64
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListHistory - rows iteration: %v", ErrExecQuery, err)
	}

	return entries, nil
}

func (r *Repository) execOne(ctx context.Context, op, query string, args []any) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	res, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if pgerr.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - rows affected: %v", ErrExecQuery, op, err)
	}
	if n == 0 {
		return ErrRecurringNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.RecurringBooking, error) {
	var (
		b                    domain.RecurringBooking
		weekday              int
		endDate              sql.NullTime
		ownerID              sql.NullInt64
		nationalID           sql.NullString
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&b.ID,
		&b.CourtID,
		&b.FacilityID,
		&weekday,
		&b.StartTime,
		&b.DurationMinutes,
		&b.IsActive,
		&b.StartDate,
		&endDate,
		&b.RequiresDeposit,
		&ownerID,
		&b.Client.Name,
		&b.Client.Surname,
		&b.Client.Phone,
		&nationalID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Weekday = time.Weekday(weekday)
	if endDate.Valid {
		b.EndDate = &endDate.Time
	}
	if ownerID.Valid {
		b.OwnerUserID = &ownerID.Int64
	}
	if nationalID.Valid {
		b.Client.NationalID = &nationalID.String
	}
	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}
