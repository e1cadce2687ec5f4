package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	"github.com/m04kA/SMC-CourtSlotService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtSlotService/pkg/psqlbuilder"
)

const table = "schedule_templates"

var columns = []string{
	"id",
	"court_id",
	"weekday",
	"start_time",
	"end_time",
	"slot_duration_minutes",
	"is_active",
	"horizon_days",
	"created_at",
	"updated_at",
}

// Repository репозиторий недельных шаблонов расписания кортов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория шаблонов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Upsert создает или заменяет шаблон (court_id, weekday).
// Уже созданные слоты не меняются.
func (r *Repository) Upsert(ctx context.Context, t *domain.ScheduleTemplate) (*domain.ScheduleTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns("court_id", "weekday", "start_time", "end_time", "slot_duration_minutes", "is_active", "horizon_days").
		Values(t.CourtID, int(t.Weekday), t.StartTime, t.EndTime, t.SlotDurationMinutes, t.IsActive, t.HorizonDays).
		Suffix(`ON CONFLICT (court_id, weekday) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			slot_duration_minutes = EXCLUDED.slot_duration_minutes,
			is_active = EXCLUDED.is_active,
			horizon_days = EXCLUDED.horizon_days,
			updated_at = NOW()
		RETURNING ` + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	saved, err := scanTemplate(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute upsert: %v", ErrExecQuery, err)
	}

	return saved, nil
}

// GetByCourt возвращает все шаблоны корта, упорядоченные по дню недели
func (r *Repository) GetByCourt(ctx context.Context, courtID int64) ([]*domain.ScheduleTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"court_id": courtID}).
		OrderBy("weekday ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCourt - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCourt - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var templates []*domain.ScheduleTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetByCourt - scan template: %v", ErrScanRow, err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByCourt - rows iteration: %v", ErrExecQuery, err)
	}

	return templates, nil
}

// Delete удаляет шаблон дня недели
func (r *Repository) Delete(ctx context.Context, courtID int64, weekday time.Weekday) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(table).
		Where(squirrel.Eq{"court_id": courtID, "weekday": int(weekday)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	res, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - rows affected: %v", ErrExecQuery, err)
	}
	if n == 0 {
		return ErrTemplateNotFound
	}

	return nil
}

// ListCourtIDsWithActive возвращает корты, у которых есть хотя бы один активный шаблон
func (r *Repository) ListCourtIDsWithActive(ctx context.Context) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("DISTINCT court_id").
		From(table).
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("court_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListCourtIDsWithActive - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListCourtIDsWithActive - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: ListCourtIDsWithActive - scan id: %v", ErrScanRow, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListCourtIDsWithActive - rows iteration: %v", ErrExecQuery, err)
	}

	return ids, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*domain.ScheduleTemplate, error) {
	var (
		t       domain.ScheduleTemplate
		weekday int
	)

	err := row.Scan(
		&t.ID,
		&t.CourtID,
		&weekday,
		&t.StartTime,
		&t.EndTime,
		&t.SlotDurationMinutes,
		&t.IsActive,
		&t.HorizonDays,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Weekday = time.Weekday(weekday)
	return &t, nil
}
