package pricerule

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	"github.com/m04kA/SMC-CourtSlotService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtSlotService/pkg/psqlbuilder"
)

const table = "price_rules"

var columns = []string{"id", "court_id", "weekday", "percentage", "note", "created_at", "updated_at"}

// Repository репозиторий правил динамической цены
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория правил цены
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Upsert создает или заменяет правило (court_id, weekday)
func (r *Repository) Upsert(ctx context.Context, rule *domain.PriceRule) (*domain.PriceRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns("court_id", "weekday", "percentage", "note").
		Values(rule.CourtID, int(rule.Weekday), rule.Percentage, rule.Note).
		Suffix(`ON CONFLICT (court_id, weekday) DO UPDATE SET
			percentage = EXCLUDED.percentage,
			note = EXCLUDED.note,
			updated_at = NOW()
		RETURNING ` + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	saved, err := scanRule(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute upsert: %v", ErrExecQuery, err)
	}

	return saved, nil
}

// GetByCourt возвращает правила корта по дням недели
func (r *Repository) GetByCourt(ctx context.Context, courtID int64) (map[time.Weekday]*domain.PriceRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"court_id": courtID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCourt - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCourt - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	rules := make(map[time.Weekday]*domain.PriceRule)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetByCourt - scan rule: %v", ErrScanRow, err)
		}
		rules[rule.Weekday] = rule
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByCourt - rows iteration: %v", ErrExecQuery, err)
	}

	return rules, nil
}

// Delete удаляет правило дня недели
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
		return ErrRuleNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (*domain.PriceRule, error) {
	var (
		rule    domain.PriceRule
		weekday int
		note    sql.NullString
	)

	if err := row.Scan(&rule.ID, &rule.CourtID, &weekday, &rule.Percentage, &note, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
		return nil, err
	}

	rule.Weekday = time.Weekday(weekday)
	if note.Valid {
		rule.Note = &note.String
	}
	return &rule, nil
}
