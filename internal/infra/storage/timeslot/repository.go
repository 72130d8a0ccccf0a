package timeslot

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
	"github.com/m04kA/SMC-TimeslotService/pkg/dbmetrics"
	"github.com/m04kA/SMC-TimeslotService/pkg/psqlbuilder"
)

var timeslotColumns = []string{
	"id",
	"resource_id",
	"start_at",
	"end_at",
	"status",
	"available_capacity",
	"max_capacity",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы со слотами
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает слот по ID без блокировки
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Timeslot, error) {
	return r.get(ctx, squirrel.Eq{"id": id}, false)
}

// GetByIDForUpdate получает слот по ID с эксклюзивной блокировкой строки.
// Вызывается только внутри транзакции: блокировка удерживается до commit/rollback.
// Проверки, сделанные ДО этого вызова, носят предварительный характер;
// авторитетны только проверки над возвращенным состоянием.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Timeslot, error) {
	return r.get(ctx, squirrel.Eq{"id": id}, true)
}

// GetByResourceAndInterval получает слот по точному совпадению
// (resource_id, start_at, end_at). Пара значений уникальна на уровне БД.
func (r *Repository) GetByResourceAndInterval(ctx context.Context, resourceID int64, startAt, endAt time.Time) (*domain.Timeslot, error) {
	return r.get(ctx, squirrel.Eq{
		"resource_id": resourceID,
		"start_at":    startAt,
		"end_at":      endAt,
	}, false)
}

func (r *Repository) get(ctx context.Context, where squirrel.Eq, forUpdate bool) (*domain.Timeslot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(timeslotColumns...).
		From("timeslots").
		Where(where)

	// FOR UPDATE имеет смысл только внутри транзакции
	if forUpdate && dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: get - build select query: %v", ErrBuildQuery, err)
	}

	var ts domain.Timeslot
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&ts.ID,
		&ts.ResourceID,
		&ts.StartAt,
		&ts.EndAt,
		&ts.Status,
		&ts.AvailableCapacity,
		&ts.MaxCapacity,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrTimeslotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get - scan timeslot: %v", ErrScanRow, err)
	}

	ts.CreatedAt = createdAt.Time
	ts.UpdatedAt = updatedAt.Time

	return &ts, nil
}

// ApplyCapacityDelta изменяет available_capacity на delta (может быть отрицательной).
// Единственный санкционированный способ изменить счетчик вместимости;
// вызывается движком резервирования внутри транзакции, удерживающей
// блокировку строки слота.
func (r *Repository) ApplyCapacityDelta(ctx context.Context, id int64, delta int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("timeslots").
		Set("available_capacity", squirrel.Expr("available_capacity + ?", delta)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: ApplyCapacityDelta - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: ApplyCapacityDelta - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: ApplyCapacityDelta - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrTimeslotNotFound
	}

	return nil
}

// ListByFilter получает слоты ресурса с фильтрацией по периоду.
// Для публичной выдачи устанавливается OnlyOpen: открытые слоты
// со свободной вместимостью.
func (r *Repository) ListByFilter(ctx context.Context, filter domain.TimeslotsFilter) ([]*domain.Timeslot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(timeslotColumns...).
		From("timeslots").
		Where(squirrel.Eq{"resource_id": filter.ResourceID})

	if filter.OnlyOpen {
		selectBuilder = selectBuilder.
			Where(squirrel.Eq{"status": domain.TimeslotOpen}).
			Where(squirrel.Gt{"available_capacity": 0})
	}

	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"start_at": *filter.From})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"start_at": *filter.To})
	}

	query, args, err := selectBuilder.OrderBy("start_at ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	timeslots := make([]*domain.Timeslot, 0)
	for rows.Next() {
		var ts domain.Timeslot
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&ts.ID,
			&ts.ResourceID,
			&ts.StartAt,
			&ts.EndAt,
			&ts.Status,
			&ts.AvailableCapacity,
			&ts.MaxCapacity,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByFilter - scan row: %v", ErrScanRow, err)
		}

		ts.CreatedAt = createdAt.Time
		ts.UpdatedAt = updatedAt.Time
		timeslots = append(timeslots, &ts)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByFilter - rows error: %v", ErrScanRow, err)
	}

	return timeslots, nil
}

// GenerateForResource вызывает генератор слотов по шаблонам расписания.
// Алгоритм генерации живет в функции БД generate_timeslots_for_resource
// (внешний коллаборатор с точки зрения движка). Возвращает число созданных слотов.
func (r *Repository) GenerateForResource(ctx context.Context, resourceID int64, startDate, endDate time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	var created int
	err := executor.QueryRowContext(ctx,
		"SELECT generate_timeslots_for_resource($1, $2::date, $3::date)",
		resourceID, startDate, endDate,
	).Scan(&created)

	if err != nil {
		return 0, fmt.Errorf("%w: GenerateForResource - execute generator: %v", ErrExecQuery, err)
	}

	return created, nil
}
