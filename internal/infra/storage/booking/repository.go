package booking

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
	"github.com/m04kA/SMC-TimeslotService/pkg/dbmetrics"
	"github.com/m04kA/SMC-TimeslotService/pkg/psqlbuilder"
)

// uniqueViolation код ошибки PostgreSQL unique_violation
const uniqueViolation = "23505"

// activeBookingIndex имя частичного уникального индекса
// "не более одного активного бронирования на слот"
const activeBookingIndex = "bookings_one_active_per_timeslot"

var bookingColumns = []string{
	"id",
	"user_id",
	"resource_id",
	"timeslot_id",
	"status",
	"guest_count",
	"special_requests",
	"metadata",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Вызывается движком резервирования внутри транзакции, в которой уже
// удерживается блокировка слота. Нарушение частичного уникального
// индекса мапится в ErrActiveBookingExists.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	metadata, err := marshalMetadata(booking.Metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - marshal metadata: %v", ErrBuildQuery, err)
	}

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"user_id",
			"resource_id",
			"timeslot_id",
			"status",
			"guest_count",
			"special_requests",
			"metadata",
		).
		Values(
			booking.UserID,
			booking.ResourceID,
			booking.TimeslotID,
			booking.Status,
			booking.GuestCount,
			booking.SpecialRequests,
			metadata,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == activeBookingIndex {
			return nil, ErrActiveBookingExists
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID без блокировки
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate получает бронирование по ID с эксклюзивной блокировкой строки.
// Порядок блокировок движка: сначала бронирование, затем его слот.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.get(ctx, id, true)
}

func (r *Repository) get(ctx context.Context, id int64, forUpdate bool) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if forUpdate && dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: get - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// HasActiveOnTimeslot проверяет наличие активного (pending/confirmed)
// бронирования на слоте. Внутри транзакции берет FOR SHARE, чтобы
// конкурирующая вставка дождалась исхода текущей.
func (r *Repository) HasActiveOnTimeslot(ctx context.Context, timeslotID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("1").
		From("bookings").
		Where(squirrel.Eq{
			"timeslot_id": timeslotID,
			"status":      domain.ActiveStatuses,
		}).
		Limit(1)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR SHARE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: HasActiveOnTimeslot - build select query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: HasActiveOnTimeslot - scan: %v", ErrScanRow, err)
	}

	return true, nil
}

// UpdateGuestCount обновляет количество гостей и (опционально) пожелания.
// Счетчик вместимости слота корректирует движок в той же транзакции.
func (r *Repository) UpdateGuestCount(ctx context.Context, id int64, guestCount int, specialRequests *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("guest_count", guestCount).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	if specialRequests != nil {
		updateBuilder = updateBuilder.Set("special_requests", *specialRequests)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateGuestCount - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateGuestCount - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateGuestCount - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// UpdateStatus обновляет статус бронирования.
// Переход из/в cancelled меняет учет вместимости - этим занимается движок
// в той же транзакции; физического удаления бронирований не существует.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// ListByEmail получает бронирования пользователя по email (регистронезависимо)
// с опциональной фильтрацией по статусу. Чисто читающая выборка: не участвует
// в инварианте вместимости.
func (r *Repository) ListByEmail(ctx context.Context, email string, status *domain.BookingStatus) ([]*domain.BookingDetails, error) {
	selectBuilder := detailsSelect().
		Where(squirrel.Expr("LOWER(u.email) = LOWER(?)", email))

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"b.status": *status})
	}

	return r.queryDetails(ctx, selectBuilder.OrderBy("t.start_at DESC"))
}

// ListWithFilter получает бронирования с гибкой админской фильтрацией
// по организации, филиалу, ресурсу, email, статусу и периоду создания
func (r *Repository) ListWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.BookingDetails, error) {
	selectBuilder := detailsSelect()

	if filter.OrgID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"br.org_id": *filter.OrgID})
	}
	if filter.BranchID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"r.branch_id": *filter.BranchID})
	}
	if filter.ResourceID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"b.resource_id": *filter.ResourceID})
	}
	if filter.Email != nil {
		selectBuilder = selectBuilder.Where(squirrel.Expr("LOWER(u.email) = LOWER(?)", *filter.Email))
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"b.status": *filter.Status})
	}
	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.Expr("b.created_at::date >= ?::date", *filter.From))
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.Expr("b.created_at::date <= ?::date", *filter.To))
	}

	return r.queryDetails(ctx, selectBuilder.OrderBy("b.created_at DESC"))
}

func detailsSelect() squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"b.id",
		"b.user_id",
		"b.resource_id",
		"b.timeslot_id",
		"b.status",
		"b.guest_count",
		"b.special_requests",
		"b.metadata",
		"b.created_at",
		"b.updated_at",
		"u.name",
		"u.email",
		"r.name",
		"t.start_at",
		"t.end_at",
	).
		From("bookings b").
		Join("users u ON u.id = b.user_id").
		Join("resources r ON r.id = b.resource_id").
		Join("branches br ON br.id = r.branch_id").
		Join("timeslots t ON t.id = b.timeslot_id")
}

func (r *Repository) queryDetails(ctx context.Context, selectBuilder squirrel.SelectBuilder) ([]*domain.BookingDetails, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: queryDetails - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: queryDetails - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings := make([]*domain.BookingDetails, 0)
	for rows.Next() {
		var d domain.BookingDetails
		var metadata []byte
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&d.ID,
			&d.UserID,
			&d.ResourceID,
			&d.TimeslotID,
			&d.Status,
			&d.GuestCount,
			&d.SpecialRequests,
			&metadata,
			&createdAt,
			&updatedAt,
			&d.CustomerName,
			&d.CustomerEmail,
			&d.ResourceName,
			&d.SlotStartAt,
			&d.SlotEndAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: queryDetails - scan row: %v", ErrScanRow, err)
		}

		if d.Metadata, err = unmarshalMetadata(metadata); err != nil {
			return nil, fmt.Errorf("%w: queryDetails - unmarshal metadata: %v", ErrScanRow, err)
		}

		d.CreatedAt = createdAt.Time
		d.UpdatedAt = updatedAt.Time
		bookings = append(bookings, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: queryDetails - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var metadata []byte
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ResourceID,
		&booking.TimeslotID,
		&booking.Status,
		&booking.GuestCount,
		&booking.SpecialRequests,
		&metadata,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if booking.Metadata, err = unmarshalMetadata(metadata); err != nil {
		return nil, err
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

func marshalMetadata(m map[string]interface{}) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func unmarshalMetadata(raw []byte) (map[string]interface{}, error) {
	if len(raw) == 0 {
		return map[string]interface{}{}, nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
