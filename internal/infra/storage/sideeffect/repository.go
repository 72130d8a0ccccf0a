// Package sideeffect хранилище производных записей успешного бронирования:
// pending-платежи и отложенные уведомления. Записи создаются best-effort
// ВНЕ транзакции резервирования; их отказ не откатывает бронирование.
package sideeffect

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
	"github.com/m04kA/SMC-TimeslotService/pkg/dbmetrics"
	"github.com/m04kA/SMC-TimeslotService/pkg/psqlbuilder"
)

// Repository репозиторий побочных эффектов
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория побочных эффектов
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreatePayment создает pending-платеж для бронирования.
// Расчет суммы вне зоны ответственности сервиса, поэтому amount = 0.
func (r *Repository) CreatePayment(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("payments").
		Columns("booking_id", "amount", "amount_paid", "currency", "status").
		Values(p.BookingID, p.Amount, p.AmountPaid, p.Currency, p.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreatePayment - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&p.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: CreatePayment - execute insert: %v", ErrExecQuery, err)
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	return p, nil
}

// CreateNotification ставит уведомление в очередь (status = queued)
func (r *Repository) CreateNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	payload, err := marshalPayload(n.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: CreateNotification - marshal payload: %v", ErrBuildQuery, err)
	}

	query, args, err := psqlbuilder.Insert("notifications").
		Columns("user_id", "booking_id", "channel", "type", "subject", "body", "payload", "status").
		Values(n.UserID, n.BookingID, n.Channel, n.Type, n.Subject, n.Body, payload, n.Status).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateNotification - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&n.ID, &createdAt); err != nil {
		return nil, fmt.Errorf("%w: CreateNotification - execute insert: %v", ErrExecQuery, err)
	}

	n.CreatedAt = createdAt.Time
	return n, nil
}

// ClaimQueued атомарно забирает партию уведомлений в статусе queued,
// переводя их в processing. FOR UPDATE SKIP LOCKED позволяет нескольким
// воркерам разбирать очередь без взаимной блокировки.
func (r *Repository) ClaimQueued(ctx context.Context, limit int) ([]*domain.Notification, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query := `
		WITH c AS (
			SELECT id FROM notifications
			WHERE status = 'queued'
			ORDER BY created_at
			FOR UPDATE SKIP LOCKED
			LIMIT $1
		)
		UPDATE notifications n
		SET status = 'processing'
		FROM c
		WHERE n.id = c.id
		RETURNING n.id, n.user_id, n.booking_id, n.channel, n.type, n.subject, n.body, n.payload, n.retry_count, n.created_at`

	rows, err := executor.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: ClaimQueued - execute claim: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	notifications := make([]*domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		var payload []byte
		var createdAt sql.NullTime

		err := rows.Scan(&n.ID, &n.UserID, &n.BookingID, &n.Channel, &n.Type, &n.Subject, &n.Body, &payload, &n.RetryCount, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("%w: ClaimQueued - scan row: %v", ErrScanRow, err)
		}

		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &n.Payload); err != nil {
				return nil, fmt.Errorf("%w: ClaimQueued - unmarshal payload: %v", ErrScanRow, err)
			}
		}

		n.Status = domain.NotificationProcessing
		n.CreatedAt = createdAt.Time
		notifications = append(notifications, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ClaimQueued - rows error: %v", ErrScanRow, err)
	}

	return notifications, nil
}

// MarkSent помечает уведомление отправленным
func (r *Repository) MarkSent(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	result, err := executor.ExecContext(ctx,
		"UPDATE notifications SET status = 'sent', sent_at = NOW() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("%w: MarkSent - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: MarkSent - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkFailedAttempt инкрементирует retry_count. Если лимит попыток
// исчерпан - переводит в failed, иначе возвращает в queued.
func (r *Repository) MarkFailedAttempt(ctx context.Context, id int64, maxRetries int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	result, err := executor.ExecContext(ctx, `
		UPDATE notifications
		SET retry_count = retry_count + 1,
		    status = CASE WHEN retry_count + 1 >= $2 THEN 'failed' ELSE 'queued' END
		WHERE id = $1`, id, maxRetries)
	if err != nil {
		return fmt.Errorf("%w: MarkFailedAttempt - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: MarkFailedAttempt - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func marshalPayload(m map[string]interface{}) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}
