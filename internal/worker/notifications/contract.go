package notifications

import (
	"context"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
)

// NotificationRepository интерфейс очереди уведомлений
type NotificationRepository interface {
	ClaimQueued(ctx context.Context, limit int) ([]*domain.Notification, error)
	MarkSent(ctx context.Context, id int64) error
	MarkFailedAttempt(ctx context.Context, id int64, maxRetries int) error
}

// Sender интерфейс доставки уведомления во внешний канал
type Sender interface {
	Send(ctx context.Context, n *domain.Notification) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
