package notifications

import (
	"context"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
)

// LogSender заглушка канала доставки: пишет уведомление в лог.
// Используется, пока не подключен реальный email/sms-провайдер.
type LogSender struct {
	logger Logger
}

// NewLogSender создает новый лог-отправитель
func NewLogSender(logger Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send пишет уведомление в лог и считает его доставленным
func (s *LogSender) Send(ctx context.Context, n *domain.Notification) error {
	s.logger.Info("notification delivered: id=%d, channel=%s, type=%s, user=%d, subject=%q",
		n.ID, n.Channel, n.Type, n.UserID, n.Subject)
	return nil
}
