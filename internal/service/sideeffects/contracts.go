package sideeffects

import (
	"context"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
)

// SideEffectRepository интерфейс хранилища побочных эффектов
type SideEffectRepository interface {
	CreatePayment(ctx context.Context, p *domain.Payment) (*domain.Payment, error)
	CreateNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
