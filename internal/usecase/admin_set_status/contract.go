package admin_set_status

import (
	"context"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
}

// TimeslotRepository интерфейс хранилища слотов
type TimeslotRepository interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Timeslot, error)
	ApplyCapacityDelta(ctx context.Context, id int64, delta int) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
