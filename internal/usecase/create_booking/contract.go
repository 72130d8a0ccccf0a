package create_booking

import (
	"context"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	HasActiveOnTimeslot(ctx context.Context, timeslotID int64) (bool, error)
}

// TimeslotRepository интерфейс хранилища слотов
type TimeslotRepository interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Timeslot, error)
	ApplyCapacityDelta(ctx context.Context, id int64, delta int) error
}

// ResourceRepository интерфейс справочника ресурсов
type ResourceRepository interface {
	GetResource(ctx context.Context, id int64) (*domain.Resource, error)
}

// UserRepository интерфейс хранилища пользователей
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// SideEffectEmitter интерфейс эмиттера побочных эффектов.
// Вызывается ПОСЛЕ commit транзакции резервирования; его ошибки
// не влияют на результат операции.
type SideEffectEmitter interface {
	EmitBookingConfirmed(ctx context.Context, booking *domain.Booking)
}

// Metrics счетчики бизнес-событий бронирования
type Metrics interface {
	IncBookingsCreated()
	IncCapacityConflicts()
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
