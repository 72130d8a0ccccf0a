package bookings

import (
	"context"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований (read-only поверхность)
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByEmail(ctx context.Context, email string, status *domain.BookingStatus) ([]*domain.BookingDetails, error)
	ListWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.BookingDetails, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
