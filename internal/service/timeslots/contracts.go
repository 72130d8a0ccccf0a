package timeslots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
)

// TimeslotRepository интерфейс хранилища слотов
type TimeslotRepository interface {
	ListByFilter(ctx context.Context, filter domain.TimeslotsFilter) ([]*domain.Timeslot, error)
	GenerateForResource(ctx context.Context, resourceID int64, startDate, endDate time.Time) (int, error)
}

// ResourceRepository интерфейс справочника ресурсов
type ResourceRepository interface {
	GetResource(ctx context.Context, id int64) (*domain.Resource, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
