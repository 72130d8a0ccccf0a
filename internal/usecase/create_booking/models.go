package create_booking

import (
	"time"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
)

// Request модель запроса на создание бронирования
type Request struct {
	UserID          int64   // ID аутентифицированного пользователя (из токена)
	ResourceID      int64   // ID ресурса
	TimeslotID      int64   // ID слота
	GuestCount      int     // Количество гостей (>= 1)
	SpecialRequests *string // Пожелания (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID              int64
	UserID          int64
	ResourceID      int64
	TimeslotID      int64
	Status          string
	GuestCount      int
	SpecialRequests *string
	Metadata        map[string]interface{}
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func toResponse(b *domain.Booking) *Response {
	return &Response{
		ID:              b.ID,
		UserID:          b.UserID,
		ResourceID:      b.ResourceID,
		TimeslotID:      b.TimeslotID,
		Status:          string(b.Status),
		GuestCount:      b.GuestCount,
		SpecialRequests: b.SpecialRequests,
		Metadata:        b.Metadata,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
