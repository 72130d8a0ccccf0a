package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// ListByEmailRequest запрос истории бронирований по email
type ListByEmailRequest struct {
	Email  string  `json:"email"`
	Status *string `json:"status,omitempty"` // Фильтр по статусу (опционально)
}

// AdminListRequest запрос админского списка бронирований
type AdminListRequest struct {
	OrgID      *int64     `json:"orgId,omitempty"`
	BranchID   *int64     `json:"branchId,omitempty"`
	ResourceID *int64     `json:"resourceId,omitempty"`
	Email      *string    `json:"email,omitempty"`
	Status     *string    `json:"status,omitempty"`
	From       *time.Time `json:"from,omitempty"` // Начало периода по дате создания
	To         *time.Time `json:"to,omitempty"`   // Конец периода по дате создания
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *AdminListRequest) ToDomainFilter() (domain.BookingsFilter, error) {
	filter := domain.BookingsFilter{
		OrgID:      r.OrgID,
		BranchID:   r.BranchID,
		ResourceID: r.ResourceID,
		Email:      r.Email,
		From:       r.From,
		To:         r.To,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              int64                  `json:"id"`
	UserID          int64                  `json:"userId"`
	ResourceID      int64                  `json:"resourceId"`
	TimeslotID      int64                  `json:"timeslotId"`
	Status          string                 `json:"status"`
	GuestCount      int                    `json:"guestCount"`
	SpecialRequests *string                `json:"specialRequests,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingDetailsResponse бронирование с денормализованными данными
type BookingDetailsResponse struct {
	BookingResponse

	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	ResourceName  string    `json:"resourceName"`
	SlotStartAt   time.Time `json:"slotStartAt"`
	SlotEndAt     time.Time `json:"slotEndAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingDetailsResponse `json:"bookings"`
	Total    int                      `json:"total"`
}

// FromDomainBooking конвертирует domain.Booking в response модель
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	return &BookingResponse{
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

// FromDomainDetails конвертирует domain.BookingDetails в response модель
func FromDomainDetails(d *domain.BookingDetails) BookingDetailsResponse {
	return BookingDetailsResponse{
		BookingResponse: *FromDomainBooking(&d.Booking),
		CustomerName:    d.CustomerName,
		CustomerEmail:   d.CustomerEmail,
		ResourceName:    d.ResourceName,
		SlotStartAt:     d.SlotStartAt,
		SlotEndAt:       d.SlotEndAt,
	}
}

// FromDomainDetailsList конвертирует список domain.BookingDetails
func FromDomainDetailsList(list []*domain.BookingDetails) *BookingListResponse {
	out := &BookingListResponse{
		Bookings: make([]BookingDetailsResponse, 0, len(list)),
		Total:    len(list),
	}
	for _, d := range list {
		out.Bookings = append(out.Bookings, FromDomainDetails(d))
	}
	return out
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus
func ToDomainBookingStatus(s string) (domain.BookingStatus, error) {
	switch domain.BookingStatus(s) {
	case domain.StatusPending, domain.StatusConfirmed, domain.StatusCancelled,
		domain.StatusSalesPending, domain.StatusNoShow:
		return domain.BookingStatus(s), nil
	default:
		return "", ErrInvalidStatus
	}
}
