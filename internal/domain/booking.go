package domain

import "time"

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending      BookingStatus = "pending"
	StatusConfirmed    BookingStatus = "confirmed"
	StatusCancelled    BookingStatus = "cancelled"
	StatusSalesPending BookingStatus = "sales-pending"
	StatusNoShow       BookingStatus = "no-show"
)

// Booking represents a reservation of one timeslot by one user.
// A booking is never physically deleted: cancellation is a status transition.
type Booking struct {
	ID         int64
	UserID     int64
	ResourceID int64
	TimeslotID int64
	Status     BookingStatus
	GuestCount int

	SpecialRequests *string
	Metadata        map[string]interface{}

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking counts against timeslot capacity
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// ConsumesCapacity reports whether bookings in this status hold capacity.
// Capacity accounting distinguishes only cancelled vs non-cancelled:
// pending, confirmed, sales-pending and no-show all keep their debit.
func (s BookingStatus) ConsumesCapacity() bool {
	return s != StatusCancelled
}

// ValidAdminStatus reports whether the status is accepted by the
// administrative status override
func ValidAdminStatus(s BookingStatus) bool {
	switch s {
	case StatusConfirmed, StatusCancelled, StatusSalesPending, StatusNoShow:
		return true
	default:
		return false
	}
}

// BookingDetails бронирование с денормализованными данными для выдачи
// в списках (пользователь, ресурс, границы слота)
type BookingDetails struct {
	Booking

	CustomerName  string
	CustomerEmail string
	ResourceName  string
	SlotStartAt   time.Time
	SlotEndAt     time.Time
}

// BookingsFilter фильтр для админского списка бронирований
type BookingsFilter struct {
	OrgID      *int64         // Фильтр по организации (через филиал ресурса)
	BranchID   *int64         // Фильтр по филиалу
	ResourceID *int64         // Фильтр по ресурсу
	Email      *string        // Фильтр по email пользователя (регистронезависимый)
	Status     *BookingStatus // Фильтр по статусу
	From       *time.Time     // Начало периода по created_at (опционально)
	To         *time.Time     // Конец периода по created_at (опционально)
}
