package domain

// Business validation constants
const (
	MinGuestCount            = 1
	MaxSpecialRequestsLength = 500
	MinPasswordLength        = 6
	DefaultSlotMaxCapacity   = 1
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
	TimeFormat = "15:04"      // HH:MM
)

// DefaultCurrency валюта pending-платежей по умолчанию
const DefaultCurrency = "USD"

// ActiveStatuses статусы, при которых бронирование удерживает вместимость слота.
// Используется в проверке single-occupancy и в частичном уникальном индексе.
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}
