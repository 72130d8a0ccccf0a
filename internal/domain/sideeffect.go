package domain

import "time"

// PaymentStatus статус платежа
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Payment pending-платеж, создаваемый как побочный эффект успешного
// бронирования. Сама логика оплаты вне зоны ответственности сервиса.
type Payment struct {
	ID         int64
	BookingID  int64
	Amount     float64
	AmountPaid float64
	Currency   string
	Status     PaymentStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NotificationStatus статус уведомления
type NotificationStatus string

const (
	NotificationQueued     NotificationStatus = "queued"
	NotificationProcessing NotificationStatus = "processing"
	NotificationSent       NotificationStatus = "sent"
	NotificationFailed     NotificationStatus = "failed"
)

// Notification отложенное уведомление, обрабатываемое фоновым воркером
type Notification struct {
	ID         int64
	UserID     int64
	BookingID  int64
	Channel    string // email / sms
	Type       string // booking_confirmation, booking_cancelled, ...
	Subject    string
	Body       string
	Payload    map[string]interface{}
	Status     NotificationStatus
	RetryCount int
	SentAt     *time.Time
	CreatedAt  time.Time
}
