package sideeffects

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
)

// Emitter порождает побочные эффекты успешных операций движка:
// pending-платеж и отложенное уведомление. Вызывается ПОСЛЕ commit
// транзакции резервирования; любой отказ здесь логируется и
// проглатывается - само бронирование уже состоялось.
type Emitter struct {
	repo   SideEffectRepository
	logger Logger
}

// NewEmitter создает новый эмиттер побочных эффектов
func NewEmitter(repo SideEffectRepository, logger Logger) *Emitter {
	return &Emitter{
		repo:   repo,
		logger: logger,
	}
}

// EmitBookingConfirmed создает pending-платеж и ставит в очередь
// уведомление о подтверждении бронирования
func (e *Emitter) EmitBookingConfirmed(ctx context.Context, booking *domain.Booking) {
	if _, err := e.repo.CreatePayment(ctx, &domain.Payment{
		BookingID: booking.ID,
		Amount:    0,
		Currency:  domain.DefaultCurrency,
		Status:    domain.PaymentPending,
	}); err != nil {
		e.logger.Error("EmitBookingConfirmed: failed to create pending payment for booking=%d: %v", booking.ID, err)
	}

	if _, err := e.repo.CreateNotification(ctx, &domain.Notification{
		UserID:    booking.UserID,
		BookingID: booking.ID,
		Channel:   "email",
		Type:      "booking_confirmation",
		Subject:   "Бронирование подтверждено",
		Body:      fmt.Sprintf("Ваше бронирование №%d подтверждено.", booking.ID),
		Payload: map[string]interface{}{
			"bookingId":  booking.ID,
			"resourceId": booking.ResourceID,
			"timeslotId": booking.TimeslotID,
			"guestCount": booking.GuestCount,
		},
		Status: domain.NotificationQueued,
	}); err != nil {
		e.logger.Error("EmitBookingConfirmed: failed to queue notification for booking=%d: %v", booking.ID, err)
	}
}

// EmitBookingCancelled ставит в очередь уведомление об отмене бронирования
func (e *Emitter) EmitBookingCancelled(ctx context.Context, booking *domain.Booking) {
	if _, err := e.repo.CreateNotification(ctx, &domain.Notification{
		UserID:    booking.UserID,
		BookingID: booking.ID,
		Channel:   "email",
		Type:      "booking_cancelled",
		Subject:   "Бронирование отменено",
		Body:      fmt.Sprintf("Ваше бронирование №%d отменено.", booking.ID),
		Payload: map[string]interface{}{
			"bookingId": booking.ID,
		},
		Status: domain.NotificationQueued,
	}); err != nil {
		e.logger.Error("EmitBookingCancelled: failed to queue notification for booking=%d: %v", booking.ID, err)
	}
}
