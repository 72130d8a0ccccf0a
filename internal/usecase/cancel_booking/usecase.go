package cancel_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/booking"
	timeslotRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/timeslot"
)

// UseCase use case отмены бронирования.
// Отмена идемпотентна: повторный вызов на уже отмененном бронировании
// завершается успехом и НЕ возвращает вместимость второй раз.
type UseCase struct {
	bookingRepo  BookingRepository
	timeslotRepo TimeslotRepository
	emitter      SideEffectEmitter
	txManager    TransactionManager
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	timeslotRepo TimeslotRepository,
	emitter SideEffectEmitter,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		timeslotRepo: timeslotRepo,
		emitter:      emitter,
		txManager:    txManager,
		logger:       logger,
	}
}

// Execute выполняет use case отмены бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelBooking: booking=%d", req.BookingID)

	if req.BookingID <= 0 {
		return nil, fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}

	var (
		result       *domain.Booking
		transitioned bool
	)

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := uc.bookingRepo.GetByIDForUpdate(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to lock booking: %v", ErrInternal, err)
		}

		// Идемпотентность: кредит вместимости выдается ровно один раз
		if booking.IsCancelled() {
			uc.logger.Info("CancelBooking: booking id=%d is already cancelled", booking.ID)
			result = booking
			return nil
		}

		// Порядок блокировок: бронирование, затем слот (как в UpdateBooking)
		ts, err := uc.timeslotRepo.GetByIDForUpdate(txCtx, booking.TimeslotID)
		if err != nil {
			if errors.Is(err, timeslotRepo.ErrTimeslotNotFound) {
				return fmt.Errorf("%w: timeslot id=%d is missing for booking id=%d",
					ErrInternal, booking.TimeslotID, booking.ID)
			}
			return fmt.Errorf("%w: failed to lock timeslot: %v", ErrInternal, err)
		}

		if err := uc.timeslotRepo.ApplyCapacityDelta(txCtx, ts.ID, booking.GuestCount); err != nil {
			return fmt.Errorf("%w: failed to release capacity: %v", ErrInternal, err)
		}

		if err := uc.bookingRepo.UpdateStatus(txCtx, booking.ID, domain.StatusCancelled); err != nil {
			return fmt.Errorf("%w: failed to cancel booking: %v", ErrInternal, err)
		}

		booking.Status = domain.StatusCancelled
		result = booking
		transitioned = true
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CancelBooking: booking id=%d is cancelled", result.ID)

	// Уведомление только при фактической отмене, не при повторном вызове
	if transitioned {
		uc.emitter.EmitBookingCancelled(ctx, result)
	}

	return toResponse(result), nil
}
