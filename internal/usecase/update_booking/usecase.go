package update_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/booking"
	timeslotRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/timeslot"
)

// UseCase use case изменения бронирования (число гостей, пожелания).
type UseCase struct {
	bookingRepo  BookingRepository
	timeslotRepo TimeslotRepository
	txManager    TransactionManager
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	timeslotRepo TimeslotRepository,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		timeslotRepo: timeslotRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// Execute выполняет use case изменения бронирования.
//
// Порядок блокировок фиксированный: бронирование, затем его слот.
// CreateBooking никогда не держит блокировку бронирования, поэтому
// такой порядок не образует цикла ожидания между операциями.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("UpdateBooking: booking=%d, guests=%d", req.BookingID, req.GuestCount)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("UpdateBooking: validation failed: %v", err)
		return nil, err
	}

	var result *domain.Booking

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := uc.bookingRepo.GetByIDForUpdate(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to lock booking: %v", ErrInternal, err)
		}

		if booking.IsCancelled() {
			uc.logger.Warn("UpdateBooking: booking id=%d is cancelled", booking.ID)
			return ErrBookingCancelled
		}

		ts, err := uc.timeslotRepo.GetByIDForUpdate(txCtx, booking.TimeslotID)
		if err != nil {
			if errors.Is(err, timeslotRepo.ErrTimeslotNotFound) {
				return fmt.Errorf("%w: timeslot id=%d is missing for booking id=%d",
					ErrInternal, booking.TimeslotID, booking.ID)
			}
			return fmt.Errorf("%w: failed to lock timeslot: %v", ErrInternal, err)
		}

		diff := req.GuestCount - booking.GuestCount

		// Рост числа гостей требует открытого слота и свободной
		// вместимости; уменьшение и no-op допустимы всегда
		if diff > 0 {
			if !ts.IsOpen() {
				uc.logger.Warn("UpdateBooking: timeslot id=%d is not open (status=%s)", ts.ID, ts.Status)
				return ErrSlotNotOpen
			}
			if !ts.HasCapacity(diff) {
				uc.logger.Warn("UpdateBooking: timeslot id=%d has capacity %d, requested extra %d",
					ts.ID, ts.AvailableCapacity, diff)
				return ErrInsufficientCapacity
			}
		}

		if diff != 0 {
			if err := uc.timeslotRepo.ApplyCapacityDelta(txCtx, ts.ID, -diff); err != nil {
				return fmt.Errorf("%w: failed to adjust capacity: %v", ErrInternal, err)
			}
		}

		specialRequests := booking.SpecialRequests
		if req.SpecialRequests != nil {
			specialRequests = req.SpecialRequests
		}

		if err := uc.bookingRepo.UpdateGuestCount(txCtx, booking.ID, req.GuestCount, specialRequests); err != nil {
			return fmt.Errorf("%w: failed to update booking: %v", ErrInternal, err)
		}

		booking.GuestCount = req.GuestCount
		booking.SpecialRequests = specialRequests
		result = booking
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("UpdateBooking: successfully updated booking id=%d", result.ID)

	return toResponse(result), nil
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	if req.GuestCount < domain.MinGuestCount {
		return fmt.Errorf("%w: guestCount must be at least %d", ErrInvalidInput, domain.MinGuestCount)
	}
	if req.SpecialRequests != nil && len(*req.SpecialRequests) > domain.MaxSpecialRequestsLength {
		return fmt.Errorf("%w: specialRequests is too long", ErrInvalidInput)
	}
	return nil
}
