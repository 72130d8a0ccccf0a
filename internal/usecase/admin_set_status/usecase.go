package admin_set_status

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/booking"
	timeslotRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/timeslot"
)

// UseCase use case административной смены статуса бронирования.
//
// Учет вместимости смотрит только на переход cancelled <-> не-cancelled:
// переводы между не-cancelled статусами (confirmed -> no-show и т.п.)
// вместимость не трогают. Реактивация из cancelled списывает guest_count
// БЕЗ проверки остатка - вместимость может уйти в минус; это осознанное
// право администратора переопределить лимит. strictReactivation
// переключает это поведение на отказ при нехватке.
type UseCase struct {
	bookingRepo        BookingRepository
	timeslotRepo       TimeslotRepository
	txManager          TransactionManager
	logger             Logger
	strictReactivation bool
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	timeslotRepo TimeslotRepository,
	txManager TransactionManager,
	logger Logger,
	strictReactivation bool,
) *UseCase {
	return &UseCase{
		bookingRepo:        bookingRepo,
		timeslotRepo:       timeslotRepo,
		txManager:          txManager,
		logger:             logger,
		strictReactivation: strictReactivation,
	}
}

// Execute выполняет use case смены статуса
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("AdminSetStatus: booking=%d, status=%s", req.BookingID, req.NewStatus)

	if req.BookingID <= 0 {
		return nil, fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	if !domain.ValidAdminStatus(req.NewStatus) {
		uc.logger.Warn("AdminSetStatus: rejected status %q", req.NewStatus)
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.NewStatus)
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

		if booking.Status == req.NewStatus {
			result = booking
			return nil
		}

		ts, err := uc.timeslotRepo.GetByIDForUpdate(txCtx, booking.TimeslotID)
		if err != nil {
			if errors.Is(err, timeslotRepo.ErrTimeslotNotFound) {
				return fmt.Errorf("%w: timeslot id=%d is missing for booking id=%d",
					ErrInternal, booking.TimeslotID, booking.ID)
			}
			return fmt.Errorf("%w: failed to lock timeslot: %v", ErrInternal, err)
		}

		delta := capacityDelta(booking.Status, req.NewStatus, booking.GuestCount)

		if delta < 0 && uc.strictReactivation && !ts.HasCapacity(-delta) {
			uc.logger.Warn("AdminSetStatus: strict mode rejected reactivation of booking id=%d (capacity %d, need %d)",
				booking.ID, ts.AvailableCapacity, -delta)
			return ErrInsufficientCapacity
		}

		if delta != 0 {
			if err := uc.timeslotRepo.ApplyCapacityDelta(txCtx, ts.ID, delta); err != nil {
				return fmt.Errorf("%w: failed to adjust capacity: %v", ErrInternal, err)
			}
		}

		if err := uc.bookingRepo.UpdateStatus(txCtx, booking.ID, req.NewStatus); err != nil {
			return fmt.Errorf("%w: failed to update status: %v", ErrInternal, err)
		}

		booking.Status = req.NewStatus
		result = booking
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("AdminSetStatus: booking id=%d moved to %s", result.ID, result.Status)

	return toResponse(result), nil
}

// capacityDelta вычисляет изменение available_capacity для перехода статуса.
// Кредит при уходе в cancelled, дебет при выходе из cancelled, ноль иначе.
func capacityDelta(from, to domain.BookingStatus, guests int) int {
	switch {
	case from.ConsumesCapacity() && !to.ConsumesCapacity():
		return guests
	case !from.ConsumesCapacity() && to.ConsumesCapacity():
		return -guests
	default:
		return 0
	}
}
