package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/catalog"
	timeslotRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/timeslot"
	userRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/user"
)

// UseCase use case создания бронирования.
// Ядро движка резервирования: блокировка строки слота, повторная
// валидация под блокировкой, списание вместимости и вставка бронирования
// выполняются в одной all-or-nothing транзакции.
type UseCase struct {
	bookingRepo  BookingRepository
	timeslotRepo TimeslotRepository
	resourceRepo ResourceRepository
	userRepo     UserRepository
	emitter      SideEffectEmitter
	txManager    TransactionManager
	metrics      Metrics
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	timeslotRepo TimeslotRepository,
	resourceRepo ResourceRepository,
	userRepo UserRepository,
	emitter SideEffectEmitter,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		timeslotRepo: timeslotRepo,
		resourceRepo: resourceRepo,
		userRepo:     userRepo,
		emitter:      emitter,
		txManager:    txManager,
		metrics:      metrics,
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования.
//
// Порядок существенный:
//  1. проверки ссылок ДО транзакции - предварительные, дешевые отказы;
//  2. под блокировкой слота (FOR UPDATE) - авторитетная валидация:
//     принадлежность ресурсу, статус open, достаточная вместимость,
//     отсутствие активного бронирования;
//  3. списание вместимости и вставка бронирования в той же транзакции;
//  4. после commit - best-effort побочные эффекты (платеж, уведомление).
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, resource=%d, timeslot=%d, guests=%d",
		req.UserID, req.ResourceID, req.TimeslotID, req.GuestCount)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// Бронирование доступно только зарегистрированным пользователям
	if _, err := uc.userRepo.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			uc.logger.Warn("CreateBooking: user id=%d not found", req.UserID)
			return nil, ErrUnauthenticated
		}
		uc.logger.Error("CreateBooking: failed to resolve user id=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: failed to resolve user: %v", ErrInternal, err)
	}

	// Предварительная проверка ресурса до захвата блокировки
	if _, err := uc.resourceRepo.GetResource(ctx, req.ResourceID); err != nil {
		if errors.Is(err, catalogRepo.ErrResourceNotFound) {
			uc.logger.Warn("CreateBooking: resource id=%d not found", req.ResourceID)
			return nil, ErrResourceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get resource id=%d: %v", req.ResourceID, err)
		return nil, fmt.Errorf("%w: failed to get resource: %v", ErrInternal, err)
	}

	var result *domain.Booking

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// Эксклюзивная блокировка строки слота. Конкурирующие запросы на
		// этот же слот сериализуются здесь; другие слоты не блокируются.
		ts, err := uc.timeslotRepo.GetByIDForUpdate(txCtx, req.TimeslotID)
		if err != nil {
			if errors.Is(err, timeslotRepo.ErrTimeslotNotFound) {
				return ErrTimeslotNotFound
			}
			return fmt.Errorf("%w: failed to lock timeslot: %v", ErrInternal, err)
		}

		// Проверки под блокировкой - единственно авторитетные
		if ts.ResourceID != req.ResourceID {
			return ErrTimeslotMismatch
		}
		if !ts.IsOpen() {
			uc.logger.Warn("CreateBooking: timeslot id=%d is not open (status=%s)", ts.ID, ts.Status)
			return ErrSlotNotOpen
		}
		if !ts.HasCapacity(req.GuestCount) {
			uc.logger.Warn("CreateBooking: timeslot id=%d has capacity %d, requested %d",
				ts.ID, ts.AvailableCapacity, req.GuestCount)
			return ErrInsufficientCapacity
		}

		// Single-occupancy: не более одного активного бронирования на слот,
		// независимо от остатка вместимости
		taken, err := uc.bookingRepo.HasActiveOnTimeslot(txCtx, ts.ID)
		if err != nil {
			return fmt.Errorf("%w: failed to check active bookings: %v", ErrInternal, err)
		}
		if taken {
			uc.logger.Warn("CreateBooking: timeslot id=%d already has an active booking", ts.ID)
			return ErrSlotTaken
		}

		if err := uc.timeslotRepo.ApplyCapacityDelta(txCtx, ts.ID, -req.GuestCount); err != nil {
			return fmt.Errorf("%w: failed to consume capacity: %v", ErrInternal, err)
		}

		booking := &domain.Booking{
			UserID:          req.UserID,
			ResourceID:      req.ResourceID,
			TimeslotID:      req.TimeslotID,
			Status:          domain.StatusConfirmed,
			GuestCount:      req.GuestCount,
			SpecialRequests: req.SpecialRequests,
			Metadata:        map[string]interface{}{},
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			// Уникальный индекс - последний рубеж за явной проверкой выше
			if errors.Is(err, bookingRepo.ErrActiveBookingExists) {
				return ErrSlotTaken
			}
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrInsufficientCapacity) || errors.Is(err, ErrSlotTaken) || errors.Is(err, ErrSlotNotOpen) {
			uc.metrics.IncCapacityConflicts()
		}
		return nil, err
	}

	uc.metrics.IncBookingsCreated()
	uc.logger.Info("CreateBooking: successfully created booking id=%d", result.ID)

	// Побочные эффекты вне атомарного ядра: их отказ не откатывает бронирование
	uc.emitter.EmitBookingConfirmed(ctx, result)

	return toResponse(result), nil
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return ErrUnauthenticated
	}
	if req.ResourceID <= 0 {
		return fmt.Errorf("%w: resourceID must be positive", ErrInvalidInput)
	}
	if req.TimeslotID <= 0 {
		return fmt.Errorf("%w: timeslotID must be positive", ErrInvalidInput)
	}
	if req.GuestCount < domain.MinGuestCount {
		return fmt.Errorf("%w: guestCount must be at least %d", ErrInvalidInput, domain.MinGuestCount)
	}
	if req.SpecialRequests != nil && len(*req.SpecialRequests) > domain.MaxSpecialRequestsLength {
		return fmt.Errorf("%w: specialRequests is too long", ErrInvalidInput)
	}
	return nil
}
