package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-TimeslotService/internal/service/bookings/models"
)

// Service сервис чтения бронирований.
// Чистая query-поверхность: не трогает вместимость и не открывает
// транзакций, мутациями занимаются usecase-пакеты движка.
type Service struct {
	bookingRepo BookingRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(bookingRepo BookingRepository, logger Logger) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d", id)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBooking(booking), nil
}

// ListByEmail получает историю бронирований по email пользователя.
// Email сравнивается без учета регистра; опционально фильтрует по статусу.
func (s *Service) ListByEmail(ctx context.Context, req *models.ListByEmailRequest) (*models.BookingListResponse, error) {
	s.logger.Info("ListByEmail: fetching bookings for email=%s, status=%v", req.Email, req.Status)

	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("ListByEmail: invalid status=%s", *req.Status)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	list, err := s.bookingRepo.ListByEmail(ctx, email, domainStatus)
	if err != nil {
		s.logger.Error("ListByEmail: repository error for email=%s: %v", email, err)
		return nil, fmt.Errorf("%w: ListByEmail - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainDetailsList(list), nil
}

// AdminList получает список бронирований по административному фильтру
func (s *Service) AdminList(ctx context.Context, req *models.AdminListRequest) (*models.BookingListResponse, error) {
	s.logger.Info("AdminList: fetching bookings with filter")

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("AdminList: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	list, err := s.bookingRepo.ListWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("AdminList: repository error: %v", err)
		return nil, fmt.Errorf("%w: AdminList - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainDetailsList(list), nil
}
