package timeslots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
	catalogRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-TimeslotService/internal/service/timeslots/models"
)

// Service сервис для работы со слотами: публичная выдача расписания
// и административная генерация слотов из шаблонов.
type Service struct {
	timeslotRepo TimeslotRepository
	resourceRepo ResourceRepository
	logger       Logger
}

// NewService создает новый экземпляр сервиса слотов
func NewService(timeslotRepo TimeslotRepository, resourceRepo ResourceRepository, logger Logger) *Service {
	return &Service{
		timeslotRepo: timeslotRepo,
		resourceRepo: resourceRepo,
		logger:       logger,
	}
}

// List получает слоты ресурса за период
func (s *Service) List(ctx context.Context, req *models.ListRequest) (*models.TimeslotListResponse, error) {
	s.logger.Info("List: fetching timeslots for resource=%d, onlyOpen=%v", req.ResourceID, req.OnlyOpen)

	if req.ResourceID <= 0 {
		return nil, fmt.Errorf("%w: resourceID must be positive", ErrInvalidInput)
	}

	if _, err := s.resourceRepo.GetResource(ctx, req.ResourceID); err != nil {
		if errors.Is(err, catalogRepo.ErrResourceNotFound) {
			s.logger.Warn("List: resource id=%d not found", req.ResourceID)
			return nil, ErrResourceNotFound
		}
		s.logger.Error("List: failed to get resource id=%d: %v", req.ResourceID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	list, err := s.timeslotRepo.ListByFilter(ctx, domain.TimeslotsFilter{
		ResourceID: req.ResourceID,
		From:       req.From,
		To:         req.To,
		OnlyOpen:   req.OnlyOpen,
	})
	if err != nil {
		s.logger.Error("List: repository error for resource=%d: %v", req.ResourceID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainTimeslots(list), nil
}

// Generate порождает слоты ресурса из шаблонов расписания за период.
// Возвращает количество созданных слотов; уже существующие интервалы
// пропускаются генератором.
func (s *Service) Generate(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error) {
	s.logger.Info("Generate: resource=%d, period=%s..%s", req.ResourceID, req.StartDate, req.EndDate)

	if req.ResourceID <= 0 {
		return nil, fmt.Errorf("%w: resourceID must be positive", ErrInvalidInput)
	}

	startDate, err := time.Parse(domain.DateFormat, req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid startDate, expected YYYY-MM-DD", ErrInvalidInput)
	}
	endDate, err := time.Parse(domain.DateFormat, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid endDate, expected YYYY-MM-DD", ErrInvalidInput)
	}
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("%w: endDate is before startDate", ErrInvalidInput)
	}

	if _, err := s.resourceRepo.GetResource(ctx, req.ResourceID); err != nil {
		if errors.Is(err, catalogRepo.ErrResourceNotFound) {
			s.logger.Warn("Generate: resource id=%d not found", req.ResourceID)
			return nil, ErrResourceNotFound
		}
		s.logger.Error("Generate: failed to get resource id=%d: %v", req.ResourceID, err)
		return nil, fmt.Errorf("%w: Generate - repository error: %v", ErrInternal, err)
	}

	created, err := s.timeslotRepo.GenerateForResource(ctx, req.ResourceID, startDate, endDate)
	if err != nil {
		s.logger.Error("Generate: failed for resource=%d: %v", req.ResourceID, err)
		return nil, fmt.Errorf("%w: Generate - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Generate: created %d timeslots for resource=%d", created, req.ResourceID)
	return &models.GenerateResponse{Created: created}, nil
}
