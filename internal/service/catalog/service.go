package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
	catalogRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-TimeslotService/internal/service/catalog/models"
)

// Service сервис справочника: организации, филиалы, ресурсы и
// шаблоны расписания. Административная поверхность плюс публичные списки.
type Service struct {
	repo   CatalogRepository
	logger Logger
}

// NewService создает новый экземпляр сервиса справочника
func NewService(repo CatalogRepository, logger Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Организации

// CreateOrganization создает организацию
func (s *Service) CreateOrganization(ctx context.Context, req *models.OrganizationRequest) (*models.OrganizationResponse, error) {
	s.logger.Info("CreateOrganization: name=%s", req.Name)

	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	org, err := s.repo.CreateOrganization(ctx, &domain.Organization{Name: strings.TrimSpace(req.Name)})
	if err != nil {
		s.logger.Error("CreateOrganization: repository error: %v", err)
		return nil, fmt.Errorf("%w: CreateOrganization - repository error: %v", ErrInternal, err)
	}

	resp := models.FromDomainOrganization(org)
	return &resp, nil
}

// ListOrganizations возвращает все организации
func (s *Service) ListOrganizations(ctx context.Context) ([]models.OrganizationResponse, error) {
	list, err := s.repo.ListOrganizations(ctx)
	if err != nil {
		s.logger.Error("ListOrganizations: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListOrganizations - repository error: %v", ErrInternal, err)
	}

	out := make([]models.OrganizationResponse, 0, len(list))
	for _, org := range list {
		out = append(out, models.FromDomainOrganization(org))
	}
	return out, nil
}

// GetOrganization возвращает организацию по ID
func (s *Service) GetOrganization(ctx context.Context, id int64) (*models.OrganizationResponse, error) {
	org, err := s.repo.GetOrganization(ctx, id)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrOrganizationNotFound) {
			return nil, ErrOrganizationNotFound
		}
		s.logger.Error("GetOrganization: repository error for id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetOrganization - repository error: %v", ErrInternal, err)
	}

	resp := models.FromDomainOrganization(org)
	return &resp, nil
}

// UpdateOrganization обновляет организацию
func (s *Service) UpdateOrganization(ctx context.Context, id int64, req *models.OrganizationRequest) error {
	s.logger.Info("UpdateOrganization: id=%d", id)

	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	if err := s.repo.UpdateOrganization(ctx, id, strings.TrimSpace(req.Name)); err != nil {
		if errors.Is(err, catalogRepo.ErrOrganizationNotFound) {
			return ErrOrganizationNotFound
		}
		s.logger.Error("UpdateOrganization: repository error for id=%d: %v", id, err)
		return fmt.Errorf("%w: UpdateOrganization - repository error: %v", ErrInternal, err)
	}
	return nil
}

// DeleteOrganization удаляет организацию
func (s *Service) DeleteOrganization(ctx context.Context, id int64) error {
	s.logger.Info("DeleteOrganization: id=%d", id)

	if err := s.repo.DeleteOrganization(ctx, id); err != nil {
		if errors.Is(err, catalogRepo.ErrOrganizationNotFound) {
			return ErrOrganizationNotFound
		}
		s.logger.Error("DeleteOrganization: repository error for id=%d: %v", id, err)
		return fmt.Errorf("%w: DeleteOrganization - repository error: %v", ErrInternal, err)
	}
	return nil
}

// Филиалы

// CreateBranch создает филиал организации
func (s *Service) CreateBranch(ctx context.Context, orgID int64, req *models.BranchRequest) (*models.BranchResponse, error) {
	s.logger.Info("CreateBranch: org=%d, name=%s", orgID, req.Name)

	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, timezone)
	}

	if _, err := s.repo.GetOrganization(ctx, orgID); err != nil {
		if errors.Is(err, catalogRepo.ErrOrganizationNotFound) {
			return nil, ErrOrganizationNotFound
		}
		s.logger.Error("CreateBranch: failed to get organization id=%d: %v", orgID, err)
		return nil, fmt.Errorf("%w: CreateBranch - repository error: %v", ErrInternal, err)
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	branch, err := s.repo.CreateBranch(ctx, &domain.Branch{
		OrgID:    orgID,
		Name:     strings.TrimSpace(req.Name),
		Timezone: timezone,
		Active:   active,
	})
	if err != nil {
		s.logger.Error("CreateBranch: repository error: %v", err)
		return nil, fmt.Errorf("%w: CreateBranch - repository error: %v", ErrInternal, err)
	}

	resp := models.FromDomainBranch(branch)
	return &resp, nil
}

// ListBranches возвращает филиалы организации
func (s *Service) ListBranches(ctx context.Context, orgID int64, onlyActive bool) ([]models.BranchResponse, error) {
	list, err := s.repo.ListBranches(ctx, orgID, onlyActive)
	if err != nil {
		s.logger.Error("ListBranches: repository error for org=%d: %v", orgID, err)
		return nil, fmt.Errorf("%w: ListBranches - repository error: %v", ErrInternal, err)
	}

	out := make([]models.BranchResponse, 0, len(list))
	for _, b := range list {
		out = append(out, models.FromDomainBranch(b))
	}
	return out, nil
}

// UpdateBranch обновляет филиал
func (s *Service) UpdateBranch(ctx context.Context, id int64, req *models.BranchRequest) error {
	s.logger.Info("UpdateBranch: id=%d", id)

	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, timezone)
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	if err := s.repo.UpdateBranch(ctx, id, strings.TrimSpace(req.Name), timezone, active); err != nil {
		if errors.Is(err, catalogRepo.ErrBranchNotFound) {
			return ErrBranchNotFound
		}
		s.logger.Error("UpdateBranch: repository error for id=%d: %v", id, err)
		return fmt.Errorf("%w: UpdateBranch - repository error: %v", ErrInternal, err)
	}
	return nil
}

// DeleteBranch удаляет филиал
func (s *Service) DeleteBranch(ctx context.Context, id int64) error {
	s.logger.Info("DeleteBranch: id=%d", id)

	if err := s.repo.DeleteBranch(ctx, id); err != nil {
		if errors.Is(err, catalogRepo.ErrBranchNotFound) {
			return ErrBranchNotFound
		}
		s.logger.Error("DeleteBranch: repository error for id=%d: %v", id, err)
		return fmt.Errorf("%w: DeleteBranch - repository error: %v", ErrInternal, err)
	}
	return nil
}

// Ресурсы

// CreateResource создает ресурс в филиале
func (s *Service) CreateResource(ctx context.Context, branchID int64, req *models.ResourceRequest) (*models.ResourceResponse, error) {
	s.logger.Info("CreateResource: branch=%d, name=%s", branchID, req.Name)

	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if req.Capacity < 1 {
		return nil, fmt.Errorf("%w: capacity must be positive", ErrInvalidInput)
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	res, err := s.repo.CreateResource(ctx, &domain.Resource{
		BranchID:    branchID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Capacity:    req.Capacity,
		Active:      active,
	})
	if err != nil {
		if errors.Is(err, catalogRepo.ErrBranchNotFound) {
			return nil, ErrBranchNotFound
		}
		s.logger.Error("CreateResource: repository error: %v", err)
		return nil, fmt.Errorf("%w: CreateResource - repository error: %v", ErrInternal, err)
	}

	resp := models.FromDomainResource(res)
	return &resp, nil
}

// GetResource возвращает ресурс по ID
func (s *Service) GetResource(ctx context.Context, id int64) (*models.ResourceResponse, error) {
	res, err := s.repo.GetResource(ctx, id)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrResourceNotFound) {
			return nil, ErrResourceNotFound
		}
		s.logger.Error("GetResource: repository error for id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetResource - repository error: %v", ErrInternal, err)
	}

	resp := models.FromDomainResource(res)
	return &resp, nil
}

// ListResources возвращает ресурсы филиала
func (s *Service) ListResources(ctx context.Context, branchID int64, onlyActive bool) ([]models.ResourceResponse, error) {
	list, err := s.repo.ListResources(ctx, branchID, onlyActive)
	if err != nil {
		s.logger.Error("ListResources: repository error for branch=%d: %v", branchID, err)
		return nil, fmt.Errorf("%w: ListResources - repository error: %v", ErrInternal, err)
	}

	out := make([]models.ResourceResponse, 0, len(list))
	for _, r := range list {
		out = append(out, models.FromDomainResource(r))
	}
	return out, nil
}

// UpdateResource обновляет ресурс
func (s *Service) UpdateResource(ctx context.Context, id int64, req *models.ResourceRequest) error {
	s.logger.Info("UpdateResource: id=%d", id)

	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if req.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be positive", ErrInvalidInput)
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	if err := s.repo.UpdateResource(ctx, id, strings.TrimSpace(req.Name), req.Description, req.Capacity, active); err != nil {
		if errors.Is(err, catalogRepo.ErrResourceNotFound) {
			return ErrResourceNotFound
		}
		s.logger.Error("UpdateResource: repository error for id=%d: %v", id, err)
		return fmt.Errorf("%w: UpdateResource - repository error: %v", ErrInternal, err)
	}
	return nil
}

// DeleteResource удаляет ресурс
func (s *Service) DeleteResource(ctx context.Context, id int64) error {
	s.logger.Info("DeleteResource: id=%d", id)

	if err := s.repo.DeleteResource(ctx, id); err != nil {
		if errors.Is(err, catalogRepo.ErrResourceNotFound) {
			return ErrResourceNotFound
		}
		s.logger.Error("DeleteResource: repository error for id=%d: %v", id, err)
		return fmt.Errorf("%w: DeleteResource - repository error: %v", ErrInternal, err)
	}
	return nil
}

// Шаблоны расписания

// CreateTemplate создает шаблон расписания ресурса
func (s *Service) CreateTemplate(ctx context.Context, resourceID int64, req *models.TemplateRequest) (*models.TemplateResponse, error) {
	s.logger.Info("CreateTemplate: resource=%d, day=%d", resourceID, req.DayOfWeek)

	if err := validateTemplate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetResource(ctx, resourceID); err != nil {
		if errors.Is(err, catalogRepo.ErrResourceNotFound) {
			return nil, ErrResourceNotFound
		}
		s.logger.Error("CreateTemplate: failed to get resource id=%d: %v", resourceID, err)
		return nil, fmt.Errorf("%w: CreateTemplate - repository error: %v", ErrInternal, err)
	}

	tpl, err := s.repo.CreateTemplate(ctx, &domain.ScheduleTemplate{
		ResourceID:  resourceID,
		DayOfWeek:   req.DayOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		MaxCapacity: req.MaxCapacity,
	})
	if err != nil {
		s.logger.Error("CreateTemplate: repository error: %v", err)
		return nil, fmt.Errorf("%w: CreateTemplate - repository error: %v", ErrInternal, err)
	}

	resp := models.FromDomainTemplate(tpl)
	return &resp, nil
}

// ListTemplates возвращает шаблоны расписания ресурса
func (s *Service) ListTemplates(ctx context.Context, resourceID int64) ([]models.TemplateResponse, error) {
	list, err := s.repo.ListTemplates(ctx, resourceID)
	if err != nil {
		s.logger.Error("ListTemplates: repository error for resource=%d: %v", resourceID, err)
		return nil, fmt.Errorf("%w: ListTemplates - repository error: %v", ErrInternal, err)
	}

	out := make([]models.TemplateResponse, 0, len(list))
	for _, t := range list {
		out = append(out, models.FromDomainTemplate(t))
	}
	return out, nil
}

// UpdateTemplate обновляет шаблон расписания
func (s *Service) UpdateTemplate(ctx context.Context, id int64, req *models.TemplateRequest) error {
	s.logger.Info("UpdateTemplate: id=%d", id)

	if err := validateTemplate(req); err != nil {
		return err
	}

	if err := s.repo.UpdateTemplate(ctx, id, req.DayOfWeek, req.StartTime, req.EndTime, req.MaxCapacity); err != nil {
		if errors.Is(err, catalogRepo.ErrTemplateNotFound) {
			return ErrTemplateNotFound
		}
		s.logger.Error("UpdateTemplate: repository error for id=%d: %v", id, err)
		return fmt.Errorf("%w: UpdateTemplate - repository error: %v", ErrInternal, err)
	}
	return nil
}

// DeleteTemplate удаляет шаблон расписания
func (s *Service) DeleteTemplate(ctx context.Context, id int64) error {
	s.logger.Info("DeleteTemplate: id=%d", id)

	if err := s.repo.DeleteTemplate(ctx, id); err != nil {
		if errors.Is(err, catalogRepo.ErrTemplateNotFound) {
			return ErrTemplateNotFound
		}
		s.logger.Error("DeleteTemplate: repository error for id=%d: %v", id, err)
		return fmt.Errorf("%w: DeleteTemplate - repository error: %v", ErrInternal, err)
	}
	return nil
}

func validateTemplate(req *models.TemplateRequest) error {
	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		return fmt.Errorf("%w: dayOfWeek must be in [0, 6]", ErrInvalidInput)
	}
	start, err := time.Parse(domain.TimeFormat, req.StartTime)
	if err != nil {
		return fmt.Errorf("%w: invalid startTime, expected HH:MM", ErrInvalidInput)
	}
	end, err := time.Parse(domain.TimeFormat, req.EndTime)
	if err != nil {
		return fmt.Errorf("%w: invalid endTime, expected HH:MM", ErrInvalidInput)
	}
	if !end.After(start) {
		return fmt.Errorf("%w: endTime must be after startTime", ErrInvalidInput)
	}
	if req.MaxCapacity < 1 {
		return fmt.Errorf("%w: maxCapacity must be positive", ErrInvalidInput)
	}
	return nil
}
