package catalog

import (
	"context"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
)

// CatalogRepository интерфейс хранилища справочника
type CatalogRepository interface {
	CreateOrganization(ctx context.Context, org *domain.Organization) (*domain.Organization, error)
	ListOrganizations(ctx context.Context) ([]*domain.Organization, error)
	GetOrganization(ctx context.Context, id int64) (*domain.Organization, error)
	UpdateOrganization(ctx context.Context, id int64, name string) error
	DeleteOrganization(ctx context.Context, id int64) error

	CreateBranch(ctx context.Context, b *domain.Branch) (*domain.Branch, error)
	ListBranches(ctx context.Context, orgID int64, onlyActive bool) ([]*domain.Branch, error)
	UpdateBranch(ctx context.Context, id int64, name, timezone string, active bool) error
	DeleteBranch(ctx context.Context, id int64) error

	CreateResource(ctx context.Context, res *domain.Resource) (*domain.Resource, error)
	GetResource(ctx context.Context, id int64) (*domain.Resource, error)
	ListResources(ctx context.Context, branchID int64, onlyActive bool) ([]*domain.Resource, error)
	UpdateResource(ctx context.Context, id int64, name string, description *string, capacity int, active bool) error
	DeleteResource(ctx context.Context, id int64) error

	CreateTemplate(ctx context.Context, t *domain.ScheduleTemplate) (*domain.ScheduleTemplate, error)
	ListTemplates(ctx context.Context, resourceID int64) ([]*domain.ScheduleTemplate, error)
	UpdateTemplate(ctx context.Context, id int64, dayOfWeek int, startTime, endTime string, maxCapacity int) error
	DeleteTemplate(ctx context.Context, id int64) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
