package models

import (
	"time"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
)

// Request модели

// OrganizationRequest запрос создания/обновления организации
type OrganizationRequest struct {
	Name string `json:"name"`
}

// BranchRequest запрос создания/обновления филиала
type BranchRequest struct {
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
	Active   *bool  `json:"active,omitempty"` // nil при создании = true
}

// ResourceRequest запрос создания/обновления ресурса
type ResourceRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Capacity    int     `json:"capacity"`
	Active      *bool   `json:"active,omitempty"`
}

// TemplateRequest запрос создания/обновления шаблона расписания
type TemplateRequest struct {
	DayOfWeek   int    `json:"dayOfWeek"`   // 0 = воскресенье ... 6 = суббота
	StartTime   string `json:"startTime"`   // "HH:MM"
	EndTime     string `json:"endTime"`     // "HH:MM"
	MaxCapacity int    `json:"maxCapacity"`
}

// Response модели

// OrganizationResponse ответ с данными организации
type OrganizationResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BranchResponse ответ с данными филиала
type BranchResponse struct {
	ID        int64     `json:"id"`
	OrgID     int64     `json:"orgId"`
	Name      string    `json:"name"`
	Timezone  string    `json:"timezone"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ResourceResponse ответ с данными ресурса
type ResourceResponse struct {
	ID          int64     `json:"id"`
	BranchID    int64     `json:"branchId"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Capacity    int       `json:"capacity"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TemplateResponse ответ с данными шаблона расписания
type TemplateResponse struct {
	ID          int64     `json:"id"`
	ResourceID  int64     `json:"resourceId"`
	DayOfWeek   int       `json:"dayOfWeek"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	MaxCapacity int       `json:"maxCapacity"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FromDomainOrganization конвертирует domain.Organization
func FromDomainOrganization(o *domain.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:        o.ID,
		Name:      o.Name,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

// FromDomainBranch конвертирует domain.Branch
func FromDomainBranch(b *domain.Branch) BranchResponse {
	return BranchResponse{
		ID:        b.ID,
		OrgID:     b.OrgID,
		Name:      b.Name,
		Timezone:  b.Timezone,
		Active:    b.Active,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// FromDomainResource конвертирует domain.Resource
func FromDomainResource(r *domain.Resource) ResourceResponse {
	return ResourceResponse{
		ID:          r.ID,
		BranchID:    r.BranchID,
		Name:        r.Name,
		Description: r.Description,
		Capacity:    r.Capacity,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// FromDomainTemplate конвертирует domain.ScheduleTemplate
func FromDomainTemplate(t *domain.ScheduleTemplate) TemplateResponse {
	return TemplateResponse{
		ID:          t.ID,
		ResourceID:  t.ResourceID,
		DayOfWeek:   t.DayOfWeek,
		StartTime:   t.StartTime,
		EndTime:     t.EndTime,
		MaxCapacity: t.MaxCapacity,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
