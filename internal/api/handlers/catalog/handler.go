package catalog

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TimeslotService/internal/api/handlers"
	catalogService "github.com/m04kA/SMC-TimeslotService/internal/service/catalog"
	"github.com/m04kA/SMC-TimeslotService/internal/service/catalog/models"
)

// CatalogService интерфейс сервиса справочника
type CatalogService interface {
	CreateOrganization(ctx context.Context, req *models.OrganizationRequest) (*models.OrganizationResponse, error)
	ListOrganizations(ctx context.Context) ([]models.OrganizationResponse, error)
	GetOrganization(ctx context.Context, id int64) (*models.OrganizationResponse, error)
	UpdateOrganization(ctx context.Context, id int64, req *models.OrganizationRequest) error
	DeleteOrganization(ctx context.Context, id int64) error

	CreateBranch(ctx context.Context, orgID int64, req *models.BranchRequest) (*models.BranchResponse, error)
	ListBranches(ctx context.Context, orgID int64, onlyActive bool) ([]models.BranchResponse, error)
	UpdateBranch(ctx context.Context, id int64, req *models.BranchRequest) error
	DeleteBranch(ctx context.Context, id int64) error

	CreateResource(ctx context.Context, branchID int64, req *models.ResourceRequest) (*models.ResourceResponse, error)
	GetResource(ctx context.Context, id int64) (*models.ResourceResponse, error)
	ListResources(ctx context.Context, branchID int64, onlyActive bool) ([]models.ResourceResponse, error)
	UpdateResource(ctx context.Context, id int64, req *models.ResourceRequest) error
	DeleteResource(ctx context.Context, id int64) error

	CreateTemplate(ctx context.Context, resourceID int64, req *models.TemplateRequest) (*models.TemplateResponse, error)
	ListTemplates(ctx context.Context, resourceID int64) ([]models.TemplateResponse, error)
	UpdateTemplate(ctx context.Context, id int64, req *models.TemplateRequest) error
	DeleteTemplate(ctx context.Context, id int64) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Handler обработчики CRUD справочника.
// Один пакет на весь справочник: операции однотипные, по отдельному
// пакету на каждую вышло бы два десятка одинаковых файлов.
type Handler struct {
	service CatalogService
	logger  Logger
}

// NewHandler создает новый обработчик справочника
func NewHandler(service CatalogService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil
}

// Организации

// CreateOrganization обрабатывает POST /admin/organizations
func (h *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req models.OrganizationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondBadRequest(w, "некорректное тело запроса")
		return
	}

	resp, err := h.service.CreateOrganization(r.Context(), &req)
	if err != nil {
		h.respondError(w, "CreateOrganization", err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, resp)
}

// ListOrganizations обрабатывает GET /organizations
func (h *Handler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ListOrganizations(r.Context())
	if err != nil {
		h.respondError(w, "ListOrganizations", err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// GetOrganization обрабатывает GET /organizations/{id}
func (h *Handler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		handlers.RespondBadRequest(w, "некорректный ID организации")
		return
	}

	resp, err := h.service.GetOrganization(r.Context(), id)
	if err != nil {
		h.respondError(w, "GetOrganization", err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// UpdateOrganization обрабатывает PUT /admin/organizations/{id}
func (h *Handler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		handlers.RespondBadRequest(w, "некорректный ID организации")
		return
	}

	var req models.OrganizationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondBadRequest(w, "некорректное тело запроса")
		return
	}

	if err := h.service.UpdateOrganization(r.Context(), id, &req); err != nil {
		h.respondError(w, "UpdateOrganization", err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, handlers.SuccessResponse{Success: true})
}

// DeleteOrganization обрабатывает DELETE /admin/organizations/{id}
func (h *Handler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		handlers.RespondBadRequest(w, "некорректный ID организации")
		return
	}

	if err := h.service.DeleteOrganization(r.Context(), id); err != nil {
		h.respondError(w, "DeleteOrganization", err)
		return
	}
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}

// Филиалы

// CreateBranch обрабатывает POST /admin/organizations/{id}/branches
func (h *Handler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	orgID, ok := pathID(r)
	if !ok {
		handlers.RespondBadRequest(w, "некорректный ID организации")
		return
	}

	var req models.BranchRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondBadRequest(w, "некорректное тело запроса")
		return
	}

	resp, err := h.service.CreateBranch(r.Context(), orgID, &req)
	if err != nil {
		h.respondError(w, "CreateBranch", err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, resp)
}

// ListBranches обрабатывает GET /organizations/{id}/branches.
// Публичная выдача показывает только активные филиалы; админская -
// все, при передаче ?all=true.
func (h *Handler) ListBranches(w http.ResponseWriter, r *http.Request) {
	orgID, ok := pathID(r)
	if !ok {
		handlers.RespondBadRequest(w, "некорректный ID организации")
		return
	}

	onlyActive := r.URL.Query().Get("all") != "true"

	resp, err := h.service.ListBranches(r.Context(), orgID, onlyActive)
	if err != nil {
		h.respondError(w, "ListBranches", err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// UpdateBranch обрабатывает PUT /admin/branches/{id}
func (h *Handler) UpdateBranch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		handlers.RespondBadRequest(w, "некорректный ID филиала")
		return
	}

	var req models.BranchRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondBadRequest(w, "некорректное тело запроса")
		return
	}

	if err := h.service.UpdateBranch(r.Context(), id, &req); err != nil {
		h.respondError(w, "UpdateBranch", err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, handlers.SuccessResponse{Success: true})
}

// DeleteBranch обрабатывает DELETE /admin/branches/{id}
func (h *Handler) DeleteBranch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		handlers.RespondBadRequest(w, "некорректный ID филиала")
		return
	}

	if err := h.service.DeleteBranch(r.Context(), id); err != nil {
		h.respondError(w, "DeleteBranch", err)
		return
	}
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}

// Ресурсы

// CreateResource обрабатывает POST /admin/branches/{id}/resources
func (h *Handler) CreateResource(w http.ResponseWriter, r *http.Request) {
	branchID, ok := pathID(r)
	if !ok {
		handlers.RespondBadRequest(w, "некорректный ID филиала")
		return
	}

	var req models.ResourceRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondBadRequest(w, "некорректное тело запроса")
		return
	}

	resp, err := h.service.CreateResource(r.Context(), branchID, &req)
	if err != nil {
		h.respondError(w, "CreateResource", err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, resp)
}

// GetResource обрабатывает GET /resources/{id}
func (h *Handler) GetResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		handlers.RespondBadRequest(w, "некорректный ID ресурса")
		return
	}

	resp, err := h.service.GetResource(r.Context(), id)
	if err != nil {
		h.respondError(w, "GetResource", err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// ListResources обрабатывает GET /branches/{id}/resources
func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	branchID, ok := pathID(r)
	if !ok {
		handlers.RespondBadRequest(w, "некорректный ID филиала")
		return
	}

	onlyActive := r.URL.Query().Get("all") != "true"

	resp, err := h.service.ListResources(r.Context(), branchID, onlyActive)
	if err != nil {
		h.respondError(w, "ListResources", err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// UpdateResource обрабатывает PUT /admin/resources/{id}
func (h *Handler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		handlers.RespondBadRequest(w, "некорректный ID ресурса")
		return
	}

	var req models.ResourceRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondBadRequest(w, "некорректное тело запроса")
		return
	}

	if err := h.service.UpdateResource(r.Context(), id, &req); err != nil {
		h.respondError(w, "UpdateResource", err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, handlers.SuccessResponse{Success: true})
}

// DeleteResource обрабатывает DELETE /admin/resources/{id}
func (h *Handler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		handlers.RespondBadRequest(w, "некорректный ID ресурса")
		return
	}

	if err := h.service.DeleteResource(r.Context(), id); err != nil {
		h.respondError(w, "DeleteResource", err)
		return
	}
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}

// Шаблоны расписания

// CreateTemplate обрабатывает POST /admin/resources/{id}/templates
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	resourceID, ok := pathID(r)
	if !ok {
		handlers.RespondBadRequest(w, "некорректный ID ресурса")
		return
	}

	var req models.TemplateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondBadRequest(w, "некорректное тело запроса")
		return
	}

	resp, err := h.service.CreateTemplate(r.Context(), resourceID, &req)
	if err != nil {
		h.respondError(w, "CreateTemplate", err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, resp)
}

// ListTemplates обрабатывает GET /admin/resources/{id}/templates
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	resourceID, ok := pathID(r)
	if !ok {
		handlers.RespondBadRequest(w, "некорректный ID ресурса")
		return
	}

	resp, err := h.service.ListTemplates(r.Context(), resourceID)
	if err != nil {
		h.respondError(w, "ListTemplates", err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// UpdateTemplate обрабатывает PUT /admin/templates/{id}
func (h *Handler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		handlers.RespondBadRequest(w, "некорректный ID шаблона")
		return
	}

	var req models.TemplateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondBadRequest(w, "некорректное тело запроса")
		return
	}

	if err := h.service.UpdateTemplate(r.Context(), id, &req); err != nil {
		h.respondError(w, "UpdateTemplate", err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, handlers.SuccessResponse{Success: true})
}

// DeleteTemplate обрабатывает DELETE /admin/templates/{id}
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		handlers.RespondBadRequest(w, "некорректный ID шаблона")
		return
	}

	if err := h.service.DeleteTemplate(r.Context(), id); err != nil {
		h.respondError(w, "DeleteTemplate", err)
		return
	}
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, catalogService.ErrInvalidInput):
		handlers.RespondBadRequest(w, "некорректные данные запроса")
	case errors.Is(err, catalogService.ErrOrganizationNotFound):
		handlers.RespondNotFound(w, "организация не найдена")
	case errors.Is(err, catalogService.ErrBranchNotFound):
		handlers.RespondNotFound(w, "филиал не найден")
	case errors.Is(err, catalogService.ErrResourceNotFound):
		handlers.RespondNotFound(w, "ресурс не найден")
	case errors.Is(err, catalogService.ErrTemplateNotFound):
		handlers.RespondNotFound(w, "шаблон расписания не найден")
	default:
		h.logger.Error("Catalog handler: %s internal error: %v", op, err)
		handlers.RespondInternalError(w)
	}
}
