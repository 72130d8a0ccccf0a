package admin_bookings

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/SMC-TimeslotService/internal/api/handlers"
	"github.com/m04kA/SMC-TimeslotService/internal/domain"
	bookingsService "github.com/m04kA/SMC-TimeslotService/internal/service/bookings"
	"github.com/m04kA/SMC-TimeslotService/internal/service/bookings/models"
)

// BookingsService интерфейс сервиса чтения бронирований
type BookingsService interface {
	AdminList(ctx context.Context, req *models.AdminListRequest) (*models.BookingListResponse, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Handler обработчик GET /admin/bookings
type Handler struct {
	service BookingsService
	logger  Logger
}

// NewHandler создает новый обработчик админского списка бронирований
func NewHandler(service BookingsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle обрабатывает запрос админского списка бронирований.
// Query-параметры: orgId, branchId, resourceId, email, status,
// from, to (даты YYYY-MM-DD по created_at) - все опциональны.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &models.AdminListRequest{}

	for param, dst := range map[string]**int64{
		"orgId":      &req.OrgID,
		"branchId":   &req.BranchID,
		"resourceId": &req.ResourceID,
	} {
		if raw := query.Get(param); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				handlers.RespondBadRequest(w, "некорректный параметр "+param)
				return
			}
			*dst = &id
		}
	}

	if email := query.Get("email"); email != "" {
		req.Email = &email
	}
	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	for param, dst := range map[string]**time.Time{
		"from": &req.From,
		"to":   &req.To,
	} {
		if raw := query.Get(param); raw != "" {
			ts, err := time.Parse(domain.DateFormat, raw)
			if err != nil {
				handlers.RespondBadRequest(w, "некорректная дата в параметре "+param)
				return
			}
			*dst = &ts
		}
	}

	resp, err := h.service.AdminList(r.Context(), req)
	if err != nil {
		if errors.Is(err, bookingsService.ErrInvalidInput) {
			handlers.RespondBadRequest(w, "некорректные параметры фильтра")
			return
		}
		h.logger.Error("AdminBookings handler: internal error: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}
