package get_timeslots

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TimeslotService/internal/api/handlers"
	timeslotsService "github.com/m04kA/SMC-TimeslotService/internal/service/timeslots"
	"github.com/m04kA/SMC-TimeslotService/internal/service/timeslots/models"
)

// TimeslotsService интерфейс сервиса слотов
type TimeslotsService interface {
	List(ctx context.Context, req *models.ListRequest) (*models.TimeslotListResponse, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Handler обработчик GET /resources/{id}/timeslots
type Handler struct {
	service TimeslotsService
	logger  Logger

	// onlyOpen true для публичной выдачи (только открытые слоты с
	// остатком вместимости), false для административной
	onlyOpen bool
}

// NewHandler создает обработчик публичного списка слотов
func NewHandler(service TimeslotsService, logger Logger) *Handler {
	return &Handler{service: service, logger: logger, onlyOpen: true}
}

// NewAdminHandler создает обработчик полного списка слотов
func NewAdminHandler(service TimeslotsService, logger Logger) *Handler {
	return &Handler{service: service, logger: logger, onlyOpen: false}
}

// Handle обрабатывает запрос списка слотов ресурса.
// Query-параметры: from, to (RFC 3339, опциональны).
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	resourceID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, "некорректный ID ресурса")
		return
	}

	req := &models.ListRequest{ResourceID: resourceID, OnlyOpen: h.onlyOpen}

	query := r.URL.Query()
	for param, dst := range map[string]**time.Time{
		"from": &req.From,
		"to":   &req.To,
	} {
		if raw := query.Get(param); raw != "" {
			ts, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				handlers.RespondBadRequest(w, "некорректная дата в параметре "+param)
				return
			}
			*dst = &ts
		}
	}

	resp, err := h.service.List(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, timeslotsService.ErrResourceNotFound):
			handlers.RespondNotFound(w, "ресурс не найден")
		case errors.Is(err, timeslotsService.ErrInvalidInput):
			handlers.RespondBadRequest(w, "некорректные параметры запроса")
		default:
			h.logger.Error("GetTimeslots handler: internal error: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}
