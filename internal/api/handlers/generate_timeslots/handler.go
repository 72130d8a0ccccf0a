package generate_timeslots

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TimeslotService/internal/api/handlers"
	timeslotsService "github.com/m04kA/SMC-TimeslotService/internal/service/timeslots"
	"github.com/m04kA/SMC-TimeslotService/internal/service/timeslots/models"
)

// TimeslotsService интерфейс сервиса слотов
type TimeslotsService interface {
	Generate(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Handler обработчик POST /admin/resources/{id}/timeslots/generate
type Handler struct {
	service TimeslotsService
	logger  Logger
}

// NewHandler создает новый обработчик генерации слотов
func NewHandler(service TimeslotsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// request тело запроса генерации слотов
type request struct {
	StartDate string `json:"startDate"` // "YYYY-MM-DD"
	EndDate   string `json:"endDate"`   // "YYYY-MM-DD"
}

// Handle обрабатывает запрос генерации слотов по шаблонам расписания
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	resourceID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, "некорректный ID ресурса")
		return
	}

	var req request
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("GenerateTimeslots handler: bad request body: %v", err)
		handlers.RespondBadRequest(w, "некорректное тело запроса")
		return
	}

	resp, err := h.service.Generate(r.Context(), &models.GenerateRequest{
		ResourceID: resourceID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, timeslotsService.ErrResourceNotFound):
			handlers.RespondNotFound(w, "ресурс не найден")
		case errors.Is(err, timeslotsService.ErrInvalidInput):
			handlers.RespondBadRequest(w, "некорректный период генерации")
		default:
			h.logger.Error("GenerateTimeslots handler: internal error: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, resp)
}
