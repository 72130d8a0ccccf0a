package admin_set_status

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TimeslotService/internal/api/handlers"
	"github.com/m04kA/SMC-TimeslotService/internal/domain"
	adminSetStatusUC "github.com/m04kA/SMC-TimeslotService/internal/usecase/admin_set_status"
)

// UseCase интерфейс use case административной смены статуса
type UseCase interface {
	Execute(ctx context.Context, req *adminSetStatusUC.Request) (*adminSetStatusUC.Response, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Handler обработчик PUT /admin/bookings/{id}/status
type Handler struct {
	useCase UseCase
	logger  Logger
}

// NewHandler создает новый обработчик смены статуса
func NewHandler(useCase UseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// request тело запроса смены статуса
type request struct {
	Status string `json:"status"`
}

// Handle обрабатывает запрос на смену статуса бронирования
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, "некорректный ID бронирования")
		return
	}

	var req request
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("AdminSetStatus handler: bad request body: %v", err)
		handlers.RespondBadRequest(w, "некорректное тело запроса")
		return
	}

	resp, err := h.useCase.Execute(r.Context(), &adminSetStatusUC.Request{
		BookingID: bookingID,
		NewStatus: domain.BookingStatus(req.Status),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, adminSetStatusUC.ErrInvalidInput),
		errors.Is(err, adminSetStatusUC.ErrInvalidStatus):
		handlers.RespondBadRequest(w, "недопустимый статус бронирования")
	case errors.Is(err, adminSetStatusUC.ErrBookingNotFound):
		handlers.RespondNotFound(w, "бронирование не найдено")
	case errors.Is(err, adminSetStatusUC.ErrInsufficientCapacity):
		handlers.RespondConflict(w, "на слоте недостаточно вместимости для реактивации")
	default:
		h.logger.Error("AdminSetStatus handler: internal error: %v", err)
		handlers.RespondInternalError(w)
	}
}
