package cancel_booking

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TimeslotService/internal/api/handlers"
	cancelBookingUC "github.com/m04kA/SMC-TimeslotService/internal/usecase/cancel_booking"
)

// UseCase интерфейс use case отмены бронирования
type UseCase interface {
	Execute(ctx context.Context, req *cancelBookingUC.Request) (*cancelBookingUC.Response, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Handler обработчик POST /bookings/{id}/cancel.
// Аутентификация на этом слое не проверяется - унаследованная дыра,
// сохраненная для совместимости контракта.
type Handler struct {
	useCase UseCase
	logger  Logger
}

// NewHandler создает новый обработчик отмены бронирования
func NewHandler(useCase UseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle обрабатывает запрос на отмену бронирования
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, "некорректный ID бронирования")
		return
	}

	resp, err := h.useCase.Execute(r.Context(), &cancelBookingUC.Request{BookingID: bookingID})
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, handlers.SuccessResponse{
		Success: true,
		Booking: resp,
	})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cancelBookingUC.ErrInvalidInput):
		handlers.RespondBadRequest(w, "некорректный ID бронирования")
	case errors.Is(err, cancelBookingUC.ErrBookingNotFound):
		handlers.RespondNotFound(w, "бронирование не найдено")
	default:
		h.logger.Error("CancelBooking handler: internal error: %v", err)
		handlers.RespondInternalError(w)
	}
}
