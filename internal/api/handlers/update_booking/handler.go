package update_booking

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TimeslotService/internal/api/handlers"
	updateBookingUC "github.com/m04kA/SMC-TimeslotService/internal/usecase/update_booking"
)

// UseCase интерфейс use case изменения бронирования
type UseCase interface {
	Execute(ctx context.Context, req *updateBookingUC.Request) (*updateBookingUC.Response, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Handler обработчик PUT /bookings/{id}.
// Аутентификация на этом слое не проверяется - унаследованная дыра,
// сохраненная для совместимости контракта.
type Handler struct {
	useCase UseCase
	logger  Logger
}

// NewHandler создает новый обработчик изменения бронирования
func NewHandler(useCase UseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// request тело запроса на изменение бронирования
type request struct {
	GuestCount      int     `json:"guestCount"`
	SpecialRequests *string `json:"specialRequests,omitempty"`
}

// Handle обрабатывает запрос на изменение бронирования
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, "некорректный ID бронирования")
		return
	}

	var req request
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("UpdateBooking handler: bad request body: %v", err)
		handlers.RespondBadRequest(w, "некорректное тело запроса")
		return
	}

	resp, err := h.useCase.Execute(r.Context(), &updateBookingUC.Request{
		BookingID:       bookingID,
		GuestCount:      req.GuestCount,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, updateBookingUC.ErrInvalidInput):
		handlers.RespondBadRequest(w, "некорректное количество гостей")
	case errors.Is(err, updateBookingUC.ErrBookingNotFound):
		handlers.RespondNotFound(w, "бронирование не найдено")
	case errors.Is(err, updateBookingUC.ErrBookingCancelled),
		errors.Is(err, updateBookingUC.ErrSlotNotOpen),
		errors.Is(err, updateBookingUC.ErrInsufficientCapacity):
		handlers.RespondConflict(w, "изменение бронирования невозможно")
	default:
		h.logger.Error("UpdateBooking handler: internal error: %v", err)
		handlers.RespondInternalError(w)
	}
}
