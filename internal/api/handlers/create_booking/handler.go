package create_booking

import (
	"context"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-TimeslotService/internal/api/handlers"
	"github.com/m04kA/SMC-TimeslotService/internal/api/middleware"
	createBookingUC "github.com/m04kA/SMC-TimeslotService/internal/usecase/create_booking"
)

// UseCase интерфейс use case создания бронирования
type UseCase interface {
	Execute(ctx context.Context, req *createBookingUC.Request) (*createBookingUC.Response, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Handler обработчик POST /bookings
type Handler struct {
	useCase UseCase
	logger  Logger
}

// NewHandler создает новый обработчик создания бронирования
func NewHandler(useCase UseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// request тело запроса на создание бронирования
type request struct {
	ResourceID      int64   `json:"resourceId"`
	TimeslotID      int64   `json:"timeslotId"`
	GuestCount      int     `json:"guestCount"`
	SpecialRequests *string `json:"specialRequests,omitempty"`
}

// Handle обрабатывает запрос на создание бронирования
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, "требуется аутентификация")
		return
	}

	var req request
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("CreateBooking handler: bad request body: %v", err)
		handlers.RespondBadRequest(w, "некорректное тело запроса")
		return
	}

	resp, err := h.useCase.Execute(r.Context(), &createBookingUC.Request{
		UserID:          user.ID,
		ResourceID:      req.ResourceID,
		TimeslotID:      req.TimeslotID,
		GuestCount:      req.GuestCount,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, resp)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, createBookingUC.ErrUnauthenticated):
		handlers.RespondUnauthorized(w, "требуется аутентификация")
	case errors.Is(err, createBookingUC.ErrInvalidInput):
		handlers.RespondBadRequest(w, "некорректные данные бронирования")
	case errors.Is(err, createBookingUC.ErrResourceNotFound),
		errors.Is(err, createBookingUC.ErrTimeslotNotFound),
		errors.Is(err, createBookingUC.ErrTimeslotMismatch):
		handlers.RespondBadRequest(w, "ресурс или слот не найден")
	case errors.Is(err, createBookingUC.ErrSlotNotOpen),
		errors.Is(err, createBookingUC.ErrInsufficientCapacity),
		errors.Is(err, createBookingUC.ErrSlotTaken):
		handlers.RespondConflict(w, "слот недоступен для бронирования")
	default:
		h.logger.Error("CreateBooking handler: internal error: %v", err)
		handlers.RespondInternalError(w)
	}
}
