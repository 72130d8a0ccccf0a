package bookings_by_email

import (
	"context"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-TimeslotService/internal/api/handlers"
	bookingsService "github.com/m04kA/SMC-TimeslotService/internal/service/bookings"
	"github.com/m04kA/SMC-TimeslotService/internal/service/bookings/models"
)

// BookingsService интерфейс сервиса чтения бронирований
type BookingsService interface {
	ListByEmail(ctx context.Context, req *models.ListByEmailRequest) (*models.BookingListResponse, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Handler обработчик GET /bookings/by-email
type Handler struct {
	service BookingsService
	logger  Logger
}

// NewHandler создает новый обработчик истории бронирований по email
func NewHandler(service BookingsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle обрабатывает запрос истории бронирований.
// Query-параметры: email (обязательный), status (опциональный).
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := &models.ListByEmailRequest{Email: query.Get("email")}
	if s := query.Get("status"); s != "" {
		req.Status = &s
	}

	resp, err := h.service.ListByEmail(r.Context(), req)
	if err != nil {
		if errors.Is(err, bookingsService.ErrInvalidInput) {
			handlers.RespondBadRequest(w, "требуется корректный email")
			return
		}
		h.logger.Error("BookingsByEmail handler: internal error: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, resp.Bookings)
}
