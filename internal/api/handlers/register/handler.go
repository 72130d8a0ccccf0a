package register

import (
	"context"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-TimeslotService/internal/api/handlers"
	authService "github.com/m04kA/SMC-TimeslotService/internal/service/auth"
	"github.com/m04kA/SMC-TimeslotService/internal/service/auth/models"
)

// AuthService интерфейс сервиса аутентификации
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Handler обработчик POST /auth/register
type Handler struct {
	service AuthService
	logger  Logger
}

// NewHandler создает новый обработчик регистрации
func NewHandler(service AuthService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle обрабатывает запрос регистрации пользователя
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("Register handler: bad request body: %v", err)
		handlers.RespondBadRequest(w, "некорректное тело запроса")
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, authService.ErrInvalidInput):
			handlers.RespondBadRequest(w, "некорректные данные регистрации")
		case errors.Is(err, authService.ErrEmailTaken):
			handlers.RespondConflict(w, "email уже зарегистрирован")
		default:
			h.logger.Error("Register handler: internal error: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, resp)
}
