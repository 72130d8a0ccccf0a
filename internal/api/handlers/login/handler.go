package login

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
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Handler обработчик POST /auth/login
type Handler struct {
	service AuthService
	logger  Logger
}

// NewHandler создает новый обработчик входа
func NewHandler(service AuthService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle обрабатывает запрос входа
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("Login handler: bad request body: %v", err)
		handlers.RespondBadRequest(w, "некорректное тело запроса")
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, authService.ErrInvalidInput):
			handlers.RespondBadRequest(w, "требуются email и пароль")
		case errors.Is(err, authService.ErrInvalidCredentials):
			handlers.RespondUnauthorized(w, "неверный email или пароль")
		default:
			h.logger.Error("Login handler: internal error: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}
