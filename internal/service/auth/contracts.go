package auth

import (
	"context"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
)

// UserRepository интерфейс хранилища пользователей
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// TokenManager интерфейс выпуска access-токенов
type TokenManager interface {
	Issue(userID int64, role, email string) (string, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
