package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/m04kA/SMC-TimeslotService/internal/api/handlers"
	"github.com/m04kA/SMC-TimeslotService/internal/domain"
	"github.com/m04kA/SMC-TimeslotService/pkg/tokens"
)

type contextKey string

const userContextKey contextKey = "auth_user"

// AuthUser аутентифицированный пользователь из access-токена
type AuthUser struct {
	ID    int64
	Role  string
	Email string
}

// IsAdmin возвращает true для административной роли
func (u *AuthUser) IsAdmin() bool {
	return u.Role == string(domain.RoleAdmin)
}

// UserFromContext извлекает пользователя из контекста запроса
func UserFromContext(ctx context.Context) (*AuthUser, bool) {
	u, ok := ctx.Value(userContextKey).(*AuthUser)
	return u, ok
}

// Auth middleware проверки bearer-токенов
type Auth struct {
	manager *tokens.Manager
}

// NewAuth создает middleware аутентификации
func NewAuth(manager *tokens.Manager) *Auth {
	return &Auth{manager: manager}
}

// RequireAuth пропускает только запросы с валидным bearer-токеном
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := a.parse(r)
		if !ok {
			handlers.RespondUnauthorized(w, "требуется аутентификация")
			return
		}
		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), userContextKey, user),
		))
	})
}

// RequireAdmin пропускает только запросы с токеном административной роли
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := a.parse(r)
		if !ok {
			handlers.RespondUnauthorized(w, "требуется аутентификация")
			return
		}
		if !user.IsAdmin() {
			handlers.RespondForbidden(w, "требуются права администратора")
			return
		}
		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), userContextKey, user),
		))
	})
}

func (a *Auth) parse(r *http.Request) (*AuthUser, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, false
	}

	claims, err := a.manager.Parse(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return nil, false
	}

	id, err := claims.UserID()
	if err != nil {
		return nil, false
	}

	return &AuthUser{
		ID:    id,
		Role:  claims.Role,
		Email: claims.Email,
	}, true
}
