package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-LessonService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonService/internal/domain"
)

type contextKey string

const (
	userIDKey contextKey = "userID"
	roleKey   contextKey = "userRole"

	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"
)

// Auth требует заголовок X-User-ID и кладет ID и роль пользователя в контекст
// Роль берется из X-User-Role, по умолчанию - student
// Аутентификацию выполняет API gateway, сервис доверяет заголовкам
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userIDStr := r.Header.Get(headerUserID)
		if userIDStr == "" {
			handlers.RespondUnauthorized(w, "отсутствует заголовок X-User-ID")
			return
		}

		userID, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, "некорректный заголовок X-User-ID")
			return
		}

		role := domain.RoleStudent
		if roleStr := r.Header.Get(headerUserRole); roleStr != "" {
			parsed, ok := domain.ValidRole(roleStr)
			if !ok {
				handlers.RespondUnauthorized(w, "некорректный заголовок X-User-Role")
				return
			}
			role = parsed
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, roleKey, role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

// GetRole извлекает роль пользователя из контекста
func GetRole(ctx context.Context) (domain.Role, bool) {
	role, ok := ctx.Value(roleKey).(domain.Role)
	return role, ok
}
