// Package middlewarectx содержит HTTP middleware сервиса: проверку
// JWT, ограничение частоты запросов, CORS и сбор метрик.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/splitex/internal/http/response"
	"github.com/magabrotheeeer/splitex/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// UserID — ключ ID аутентифицированного пользователя в контексте.
const UserID Key = "user_id"

// TokenValidator проверяет токен и возвращает ID пользователя.
type TokenValidator interface {
	ValidateToken(token string) (uuid.UUID, error)
}

// JWTMiddleware проверяет Bearer-токен в заголовке Authorization и кладёт
// ID пользователя в контекст. Без валидного токена отвечает 401.
func JWTMiddleware(validator TokenValidator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Info("missing or invalid authorization header")
				response.Render(w, r, http.StatusUnauthorized, response.Error("Missing Authorization Header"))
				return
			}

			userID, err := validator.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				log.Info("invalid or expired token", sl.Err(err))
				response.Render(w, r, http.StatusUnauthorized, response.Error("Invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), UserID, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext возвращает ID пользователя, положенный JWTMiddleware.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserID).(uuid.UUID)
	return id, ok && id != uuid.Nil
}
