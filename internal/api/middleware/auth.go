package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-WebhookService/internal/api/handlers"
)

type contextKey string

const userIDKey contextKey = "userID"

// Auth требует заголовок X-User-ID (проставляется API gateway после
// проверки токена) и кладет ID пользователя в контекст запроса
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-User-ID")
		if raw == "" {
			handlers.RespondUnauthorized(w, "отсутствует заголовок X-User-ID")
			return
		}

		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, "некорректный заголовок X-User-ID")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID извлекает ID пользователя, положенный Auth middleware
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}
