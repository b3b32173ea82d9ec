package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-WidgetBookingService/internal/api/handlers"
)

type contextKey string

const accountIDKey contextKey = "accountID"

const (
	// HeaderAccountID заголовок аутентификации владельца аккаунта.
	// Проверка подписи выполняется на API-gateway, сюда приходит уже
	// проверенный идентификатор
	HeaderAccountID = "X-Account-ID"

	msgMissingAccountID = "missing account ID header"
	msgInvalidAccountID = "invalid account ID header"
)

// Auth проверяет наличие заголовка X-Account-ID и кладет идентификатор
// аккаунта в контекст запроса
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headerValue := r.Header.Get(HeaderAccountID)
		if headerValue == "" {
			handlers.RespondUnauthorized(w, msgMissingAccountID)
			return
		}

		accountID, err := strconv.ParseInt(headerValue, 10, 64)
		if err != nil || accountID <= 0 {
			handlers.RespondUnauthorized(w, msgInvalidAccountID)
			return
		}

		ctx := context.WithValue(r.Context(), accountIDKey, accountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAccountID извлекает идентификатор аккаунта из контекста запроса
func GetAccountID(ctx context.Context) (int64, bool) {
	accountID, ok := ctx.Value(accountIDKey).(int64)
	return accountID, ok
}
