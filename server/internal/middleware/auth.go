package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/QiPanTanYi/banyan/server/internal/respond"
	"github.com/QiPanTanYi/banyan/server/internal/services"
)

// Тип для ключа контекста.
type contextKey string

// Ключи значений, которые middleware кладут в контекст запроса.
const (
	UserIDKey   contextKey = "userID"
	UsernameKey contextKey = "username"
)

// Authenticator проверяет access токен из заголовка Authorization.
// Состояние сессии на сервере не хранится: токен является единственным доказательством входа.
func Authenticator(verifier services.AccessTokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "auth_middleware"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Получаем заголовок Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Заголовок Authorization отсутствует")
				respond.Error(w, r, http.StatusUnauthorized, "missing authorization token")
				return
			}

			// Проверяем формат "Bearer token"
			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
				logger.Debug("Неверный формат заголовка Authorization")
				respond.Error(w, r, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			claims, err := verifier.VerifyAccessToken(strings.TrimSpace(token))
			if err != nil {
				// Истекший и поддельный токен клиент не различает
				if errors.Is(err, services.ErrExpiredToken) {
					logger.Debug("Предоставлен истекший токен")
				} else {
					logger.Info("Ошибка валидации токена", zap.Error(err))
				}
				respond.Error(w, r, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				respond.Error(w, r, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, UsernameKey, claims.Username)
			logger.Debug("Пользователь успешно аутентифицирован", zap.Int64("user_id", userID))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext извлекает UserID из контекста запроса.
// Возвращает ID пользователя и true, если ID найден, иначе 0 и false.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}
