package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/QiPanTanYi/banyan/models"
	"github.com/QiPanTanYi/banyan/server/internal/respond"
	"github.com/QiPanTanYi/banyan/server/internal/services"
	"github.com/QiPanTanYi/banyan/server/internal/validation"
)

const userKey contextKey = "user"

// CredentialValidator проверяет пару логин/пароль.
type CredentialValidator interface {
	ValidateCredentials(ctx context.Context, identifier, password string) (*models.User, error)
}

// CredentialGuard читает тело запроса входа, проверяет учетные данные
// и кладет найденного пользователя в контекст. Обработчик входа выполняется
// только для уже проверенного пользователя.
func CredentialGuard(validator CredentialValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "credential_guard"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req models.LoginRequest
			if err := respond.DecodeJSON(w, r, &req); err != nil {
				logger.Debug("Ошибка декодирования запроса входа", zap.Error(err))
				respond.Error(w, r, http.StatusBadRequest, respond.DecodeMessage(err))
				return
			}

			if res := validation.ValidateLogin(req); !res.OK() {
				respond.Error(w, r, http.StatusBadRequest, res.Message(), res.Errors...)
				return
			}

			user, err := validator.ValidateCredentials(r.Context(), req.Username, req.Password)
			if err != nil {
				if errors.Is(err, services.ErrInvalidCredentials) {
					respond.Error(w, r, http.StatusUnauthorized, services.ErrInvalidCredentials.Error())
					return
				}
				logger.Error("Ошибка проверки учетных данных", zap.Error(err))
				respond.Error(w, r, http.StatusInternalServerError, "internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
		})
	}
}

// GetUserFromContext возвращает пользователя, проверенного CredentialGuard.
func GetUserFromContext(ctx context.Context) (*models.User, bool) {
	if ctx == nil {
		return nil, false
	}
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}
