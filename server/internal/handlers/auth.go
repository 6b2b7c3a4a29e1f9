package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/QiPanTanYi/banyan/models"
	"github.com/QiPanTanYi/banyan/server/internal/middleware"
	"github.com/QiPanTanYi/banyan/server/internal/respond"
	"github.com/QiPanTanYi/banyan/server/internal/services"
	"github.com/QiPanTanYi/banyan/server/internal/validation"
)

// Сообщения успешных ответов.
const (
	msgRegistered = "registration successful"
	msgLoggedIn   = "login successful"
	msgProfile    = "profile retrieved"
	msgRefreshed  = "token refreshed"
	msgLoggedOut  = "logout successful"
)

// AuthService определяет интерфейс для сервиса аутентификации.
// Это позволит нам легко подменять реализацию (например, для тестов).
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, user *models.User) (*models.AuthResponse, error)
	GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error)
	Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error)
	Logout(ctx context.Context, userID int64) error
}

// AuthHandler обрабатывает HTTP-запросы, связанные с аутентификацией.
type AuthHandler struct {
	service AuthService
	logger  *zap.Logger
}

// NewAuthHandler создает новый экземпляр AuthHandler.
func NewAuthHandler(s AuthService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{service: s, logger: logger.With(zap.String("component", "auth_handler"))}
}

// Register обрабатывает запрос на регистрацию нового пользователя.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		h.logger.Debug("Ошибка декодирования запроса регистрации", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, respond.DecodeMessage(err))
		return
	}

	if res := validation.ValidateRegister(req); !res.OK() {
		respond.Error(w, r, http.StatusBadRequest, res.Message(), res.Errors...)
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respond.OK(w, msgRegistered, resp)
}

// Login выдает токены пользователю, проверенному middleware.CredentialGuard.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		h.logger.Error("Login вызван без CredentialGuard")
		respond.Error(w, r, http.StatusUnauthorized, services.ErrInvalidCredentials.Error())
		return
	}

	resp, err := h.service.Login(r.Context(), user)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respond.OK(w, msgLoggedIn, resp)
}

// Profile возвращает профиль текущего пользователя.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "missing authorization token")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respond.OK(w, msgProfile, profile)
}

// Refresh обменивает refresh токен на новую пару.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, respond.DecodeMessage(err))
		return
	}

	if res := validation.ValidateRefresh(req); !res.OK() {
		respond.Error(w, r, http.StatusBadRequest, res.Message(), res.Errors...)
		return
	}

	resp, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respond.OK(w, msgRefreshed, resp)
}

// Logout фиксирует выход пользователя. Токены не отзываются.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "missing authorization token")
		return
	}

	if err := h.service.Logout(r.Context(), userID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respond.OK(w, msgLoggedOut, models.LogoutResponse{Message: msgLoggedOut})
}

// writeServiceError переводит ошибку сервиса в HTTP-статус.
func (h *AuthHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrUsernameTaken), errors.Is(err, services.ErrEmailTaken):
		respond.Error(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidRefreshToken):
		respond.Error(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		respond.Error(w, r, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("Внутренняя ошибка при обработке запроса",
			zap.String("path", r.URL.Path), zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal server error")
	}
}
