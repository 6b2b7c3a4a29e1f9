package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/QiPanTanYi/banyan/server/internal/middleware"
	"github.com/QiPanTanYi/banyan/server/internal/respond"
	"github.com/QiPanTanYi/banyan/server/internal/services"
)

// RouterDeps - зависимости HTTP-роутера.
type RouterDeps struct {
	Auth        *AuthHandler
	Credentials middleware.CredentialValidator
	Tokens      services.AccessTokenVerifier
	Logger      *zap.Logger
}

// NewRouter настраивает и возвращает роутер chi. Все маршруты смонтированы под /api.
func NewRouter(deps RouterDeps) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recoverer(logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", Health)

		r.Route("/auth", func(r chi.Router) {
			// Публичные маршруты
			r.Post("/register", deps.Auth.Register)
			r.With(middleware.CredentialGuard(deps.Credentials, logger)).Post("/login", deps.Auth.Login)
			r.Post("/refresh", deps.Auth.Refresh)

			// Приватные маршруты (требуют access токен)
			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticator(deps.Tokens, logger))
				r.Get("/profile", deps.Auth.Profile)
				r.Post("/logout", deps.Auth.Logout)
			})
		})
	})
	return r
}
