package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/QiPanTanYi/banyan/server/internal/respond"
)

// RequestLogger пишет одну запись лога на каждый запрос.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	logger = logger.With(zap.String("component", "http"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				fields := []zap.Field{
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", status),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", chimw.GetReqID(r.Context())),
					zap.String("remote_addr", r.RemoteAddr),
				}
				switch {
				case status >= http.StatusInternalServerError:
					logger.Error("Запрос обработан", fields...)
				case status >= http.StatusBadRequest:
					logger.Warn("Запрос обработан", fields...)
				default:
					logger.Info("Запрос обработан", fields...)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// Recoverer отвечает на панику обработчика ошибкой 500 в формате API.
func Recoverer(logger *zap.Logger) func(http.Handler) http.Handler {
	logger = logger.With(zap.String("component", "http"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("Паника при обработке запроса",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.Stack("stack"))
				respond.Error(w, r, http.StatusInternalServerError, "internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
