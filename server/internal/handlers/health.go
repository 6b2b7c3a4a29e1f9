package handlers

import (
	"net/http"
	"time"

	"github.com/QiPanTanYi/banyan/models"
	"github.com/QiPanTanYi/banyan/server/internal/respond"
)

// Health отвечает, что сервер запущен. Ответ не оборачивается в конверт.
func Health(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, models.HealthResponse{
		Status:    "ok",
		Message:   "Banyan ERP API is running",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
