// Package respond пишет JSON-ответы API в едином формате и читает тела запросов.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/QiPanTanYi/banyan/models"
)

// maxBodyBytes ограничивает размер тела запроса.
const maxBodyBytes = 1 << 20

// ErrMalformedBody возвращается DecodeJSON для любого некорректного тела.
var ErrMalformedBody = errors.New("malformed request body")

// JSON пишет v с указанным статусом.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// Статус уже отправлен, ошибку кодирования вернуть клиенту нельзя
	_ = json.NewEncoder(w).Encode(v)
}

// OK пишет успешный ответ {code: 200, message, data}.
func OK[T any](w http.ResponseWriter, message string, data T) {
	JSON(w, http.StatusOK, models.Envelope[T]{
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// Error пишет ответ с ошибкой {code, message, timestamp, path, method, errors?}.
func Error(w http.ResponseWriter, r *http.Request, status int, message string, fields ...models.FieldError) {
	JSON(w, status, models.ErrorResponse{
		Code:      status,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
		Method:    r.Method,
		Errors:    fields,
	})
}

// DecodeJSON читает одно JSON-значение из тела запроса.
// Неизвестные поля и данные после значения считаются ошибкой.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: лишние данные после JSON", ErrMalformedBody)
	}
	return nil
}

// DecodeMessage возвращает короткое сообщение для клиента по ошибке DecodeJSON.
func DecodeMessage(err error) string {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return "request body too large"
	case errors.Is(err, io.EOF):
		return "request body is empty"
	default:
		return "invalid request body"
	}
}
