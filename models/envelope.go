package models

import "encoding/json"

// Envelope оборачивает каждый успешный ответ API: {code, message, data}.
type Envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// RawEnvelope оставляет data нераскодированным, пока тип не известен.
type RawEnvelope = Envelope[json.RawMessage]

// FieldError описывает одно отклоненное поле запроса.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse - тело любого ответа с ошибкой.
type ErrorResponse struct {
	Code      int          `json:"code"`
	Message   string       `json:"message"`
	Timestamp string       `json:"timestamp"`
	Path      string       `json:"path"`
	Method    string       `json:"method"`
	Errors    []FieldError `json:"errors,omitempty"`
}

// HealthResponse - тело ответа GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}
