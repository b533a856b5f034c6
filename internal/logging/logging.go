// Package logging настраивает slog и общие имена полей логов
package logging

import (
	"io"
	"log/slog"
)

// Ключи полей, общие для всех пакетов
const (
	RequestID = "request_id"
	Error     = "error"
	Method    = "method"
	Route     = "route"
	Status    = "status"
	Latency   = "latency_ms"
	UserID    = "user_id"
	Owner     = "cart_owner"
	OrderID   = "order_id"
	ProductID = "product_id"
)

// New JSON-логгер с заданным уровнем
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard логгер для тестов
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
