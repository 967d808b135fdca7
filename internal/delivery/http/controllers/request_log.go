package controllers

import (
	"log/slog"
	"net/http"

	"devevents/internal/delivery/http/middleware"
)

// logRequestError records a failed request together with its request ID.
func logRequestError(logger *slog.Logger, r *http.Request, err error) {
	id, _ := middleware.RequestIDFromContext(r.Context())
	logger.ErrorContext(r.Context(), "request failed",
		"request_id", id, "path", r.URL.Path, "method", r.Method, "err", err)
}
