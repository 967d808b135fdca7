package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"devevents/internal/delivery/http/helpers"
	"devevents/internal/delivery/http/middleware"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	Logger *slog.Logger
	Store  Pinger
}

func NewHealthController(logger *slog.Logger, store Pinger) *HealthController {
	return &HealthController{Logger: logger, Store: store}
}

// Health godoc
// @Summary Liveness and store check
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse "data.status: ok"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /healthz [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := c.Store.Ping(ctx); err != nil {
		id, _ := middleware.RequestIDFromContext(r.Context())
		c.Logger.WarnContext(r.Context(), "health check failed", "request_id", id, "err", err)
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeUnavailable, "store unreachable")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}
