package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"devevents/config"
	_ "devevents/docs"
	httpdelivery "devevents/internal/delivery/http"
	"devevents/internal/delivery/http/controllers"
	"devevents/internal/delivery/http/middleware"
	"devevents/internal/events"
	"devevents/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := config.NewLogger()
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx, cfg, logger, true)
		if err != nil {
			return err
		}
		defer func() {
			if err := st.Close(); err != nil {
				logger.Error("error closing store", "err", err)
			}
		}()

		var publisher events.Publisher
		if cfg.NatsURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NatsURL)
			if err != nil {
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NatsURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (NATS_URL not set)")
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error("error closing publisher", "err", err)
			}
		}()

		eventService := services.NewEventService(st.events, cfg.QueryTimeout)
		bookingService := services.NewBookingService(logger, st.events, st.bookings, publisher)

		router := httpdelivery.NewRouter(
			controllers.NewEventController(logger, eventService),
			controllers.NewBookingController(logger, bookingService),
			controllers.NewHealthController(logger, st),
		)
		var handler http.Handler = router
		handler = middleware.LoggingMiddleware(logger, handler)
		handler = middleware.RequestID(handler)
		handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)

		srv := &http.Server{
			Addr:    ":" + cfg.Port,
			Handler: handler,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("HTTP server listening", "addr", srv.Addr, "env", cfg.Environment)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			logger.Info("received signal, shutting down")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("shutdown complete")
		return nil
	},
}
