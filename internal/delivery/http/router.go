package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"devevents/internal/delivery/http/controllers"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	eventController *controllers.EventController,
	bookingController *controllers.BookingController,
	healthController *controllers.HealthController,
) *http.ServeMux {
	mux := http.NewServeMux()

	// Events
	mux.HandleFunc("GET /api/events", eventController.ListEvents)
	mux.HandleFunc("GET /api/events/{slug}", eventController.GetEventBySlug)
	mux.HandleFunc("GET /api/events/{slug}/similar", eventController.ListSimilarEvents)

	// Bookings
	mux.HandleFunc("POST /api/bookings", bookingController.CreateBooking)

	mux.HandleFunc("GET /healthz", healthController.Health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
