package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"devevents/internal/delivery/http/helpers"
	"devevents/internal/domain"
)

// Messages returned by POST /api/bookings. Clients display them verbatim.
const (
	msgBookingFieldsRequired = "Event ID and email are required"
	msgBookingInvalidEmail   = "Please provide a valid email address"
	msgBookingEventNotFound  = "Event not found"
	msgBookingDuplicate      = "You have already booked this event"
	msgBookingFailed         = "Failed to create booking"
)

// CreateBookingRequest is the request body for POST /api/bookings.
type CreateBookingRequest struct {
	EventID string `json:"eventId"`
	Email   string `json:"email"`
}

// Validate implements Validator. Only presence is checked here; the email
// format is checked by the service after normalization.
func (c CreateBookingRequest) Validate() []string {
	if strings.TrimSpace(c.EventID) == "" || strings.TrimSpace(c.Email) == "" {
		return []string{msgBookingFieldsRequired}
	}
	return nil
}

// CreateBookingSuccessResponse is the success response envelope for POST /api/bookings (201).
type CreateBookingSuccessResponse struct {
	Data  *domain.Booking   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type BookingController struct {
	Logger  *slog.Logger
	Service domain.BookingService
}

func NewBookingController(logger *slog.Logger, svc domain.BookingService) *BookingController {
	return &BookingController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateBooking godoc
// @Summary Book a spot at an event
// @Description Creates a booking for the given event and email. The email is trimmed and lowercased before storage; an email can book a given event at most once.
// @Tags bookings
// @Accept json
// @Produce json
// @Param booking body CreateBookingRequest true "Event ID and email"
// @Success 201 {object} controllers.CreateBookingSuccessResponse "data contains the created booking"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/bookings [post]
func (c *BookingController) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	booking, err := c.Service.CreateBooking(r.Context(), req.EventID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingFields):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, msgBookingFieldsRequired)
		case errors.Is(err, domain.ErrInvalidEmail):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, msgBookingInvalidEmail)
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, msgBookingEventNotFound)
		case errors.Is(err, domain.ErrDuplicateBooking):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, msgBookingDuplicate)
		default:
			logRequestError(c.Logger, r, err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, msgBookingFailed)
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, booking)
}
