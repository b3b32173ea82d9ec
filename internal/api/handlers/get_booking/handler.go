package get_booking

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-WidgetBookingService/internal/api/handlers"
	bookingService "github.com/m04kA/SMC-WidgetBookingService/internal/service/bookings"
)

const (
	msgBookingNotFound = "booking not found"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/{reference}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reference := mux.Vars(r)["reference"]

	result, err := h.service.GetByReference(r.Context(), reference)
	if err != nil {
		switch {
		case errors.Is(err, bookingService.ErrBookingNotFound):
			h.logger.Warn("GET /bookings - Booking not found: reference=%s", reference)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, bookingService.ErrInvalidInput):
			h.logger.Warn("GET /bookings - Invalid reference: %v", err)
			handlers.RespondBadRequest(w, msgBookingNotFound)

		default:
			h.logger.Error("GET /bookings - Failed to get booking: reference=%s, error=%v", reference, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
