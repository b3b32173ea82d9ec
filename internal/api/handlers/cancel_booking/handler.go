package cancel_booking

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-WidgetBookingService/internal/api/handlers"
	bookingService "github.com/m04kA/SMC-WidgetBookingService/internal/service/bookings"
)

const (
	msgInvalidRequestBody = "invalid request body"
	msgBookingNotFound    = "booking not found"
	msgAlreadyCancelled   = "booking is already cancelled"
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

// Handle POST /api/v1/bookings/{reference}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reference := mux.Vars(r)["reference"]

	// Тело опционально: отмена без причины допустима
	var req CancelBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("POST /bookings/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Cancel(r.Context(), reference, req.ToServiceRequest())
	if err != nil {
		switch {
		case errors.Is(err, bookingService.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/cancel - Booking not found: reference=%s", reference)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, bookingService.ErrAlreadyCancelled):
			h.logger.Warn("POST /bookings/cancel - Already cancelled: reference=%s", reference)
			handlers.RespondError(w, http.StatusConflict, msgAlreadyCancelled)

		case errors.Is(err, bookingService.ErrInvalidInput):
			h.logger.Warn("POST /bookings/cancel - Invalid input: reference=%s, error=%v", reference, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /bookings/cancel - Failed to cancel booking: reference=%s, error=%v", reference, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/cancel - Booking cancelled successfully: reference=%s", reference)
	handlers.RespondJSON(w, http.StatusOK, result)
}
