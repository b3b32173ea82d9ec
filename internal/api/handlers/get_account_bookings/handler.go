package get_account_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-WidgetBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-WidgetBookingService/internal/api/middleware"
	bookingService "github.com/m04kA/SMC-WidgetBookingService/internal/service/bookings"
)

const (
	msgInvalidAccountID = "invalid account ID"
	msgMissingAccountID = "missing account ID"
	msgInvalidParams    = "invalid query parameters"
	msgForbidden        = "access denied"
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

// Handle GET /api/v1/accounts/{accountId}/bookings
// Query params: status, startDate, endDate, limit, offset (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	accountIDStr := mux.Vars(r)["accountId"]

	accountID, err := strconv.ParseInt(accountIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /accounts/{id}/bookings - Invalid account ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAccountID)
		return
	}

	// Получаем accountID из контекста (через middleware Auth)
	authAccountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		h.logger.Warn("GET /accounts/{id}/bookings - Missing account ID in context")
		handlers.RespondUnauthorized(w, msgMissingAccountID)
		return
	}

	// Владелец видит только собственные бронирования
	if authAccountID != accountID {
		h.logger.Warn("GET /accounts/{id}/bookings - Access denied: account_id=%d, auth_account_id=%d",
			accountID, authAccountID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	query := r.URL.Query()
	serviceReq, err := ToServiceRequest(
		accountID,
		query.Get("status"),
		query.Get("startDate"),
		query.Get("endDate"),
		query.Get("limit"),
		query.Get("offset"),
	)
	if err != nil {
		h.logger.Warn("GET /accounts/{id}/bookings - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.GetAccountBookings(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, bookingService.ErrInvalidInput):
			h.logger.Warn("GET /accounts/{id}/bookings - Invalid input: account_id=%d, error=%v", accountID, err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /accounts/{id}/bookings - Failed to get bookings: account_id=%d, error=%v",
				accountID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /accounts/{id}/bookings - Bookings retrieved successfully: account_id=%d, count=%d",
		accountID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result)
}
