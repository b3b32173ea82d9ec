package get_account_stats

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

// Handle GET /api/v1/accounts/{accountId}/stats
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	accountIDStr := mux.Vars(r)["accountId"]

	accountID, err := strconv.ParseInt(accountIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /accounts/{id}/stats - Invalid account ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAccountID)
		return
	}

	authAccountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		h.logger.Warn("GET /accounts/{id}/stats - Missing account ID in context")
		handlers.RespondUnauthorized(w, msgMissingAccountID)
		return
	}

	if authAccountID != accountID {
		h.logger.Warn("GET /accounts/{id}/stats - Access denied: account_id=%d, auth_account_id=%d",
			accountID, authAccountID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	result, err := h.service.GetStats(r.Context(), accountID)
	if err != nil {
		switch {
		case errors.Is(err, bookingService.ErrInvalidInput):
			h.logger.Warn("GET /accounts/{id}/stats - Invalid input: account_id=%d, error=%v", accountID, err)
			handlers.RespondBadRequest(w, msgInvalidAccountID)

		default:
			h.logger.Error("GET /accounts/{id}/stats - Failed to get stats: account_id=%d, error=%v", accountID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
