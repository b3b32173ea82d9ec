package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-WidgetBookingService/internal/api/handlers"
	getSlots "github.com/m04kA/SMC-WidgetBookingService/internal/usecase/get_available_slots"
)

const (
	msgInvalidRequestBody = "invalid request body"
	msgInvalidDate        = "invalid date format, expected YYYY-MM-DD"
	msgInvalidRange       = "invalid date range"
	msgRangeTooLong       = "date range cannot exceed 90 days"
	msgWidgetNotFound     = "booking widget not found"
	msgConfigNotFound     = "booking widget is not configured"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/widget/{widgetId}/availability
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	widgetID := mux.Vars(r)["widgetId"]

	var req GetAvailableSlotsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /widget/availability - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(widgetID)
	if err != nil {
		h.logger.Warn("POST /widget/availability - Failed to parse dates: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getSlots.ErrAccountNotFound):
			h.logger.Warn("POST /widget/availability - Widget not found: widget_id=%s", widgetID)
			handlers.RespondNotFound(w, msgWidgetNotFound)

		case errors.Is(err, getSlots.ErrConfigNotFound):
			h.logger.Warn("POST /widget/availability - Config not found: widget_id=%s", widgetID)
			handlers.RespondNotFound(w, msgConfigNotFound)

		case errors.Is(err, getSlots.ErrRangeTooLong):
			h.logger.Warn("POST /widget/availability - Range too long: widget_id=%s", widgetID)
			handlers.RespondBadRequest(w, msgRangeTooLong)

		case errors.Is(err, getSlots.ErrInvalidInput):
			h.logger.Warn("POST /widget/availability - Invalid input: widget_id=%s, error=%v", widgetID, err)
			handlers.RespondBadRequest(w, msgInvalidRange)

		default:
			h.logger.Error("POST /widget/availability - Failed to get slots: widget_id=%s, error=%v", widgetID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
