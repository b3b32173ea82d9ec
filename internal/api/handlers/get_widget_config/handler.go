package get_widget_config

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-WidgetBookingService/internal/api/handlers"
	configService "github.com/m04kA/SMC-WidgetBookingService/internal/service/config"
)

const (
	msgWidgetNotFound = "booking widget not found"
	msgConfigNotFound = "booking widget is not configured"
)

type Handler struct {
	service ConfigService
	logger  Logger
}

func NewHandler(service ConfigService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/widget/{widgetId}/config
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	widgetID := mux.Vars(r)["widgetId"]

	result, err := h.service.GetWidgetConfig(r.Context(), widgetID)
	if err != nil {
		switch {
		case errors.Is(err, configService.ErrAccountNotFound):
			h.logger.Warn("GET /widget/config - Widget not found: widget_id=%s", widgetID)
			handlers.RespondNotFound(w, msgWidgetNotFound)

		case errors.Is(err, configService.ErrConfigNotFound):
			h.logger.Warn("GET /widget/config - Config not found: widget_id=%s", widgetID)
			handlers.RespondNotFound(w, msgConfigNotFound)

		case errors.Is(err, configService.ErrInvalidInput):
			h.logger.Warn("GET /widget/config - Invalid input: widget_id=%s", widgetID)
			handlers.RespondBadRequest(w, msgWidgetNotFound)

		default:
			h.logger.Error("GET /widget/config - Failed to get config: widget_id=%s, error=%v", widgetID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
