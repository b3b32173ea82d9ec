package create_booking

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-WidgetBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-WidgetBookingService/internal/domain"
	createBooking "github.com/m04kA/SMC-WidgetBookingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "invalid request body"
	msgInvalidDatetime    = "invalid appointment datetime, expected RFC 3339"
	msgWidgetNotFound     = "booking widget not found"
	msgConfigNotFound     = "booking widget is not configured"
	msgSlotConflict       = "This time slot is no longer available."
	msgTooLateToBook      = "this time slot can no longer be booked"
	msgDateTooFar         = "appointment date is too far in the future"
	msgDailyLimitReached  = "no more bookings can be made for this day"
	msgMonthlyLimit       = "monthly booking limit reached, please contact the business"
	msgRateLimited        = "too many booking attempts, please try again later"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/widget/{widgetId}/book
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	widgetID := mux.Vars(r)["widgetId"]

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /widget/book - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(widgetID, clientIP(r), userAgent(r))
	if err != nil {
		h.logger.Warn("POST /widget/book - Failed to parse datetime: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDatetime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotConflict):
			h.logger.Warn("POST /widget/book - Slot conflict: widget_id=%s", widgetID)
			handlers.RespondError(w, http.StatusConflict, msgSlotConflict)

		case errors.Is(err, createBooking.ErrAccountNotFound):
			h.logger.Warn("POST /widget/book - Widget not found: widget_id=%s", widgetID)
			handlers.RespondNotFound(w, msgWidgetNotFound)

		case errors.Is(err, createBooking.ErrConfigNotFound):
			h.logger.Warn("POST /widget/book - Config not found: widget_id=%s", widgetID)
			handlers.RespondNotFound(w, msgConfigNotFound)

		case errors.Is(err, createBooking.ErrTooLateToBook):
			h.logger.Warn("POST /widget/book - Too late to book: widget_id=%s", widgetID)
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, createBooking.ErrDateTooFarInFuture):
			h.logger.Warn("POST /widget/book - Date too far: widget_id=%s", widgetID)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, createBooking.ErrDailyLimitReached):
			h.logger.Warn("POST /widget/book - Daily limit reached: widget_id=%s", widgetID)
			handlers.RespondBadRequest(w, msgDailyLimitReached)

		case errors.Is(err, createBooking.ErrMonthlyLimitReached):
			h.logger.Warn("POST /widget/book - Monthly limit reached: widget_id=%s", widgetID)
			handlers.RespondError(w, http.StatusForbidden, msgMonthlyLimit)

		case errors.Is(err, createBooking.ErrRateLimited):
			h.logger.Warn("POST /widget/book - Rate limited: widget_id=%s", widgetID)
			w.Header().Set("Retry-After", strconv.Itoa(int(domain.RateLimitWindow.Seconds())))
			handlers.RespondError(w, http.StatusTooManyRequests, msgRateLimited)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /widget/book - Invalid input: widget_id=%s, error=%v", widgetID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /widget/book - Failed to create booking: widget_id=%s, error=%v", widgetID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /widget/book - Booking created successfully: reference=%s, widget_id=%s",
		result.Reference, widgetID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}

// clientIP извлекает адрес клиента: первый адрес из X-Forwarded-For,
// иначе RemoteAddr без порта
func clientIP(r *http.Request) *string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		ip := strings.TrimSpace(parts[0])
		if ip != "" {
			return &ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		if r.RemoteAddr == "" {
			return nil
		}
		addr := r.RemoteAddr
		return &addr
	}
	return &host
}

func userAgent(r *http.Request) *string {
	ua := r.UserAgent()
	if ua == "" {
		return nil
	}
	return &ua
}
