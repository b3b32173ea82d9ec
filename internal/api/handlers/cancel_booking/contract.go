package cancel_booking

import (
	"context"

	"github.com/m04kA/SMC-WidgetBookingService/internal/service/bookings/models"
)

type BookingService interface {
	Cancel(ctx context.Context, reference string, req *models.CancelBookingRequest) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
