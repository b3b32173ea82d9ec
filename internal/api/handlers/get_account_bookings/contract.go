package get_account_bookings

import (
	"context"

	"github.com/m04kA/SMC-WidgetBookingService/internal/service/bookings/models"
)

type BookingService interface {
	GetAccountBookings(ctx context.Context, req *models.GetAccountBookingsRequest) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
