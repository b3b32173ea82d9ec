package get_account_stats

import (
	"context"

	"github.com/m04kA/SMC-WidgetBookingService/internal/service/bookings/models"
)

type BookingService interface {
	GetStats(ctx context.Context, accountID int64) (*models.StatsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
