package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WidgetBookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	Cancel(ctx context.Context, id int64, reason *string) error
	GetByAccountWithFilter(ctx context.Context, filter domain.AccountBookingsFilter) ([]*domain.Booking, error)
	GetStats(ctx context.Context, accountID int64, now time.Time) (*domain.BookingStats, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
