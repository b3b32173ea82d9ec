package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WidgetBookingService/internal/domain"
)

// AccountRepository интерфейс репозитория аккаунтов
type AccountRepository interface {
	GetByWidgetID(ctx context.Context, widgetID string) (*domain.Account, error)
}

// ConfigRepository интерфейс репозитория конфигурации расписания
type ConfigRepository interface {
	GetByAccountID(ctx context.Context, accountID int64) (*domain.ScheduleConfig, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	ListActiveInRange(ctx context.Context, accountID int64, from, to time.Time) ([]*domain.Booking, error)
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
