package create_booking

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
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListActiveInRange(ctx context.Context, accountID int64, from, to time.Time) ([]*domain.Booking, error)
	CountActiveBetween(ctx context.Context, accountID int64, from, to time.Time) (int, error)
	CountActiveCreatedBetween(ctx context.Context, accountID int64, from, to time.Time) (int, error)
	CountRecentAttemptsByIP(ctx context.Context, accountID int64, ip string, since time.Time) (int, error)
	LockIdempotencyKey(ctx context.Context, accountID int64, key string) (*int64, error)
	FinalizeIdempotencyKey(ctx context.Context, accountID int64, key string, bookingID int64) error
}

// TransactionManager интерфейс менеджера транзакций
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
