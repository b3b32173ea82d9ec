package config

import (
	"context"

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

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
