package get_widget_config

import (
	"context"

	"github.com/m04kA/SMC-WidgetBookingService/internal/service/config/models"
)

type ConfigService interface {
	GetWidgetConfig(ctx context.Context, widgetID string) (*models.WidgetConfigResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
