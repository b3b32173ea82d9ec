package scheduleconfig

import "github.com/m04kA/SMC-WidgetBookingService/pkg/dbmetrics"

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor
