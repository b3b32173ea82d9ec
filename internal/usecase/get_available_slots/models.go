package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-WidgetBookingService/internal/domain"
)

// Request модель запроса доступных слотов
type Request struct {
	WidgetID  string    // Публичный идентификатор виджета
	StartDate time.Time // Начало диапазона (дата, без времени)
	EndDate   time.Time // Конец диапазона включительно (дата, без времени)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	WidgetID string
	Timezone string
	Slots    []domain.AvailableSlot
}
