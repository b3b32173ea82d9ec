package get_available_slots

import (
	"fmt"

	"github.com/m04kA/SMC-WidgetBookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
// Ограничение в 90 дней — политика публичного эндпоинта: диапазон
// отклоняется до начала генерации слотов
func validateRequest(req *Request) error {
	if req.WidgetID == "" {
		return fmt.Errorf("%w: widgetID is required", ErrInvalidInput)
	}

	if req.StartDate.IsZero() {
		return fmt.Errorf("%w: startDate is required", ErrInvalidInput)
	}

	if req.EndDate.IsZero() {
		return fmt.Errorf("%w: endDate is required", ErrInvalidInput)
	}

	if req.EndDate.Before(req.StartDate) {
		return fmt.Errorf("%w: endDate is before startDate", ErrInvalidInput)
	}

	if req.EndDate.Sub(req.StartDate).Hours() > 24*domain.MaxAvailabilityRangeDays {
		return fmt.Errorf("%w: date range cannot exceed %d days", ErrRangeTooLong, domain.MaxAvailabilityRangeDays)
	}

	return nil
}
