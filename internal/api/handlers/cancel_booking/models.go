package cancel_booking

import (
	"github.com/m04kA/SMC-WidgetBookingService/internal/service/bookings/models"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CancelBookingRequest) ToServiceRequest() *models.CancelBookingRequest {
	return &models.CancelBookingRequest{
		CancellationReason: r.Reason,
	}
}
