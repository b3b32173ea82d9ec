package create_booking

import (
	"time"

	createBooking "github.com/m04kA/SMC-WidgetBookingService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	FirstName           string  `json:"firstName"`
	LastName            string  `json:"lastName"`
	Phone               string  `json:"phone"`
	AppointmentDatetime string  `json:"appointmentDatetime"` // RFC 3339
	Notes               *string `json:"notes,omitempty"`
	IdempotencyKey      *string `json:"idempotencyKey,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	Reference        string  `json:"reference"`
	FirstName        string  `json:"firstName"`
	LastName         string  `json:"lastName"`
	Phone            string  `json:"phone"`
	Notes            *string `json:"notes,omitempty"`
	AppointmentStart string  `json:"appointmentStart"` // RFC 3339
	DurationMinutes  int     `json:"durationMinutes"`
	Status           string  `json:"status"`
	CreatedAt        string  `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// IP и User-Agent извлекаются из запроса хендлером, не клиентом
func (r *CreateBookingRequest) ToUseCaseRequest(widgetID string, customerIP, userAgent *string) (*createBooking.Request, error) {
	start, err := time.Parse(time.RFC3339, r.AppointmentDatetime)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		WidgetID:         widgetID,
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		Phone:            r.Phone,
		Notes:            r.Notes,
		AppointmentStart: start,
		IdempotencyKey:   r.IdempotencyKey,
		CustomerIP:       customerIP,
		UserAgent:        userAgent,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		Reference:        resp.Reference,
		FirstName:        resp.FirstName,
		LastName:         resp.LastName,
		Phone:            resp.Phone,
		Notes:            resp.Notes,
		AppointmentStart: resp.AppointmentStart.Format(time.RFC3339),
		DurationMinutes:  resp.DurationMinutes,
		Status:           resp.Status,
		CreatedAt:        resp.CreatedAt.Format(time.RFC3339),
	}
}
