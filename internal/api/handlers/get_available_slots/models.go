package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-WidgetBookingService/internal/domain"
	getSlots "github.com/m04kA/SMC-WidgetBookingService/internal/usecase/get_available_slots"
)

// GetAvailableSlotsRequest HTTP request model
type GetAvailableSlotsRequest struct {
	StartDate string `json:"startDate"` // "2025-10-15"
	EndDate   string `json:"endDate"`   // "2025-10-22"
}

// SlotResponse один доступный слот
type SlotResponse struct {
	Start           string `json:"start"` // RFC 3339
	DurationMinutes int    `json:"durationMinutes"`
}

// GetAvailableSlotsResponse HTTP response model
type GetAvailableSlotsResponse struct {
	WidgetID string         `json:"widgetId"`
	Timezone string         `json:"timezone"`
	Slots    []SlotResponse `json:"slots"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *GetAvailableSlotsRequest) ToUseCaseRequest(widgetID string) (*getSlots.Request, error) {
	startDate, err := time.Parse(domain.DateFormat, r.StartDate)
	if err != nil {
		return nil, err
	}

	endDate, err := time.Parse(domain.DateFormat, r.EndDate)
	if err != nil {
		return nil, err
	}

	return &getSlots.Request{
		WidgetID:  widgetID,
		StartDate: startDate,
		EndDate:   endDate,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getSlots.Response) *GetAvailableSlotsResponse {
	slots := make([]SlotResponse, len(resp.Slots))
	for i, s := range resp.Slots {
		slots[i] = SlotResponse{
			Start:           s.Start.Format(time.RFC3339),
			DurationMinutes: s.DurationMinutes,
		}
	}

	return &GetAvailableSlotsResponse{
		WidgetID: resp.WidgetID,
		Timezone: resp.Timezone,
		Slots:    slots,
	}
}
